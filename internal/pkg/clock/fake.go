package clock

import "time"

// Fake 測試用時鐘：Sleep 只推進內部時間，不真正休眠
type Fake struct {
	Current time.Time
	Slept   []time.Duration
}

// NewFake 從固定起點創建測試時鐘
func NewFake() *Fake {
	return &Fake{Current: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *Fake) Now() time.Time { return f.Current }

func (f *Fake) Sleep(d time.Duration) {
	f.Current = f.Current.Add(d)
	f.Slept = append(f.Slept, d)
}
