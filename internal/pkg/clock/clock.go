package clock

import "time"

// Clock 可注入的時鐘接口
// 所有「有上限的輪詢等待」邏輯都通過它取時間和休眠，
// 測試時換成 Fake 即可做確定性驗證，不需要真實 sleep
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

// New 創建真實時鐘
func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// PollUntil 以固定間隔輪詢 fn，直到返回 true 或達到等待上限
// 返回 false 表示超時；超時後由調用方決定是否降級繼續
func PollUntil(c Clock, interval, ceiling time.Duration, fn func() bool) bool {
	deadline := c.Now().Add(ceiling)
	for {
		if fn() {
			return true
		}
		if !c.Now().Before(deadline) {
			return false
		}
		c.Sleep(interval)
	}
}
