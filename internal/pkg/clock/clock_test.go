package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollUntil_ImmediateSuccess(t *testing.T) {
	fake := NewFake()

	ok := PollUntil(fake, time.Second, 10*time.Second, func() bool { return true })

	assert.True(t, ok)
	// 第一次檢查就成功，不應休眠
	assert.Empty(t, fake.Slept)
}

func TestPollUntil_SucceedsAfterRetries(t *testing.T) {
	fake := NewFake()
	calls := 0

	ok := PollUntil(fake, time.Second, 10*time.Second, func() bool {
		calls++
		return calls >= 3
	})

	assert.True(t, ok)
	assert.Equal(t, 3, calls)
	assert.Len(t, fake.Slept, 2)
}

func TestPollUntil_CeilingExpiry(t *testing.T) {
	fake := NewFake()
	calls := 0

	ok := PollUntil(fake, 2*time.Second, 10*time.Second, func() bool {
		calls++
		return false
	})

	assert.False(t, ok)
	// 上限 10s、間隔 2s：0s,2s,4s,6s,8s,10s 共 6 次檢查
	assert.Equal(t, 6, calls)
}
