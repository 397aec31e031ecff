// Package clock 提供可注入的时间源
//
// 用例层不直接调用time.Now(),而是依赖Clock接口:
// 生产环境使用系统时钟,测试使用手动时钟以便构造"已逾期"、"已过期"等场景。
package clock

import (
	"sync"
	"time"
)

// Clock 时间源
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem 返回系统时钟(UTC)
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Manual 手动时钟,只在调用Set/Advance时前进
type Manual struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManual 创建停在t的手动时钟
func NewManual(t time.Time) *Manual {
	return &Manual{now: t.UTC()}
}

// Now 实现Clock
func (m *Manual) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set 设置当前时间
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t.UTC()
	m.mu.Unlock()
}

// Advance 时钟前进d
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
