package engine

import (
	"sync"
	"time"
)

// Clock supplies the wall-clock instant both timers measure against.
type Clock interface {
	Now() time.Time
}

// Scheduler runs fn repeatedly every interval until the returned stop
// function is called. Stop must be idempotent and must not block on a
// running fn.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// SystemClock is the real clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// TickerScheduler drives callbacks from a time.Ticker per registration.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
