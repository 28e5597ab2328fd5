package clock

import (
	"context"
	"sync"
	"time"
)

// Fake — Clock для тестов, время двигается вручную.
type Fake struct {
	mu      sync.Mutex
	cond    *sync.Cond
	now     time.Time
	waiters map[*fakeWaiter]struct{}
}

type fakeWaiter struct {
	at   time.Time
	done chan struct{}
}

var _ Clock = (*Fake)(nil)

func NewFake(now time.Time) *Fake {
	f := &Fake{
		now:     now,
		waiters: make(map[*fakeWaiter]struct{}),
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) WaitUntil(ctx context.Context, at time.Time) error {
	f.mu.Lock()
	if !f.now.Before(at) {
		f.mu.Unlock()
		return nil
	}
	w := &fakeWaiter{at: at, done: make(chan struct{})}
	f.waiters[w] = struct{}{}
	f.cond.Broadcast()
	f.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		f.mu.Lock()
		delete(f.waiters, w)
		f.cond.Broadcast()
		f.mu.Unlock()
		return ctx.Err()
	}
}

// Advance сдвигает время вперёд и отпускает всех, чей момент наступил.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	for w := range f.waiters {
		if !f.now.Before(w.at) {
			close(w.done)
			delete(f.waiters, w)
		}
	}
	f.cond.Broadcast()
}

// BlockUntil блокируется, пока ровно n горутин не будут ждать на часах.
func (f *Fake) BlockUntil(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.waiters) != n {
		f.cond.Wait()
	}
}

// Waiters возвращает число ожидающих.
func (f *Fake) Waiters() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiters)
}
