// Package clock предоставляет источник времени и ожидание до заданного момента.
package clock

import (
	"context"
	"time"
)

// Clock возвращает текущее время и умеет блокироваться до момента at
// либо до отмены ctx.
type Clock interface {
	Now() time.Time
	WaitUntil(ctx context.Context, at time.Time) error
}

// Real использует системное время и time.Timer.
type Real struct{}

var _ Clock = Real{}

func (Real) Now() time.Time {
	return time.Now()
}

// WaitUntil возвращает nil, когда наступил момент at, или ctx.Err() при отмене.
func (c Real) WaitUntil(ctx context.Context, at time.Time) error {
	timer := time.NewTimer(at.Sub(c.Now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timer.C:
			now := c.Now()
			if now.Before(at) {
				// Time drift. Sleep again.
				timer.Reset(at.Sub(now))
				continue
			}
			return nil
		}
	}
}
