// Package alarm хранит будильники и планирует их срабатывание.
package alarm

import (
	"context"
	"sync/atomic"
	"time"
)

const (
	titleLayout        = "2006-01-02 15:04"
	titleLayoutSeconds = "2006-01-02 15:04:05"
)

// State — состояние будильника: Scheduled, затем ровно одно из Fired или Cancelled.
type State int32

const (
	Scheduled State = iota
	Fired
	Cancelled
)

func (s State) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case Fired:
		return "fired"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Alarm — будильник на момент At. После создания не изменяется.
type Alarm struct {
	Title          string    `json:"title"`
	At             time.Time `json:"time"`
	Description    string    `json:"content"`
	IncludeWeather bool      `json:"weather"`
	IncludeNews    bool      `json:"news"`
	CreatedAt      time.Time `json:"created_at"`

	handle *handle
}

// Title строит заголовок будильника из момента срабатывания.
// Секунды выводятся только если они не равны нулю, поэтому разные моменты дают разные заголовки.
func Title(at time.Time) string {
	if at.Second() != 0 {
		return at.Format(titleLayoutSeconds)
	}
	return at.Format(titleLayout)
}

func newAlarm(at time.Time, description string, weather, news bool, now time.Time) *Alarm {
	return &Alarm{
		Title:          Title(at),
		At:             at,
		Description:    description,
		IncludeWeather: weather,
		IncludeNews:    news,
		CreatedAt:      now,
		handle:         newHandle(),
	}
}

// State возвращает текущее состояние будильника.
func (a *Alarm) State() State {
	if a.handle == nil {
		return Scheduled
	}
	return State(a.handle.state.Load())
}

// handle разрешает гонку между срабатыванием и отменой: переход из Scheduled
// выполняет тот, кто первым выполнил CompareAndSwap.
type handle struct {
	state  atomic.Int32
	ctx    context.Context
	cancel context.CancelFunc
}

func newHandle() *handle {
	ctx, cancel := context.WithCancel(context.Background())
	return &handle{ctx: ctx, cancel: cancel}
}

func (h *handle) claim(to State) bool {
	return h.state.CompareAndSwap(int32(Scheduled), int32(to))
}
