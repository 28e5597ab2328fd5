package alarm

import (
	"smart_alarm/internal/clock"
	"smart_alarm/internal/logger"
	"smart_alarm/internal/metrics"
	"sync"
	"time"
)

const (
	StatusInitial   = "CovidClock"
	StatusCreated   = "Alarm created successfully"
	StatusDuplicate = "ERROR: Alarm is already set for this time"
	StatusInPast    = "ERROR: Alarm is set in the past"
)

// Canceller прерывает ожидание ещё не сработавшего будильника.
type Canceller interface {
	Cancel(a *Alarm) bool
}

// Registry владеет набором живых будильников. Проверка и вставка при создании
// выполняются под одной блокировкой.
type Registry struct {
	mu        sync.Mutex
	alarms    []*Alarm
	status    string
	clock     clock.Clock
	canceller Canceller
	metrics   *metrics.Metrics
}

func NewRegistry(clk clock.Clock, m *metrics.Metrics) *Registry {
	return &Registry{
		status:    StatusInitial,
		clock:     clk,
		canceller: handleCanceller{},
		metrics:   m,
	}
}

// SetCanceller подключает планировщик, которому Remove передаёт отмену.
func (r *Registry) SetCanceller(c Canceller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.canceller = c
}

// Create проверяет инварианты и добавляет будильник. Планирование выполняет вызывающий.
func (r *Registry) Create(at time.Time, description string, weather, news bool) (*Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Заголовок строится в часовом поясе часов, чтобы он однозначно определял момент.
	now := r.clock.Now()
	at = at.In(now.Location()).Truncate(time.Second)
	title := Title(at)

	for _, existing := range r.alarms {
		if existing.At.Equal(at) || existing.Title == title {
			return nil, r.rejectLocked(DuplicateInstant, at)
		}
	}

	if !at.After(now) {
		return nil, r.rejectLocked(InPast, at)
	}

	a := newAlarm(at, description, weather, news, now)
	r.alarms = append(r.alarms, a)
	r.status = StatusCreated

	r.metrics.AlarmCreated("created")
	r.metrics.SetPending(len(r.alarms))
	logger.Log.WithFields(logger.Fields{
		"title":   a.Title,
		"weather": weather,
		"news":    news,
	}).Info("Alarm created")

	return a, nil
}

func (r *Registry) rejectLocked(reason RejectReason, at time.Time) error {
	err := &RejectError{Reason: reason, At: at}
	r.status = err.Message()
	r.metrics.AlarmCreated(string(reason))
	logger.Log.WithField("title", Title(at)).Infof("Alarm rejected: %s", reason)
	return err
}

// Remove убирает будильник по заголовку. Если firedNaturally равно false,
// ожидание будильника отменяется. Отсутствующий заголовок игнорируется.
func (r *Registry) Remove(title string, firedNaturally bool) {
	r.mu.Lock()
	var removed *Alarm
	for i, a := range r.alarms {
		if a.Title == title {
			removed = a
			r.alarms = append(r.alarms[:i], r.alarms[i+1:]...)
			break
		}
	}
	canceller := r.canceller
	r.metrics.SetPending(len(r.alarms))
	r.mu.Unlock()

	if removed == nil {
		return
	}

	logger.Log.WithFields(logger.Fields{
		"title": title,
		"fired": firedNaturally,
	}).Info("Alarm removed")

	if !firedNaturally {
		canceller.Cancel(removed)
	}
}

// List возвращает копию будильников в порядке создания.
func (r *Registry) List() []Alarm {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Alarm, 0, len(r.alarms))
	for _, a := range r.alarms {
		out = append(out, *a)
	}
	return out
}

// Get ищет живой будильник по заголовку.
func (r *Registry) Get(title string) (*Alarm, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.alarms {
		if a.Title == title {
			return a, true
		}
	}
	return nil, false
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alarms)
}

// Status возвращает последнее сообщение о создании будильника. Только для отображения.
func (r *Registry) Status() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

type handleCanceller struct{}

func (handleCanceller) Cancel(a *Alarm) bool {
	if a.handle == nil || !a.handle.claim(Cancelled) {
		return false
	}
	a.handle.cancel()
	return true
}
