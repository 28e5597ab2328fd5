package alarm

import (
	"context"
	"errors"
	"smart_alarm/internal/clock"
	"smart_alarm/internal/logger"
	"smart_alarm/internal/metrics"
	"sync"
)

var ErrSchedulerStopped = errors.New("scheduler stopped")

// Dispatcher получает сработавшие будильники. Планировщик не ждёт озвучивания.
type Dispatcher interface {
	Dispatch(ctx context.Context, a *Alarm) error
}

// DispatcherFunc позволяет использовать функцию как Dispatcher.
type DispatcherFunc func(ctx context.Context, a *Alarm) error

func (f DispatcherFunc) Dispatch(ctx context.Context, a *Alarm) error {
	return f(ctx, a)
}

// Scheduler запускает для каждого будильника отдельную горутину,
// которая ждёт момента срабатывания или отмены.
type Scheduler struct {
	clock      clock.Clock
	dispatcher Dispatcher
	metrics    *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

func NewScheduler(clk clock.Clock, d Dispatcher, m *metrics.Metrics) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		clock:      clk,
		dispatcher: d,
		metrics:    m,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Schedule начинает ожидание будильника в отдельной горутине.
func (s *Scheduler) Schedule(a *Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSchedulerStopped
	}
	if a.handle == nil {
		a.handle = newHandle()
	}

	s.wg.Add(1)
	go s.run(a)
	return nil
}

func (s *Scheduler) run(a *Alarm) {
	defer s.wg.Done()

	log := logger.WithService("scheduler").WithField("title", a.Title)

	waitCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(a.handle.ctx, cancel)
	defer stop()

	log.Debug("Waiting for alarm")
	if err := s.clock.WaitUntil(waitCtx, a.At); err != nil {
		log.Debugf("Wait interrupted: %v", err)
		return
	}

	if !a.handle.claim(Fired) {
		log.Debug("Alarm cancelled before firing")
		return
	}
	s.metrics.AlarmFired()
	log.Info("Alarm fired")

	// Сработавший будильник передаётся даже во время Stop.
	if err := s.dispatcher.Dispatch(context.WithoutCancel(s.ctx), a); err != nil {
		log.Errorf("Fired alarm dropped: %v", err)
	}
}

// Cancel отменяет ожидание. Возвращает false, если будильник уже сработал или отменён.
func (s *Scheduler) Cancel(a *Alarm) bool {
	if !(handleCanceller{}).Cancel(a) {
		return false
	}
	s.metrics.AlarmCancelled()
	logger.Log.WithField("title", a.Title).Info("Alarm cancelled")
	return true
}

// Stop прерывает все ожидания и дожидается завершения горутин,
// в том числе передачи уже сработавших будильников.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// Wait дожидается завершения всех запущенных ожиданий.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
