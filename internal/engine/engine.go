// Package engine связывает реестр будильников, планировщик, очередь объявлений
// и ленту уведомлений в единый API для веб-слоя.
package engine

import (
	"context"
	"errors"
	"smart_alarm/internal/alarm"
	"smart_alarm/internal/clock"
	"smart_alarm/internal/feed"
	"smart_alarm/internal/fetcher"
	"smart_alarm/internal/metrics"
	"smart_alarm/internal/models"
	"smart_alarm/internal/queue"
	"smart_alarm/internal/worker"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Outcome — результат CreateAlarm.
type Outcome string

const (
	Created          Outcome = "created"
	DuplicateInstant Outcome = Outcome(alarm.DuplicateInstant)
	InPast           Outcome = Outcome(alarm.InPast)
)

const defaultQueueSize = 64

type Options struct {
	Clock            clock.Clock
	Announcer        worker.Announcer
	Feed             *feed.Cache
	Metrics          *metrics.Metrics
	PollInterval     time.Duration
	RefreshPerMinute int
	QueueSize        int
}

type Engine struct {
	registry  *alarm.Registry
	scheduler *alarm.Scheduler
	feed      *feed.Cache
	fired     *queue.Queue[*alarm.Alarm]
	worker    *worker.Worker
	limiter   *rate.Limiter

	pollInterval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}

	e := &Engine{
		feed:         opts.Feed,
		fired:        queue.New[*alarm.Alarm]("fired_alarms", opts.QueueSize),
		pollInterval: opts.PollInterval,
		cancel:       func() {},
	}

	e.registry = alarm.NewRegistry(opts.Clock, opts.Metrics)
	e.scheduler = alarm.NewScheduler(opts.Clock, alarm.DispatcherFunc(e.dispatch), opts.Metrics)
	e.registry.SetCanceller(e.scheduler)
	e.worker = worker.NewWorker(opts.Announcer, e.registry)

	if opts.RefreshPerMinute > 0 {
		e.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RefreshPerMinute)), 1)
	} else {
		e.limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return e
}

func (e *Engine) dispatch(ctx context.Context, a *alarm.Alarm) error {
	return e.fired.Publish(ctx, a)
}

// Run запускает единственный обработчик объявлений и фоновое обновление ленты.
func (e *Engine) Run(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)

	e.fired.Consume(1, e.worker.HandleTask)

	if e.feed != nil && e.pollInterval > 0 {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			fetcher.StartPolling(ctx, e.feed, e.pollInterval)
		}()
	}
}

// Shutdown прерывает ожидающие будильники и дожидается текущего объявления.
func (e *Engine) Shutdown() {
	e.scheduler.Stop()
	e.cancel()
	e.wg.Wait()
	e.fired.Close()
	e.fired.Wait()
}

// CreateAlarm создаёт будильник и сразу ставит его в планировщик.
func (e *Engine) CreateAlarm(at time.Time, description string, weather, news bool) (Outcome, error) {
	a, err := e.registry.Create(at, description, weather, news)
	if err != nil {
		if reason := alarm.ReasonOf(err); reason != "" {
			return Outcome(reason), nil
		}
		return "", err
	}

	if err := e.scheduler.Schedule(a); err != nil {
		e.registry.Remove(a.Title, false)
		return "", err
	}
	return Created, nil
}

func (e *Engine) CancelAlarm(title string) {
	e.registry.Remove(title, false)
}

func (e *Engine) ListAlarms() []alarm.Alarm {
	return e.registry.List()
}

// Status — последнее сообщение о создании будильника.
func (e *Engine) Status() string {
	return e.registry.Status()
}

var errNoFeed = errors.New("notification feed is not configured")

func (e *Engine) RefreshNotifications(ctx context.Context) (int, error) {
	if e.feed == nil {
		return 0, errNoFeed
	}
	return e.feed.Refresh(ctx), nil
}

// RefreshThrottled обновляет ленту не чаще заданного лимита; лишние вызовы пропускаются.
func (e *Engine) RefreshThrottled(ctx context.Context) int {
	if e.feed == nil || !e.limiter.Allow() {
		return 0
	}
	return e.feed.Refresh(ctx)
}

func (e *Engine) DismissNotification(title string) {
	if e.feed == nil {
		return
	}
	e.feed.Dismiss(title)
}

func (e *Engine) ListNotifications() []models.NotificationItem {
	if e.feed == nil {
		return nil
	}
	return e.feed.List()
}
