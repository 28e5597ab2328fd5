package worker

import (
	"context"
	"smart_alarm/internal/alarm"
	"smart_alarm/internal/logger"
)

// Announcer озвучивает сработавший будильник и возвращает произнесённые строки.
type Announcer interface {
	Announce(ctx context.Context, a *alarm.Alarm) []string
}

// Remover убирает будильник из реестра.
type Remover interface {
	Remove(title string, firedNaturally bool)
}

// Worker обрабатывает сработавшие будильники: объявление, затем удаление из реестра.
type Worker struct {
	announcer Announcer
	registry  Remover
}

func NewWorker(announcer Announcer, registry Remover) *Worker {
	return &Worker{announcer: announcer, registry: registry}
}

// HandleTask не прерывается: начатое объявление всегда договаривается до конца.
func (w *Worker) HandleTask(a *alarm.Alarm) error {
	ctx := context.Background()

	log := logger.Log.WithField("title", a.Title)
	log.Info("Announcing alarm")

	lines := w.announcer.Announce(ctx, a)
	w.registry.Remove(a.Title, true)

	log.Infof("Processed alarm, %d lines spoken", len(lines))
	return nil
}
