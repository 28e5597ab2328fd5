// Package diagnostics записывает сбои внешних источников данных.
// Журнал только пополняется и никогда не влияет на логику работы.
package diagnostics

import (
	"context"
	"smart_alarm/internal/logger"
	"time"
)

// Recorder принимает запись о сбое источника source с исходным ответом payload.
type Recorder interface {
	Record(ctx context.Context, source string, err error, payload string)
}

// LogRecorder пишет записи в структурированный лог.
type LogRecorder struct{}

func (LogRecorder) Record(_ context.Context, source string, err error, payload string) {
	logger.Log.WithFields(logger.Fields{
		"source":  source,
		"payload": payload,
	}).WithError(err).Error("Upstream data error")
}

// Store сохраняет записи диагностики.
type Store interface {
	SaveDiagnostic(ctx context.Context, source, message, payload string, at time.Time) error
}

// StoreRecorder дублирует записи в хранилище; ошибки хранилища только логируются.
type StoreRecorder struct {
	store Store
	now   func() time.Time
}

func NewStoreRecorder(store Store) *StoreRecorder {
	return &StoreRecorder{store: store, now: time.Now}
}

func (r *StoreRecorder) Record(ctx context.Context, source string, err error, payload string) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	// Запись не должна зависеть от отмены вызывающего контекста.
	ctx = context.WithoutCancel(ctx)
	if serr := r.store.SaveDiagnostic(ctx, source, msg, payload, r.now()); serr != nil {
		logger.Log.WithField("source", source).Warnf("Failed to save diagnostic: %v", serr)
	}
}

// Multi рассылает запись всем получателям по порядку.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, source string, err error, payload string) {
	for _, r := range m {
		r.Record(ctx, source, err, payload)
	}
}
