package queue

import (
	"context"
	"errors"
	"smart_alarm/internal/logger"
	"sync"
)

var ErrClosed = errors.New("queue closed")

// Queue — очередь задач в памяти процесса с фиксированным числом обработчиков.
type Queue[T any] struct {
	name string
	ch   chan T

	mu     sync.RWMutex
	closed bool

	wg sync.WaitGroup
}

func New[T any](name string, size int) *Queue[T] {
	return &Queue[T]{
		name: name,
		ch:   make(chan T, size),
	}
}

// Publish кладёт задачу в очередь; блокируется, пока в буфере нет места.
func (q *Queue[T]) Publish(ctx context.Context, v T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}

	select {
	case q.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume запускает workers обработчиков. Ошибки обработчика логируются, повтора нет.
func (q *Queue[T]) Consume(workers int, handler func(T) error) {
	if workers < 1 {
		workers = 1
	}

	logger.Log.Infof("Consuming queue: %s (workers: %d)", q.name, workers)

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for v := range q.ch {
				if err := handler(v); err != nil {
					logger.Log.WithField("queue", q.name).Errorf("Task failed: %v", err)
				}
			}
		}()
	}
}

// Close запрещает публикацию; обработчики доделывают оставшиеся задачи.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

// Wait дожидается завершения обработчиков после Close.
func (q *Queue[T]) Wait() {
	q.wg.Wait()
}
