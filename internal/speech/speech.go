// Package speech озвучивает строки объявления.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"smart_alarm/internal/logger"
	"sync"
)

// Speaker ставит строки в очередь через Say; FlushAndWait блокируется,
// пока все строки текущего объявления не будут произнесены.
type Speaker interface {
	Say(ctx context.Context, text string) error
	FlushAndWait(ctx context.Context) error
}

var errEmptyCommand = errors.New("tts command is empty")

// Command произносит каждую строку внешней программой, например espeak.
// Строка передаётся последним аргументом.
type Command struct {
	name string
	args []string

	mu      sync.Mutex
	pending []string
}

func NewCommand(argv []string) (*Command, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errEmptyCommand
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil, fmt.Errorf("tts command %q: %w", argv[0], err)
	}
	return &Command{name: argv[0], args: argv[1:]}, nil
}

func (c *Command) Say(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, text)
	return nil
}

func (c *Command) FlushAndWait(ctx context.Context) error {
	c.mu.Lock()
	lines := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, line := range lines {
		args := append(append([]string(nil), c.args...), line)
		if out, err := exec.CommandContext(ctx, c.name, args...).CombinedOutput(); err != nil {
			return fmt.Errorf("speak %q: %w (%s)", line, err, out)
		}
	}
	return nil
}

// Log выводит строки в лог вместо синтеза речи.
type Log struct {
	mu      sync.Mutex
	pending []string
}

func (l *Log) Say(_ context.Context, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, text)
	return nil
}

func (l *Log) FlushAndWait(_ context.Context) error {
	l.mu.Lock()
	lines := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, line := range lines {
		logger.WithService("speech").Info(line)
	}
	return nil
}
