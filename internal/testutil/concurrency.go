package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vk/contestflow/internal/driver"
)

// SleeperShell is a shell driver for concurrency tests. Every command sleeps
// for a fixed duration and records when it ran, keyed by its joined argv.
type SleeperShell struct {
	ExecutionTimes map[string]ExecutionRecord
	mu             sync.Mutex
	sleepDuration  time.Duration
	completionChan chan<- string
}

// NewSleeperShell creates a new sleeper driver. completionChan, when not nil,
// receives each command key as it completes.
func NewSleeperShell(completionChan chan<- string, sleep time.Duration) *SleeperShell {
	return &SleeperShell{
		ExecutionTimes: make(map[string]ExecutionRecord),
		sleepDuration:  sleep,
		completionChan: completionChan,
	}
}

// Run implements driver.ShellDriver.
func (s *SleeperShell) Run(ctx context.Context, cmd driver.Command) (driver.Result, error) {
	key := strings.Join(cmd.Argv, " ")

	startTime := time.Now()
	select {
	case <-time.After(s.sleepDuration):
	case <-ctx.Done():
		return driver.Result{ReturnCode: -1}, ctx.Err()
	}
	endTime := time.Now()

	s.mu.Lock()
	s.ExecutionTimes[key] = ExecutionRecord{Start: startTime, End: endTime}
	s.mu.Unlock()

	if s.completionChan != nil {
		s.completionChan <- key
	}
	return driver.Result{Stdout: key + "\n"}, nil
}

// Record returns the execution record for key.
func (s *SleeperShell) Record(key string) (ExecutionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.ExecutionTimes[key]
	return r, ok
}
