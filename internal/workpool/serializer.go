package workpool

import (
	"fmt"
	"log/slog"
	"sync"
)

// Serializer runs tasks submitted under the same key one at a time, in
// arrival order. Tasks under different keys run concurrently.
type Serializer struct {
	mu     sync.Mutex
	queues map[string][]func()
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewSerializer creates an empty serializer
func NewSerializer(logger *slog.Logger) *Serializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Serializer{
		queues: make(map[string][]func()),
		logger: logger,
	}
}

// Submit queues fn behind any pending tasks for key
func (s *Serializer) Submit(key string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue, running := s.queues[key]
	s.queues[key] = append(queue, fn)
	if running {
		return
	}

	s.wg.Add(1)
	go s.drain(key)
}

// Pending returns the number of keys with queued or running tasks
func (s *Serializer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues)
}

// Wait blocks until every submitted task has finished
func (s *Serializer) Wait() {
	s.wg.Wait()
}

func (s *Serializer) drain(key string) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		queue := s.queues[key]
		if len(queue) == 0 {
			delete(s.queues, key)
			s.mu.Unlock()
			return
		}
		fn := queue[0]
		s.queues[key] = queue[1:]
		s.mu.Unlock()

		s.run(key, fn)
	}
}

// the entry for key stays in the map while a task runs so that Submit sees
// the key as busy
func (s *Serializer) run(key string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic", "key", key, "error", fmt.Sprint(r))
		}
	}()
	fn()
}
