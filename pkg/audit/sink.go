package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// FileSink is an async audit sink with buffered JSONL writes. Events are
// queued on a channel and appended to the log file by a background
// goroutine, so emitting never blocks a pipeline worker on disk I/O.
type FileSink struct {
	path         string
	entryChan    chan Event
	flushChan    chan chan error
	flushTicker  *time.Ticker
	batchSize    int
	flushTimeout time.Duration
	wg           sync.WaitGroup
	done         chan struct{}
	mu           sync.Mutex
	closed       bool
}

// FileSinkConfig configures a FileSink.
type FileSinkConfig struct {
	// Path is the JSONL file events are appended to.
	Path string
	// BufferSize is the channel capacity (default: 1000).
	BufferSize int
	// BatchSize is the max events per batch write (default: 100).
	BatchSize int
	// FlushInterval is how often to flush buffered events (default: 2s).
	FlushInterval time.Duration
}

// NewFileSink creates a new async JSONL audit sink.
func NewFileSink(cfg FileSinkConfig) (*FileSink, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("audit: FileSink requires a path")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}

	// Fail fast on an unwritable log location.
	f, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("audit: opening event log: %w", err)
	}
	f.Close()

	sink := &FileSink{
		path:         cfg.Path,
		entryChan:    make(chan Event, cfg.BufferSize),
		flushChan:    make(chan chan error),
		flushTicker:  time.NewTicker(cfg.FlushInterval),
		batchSize:    cfg.BatchSize,
		flushTimeout: 5 * time.Second,
		done:         make(chan struct{}),
	}

	sink.wg.Add(1)
	go sink.run()

	return sink, nil
}

// Emit queues an event for async persistence.
// If the buffer is full, the event is dropped and a warning goes to stderr.
func (s *FileSink) Emit(invoiceID, stage, status, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	select {
	case s.entryChan <- NewEvent(invoiceID, stage, status, message):
	default:
		fmt.Fprintf(os.Stderr, "[audit] Buffer full, dropping event: %s/%s\n", invoiceID, stage)
	}
}

// Flush blocks until all queued events are written.
func (s *FileSink) Flush() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	select {
	case s.flushChan <- errChan:
		select {
		case err := <-errChan:
			return err
		case <-time.After(s.flushTimeout):
			return fmt.Errorf("audit: flush timeout after %v", s.flushTimeout)
		}
	case <-time.After(100 * time.Millisecond):
		// Background goroutine is busy writing; its batch will land shortly.
		return nil
	}
}

// Close shuts down the sink gracefully, draining queued events.
func (s *FileSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	s.flushTicker.Stop()
	s.wg.Wait()

	return nil
}

// run is the background goroutine that batches and appends events.
func (s *FileSink) run() {
	defer s.wg.Done()

	batch := make([]Event, 0, s.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := s.writeBatch(batch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[audit] Failed to write batch of %d events: %v\n", len(batch), err)
		}
		batch = batch[:0]
		return err
	}

	drain := func() {
		flush()
		for {
			select {
			case e := <-s.entryChan:
				batch = append(batch, e)
				if len(batch) >= s.batchSize {
					flush()
				}
			default:
				flush()
				return
			}
		}
	}

	for {
		select {
		case e := <-s.entryChan:
			batch = append(batch, e)
			if len(batch) >= s.batchSize {
				flush()
			}

		case <-s.flushTicker.C:
			flush()

		case errChan := <-s.flushChan:
			// Pull whatever is already queued so Flush sees a complete log.
			for {
				select {
				case e := <-s.entryChan:
					batch = append(batch, e)
				default:
					goto doFlush
				}
			}
		doFlush:
			errChan <- flush()

		case <-s.done:
			drain()
			return
		}
	}
}

// writeBatch appends a batch of events to the JSONL file.
func (s *FileSink) writeBatch(batch []Event) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, e := range batch {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

// MemorySink collects events in memory for tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(invoiceID, stage, status, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, NewEvent(invoiceID, stage, status, message))
}

func (s *MemorySink) Flush() error { return nil }
func (s *MemorySink) Close() error { return nil }

// Events returns a copy of all recorded events in emission order.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// ByStage returns recorded events matching the given stage.
func (s *MemorySink) ByStage(stage string) []Event {
	var out []Event
	for _, e := range s.Events() {
		if e.Stage == stage {
			out = append(out, e)
		}
	}
	return out
}
