// Package monitor implements the ingestion monitor: it watches the inbox
// directory for new invoice documents and dispatches each exactly once into
// the processing pipeline, bounded by a fixed-size worker pool.
package monitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/semaphore"

	"github.com/auditkit/invaudit/pkg/audit"
	"github.com/auditkit/invaudit/pkg/hashstore"
	"github.com/auditkit/invaudit/pkg/invoice"
	"github.com/auditkit/invaudit/pkg/logging"
	"github.com/auditkit/invaudit/pkg/metrics"
)

// Processor runs the pipeline for one document. Satisfied by an adapter
// around pipeline.Pipeline.
type Processor interface {
	Process(ctx context.Context, path string) error
}

// ProcessFunc adapts a function to the Processor interface.
type ProcessFunc func(ctx context.Context, path string) error

func (f ProcessFunc) Process(ctx context.Context, path string) error { return f(ctx, path) }

// Options configures a Monitor.
type Options struct {
	// Dir is the inbox directory to watch (non-recursive).
	Dir string

	// Extensions is the recognized document extension set. Matching is
	// case-insensitive; sidecar .meta.json files never match.
	Extensions []string

	// Debounce is how long to wait after a create event before reading
	// the file. Best-effort protection against slow writers.
	Debounce time.Duration

	// Workers bounds how many documents are processed concurrently.
	Workers int
}

// Monitor watches one inbox and feeds the pipeline. The in-flight path set
// and the processed-hash store are the only state shared between workers.
type Monitor struct {
	opts      Options
	processor Processor
	hashes    hashstore.Store
	events    audit.Sink
	logger    logging.Logger

	sem *semaphore.Weighted

	mu       sync.Mutex
	inFlight map[string]struct{}

	wg      sync.WaitGroup
	watcher *fsnotify.Watcher
}

// New creates a monitor. The hash store provides content de-duplication
// across restarts; processor and hashes may not be nil.
func New(opts Options, processor Processor, hashes hashstore.Store, events audit.Sink, logger logging.Logger) *Monitor {
	if opts.Workers <= 0 {
		opts.Workers = 5
	}
	if opts.Debounce <= 0 {
		opts.Debounce = time.Second
	}
	if events == nil {
		events = audit.NopSink{}
	}
	return &Monitor{
		opts:      opts,
		processor: processor,
		hashes:    hashes,
		events:    events,
		logger:    logger.With(logging.F("component", "monitor")),
		sem:       semaphore.NewWeighted(int64(opts.Workers)),
		inFlight:  make(map[string]struct{}),
	}
}

// Start watches the inbox until ctx is cancelled. Files already sitting in
// the inbox at startup are submitted first, then create events drive
// ingestion. Start blocks; run it on its own goroutine if needed.
func (m *Monitor) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	m.watcher = watcher
	defer watcher.Close()

	if err := watcher.Add(m.opts.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", m.opts.Dir, err)
	}
	m.logger.Info("Watching inbox",
		logging.F("dir", m.opts.Dir),
		logging.F("workers", m.opts.Workers))

	m.submitExisting(ctx)

	for {
		select {
		case <-ctx.Done():
			m.wg.Wait()
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				m.wg.Wait()
				return nil
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			path := ev.Name
			if !m.recognized(path) {
				continue
			}
			m.wg.Add(1)
			go func() {
				defer m.wg.Done()
				// Debounce before acting so slow writers can finish.
				select {
				case <-ctx.Done():
					return
				case <-time.After(m.opts.Debounce):
				}
				m.Submit(ctx, path)
			}()
		case err, ok := <-watcher.Errors:
			if !ok {
				m.wg.Wait()
				return nil
			}
			m.logger.Error("Watcher error", logging.Err(err))
		}
	}
}

// submitExisting picks up files already in the inbox at startup.
func (m *Monitor) submitExisting(ctx context.Context) {
	entries, err := os.ReadDir(m.opts.Dir)
	if err != nil {
		m.logger.Error("Reading inbox failed", logging.Err(err))
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(m.opts.Dir, e.Name())
		if m.recognized(path) {
			m.Submit(ctx, path)
		}
	}
}

// recognized filters directories, sidecars and unknown extensions.
func (m *Monitor) recognized(path string) bool {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return false
	}
	if strings.HasSuffix(strings.ToLower(path), ".meta.json") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range m.opts.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Submit dispatches one document to the worker pool. It returns false when
// the path is already in flight; the duplicate event is dropped. Submit
// does not block on worker availability; excess work queues on goroutines
// waiting for the pool semaphore.
func (m *Monitor) Submit(ctx context.Context, path string) bool {
	m.mu.Lock()
	if _, busy := m.inFlight[path]; busy {
		m.mu.Unlock()
		m.logger.Debug("Path already in flight, ignoring", logging.F("path", path))
		return false
	}
	m.inFlight[path] = struct{}{}
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			m.mu.Lock()
			delete(m.inFlight, path)
			m.mu.Unlock()
		}()

		if err := m.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer m.sem.Release(1)

		m.runWorker(ctx, path)
	}()
	return true
}

// runWorker processes one document. Panics are contained here; one
// misbehaving invoice must never halt ingestion of others.
func (m *Monitor) runWorker(ctx context.Context, path string) {
	id := invoice.IDFromPath(path)
	logger := m.logger.With(logging.F("invoice_id", id))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Worker panic recovered", logging.F("panic", fmt.Sprint(r)))
			m.events.Emit(id, audit.StageWorkflow, audit.StatusError, fmt.Sprintf("panic: %v", r))
		}
	}()

	metrics.InFlightWorkers.Inc()
	defer metrics.InFlightWorkers.Dec()

	hash, err := hashstore.HashFile(path)
	if err != nil {
		logger.Error("Hashing file failed", logging.Err(err))
		m.events.Emit(id, audit.StageDetect, audit.StatusError, err.Error())
		return
	}

	seen, err := m.hashes.Contains(ctx, hash)
	if err != nil {
		logger.Error("Hash store lookup failed", logging.Err(err))
		m.events.Emit(id, audit.StageDuplicate, audit.StatusError, err.Error())
		return
	}
	if seen {
		logger.Info("Duplicate content, skipping", logging.F("hash", hash))
		m.events.Emit(id, audit.StageDuplicate, audit.StatusSkipped, "content hash already processed")
		metrics.DuplicatesSkipped.Inc()
		return
	}

	m.events.Emit(id, audit.StageDetect, audit.StatusCompleted, path)
	if err := m.processor.Process(ctx, path); err != nil {
		// The hash is deliberately not recorded: a fixed copy of the
		// same content must get another chance.
		logger.Error("Pipeline failed", logging.Err(err))
		return
	}

	if err := m.hashes.Add(ctx, hash); err != nil {
		logger.Error("Recording processed hash failed", logging.Err(err))
	}
}

// Wait blocks until every submitted document has finished processing.
func (m *Monitor) Wait() {
	m.wg.Wait()
}
