package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/pkg/logger"
	"github.com/fxhedge/hedgegate/internal/pkg/metrics"
	"github.com/fxhedge/hedgegate/internal/pkg/ringbuf"
)

var (
	ErrBufferFull     = errors.New("telemetry buffer full")
	ErrRecorderClosed = errors.New("telemetry recorder closed")
)

// Recorder decouples the gateway hot path from slow stores: Emit only touches
// memory, a single goroutine drains the queue into the JSONL file and Store.
type Recorder struct {
	queue  chan model.TelemetryEvent
	buffer *ringbuf.Buffer[model.TelemetryEvent]
	store  Store
	log    *slog.Logger
	now    func() time.Time

	// 以下字段只由 drain 协程访问
	logDir  string
	day     string
	file    *os.File
	encoder *json.Encoder

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

type RecorderOptions struct {
	LogDir     string // empty disables the JSONL file
	BufferSize int
	Store      Store
}

func NewRecorder(opts RecorderOptions) (*Recorder, error) {
	size := opts.BufferSize
	if size <= 0 {
		size = 1000
	}
	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0755); err != nil {
			return nil, err
		}
	}
	r := &Recorder{
		queue:  make(chan model.TelemetryEvent, size),
		buffer: ringbuf.New[model.TelemetryEvent](size),
		store:  opts.Store,
		log:    logger.Get().With("component", "telemetry"),
		now:    time.Now,
		logDir: opts.LogDir,
		done:   make(chan struct{}),
	}

	go r.drain()
	return r, nil
}

// Emit never blocks. After Close it returns ErrRecorderClosed.
func (r *Recorder) Emit(_ context.Context, event model.TelemetryEvent) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrRecorderClosed
	}
	r.buffer.Add(event)
	select {
	case r.queue <- event:
		return nil
	default:
		metrics.TelemetryDropped.Inc()
		return ErrBufferFull
	}
}

// List prefers the persistent store and falls back to the in-memory buffer.
func (r *Recorder) List(ctx context.Context, q model.TelemetryQuery) ([]model.TelemetryEvent, error) {
	if r.store != nil {
		events, err := r.store.List(ctx, q)
		if err == nil {
			return events, nil
		}
		r.log.Warn("telemetry store list failed, serving buffer", "error", err)
	}
	return r.buffer.List(q.Matches, q.NormalizedLimit()), nil
}

func (r *Recorder) drain() {
	defer close(r.done)
	for event := range r.queue {
		if r.store != nil {
			if err := r.store.Insert(context.Background(), event); err != nil {
				r.log.Error("failed to persist telemetry event", "error", err, "endpoint", event.Endpoint)
			}
		}
		if r.logDir == "" {
			continue
		}
		if err := r.rotate(event); err != nil {
			r.log.Error("failed to open telemetry log", "error", err)
			continue
		}
		if err := r.encoder.Encode(event); err != nil {
			r.log.Error("failed to write telemetry event", "error", err)
		}
	}
	if r.file != nil {
		_ = r.file.Close()
	}
}

// rotate switches to telemetry-YYYY-MM-DD.jsonl for the event's UTC day.
// 按日命名，进程重启后追加写入
func (r *Recorder) rotate(event model.TelemetryEvent) error {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = r.now()
	}
	day := ts.UTC().Format(time.DateOnly)
	if r.file != nil && day == r.day {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(r.logDir, "telemetry-"+day+".jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if r.file != nil {
		_ = r.file.Close()
	}
	r.file, r.day, r.encoder = f, day, json.NewEncoder(f)
	return nil
}

// Close flushes queued events and closes the file. It is safe to call more
// than once, and concurrent Emit calls see ErrRecorderClosed.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()
	<-r.done
}
