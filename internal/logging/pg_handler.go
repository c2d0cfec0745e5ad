package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/sghss/sghss-api/internal/models"
)

const (
	flushSize     = 50
	flushInterval = 5 * time.Second
)

// LogStore is where PGHandler writes its batches.
type LogStore interface {
	Insert(ctx context.Context, logs []models.SystemLog) error
}

// pgSink is shared by a PGHandler and every handler derived from it.
type pgSink struct {
	store  LogStore
	mu     sync.Mutex
	buffer []models.SystemLog
	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
}

// PGHandler is an slog.Handler that batches ERROR+ records into the
// system_logs table. Well-known attributes get their own columns; the rest
// land in the jsonb extra column.
type PGHandler struct {
	sink  *pgSink
	attrs []slog.Attr
}

func NewPGHandler(store LogStore) *PGHandler {
	sink := &pgSink{
		store:  store,
		buffer: make([]models.SystemLog, 0, flushSize),
		ticker: time.NewTicker(flushInterval),
		done:   make(chan struct{}),
	}
	sink.wg.Add(1)
	go sink.flushLoop()
	return &PGHandler{sink: sink}
}

func (s *pgSink) flushLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ticker.C:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *pgSink) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]models.SystemLog, 0, flushSize)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.Insert(ctx, batch); err != nil {
		// Logged below ERROR so the failure is not fed back into this handler.
		slog.Warn("failed to flush system logs", "error", err, "count", len(batch))
	}
}

func (s *pgSink) add(entry models.SystemLog) {
	s.mu.Lock()
	s.buffer = append(s.buffer, entry)
	full := len(s.buffer) >= flushSize
	s.mu.Unlock()

	if full {
		go s.flush()
	}
}

// Stop flushes what is buffered and stops the background loop.
func (h *PGHandler) Stop() {
	h.sink.ticker.Stop()
	close(h.sink.done)
	h.sink.wg.Wait()
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	extra := make(map[string]any)
	collect := func(a slog.Attr) bool {
		applyAttr(&entry, extra, a)
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	record.Attrs(collect)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	h.sink.add(entry)
	return nil
}

func applyAttr(entry *models.SystemLog, extra map[string]any, a slog.Attr) {
	v := a.Value.Resolve()
	switch a.Key {
	case "request_id":
		entry.RequestID = v.String()
	case "user_id":
		s := v.String()
		entry.UserID = &s
	case "action":
		entry.Action = v.String()
	case "path":
		entry.Path = v.String()
	case "error":
		entry.Error = v.String()
	default:
		if v.Kind() == slog.KindAny {
			if err, ok := v.Any().(error); ok {
				extra[a.Key] = err.Error()
				return
			}
		}
		extra[a.Key] = v.Any()
	}
}

// WithAttrs keeps the attributes for every later record. Groups are
// flattened.
func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{sink: h.sink, attrs: merged}
}

func (h *PGHandler) WithGroup(string) slog.Handler {
	return h
}
