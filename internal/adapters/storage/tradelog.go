package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alejandrodnm/polytrack/internal/domain"
	"github.com/google/uuid"
)

// TradeLog appends newline-delimited JSON trade events to a file. A position
// is logged twice over its life — OPENED and SETTLED — so readers must fold
// by position id and keep the latest event (see FoldEvents).
type TradeLog struct {
	path string
	file *os.File
	w    *bufio.Writer
}

// NewTradeLog returns a trade log appending to path. The file is opened
// lazily on first Append.
func NewTradeLog(path string) *TradeLog {
	return &TradeLog{path: path}
}

func (l *TradeLog) ensureOpen() error {
	if l.file != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	l.file = f
	l.w = bufio.NewWriter(f)
	return nil
}

// Append writes one event as a single JSON line and flushes it so tailers
// see the record immediately.
func (l *TradeLog) Append(t domain.TradeEventType, pos domain.Position) error {
	ev := domain.TradeEvent{
		EventID:  uuid.NewString(),
		Type:     t,
		LoggedAt: time.Now().UTC(),
		Position: pos,
	}

	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("storage.TradeLog.Append: marshal: %w", err)
	}

	if err := l.ensureOpen(); err != nil {
		return fmt.Errorf("storage.TradeLog.Append: open %q: %w", l.path, err)
	}
	if _, err := l.w.Write(b); err != nil {
		return fmt.Errorf("storage.TradeLog.Append: %w", err)
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("storage.TradeLog.Append: %w", err)
	}
	return l.w.Flush()
}

// Close flushes buffered data and closes the file.
func (l *TradeLog) Close() error {
	if l.file == nil {
		return nil
	}
	if err := l.w.Flush(); err != nil {
		l.file.Close()
		return err
	}
	err := l.file.Close()
	l.file = nil
	l.w = nil
	return err
}

// FoldEvents reads a trade log stream and returns the latest event per
// position id, in first-seen order. Malformed lines are skipped.
func FoldEvents(r io.Reader) ([]domain.TradeEvent, error) {
	byID := make(map[string]int)
	var events []domain.TradeEvent

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev domain.TradeEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		if i, ok := byID[ev.Position.ID]; ok {
			events[i] = ev
			continue
		}
		byID[ev.Position.ID] = len(events)
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("storage.FoldEvents: %w", err)
	}
	return events, nil
}
