// Package activity is the fire-and-forget activity log. Entries are
// queued on a channel and pushed to a capped Redis list by a background
// goroutine; nothing here ever fails the request that emitted the entry.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/youyuan/match-engine/internal/cache"
)

// Entry types emitted by the engine.
const (
	TypeViewRecommendations = "view_recommendations"
	TypeMatchAction         = "match_action"
)

const (
	queueSize  = 256
	entryTTL   = 7 * 24 * time.Hour
	pushWindow = 5 * time.Second
)

// Entry is one activity record.
type Entry struct {
	UserID    uint64         `json:"user_id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Log consumes entries asynchronously. Record never blocks and never
// returns an error; a full queue drops the entry with a warning.
type Log struct {
	cache   *cache.RedisCache
	logger  *slog.Logger
	listCap int

	entries chan Entry
	done    chan struct{}
	once    sync.Once

	mu     sync.RWMutex
	closed bool
}

// NewLog starts the background consumer.
func NewLog(c *cache.RedisCache, logger *slog.Logger, listCap int) *Log {
	if listCap <= 0 {
		listCap = 1000
	}
	l := &Log{
		cache:   c,
		logger:  logger,
		listCap: listCap,
		entries: make(chan Entry, queueSize),
		done:    make(chan struct{}),
	}
	go l.consume()
	return l
}

// Record enqueues an activity entry. Fire-and-forget: a stopped or
// saturated log silently drops.
func (l *Log) Record(userID uint64, entryType string, payload map[string]any) {
	entry := Entry{
		UserID:    userID,
		Type:      entryType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.entries <- entry:
	default:
		l.logger.Warn("activity queue full, dropping entry", "type", entryType, "user_id", userID)
	}
}

// Close stops the consumer after draining queued entries.
func (l *Log) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()

		close(l.entries)
		<-l.done
	})
}

func (l *Log) consume() {
	defer close(l.done)
	for entry := range l.entries {
		if err := l.push(entry); err != nil {
			// swallowed: activity logging must never surface failures
			l.logger.Warn("activity log push failed", "type", entry.Type, "err", err)
		}
	}
}

func (l *Log) push(entry Entry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal activity entry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pushWindow)
	defer cancel()

	key := l.keyFor(entry.UserID)
	pipe := l.cache.Client.TxPipeline()
	pipe.LPush(ctx, key, body)
	pipe.LTrim(ctx, key, 0, int64(l.listCap-1))
	pipe.Expire(ctx, key, entryTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (l *Log) keyFor(userID uint64) string {
	return fmt.Sprintf("activity:log:%d", userID)
}
