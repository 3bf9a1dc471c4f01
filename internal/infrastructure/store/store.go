// Package store implements the embedded single-file JSON persistence engine.
// All mutations are serialized through one writer and reach disk via an
// atomic temp-file-plus-rename, so the file always holds a complete snapshot.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/palettekit/palette-api/internal/api/metrics"
)

const (
	defaultMaxFlushRetries = 5
	defaultFlushRetryDelay = 25 * time.Millisecond
)

var errNotLoaded = errors.New("store: Load must be called before use")

// Options tunes flush retry behaviour. Zero values fall back to defaults.
type Options struct {
	MaxFlushRetries int
	FlushRetryDelay time.Duration
}

// Store owns the JSON file and the authoritative in-memory snapshot.
//
// Reads never block behind a writer: they copy the last committed snapshot.
// Updates run one at a time; the draft only becomes the committed snapshot
// after the flush to disk succeeds.
type Store struct {
	path            string
	log             zerolog.Logger
	maxFlushRetries int
	flushRetryDelay time.Duration

	writeMu sync.Mutex   // serializes Update, held across the flush
	stateMu sync.RWMutex // guards the committed snapshot pointer
	state   *Document
}

// New creates a Store for the given file path. Call Load before first use.
func New(path string, log zerolog.Logger, opts Options) *Store {
	maxRetries := opts.MaxFlushRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxFlushRetries
	}
	delay := opts.FlushRetryDelay
	if delay <= 0 {
		delay = defaultFlushRetryDelay
	}
	return &Store{
		path:            path,
		log:             log,
		maxFlushRetries: maxRetries,
		flushRetryDelay: delay,
	}
}

// Load reads the database file into memory. A missing file silently yields a
// fresh default document. An unreadable or non-JSON file is preserved as a
// ".broken-<id>.json" sidecar before a fresh default document is written.
// Calling Load on an already loaded store is a no-op.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.snapshot() != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("store: create data directory: %w", err)
	}

	raw, readErr := os.ReadFile(s.path)
	if readErr == nil {
		var doc Document
		if jsonErr := json.Unmarshal(raw, &doc); jsonErr == nil {
			doc.normalize()
			s.setState(&doc)
			return nil
		} else {
			s.quarantine(raw, jsonErr)
		}
	} else if !errors.Is(readErr, fs.ErrNotExist) {
		s.quarantine(nil, readErr)
	}

	doc := defaultDocument(time.Now().UTC())
	if err := s.flush(ctx, doc); err != nil {
		return fmt.Errorf("store: write default document: %w", err)
	}
	s.setState(doc)
	return nil
}

// Read returns a deep, independent copy of the latest committed snapshot.
// It never waits for an in-flight update.
func (s *Store) Read(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	current := s.snapshot()
	if current == nil {
		return nil, errNotLoaded
	}
	return cloneDocument(current)
}

// Update runs mutate against a draft of the current state and persists the
// result. See UpdateResult for the full contract.
func (s *Store) Update(ctx context.Context, mutate func(doc *Document) error) error {
	_, err := UpdateResult(ctx, s, func(doc *Document) (struct{}, error) {
		return struct{}{}, mutate(doc)
	})
	return err
}

// UpdateResult is Update with a result value propagated from the mutator.
//
// Updates are serialized: a mutator always sees the effects of every
// previously completed update and never interleaves with another. If the
// mutator fails or the flush exhausts its retries, the prior snapshot stays
// authoritative in memory and on disk.
func UpdateResult[T any](ctx context.Context, s *Store, mutate func(doc *Document) (T, error)) (T, error) {
	var zero T

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.snapshot()
	if current == nil {
		return zero, errNotLoaded
	}

	draft, err := cloneDocument(current)
	if err != nil {
		return zero, fmt.Errorf("store: clone state: %w", err)
	}

	result, err := mutate(draft)
	if err != nil {
		return zero, err
	}

	now := time.Now().UTC()
	draft.Metadata.GeneratedAt = &now

	if err := s.flush(ctx, draft); err != nil {
		return zero, fmt.Errorf("store: persist state: %w", err)
	}

	s.setState(draft)
	return result, nil
}

func (s *Store) snapshot() *Document {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Store) setState(doc *Document) {
	s.stateMu.Lock()
	s.state = doc
	s.stateMu.Unlock()
}

// quarantine preserves the bytes of an unparseable database file next to the
// original path so operators can inspect what was lost.
func (s *Store) quarantine(raw []byte, cause error) {
	brokenPath := fmt.Sprintf("%s.broken-%s.json", s.path, uuid.NewString())
	if raw != nil {
		if err := os.WriteFile(brokenPath, raw, 0o644); err != nil {
			s.log.Warn().Err(err).Str("path", brokenPath).Msg("could not preserve broken database file")
		}
	}
	s.log.Warn().Err(cause).Str("brokenPath", brokenPath).Msg("invalid database file, recreating with defaults")
}

// flush serializes the document and writes it atomically, retrying transient
// filesystem errors with linear backoff up to maxFlushRetries attempts.
func (s *Store) flush(ctx context.Context, doc *Document) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	attempt := 0
	backoff := retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		if attempt >= s.maxFlushRetries {
			return 0, true
		}
		return time.Duration(attempt) * s.flushRetryDelay, false
	})

	started := time.Now()
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if writeErr := s.writeAtomic(payload); writeErr != nil {
			if isTransientFSError(writeErr) {
				metrics.StoreFlushRetriesTotal.Inc()
				s.log.Warn().Err(writeErr).
					Str("path", s.path).
					Int("attempt", attempt+1).
					Int("maxAttempts", s.maxFlushRetries).
					Msg("transient persistence error, retrying")
				return retry.RetryableError(writeErr)
			}
			return writeErr
		}
		return nil
	})
	if err != nil {
		metrics.StoreFlushFailuresTotal.Inc()
		return err
	}
	metrics.StoreFlushDuration.Observe(time.Since(started).Seconds())
	return nil
}

// writeAtomic writes the payload to a uniquely named temp file in the target
// directory and renames it over the database path. Readers of the canonical
// path can never observe a partial write.
func (s *Store) writeAtomic(payload []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%s-%s.json", filepath.Base(s.path), uuid.NewString()))
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func cloneDocument(doc *Document) (*Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var clone Document
	if err := json.Unmarshal(raw, &clone); err != nil {
		return nil, err
	}
	clone.normalize()
	return &clone, nil
}

// Transient error set mirrors the failures a busy or racing filesystem throws
// at short-lived temp files: permission flaps, busy handles, descriptor
// exhaustion, and directory races.
func isTransientFSError(err error) bool {
	for _, errno := range []syscall.Errno{syscall.EPERM, syscall.EBUSY, syscall.EMFILE, syscall.ENFILE, syscall.ENOENT} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
