// Package cache holds the most recent successful shortening result,
// its self-expiring copy acknowledgment, and a ristretto-backed lookup
// of recently shortened URLs. The recent lookup is advisory only: it
// lets the shell tell the user a URL was shortened before, but never
// suppresses a submission's network call.
package cache

import (
	"errors"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"

	"qlink-client/config"
	"qlink-client/model"
)

// ErrNoResult is returned by Copy when nothing has been shortened yet.
var ErrNoResult = errors.New("no shorten result to copy")

// Clipboard writes text to the platform clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// ResultCache owns at most one ShortenResult at a time. Producing a new
// result replaces the previous one and cancels its pending copy-reset
// timer.
type ResultCache struct {
	mu         sync.Mutex
	current    *model.ShortenResult
	resetTimer *time.Timer
	ackWindow  time.Duration
	clip       Clipboard

	recent    *ristretto.Cache
	recentTTL time.Duration
}

// New creates a result cache. ackWindow is how long a copy
// acknowledgment stays set (the product uses 2000ms); clip may be nil
// to use the platform clipboard.
func New(cfg config.RecentConfig, ackWindow time.Duration, clip Clipboard) (*ResultCache, error) {
	if ackWindow <= 0 {
		ackWindow = 2000 * time.Millisecond
	}
	if clip == nil {
		clip = systemClipboard{}
	}

	c := &ResultCache{
		ackWindow: ackWindow,
		clip:      clip,
		recentTTL: time.Duration(cfg.TTLSeconds) * time.Second,
	}

	if cfg.Enabled {
		maxCost := int64(cfg.MaxSizeMB) * 1024 * 1024
		recent, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: int64(cfg.CounterSize),
			MaxCost:     maxCost,
			BufferItems: 64,
		})
		if err != nil {
			return nil, err
		}
		c.recent = recent
	}

	return c, nil
}

// Put records a new shortening result, replacing any prior one. The
// previous result's pending copy-reset timer is cancelled so it can
// never clear the new result's acknowledgment.
func (c *ResultCache) Put(originalURL, shortURL string) {
	c.mu.Lock()
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
	c.current = &model.ShortenResult{OriginalURL: originalURL, ShortURL: shortURL}
	c.mu.Unlock()

	if c.recent != nil {
		c.recent.SetWithTTL(originalURL, shortURL, int64(len(originalURL)+len(shortURL)), c.recentTTL)
	}
}

// Current returns a snapshot of the present result, if any.
func (c *ResultCache) Current() (model.ShortenResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return model.ShortenResult{}, false
	}
	return *c.current, true
}

// Lookup reports whether originalURL was shortened recently and to
// what. Advisory; submissions always go to the network regardless.
func (c *ResultCache) Lookup(originalURL string) (string, bool) {
	if c.recent == nil {
		return "", false
	}
	v, ok := c.recent.Get(originalURL)
	if !ok {
		return "", false
	}
	short, ok := v.(string)
	return short, ok
}

// Copy writes the current short URL to the clipboard, marks the result
// copied, and schedules the acknowledgment to clear one ack window
// later. Copying again before the window elapses restarts it from the
// new copy instant.
func (c *ResultCache) Copy() error {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return ErrNoResult
	}
	shortURL := c.current.ShortURL
	c.mu.Unlock()

	// Clipboard write happens outside the lock; it is the only
	// suspension point here.
	if err := c.clip.WriteAll(shortURL); err != nil {
		log.Warn().Err(err).Msg("Clipboard write failed")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.ShortURL != shortURL {
		// Result replaced while the clipboard call ran; nothing to acknowledge.
		return nil
	}

	copiedAt := time.Now()
	c.current.Copied = true
	c.current.CopiedAt = copiedAt

	if c.resetTimer != nil {
		c.resetTimer.Stop()
	}
	c.resetTimer = time.AfterFunc(c.ackWindow, func() { c.expireCopy(copiedAt) })
	return nil
}

// expireCopy clears the acknowledgment set at copiedAt. A later copy
// moved CopiedAt forward, so a stale timer that lost the Stop race
// leaves the newer acknowledgment alone.
func (c *ResultCache) expireCopy(copiedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || !c.current.CopiedAt.Equal(copiedAt) {
		return
	}
	c.current.Copied = false
}

// Close releases the recent-results cache and any pending timer.
func (c *ResultCache) Close() {
	c.mu.Lock()
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
	c.mu.Unlock()

	if c.recent != nil {
		c.recent.Close()
	}
}
