package model

import "time"

// ShortenResult is the most recent successful shortening outcome.
// Copied auto-resets to false exactly one copy-ack window after
// CopiedAt; a subsequent copy restarts the window.
type ShortenResult struct {
	OriginalURL string    `json:"originalUrl"`
	ShortURL    string    `json:"shortUrl"`
	Copied      bool      `json:"copied"`
	CopiedAt    time.Time `json:"copiedAt,omitempty"`
}
