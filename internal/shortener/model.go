package shortener

import (
	"time"

	"github.com/ajith05/url-shortener/internal/canon"
)

// Link is one stored mapping. Records are append-only: once inserted, a code
// keeps resolving to the same tuple.
type Link struct {
	ID        int64
	Code      string
	Tuple     canon.Tuple
	CreatedAt time.Time
}
