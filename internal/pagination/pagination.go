// Package pagination implements keyset paging over descending post ids.
//
// Callers fetch Overfetch(limit) rows strictly below the decoded cursor and
// hand them to Slice, which trims the page and derives hasMore and the next
// cursor.
package pagination

import (
	"encoding/base64"
	"strconv"
)

const (
	MinLimit     = 1
	MaxLimit     = 100
	DefaultLimit = 20
)

// Page is the pagination block returned beside every feed page.
type Page struct {
	NextCursor *string `json:"nextCursor,omitempty"`
	HasMore    bool    `json:"hasMore"`
}

// EncodeCursor turns a post id into an opaque cursor.
func EncodeCursor(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

// DecodeCursor returns the id a cursor points at. An empty, malformed or
// non-positive cursor decodes to 0, meaning "from the beginning".
func DecodeCursor(cursor string) int64 {
	if cursor == "" {
		return 0
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// ClampLimit bounds a client-supplied limit. Zero or negative input falls
// back to def; anything else is clamped into [MinLimit, maxLimit].
func ClampLimit(limit, def, maxLimit int) int {
	if maxLimit <= 0 || maxLimit > MaxLimit {
		maxLimit = MaxLimit
	}
	if def <= 0 {
		def = DefaultLimit
	}
	if def > maxLimit {
		def = maxLimit
	}
	if limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// Overfetch is the number of rows to request for a page of limit items.
func Overfetch(limit int) int { return limit + 1 }

// Slice truncates rows fetched with Overfetch(limit) to one page. The next
// cursor is the id of the last row kept, and is only issued when more rows
// exist.
func Slice[T any](rows []T, limit int, id func(T) int64) ([]T, Page) {
	if len(rows) <= limit {
		return rows, Page{}
	}
	rows = rows[:limit]
	next := EncodeCursor(id(rows[len(rows)-1]))
	return rows, Page{NextCursor: &next, HasMore: true}
}
