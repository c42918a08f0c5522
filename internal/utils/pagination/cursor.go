package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

var ErrInvalidToken = errors.New("invalid pagination token")

// Cursor is the opaque keyset position we encode/decode.
// (UnixMilli, ID) of the last row seen gives a stable order for rows that
// share a timestamp.
type Cursor struct {
	ID        uint64 `json:"id"`
	UnixMilli int64  `json:"ts,omitempty"`
}

// After builds the cursor that continues past a row.
func After(id uint64, ts time.Time) Cursor {
	return Cursor{ID: id, UnixMilli: ts.UnixMilli()}
}

// IsZero reports whether c is the first-page cursor.
func (c Cursor) IsZero() bool { return c.ID == 0 && c.UnixMilli == 0 }

// Time returns the cursor timestamp.
func (c Cursor) Time() time.Time { return time.UnixMilli(c.UnixMilli).UTC() }

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidToken
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, ErrInvalidToken
	}
	return c, nil
}
