package pipeline

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InvalidCursorError reports a pagination cursor that cannot be decoded.
type InvalidCursorError struct {
	Cursor string
	Err    error
}

func (e *InvalidCursorError) Error() string {
	return fmt.Sprintf("invalid cursor %q: %v", e.Cursor, e.Err)
}

func (e *InvalidCursorError) Unwrap() error { return e.Err }

// EncodeCursor encodes a page position as base64 of its decimal epoch
// milliseconds. A non-nil id is appended as "<ms>:<id>" and breaks ties
// between articles created in the same millisecond, which happens when two
// processes write articles concurrently.
func EncodeCursor(t time.Time, id uuid.UUID) string {
	raw := strconv.FormatInt(t.UnixMilli(), 10)
	if id != uuid.Nil {
		raw += ":" + id.String()
	}
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor reverses EncodeCursor. The id is uuid.Nil for a bare
// timestamp cursor. Any well-formed number is accepted, including
// timestamps far in the future.
func DecodeCursor(cursor string) (time.Time, uuid.UUID, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, &InvalidCursorError{Cursor: cursor, Err: err}
	}
	msPart, idPart, hasID := strings.Cut(string(raw), ":")
	ms, err := strconv.ParseInt(msPart, 10, 64)
	if err != nil {
		return time.Time{}, uuid.Nil, &InvalidCursorError{Cursor: cursor, Err: err}
	}
	id := uuid.Nil
	if hasID {
		id, err = uuid.Parse(idPart)
		if err != nil {
			return time.Time{}, uuid.Nil, &InvalidCursorError{Cursor: cursor, Err: err}
		}
		if id == uuid.Nil {
			return time.Time{}, uuid.Nil, &InvalidCursorError{Cursor: cursor, Err: errors.New("nil id")}
		}
	}
	return time.UnixMilli(ms).UTC(), id, nil
}
