package store

import "errors"

// ErrNotFound is returned when a lookup by id or message-id matches no row.
var ErrNotFound = errors.New("store: not found")
