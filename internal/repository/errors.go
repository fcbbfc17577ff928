package repository

import "errors"

// ErrNotFound is returned by lookups that match nothing. Services translate it into
// the API error taxonomy.
var ErrNotFound = errors.New("record not found")
