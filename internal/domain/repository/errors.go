package repository

import "errors"

// ErrNotFound is returned when a schedule, unit or airport does not exist.
// The console treats it as success when deleting.
var ErrNotFound = errors.New("not found")
