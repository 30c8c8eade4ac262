package list

import "errors"

// ErrListNotFound is returned when a list id does not resolve to a stored list
var ErrListNotFound = errors.New("list not found")
