package card

import "errors"

// ErrCardNotFound is returned when a card id does not resolve to a stored card
var ErrCardNotFound = errors.New("card not found")
