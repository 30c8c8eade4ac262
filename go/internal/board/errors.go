package board

import "errors"

// ErrBoardNotFound is returned when a board id does not resolve to a stored board
var ErrBoardNotFound = errors.New("board not found")
