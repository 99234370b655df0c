package los

import "errors"

// ErrInvalidGeometry is returned when a shot cannot be evaluated at all: both ends
// in one hex, an end off the board, or a failed terrain read along the line.
var ErrInvalidGeometry = errors.New("los: invalid geometry")
