package similarity

import "errors"

// ErrNotFound is returned when an identifier resolves to no player.
// It is expected and recoverable; handlers surface it as a 404.
var ErrNotFound = errors.New("player not found")
