package statecell

import "errors"

// ErrPoisoned reports that a previous holder of exclusive access
// terminated abnormally, so the protected value can no longer be
// trusted. The condition is permanent for the life of the process;
// callers should treat it as fatal rather than retry.
var ErrPoisoned = errors.New("cell is poisoned")
