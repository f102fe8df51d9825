package gym

import "errors"

// ErrActionCount reports a step batch whose length does not match the
// configured agent count.
var ErrActionCount = errors.New("action count mismatch")
