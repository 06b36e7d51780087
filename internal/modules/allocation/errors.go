package allocation

import "errors"

// ErrEmptyUniverse is returned when an allocation is requested for zero symbols.
// Callers substitute a default universe before invoking the engine.
var ErrEmptyUniverse = errors.New("universe must contain at least one symbol")
