package estimates

import "errors"

// ErrInvalidQuantity is returned when a query asks for a non-positive number
// of quarters out. It is raised at query entry, before any ledger work.
var ErrInvalidQuantity = errors.New("quarters out must be a positive integer")
