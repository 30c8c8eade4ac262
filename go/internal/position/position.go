// Package position implements the fractional-indexing arithmetic that keeps
// lists and cards ordered without ever renumbering their siblings.
//
// Every item carries a floating-point position and collections are sorted by
// it ascending. Inserting between two items only requires a value strictly
// between their positions, so a move is always a single-row write:
//
//	Cards: A(1.0), B(2.0), C(3.0)
//	Move C between A and B -> (1.0 + 2.0) / 2 = 1.5
//	Result: A(1.0), C(1.5), B(2.0)
//
// Midpoint insertion halves the available gap each time, so after enough
// moves into the same spot positions converge past safe float64 resolution.
// NeedsRebalance detects that condition; the card rebalance worker restores
// evenly spaced positions.
package position

// Gap is the base increment between freshly allocated positions. It is large
// enough that thousands of midpoint insertions stay representable before the
// gap decays to MinSafeGap.
const Gap = 65535

// MinSafeGap is the smallest neighbor gap the engine tolerates before a list
// is scheduled for rebalancing.
const MinSafeGap = 1e-4

// Next returns the position for an item appended after the current maximum.
// maxPos is nil when the collection is empty.
func Next(maxPos *float64) float64 {
	if maxPos == nil {
		return Gap
	}
	return *maxPos + Gap
}

// Between returns a position strictly between prev and next. A nil neighbor
// means there is no item on that side.
//
// Callers must pass the true current neighbor positions; Between performs no
// validation and its contract is undefined when prev >= next.
func Between(prev, next *float64) float64 {
	if prev == nil {
		if next == nil {
			return Gap
		}
		return *next / 2
	}
	if next == nil {
		return *prev + Gap
	}
	return (*prev + *next) / 2
}

// NeedsRebalance reports whether the gap the caller is about to split has
// decayed below MinSafeGap.
func NeedsRebalance(prev, next *float64) bool {
	if prev == nil || next == nil {
		return false
	}
	return *next-*prev < MinSafeGap
}
