// Package window computes the token context around an opinion target, used to
// classify competing targets of one sentence separately.
package window

import "fmt"

// Error reports a target whose token IDs are not in the sentence.
type Error struct {
	FirstID string
	LastID  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("window: target tokens %s..%s not found in sentence", e.FirstID, e.LastID)
}

// Bounds returns the inclusive [lo, hi] token positions of the window around
// the target [firstID, lastID]. min tokens are added before the target and max
// after it; both sides are clamped to the sentence.
func Bounds(n int, index map[string]int, firstID, lastID string, min, max int) (lo, hi int, err error) {
	first, ok1 := index[firstID]
	last, ok2 := index[lastID]
	if !ok1 || !ok2 || first < 0 || last >= n || first > last {
		return 0, 0, &Error{FirstID: firstID, LastID: lastID}
	}
	if min < 0 {
		min = 0
	}
	if max < 0 {
		max = 0
	}
	lo = first - min
	if lo < 0 {
		lo = 0
	}
	hi = last
	if max > n-1-last {
		hi = n - 1
	} else {
		hi = last + max
	}
	return lo, hi, nil
}

// Tokens returns the forms inside the window around the target.
func Tokens(forms []string, index map[string]int, firstID, lastID string, min, max int) ([]string, error) {
	lo, hi, err := Bounds(len(forms), index, firstID, lastID, min, max)
	if err != nil {
		return nil, err
	}
	out := make([]string, hi-lo+1)
	copy(out, forms[lo:hi+1])
	return out, nil
}
