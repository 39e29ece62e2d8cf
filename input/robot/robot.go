// Package robot provides the platform injectors: robotgo when cgo is
// available, the user32 API on Windows without cgo, and an injector that
// always fails elsewhere.
package robot

// scrollSteps rounds a scroll amount to whole steps, keeping at least one
// step for any non-zero amount.
func scrollSteps(v float64) int {
	if v == 0 {
		return 0
	}
	n := int(v)
	if v-float64(n) >= 0.5 {
		n++
	} else if float64(n)-v >= 0.5 {
		n--
	}
	if n == 0 {
		if v > 0 {
			return 1
		}
		return -1
	}
	return n
}
