package cfg

// cmpOr mirrors cmp.Or from the Go 1.22+ standard library, which is not
// available on the Go 1.21 toolchain this module is built with: it returns
// the first of its arguments that is not equal to the zero value, or the
// zero value if no argument qualifies.
func cmpOr[T comparable](vals ...T) T {
	var zero T
	for _, val := range vals {
		if val != zero {
			return val
		}
	}
	return zero
}
