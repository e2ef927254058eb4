package domain

type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// CheckedAdd returns a+b and false if the sum wrapped.
func CheckedAdd[T unsigned](a, b T) (T, bool) {
	sum := a + b
	return sum, sum >= a
}

// CheckedSub returns a-b and false if b > a.
func CheckedSub[T unsigned](a, b T) (T, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}
