package errorsx

// String useful wrapper for string constants as errors.
type String string

func (t String) Error() string {
	return string(t)
}
