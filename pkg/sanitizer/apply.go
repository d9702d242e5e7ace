package sanitizer

// Apply passes value through transforms in order.
func Apply[T any](value T, transforms ...func(T) T) T {
	for _, fn := range transforms {
		value = fn(value)
	}
	return value
}

// Compose binds transforms into one reusable transform.
func Compose[T any](transforms ...func(T) T) func(T) T {
	return func(value T) T { return Apply(value, transforms...) }
}
