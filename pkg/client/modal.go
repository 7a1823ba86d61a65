package client

// Modal is a two-state toggle: closed, or open holding a payload
type Modal[T any] struct {
	open    bool
	payload T
}

// Open opens the modal with payload, replacing any payload it held
func (m *Modal[T]) Open(payload T) {
	m.open = true
	m.payload = payload
}

// Close closes the modal and drops its payload
func (m *Modal[T]) Close() {
	var zero T
	m.open = false
	m.payload = zero
}

// IsOpen reports whether the modal is open
func (m *Modal[T]) IsOpen() bool {
	return m.open
}

// Payload returns the payload of an open modal
func (m *Modal[T]) Payload() (T, bool) {
	return m.payload, m.open
}
