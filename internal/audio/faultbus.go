package audio

// FaultBus is the one channel that crosses the real-time/reactor thread
// boundary: a device backend's callback goroutine publishes a device-fatal
// error, and the reactor thread drains it on its next tick. Adapted from
// the teacher's EventBus.Publish non-blocking-select idiom, narrowed from a
// general pub/sub bus to the single capacity-1 signal this boundary needs.
type FaultBus struct {
	ch chan error
}

// NewFaultBus creates an empty FaultBus.
func NewFaultBus() *FaultBus {
	return &FaultBus{ch: make(chan error, 1)}
}

// Publish reports a fault from the device callback thread. If a fault is
// already pending and undrained, this one is dropped rather than blocking
// the real-time thread: one outstanding fault is enough to trigger the
// reactor's eject-on-fault handling.
func (b *FaultBus) Publish(err error) {
	select {
	case b.ch <- err:
	default:
	}
}

// Faults returns the channel the reactor thread drains on its tick.
func (b *FaultBus) Faults() <-chan error {
	return b.ch
}
