package wake

import "sync/atomic"

// InterruptSource is the latch between the wake monitor and the speak
// controller: the monitor raises it when the keyword is heard mid-playback,
// and the controller checks it between chunks. Safe for concurrent use.
type InterruptSource struct {
	raised atomic.Bool
}

// Raise latches the interrupt.
func (i *InterruptSource) Raise() {
	i.raised.Store(true)
}

// Raised reports whether the interrupt is latched, without clearing it.
func (i *InterruptSource) Raised() bool {
	return i.raised.Load()
}

// Clear resets the latch for the next playback and reports whether it was
// raised.
func (i *InterruptSource) Clear() bool {
	return i.raised.Swap(false)
}
