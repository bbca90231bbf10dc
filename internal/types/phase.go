package types

// Phase is the nightly sequencer's state for the current night, evaluated
// fresh on every tick from the wall clock and the on-disk encode marker.
type Phase string

const (
	// PhaseAcquiring: inside the acquisition window; one frame is written
	// per tick.
	PhaseAcquiring Phase = "acquiring"

	// PhaseAwaitingEncode: morning window, encode marker absent; the
	// encoder is invoked exactly once.
	PhaseAwaitingEncode Phase = "awaiting_encode"

	// PhaseEncoded: morning window, encode marker present. Terminal for
	// the night; repeated ticks do nothing.
	PhaseEncoded Phase = "encoded"

	// PhaseIdle: outside both windows (early afternoon); nothing is due.
	PhaseIdle Phase = "idle"
)
