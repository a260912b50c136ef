package session

// Snapshot is the read-only view of a session carried on lifecycle
// events.
type Snapshot struct {
	// ID identifies the session in logs and events.
	ID string

	// Focused is the currently focused tabstop identifier.
	Focused string

	// Order is the current visit order, final tabstop last.
	Order []string

	// Visited lists the tabstop identifiers focused so far, in visit
	// order.
	Visited []string
}

// Events receives the engine's fire-and-forget notifications. All
// methods are called synchronously from engine operations; collaborators
// must not call back into the session from them.
//
// A collaborator may auto-stop the session when JumpPost lands on the
// final tabstop; that is a supported pattern, not engine behaviour.
type Events interface {
	SessionStart(snap Snapshot)
	SessionStop(snap Snapshot)
	SessionSuspend(snap Snapshot)
	SessionResume(snap Snapshot)

	// JumpPre and JumpPost fire around every jump with the source and
	// target tabstop identifiers.
	JumpPre(from, to string)
	JumpPost(from, to string)

	// Offer fires when focus lands on a tabstop carrying choices, or
	// whose current content is empty. choices is nil for a plain empty
	// tabstop; presentation is entirely the collaborator's concern.
	Offer(tabstopID string, choices []string)
}

// NopEvents is the default Events implementation; it ignores everything.
type NopEvents struct{}

var _ Events = NopEvents{}

func (NopEvents) SessionStart(Snapshot)   {}
func (NopEvents) SessionStop(Snapshot)    {}
func (NopEvents) SessionSuspend(Snapshot) {}
func (NopEvents) SessionResume(Snapshot)  {}
func (NopEvents) JumpPre(string, string)  {}
func (NopEvents) JumpPost(string, string) {}
func (NopEvents) Offer(string, []string)  {}
