package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a load phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// Load phases, in order.
const (
	PhaseRecords    = "records"
	PhaseAttributes = "attributes"
	PhaseHeader     = "header"
	PhasePMI        = "pmi"
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during Load.
type PhaseObserver func(PhaseEvent)
