package driver

import "time"

// Stage describes a high-level step of a batch scan.
type Stage string

const (
	// StageRead is reading the file or object.
	StageRead Stage = "read"
	// StageParse covers records, attributes and header.
	StageParse Stage = "parse"
	// StageExtract is the PMI extraction.
	StageExtract Stage = "extract"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is currently being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the file is done.
	StatusDone Status = "done"
	// StatusError indicates the file could not be loaded.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the whole scan when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Scan calls OnEvent from several
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

type nopSink struct{}

func (nopSink) OnEvent(Event) {}

// stageOf maps a load phase to the scan stage shown to the user.
func stageOf(phase string) (Stage, bool) {
	switch phase {
	case PhaseRecords:
		return StageParse, true
	case PhasePMI:
		return StageExtract, true
	default:
		return "", false
	}
}
