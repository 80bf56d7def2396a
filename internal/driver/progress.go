package driver

import "time"

// Stage describes a high-level phase of one compilation unit.
type Stage string

const (
	// StageLoad reads and decodes the input trees.
	StageLoad Stage = "load"
	// StageSSA runs the conversion pass.
	StageSSA Stage = "ssa"
	// StageValidate re-checks the converted tree.
	StageValidate Stage = "validate"
	// StageEmit writes the output.
	StageEmit Stage = "emit"
)

// Stages lists the stages in execution order.
var Stages = []Stage{StageLoad, StageSSA, StageValidate, StageEmit}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the unit is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is running.
	StatusWorking Status = "working"
	// StatusDone indicates the stage is done.
	StatusDone Status = "done"
	// StatusCached indicates the stage was satisfied from the disk cache.
	StatusCached Status = "cached"
	// StatusSkipped indicates the stage was disabled.
	StatusSkipped Status = "skipped"
	// StatusError indicates the stage failed.
	StatusError Status = "error"
)

// Event reports progress for a unit (or for the whole run when Unit is empty).
type Event struct {
	Unit    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
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

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
