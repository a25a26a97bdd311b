// Package progress defines the typed event stream emitted while a dashboard
// aggregation runs. The event model is transport-agnostic: the same sequence
// can back SSE, a WebSocket, or a polling endpoint.
package progress

// Stage identifies where in the pipeline an event originated. Every run emits
// zero or more non-terminal events followed by exactly one Complete or Error.
type Stage string

const (
	StageSources   Stage = "sources"
	StageFields    Stage = "fields"
	StageContacts  Stage = "contacts"
	StageDetails   Stage = "details"
	StageNoSource  Stage = "no-source"
	StageAggregate Stage = "aggregate"
	StageComplete  Stage = "complete"
	StageError     Stage = "error"
)

// Terminal reports whether the stage ends the stream.
func (s Stage) Terminal() bool {
	return s == StageComplete || s == StageError
}

// Counter is a {current, total} pair, optionally scoped to one source.
type Counter struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Source  string `json:"source,omitempty"`
}

type Event struct {
	Stage    Stage    `json:"stage"`
	Message  string   `json:"message"`
	Progress *Counter `json:"progress,omitempty"`
	// Data carries the full aggregate payload on Complete.
	Data any `json:"data,omitempty"`
}

// Sink receives events in order. Implementations must tolerate events after a
// consumer has gone away; the producer fires and continues so the cache write
// still lands for later callers.
type Sink interface {
	Send(ev Event)
}

// Discard drops every event. The non-streaming path uses it.
var Discard Sink = discard{}

type discard struct{}

func (discard) Send(Event) {}

// Func adapts a function to the Sink interface.
type Func func(Event)

func (f Func) Send(ev Event) { f(ev) }
