// Package status holds the transient Status value shown to the user and the board that fans it out
// to live listeners.
package status

// Type is the kind of the most recent outcome.
type Type string

// Status types.
const (
	TypeIdle    Type = "idle"
	TypeLoading Type = "loading"
	TypeSuccess Type = "success"
	TypeError   Type = "error"
)

// Status is the outcome of the most recent operation. It is never persisted.
type Status struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

// Ready is the initial status.
var Ready = Status{Type: TypeIdle, Message: "Ready"}

// Loading returns a loading status.
func Loading(msg string) Status { return Status{Type: TypeLoading, Message: msg} }

// Success returns a success status.
func Success(msg string) Status { return Status{Type: TypeSuccess, Message: msg} }

// Error returns an error status.
func Error(msg string) Status { return Status{Type: TypeError, Message: msg} }

// Reporter receives status and countdown updates from running pipelines.
// A countdown of 0 means no countdown is displayed.
type Reporter interface {
	SetStatus(s Status)
	SetCountdown(n int)
}

// Discard is a Reporter that drops every update.
var Discard Reporter = discard{}

type discard struct{}

func (discard) SetStatus(Status) {}
func (discard) SetCountdown(int) {}

// Tee returns a Reporter that forwards every update to all given reporters.
func Tee(reporters ...Reporter) Reporter {
	return tee(reporters)
}

type tee []Reporter

func (t tee) SetStatus(s Status) {
	for _, r := range t {
		r.SetStatus(s)
	}
}

func (t tee) SetCountdown(n int) {
	for _, r := range t {
		r.SetCountdown(n)
	}
}
