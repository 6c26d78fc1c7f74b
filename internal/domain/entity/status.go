package entity

import (
	"encoding/json"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// StatusKind enumerates the dispatch lifecycle
type StatusKind int

// The first five kinds form the ordered progression; Cancelled is terminal
// and outside the order. StatusUnknown carries any other text verbatim.
// The zero value is Pending.
const (
	StatusPending StatusKind = iota
	StatusConfirmed
	StatusArrived
	StatusOnRoute
	StatusCompleted
	StatusCancelled
	StatusUnknown
)

var statusNames = map[StatusKind]string{
	StatusPending:   "Pending",
	StatusConfirmed: "Confirmed",
	StatusArrived:   "Arrived",
	StatusOnRoute:   "On Route",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
}

var statusLabels = map[StatusKind]string{
	StatusPending:   "#1 The Driver is to depart",
	StatusConfirmed: "#2 Driver has departed",
	StatusArrived:   "#3 Driver has arrived",
	StatusOnRoute:   "#4 Service Start",
	StatusCompleted: "#5 Service finished",
	StatusCancelled: "Booking Cancelled",
}

// Stages is the ordered progression, Pending first
var Stages = []StatusKind{StatusPending, StatusConfirmed, StatusArrived, StatusOnRoute, StatusCompleted}

// Status is a booking status. Any value may be stored; values outside the
// lifecycle are kept as written and simply have no stage.
type Status struct {
	Kind StatusKind
	raw  string
}

// Predefined statuses
var (
	Pending   = Status{Kind: StatusPending}
	Confirmed = Status{Kind: StatusConfirmed}
	Arrived   = Status{Kind: StatusArrived}
	OnRoute   = Status{Kind: StatusOnRoute}
	Completed = Status{Kind: StatusCompleted}
	Cancelled = Status{Kind: StatusCancelled}
)

// ParseStatus maps stored text to a Status. Matching ignores case and
// surrounding space; empty text is Pending, as new bookings are.
func ParseStatus(raw string) Status {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Pending
	}
	for kind, name := range statusNames {
		if strings.EqualFold(s, name) {
			return Status{Kind: kind}
		}
	}
	return Status{Kind: StatusUnknown, raw: s}
}

// String returns the canonical name, or the raw text for unknown values
func (s Status) String() string {
	if s.Kind == StatusUnknown {
		return s.raw
	}
	return statusNames[s.Kind]
}

// Label is the dispatcher-facing caption ("#3 Driver has arrived")
func (s Status) Label() string {
	if label, ok := statusLabels[s.Kind]; ok {
		return label
	}
	return s.raw
}

// CSSClass is the lower-case, dash-separated style hook ("on-route")
func (s Status) CSSClass() string {
	return strings.Join(strings.Fields(strings.ToLower(s.String())), "-")
}

// Index returns the position in Stages, or -1 for Cancelled and unknown values
func (s Status) Index() int {
	for i, kind := range Stages {
		if kind == s.Kind {
			return i
		}
	}
	return -1
}

// IsTerminal reports Completed and Cancelled
func (s Status) IsTerminal() bool {
	return s.Kind == StatusCompleted || s.Kind == StatusCancelled
}

// Next suggests the following stage. It returns false for terminal and
// unknown statuses. Writers are free to ignore it.
func (s Status) Next() (Status, bool) {
	i := s.Index()
	if i < 0 || i+1 >= len(Stages) {
		return Status{}, false
	}
	return Status{Kind: Stages[i+1]}, true
}

// Equal compares two statuses, including the raw text of unknown ones
func (s Status) Equal(other Status) bool {
	return s.Kind == other.Kind && s.raw == other.raw
}

// MarshalJSON writes the status as its text
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON reads status text; null is Pending
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = Pending
		return nil
	}
	*s = ParseStatus(*raw)
	return nil
}

// MarshalBSONValue stores the status as a BSON string
func (s Status) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(s.String())
}

// UnmarshalBSONValue reads a BSON string
func (s *Status) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	str, ok := raw.StringValueOK()
	if !ok {
		*s = Pending
		return nil
	}
	*s = ParseStatus(str)
	return nil
}

// StageState is how one lifecycle stage renders
type StageState string

const (
	StageReached   StageState = "reached"
	StageUpcoming  StageState = "upcoming"
	StageCancelled StageState = "cancelled"
)

// StageView is one step of the tracker
type StageView struct {
	Stage Status
	Label string
	State StageState
}

// Track lays out the five stages for a status. Every stage up to and
// including the current one is reached; a cancelled booking renders every
// stage as cancelled; unknown statuses reach nothing.
func Track(current Status) []StageView {
	idx := current.Index()
	views := make([]StageView, len(Stages))
	for i, kind := range Stages {
		stage := Status{Kind: kind}
		state := StageUpcoming
		switch {
		case current.Kind == StatusCancelled:
			state = StageCancelled
		case idx >= 0 && i <= idx:
			state = StageReached
		}
		views[i] = StageView{Stage: stage, Label: stage.Label(), State: state}
	}
	return views
}
