package task

// Status represents the lifecycle state of a Task.
type Status string

const (
	StatusToDo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusInReview   Status = "in_review"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// IsValid returns true if the status is one of the defined constants.
func (s Status) IsValid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusInReview, StatusDone, StatusCancelled:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (s Status) String() string { return string(s) }

// IsTerminal reports whether the status admits no further transitions.
// Done and Cancelled are strictly terminal; there is no reopen path.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// transitions is the closed table of legal status changes. Status is never
// set directly; the named lifecycle operations consult this table and
// reject everything it does not list.
var transitions = map[Status][]Status{
	StatusToDo:       {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusToDo, StatusInReview, StatusDone, StatusCancelled},
	StatusInReview:   {StatusInProgress, StatusDone, StatusCancelled},
	StatusDone:       {},
	StatusCancelled:  {},
}

// CanTransition reports whether moving from one status to another is legal
// under the transition table.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
