package domain

import "fmt"

// Status is the delivery state of a message.
type Status string

const (
	// StatusSending marks an optimistic placeholder that only lives in the
	// client thread. It is never written to a store.
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusSaved     Status = "saved"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

var statusRank = map[Status]int{
	StatusSending:   0,
	StatusSent:      1,
	StatusSaved:     2,
	StatusDelivered: 3,
	StatusRead:      4,
}

// ParseStatus converts s into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown message status %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Persistable reports whether s may be stored.
func (s Status) Persistable() bool {
	return s.Valid() && s != StatusSending
}

// Rank orders statuses along the pipeline; unknown statuses rank -1.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// Advances reports whether moving from s to next is a forward step.
func (s Status) Advances(next Status) bool {
	return next.Valid() && next.Rank() > s.Rank()
}

func (s Status) String() string { return string(s) }
