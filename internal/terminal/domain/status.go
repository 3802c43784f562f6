package domain

// Status is the terminal blocking state: Active, or Blocked with a
// human-readable reason. The zero value is Active.
type Status struct {
	blocked bool
	reason  string
}

// Active returns the unblocked state.
func Active() Status {
	return Status{}
}

// Blocked returns the blocked state carrying the authority's reason.
func Blocked(reason string) Status {
	return Status{blocked: true, reason: reason}
}

func (s Status) IsBlocked() bool { return s.blocked }

// Reason is empty for an Active status.
func (s Status) Reason() string {
	if !s.blocked {
		return ""
	}
	return s.reason
}
