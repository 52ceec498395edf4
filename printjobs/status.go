package printjobs

// Status - print job lifecycle state
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// allowedTransitions - the full lifecycle:
// pending -> processing -> {completed | failed}
// plus the operator reset processing -> pending for stuck jobs.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusProcessing: true,
	},
	StatusProcessing: {
		StatusCompleted: true,
		StatusFailed:    true,
		StatusPending:   true, // stuck-job reset / lease expiry
	},
	StatusCompleted: {},
	StatusFailed:    {},
}

func (s Status) Known() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Terminal reports whether a job in this status is finished work.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func CanTransition(from, to Status) bool {
	targets, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}
