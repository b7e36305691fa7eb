package domain

// JobStatus tracks one seed through its in-memory lifecycle. Only the
// terminal statuses are persisted, as entries in BatchState.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobInFlight  JobStatus = "in_flight"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// ValidJobTransitions defines allowed status transitions.
var ValidJobTransitions = map[JobStatus][]JobStatus{
	JobPending:  {JobInFlight},
	JobInFlight: {JobSucceeded, JobFailed},
}

// CanTransition checks if a job status change is valid.
func CanTransition(from, to JobStatus) bool {
	for _, target := range ValidJobTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// ErrorCategory is the classifier's verdict on a job failure.
type ErrorCategory string

const (
	// CategoryTransient failures are expected to resolve on retry
	// (network blips, rate limiting, upstream 5xx).
	CategoryTransient ErrorCategory = "transient"

	// CategoryPermanent failures no retry can fix (bad credentials,
	// malformed requests, rejected content).
	CategoryPermanent ErrorCategory = "permanent"
)

// Job is the ephemeral in-memory view of one unit of work. It is never
// persisted beyond its terminal outcome in BatchState.
type Job struct {
	ID           string
	Seed         string
	Status       JobStatus
	Attempts     int
	LastCategory ErrorCategory
}
