package model

// JobStatus represents the status of a download job
type JobStatus string

const (
	// JobStatusPending means the job is created but nothing is fetched yet
	JobStatusPending JobStatus = "Pending"

	// JobStatusFetching means the catalog is downloading and transcoding the audio
	JobStatusFetching JobStatus = "Fetching"

	// JobStatusDelivering means the artifact is being handed to the transport
	JobStatusDelivering JobStatus = "Delivering"

	// JobStatusDone means the artifact was delivered and released
	JobStatusDone JobStatus = "Done"

	// JobStatusFailed means the job stopped with an error
	JobStatusFailed JobStatus = "Failed"
)

// String returns the string representation of JobStatus
func (js JobStatus) String() string {
	return string(js)
}

// IsActive returns true if the job is in an active state
func (js JobStatus) IsActive() bool {
	return js == JobStatusFetching || js == JobStatusDelivering
}

// IsFinished returns true if the job is in a terminal state (done or failed)
func (js JobStatus) IsFinished() bool {
	return js == JobStatusDone || js == JobStatusFailed
}
