package model

import "time"

// DownloadJob is one attempt to turn a Track into a delivered audio file.
// Jobs are never stored beyond the request that created them.
type DownloadJob struct {
	ID             string
	Track          Track  // snapshot taken at selection time
	TempBase       string // path stem owned by this job; artifacts live at TempBase + ext
	SizeLimitBytes int64
	Status         JobStatus
	ArtifactPath   string // set once the catalog returns a file
	LastError      string // last error message if any
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Elapsed returns how long the job ran, or has been running so far
func (j *DownloadJob) Elapsed() time.Duration {
	if j.StartedAt.IsZero() {
		return 0
	}
	if j.FinishedAt.IsZero() {
		return time.Since(j.StartedAt)
	}
	return j.FinishedAt.Sub(j.StartedAt)
}
