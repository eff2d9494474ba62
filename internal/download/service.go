package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/yt-music-bot/internal/catalog"
	"github.com/ytget/yt-music-bot/internal/media"
	"github.com/ytget/yt-music-bot/internal/metrics"
	"github.com/ytget/yt-music-bot/internal/model"
	"github.com/ytget/yt-music-bot/internal/paginate"
	"github.com/ytget/yt-music-bot/internal/platform"
	"github.com/ytget/yt-music-bot/internal/workpool"
)

// Upload limits and audio settings
const (
	MaxUploadBytes      = 50 * 1024 * 1024
	AudioFormat         = "mp3"
	AudioBitrateKbps    = 192
	MetadataMaxRunes    = 200
	CaptionPrefix       = "🎵 "
	DefaultFetchTimeout = 5 * time.Minute
)

// DefaultLateCleanupDelay is how long after a cut-short fetch the job's
// files are swept again. A killed yt-dlp can leave its ffmpeg child running,
// and that child may still write under the stem.
const DefaultLateCleanupDelay = 30 * time.Second

// Identifier constants
const (
	JobIDPrefix   = "job-"
	TempSuffixLen = 8
)

// Options configure a Service
type Options struct {
	TempDir      string
	MaxBytes     int64         // capped at MaxUploadBytes
	FetchTimeout time.Duration // wall-clock budget for one fetch
	Pool         *workpool.Pool
	Prober       media.Prober // optional, fills in unknown durations
	Metrics      *metrics.Metrics
	Logger       *slog.Logger

	LateCleanupDelay time.Duration // second sweep after a timed out or canceled fetch
}

// Service runs download jobs
type Service struct {
	catalog      catalog.Client
	tempDir      string
	maxBytes     int64
	fetchTimeout time.Duration
	lateCleanup  time.Duration
	pool         *workpool.Pool
	prober       media.Prober
	metrics      *metrics.Metrics
	logger       *slog.Logger
	onUpdate     func(*model.DownloadJob) // callback for status transitions
}

// NewService creates a new download service
func NewService(client catalog.Client, opts Options) *Service {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 || maxBytes > MaxUploadBytes {
		maxBytes = MaxUploadBytes
	}
	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	lateCleanup := opts.LateCleanupDelay
	if lateCleanup <= 0 {
		lateCleanup = DefaultLateCleanupDelay
	}
	pool := opts.Pool
	if pool == nil {
		pool = workpool.New(1)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog:      client,
		tempDir:      opts.TempDir,
		maxBytes:     maxBytes,
		fetchTimeout: fetchTimeout,
		lateCleanup:  lateCleanup,
		pool:         pool,
		prober:       opts.Prober,
		metrics:      opts.Metrics,
		logger:       logger,
	}
}

// SetUpdateCallback sets the callback function for job status changes
func (s *Service) SetUpdateCallback(callback func(*model.DownloadJob)) {
	s.onUpdate = callback
}

// MaxBytes returns the effective artifact size limit
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// Run fetches track and hands the artifact to deliver. Every file created
// under the job's stem is removed before Run returns, whatever the outcome.
// The returned job is never nil.
func (s *Service) Run(ctx context.Context, track model.Track, deliver Deliverer) (*model.DownloadJob, error) {
	job := s.newJob(track)
	s.metrics.JobStarted()
	s.notifyUpdate(job)

	var cutShort bool
	defer func() {
		s.removeArtifacts(job.ID, job.TempBase)
		if cutShort {
			id, base := job.ID, job.TempBase
			time.AfterFunc(s.lateCleanup, func() { s.removeArtifacts(id, base) })
		}
	}()

	path, err := workpool.Run(ctx, s.pool, func(ctx context.Context) (string, error) {
		s.setStatus(job, model.JobStatusFetching)
		return s.fetch(ctx, job)
	})
	if err != nil {
		reason := FailureReason(err)
		cutShort = reason == string(catalog.ReasonTimeout) || reason == ReasonCanceled
		return s.fail(job, err)
	}
	job.ArtifactPath = path

	size, err := s.validate(job, path)
	if err != nil {
		return s.fail(job, err)
	}

	artifact := s.buildArtifact(ctx, job, path, size)

	err = s.pool.Do(ctx, func(ctx context.Context) error {
		s.setStatus(job, model.JobStatusDelivering)
		return deliver.Deliver(ctx, artifact)
	})
	if err != nil {
		if !errors.Is(err, workpool.ErrPanic) && ctx.Err() == nil {
			err = &DeliveryError{Err: err}
		}
		return s.fail(job, err)
	}

	s.finish(job, model.JobStatusDone, "")
	s.logger.Info("track delivered",
		"job_id", job.ID,
		"track_id", track.ID,
		"bytes", size,
		"elapsed", job.Elapsed())
	return job, nil
}

func (s *Service) fetch(ctx context.Context, job *model.DownloadJob) (string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	path, err := s.catalog.FetchAudio(fetchCtx, job.Track.ID, catalog.Constraints{
		MaxBytes:    job.SizeLimitBytes,
		Format:      AudioFormat,
		BitrateKbps: AudioBitrateKbps,
		OutputBase:  job.TempBase,
	})
	if err == nil {
		return path, nil
	}
	if _, ok := catalog.FailureReason(err); !ok && errors.Is(fetchCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", &catalog.FetchError{Reason: catalog.ReasonTimeout, Err: err}
	}
	return "", err
}

// validate checks the artifact belongs to the job and fits the size cap
func (s *Service) validate(job *model.DownloadJob, path string) (int64, error) {
	if !platform.IsWithinStem(path, job.TempBase) {
		return 0, &catalog.FetchError{Reason: catalog.ReasonTranscode, Err: fmt.Errorf("artifact %s outside job path", path)}
	}
	size, err := platform.FileSize(path)
	if err != nil {
		return 0, &catalog.FetchError{Reason: catalog.ReasonTranscode, Err: err}
	}
	if size == 0 {
		return 0, &catalog.FetchError{Reason: catalog.ReasonTranscode, Err: errors.New("empty artifact")}
	}
	if size >= job.SizeLimitBytes {
		return 0, &catalog.FetchError{Reason: catalog.ReasonSizeLimit, Err: fmt.Errorf("artifact is %d bytes, limit %d", size, job.SizeLimitBytes)}
	}
	return size, nil
}

func (s *Service) buildArtifact(ctx context.Context, job *model.DownloadJob, path string, size int64) Artifact {
	duration := job.Track.DurationSeconds
	if duration <= 0 && s.prober != nil {
		info, err := s.prober.Probe(ctx, path)
		if err != nil {
			s.logger.Debug("duration probe failed", "job_id", job.ID, "error", err)
		} else {
			duration = info.RoundedSeconds()
		}
	}

	return Artifact{
		Path:            path,
		Title:           paginate.Truncate(job.Track.Title, MetadataMaxRunes),
		Performer:       paginate.Truncate(job.Track.Artist, MetadataMaxRunes),
		Caption:         CaptionPrefix + job.Track.DisplayName(),
		DurationSeconds: duration,
		SizeBytes:       size,
	}
}

func (s *Service) removeArtifacts(jobID, base string) {
	if err := platform.RemoveArtifacts(base); err != nil {
		s.logger.Warn("failed to remove job artifacts", "job_id", jobID, "base", base, "error", err)
	}
}

func (s *Service) newJob(track model.Track) *model.DownloadJob {
	return &model.DownloadJob{
		ID:             generateJobID(),
		Track:          track,
		TempBase:       platform.ArtifactStem(s.tempDir, track.DisplayName(), generateTempSuffix()),
		SizeLimitBytes: s.maxBytes,
		Status:         model.JobStatusPending,
		StartedAt:      time.Now(),
	}
}

func (s *Service) setStatus(job *model.DownloadJob, status model.JobStatus) {
	job.Status = status
	s.notifyUpdate(job)
}

func (s *Service) fail(job *model.DownloadJob, err error) (*model.DownloadJob, error) {
	reason := FailureReason(err)
	job.LastError = err.Error()
	s.finish(job, model.JobStatusFailed, reason)
	s.logger.Warn("download failed",
		"job_id", job.ID,
		"track_id", job.Track.ID,
		"reason", reason,
		"error", err)
	return job, err
}

func (s *Service) finish(job *model.DownloadJob, status model.JobStatus, reason string) {
	job.FinishedAt = time.Now()
	outcome := metrics.DownloadDone
	if status == model.JobStatusFailed {
		outcome = metrics.DownloadFailed
	}
	s.metrics.JobFinished(outcome, reason, job.Elapsed())
	s.setStatus(job, status)
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(job *model.DownloadJob) {
	if s.onUpdate != nil {
		s.onUpdate(job)
	}
}

// generateJobID generates a unique job ID using UUID v7 so IDs sort by start time
func generateJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf(JobIDPrefix+"%d", time.Now().UnixNano())
	}
	return JobIDPrefix + id.String()
}

// generateTempSuffix returns the random part of a job's path stem
func generateTempSuffix() string {
	return uuid.NewString()[:TempSuffixLen]
}
