package history

import (
	"time"

	"github.com/rs/zerolog"
)

// PruneJob periodically deletes runs past the retention window.
type PruneJob struct {
	repo          *Repository
	retentionDays int
	log           zerolog.Logger
}

// NewPruneJob creates a new history prune job.
func NewPruneJob(repo *Repository, retentionDays int, log zerolog.Logger) *PruneJob {
	if retentionDays <= 0 {
		retentionDays = 365
	}
	return &PruneJob{
		repo:          repo,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "history_prune").Logger(),
	}
}

// Name implements scheduler.Job.
func (j *PruneJob) Name() string {
	return "history_prune"
}

// Run implements scheduler.Job.
func (j *PruneJob) Run() error {
	cutoff := time.Now().UTC().AddDate(0, 0, -j.retentionDays)
	_, err := j.repo.PruneOlderThan(cutoff)
	return err
}
