package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jswierk/allocator/internal/domain"
	"github.com/jswierk/allocator/internal/modules/optimization"
)

// Run is one persisted optimization run. The core computation stays pure;
// persistence happens only here, after the fact.
type Run struct {
	ID          int64                            `json:"id"`
	CreatedAt   time.Time                        `json:"created_at"`
	Gamma       float64                          `json:"gamma"`
	MaxWeight   float64                          `json:"max_weight"`
	Regions     []domain.Region                  `json:"regions"`
	Weights     map[domain.Region]float64        `json:"weights"`
	Stats       optimization.PortfolioStatistics `json:"stats"`
	Uncertainty optimization.UncertaintyReport   `json:"uncertainty"`
}

// Repository stores optimization runs in sqlite.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new run history repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "history_repository").Logger(),
	}
}

// Save persists a completed optimization result.
func (r *Repository) Save(result *optimization.Result) (int64, error) {
	regions := make([]string, len(result.Regions))
	for i, region := range result.Regions {
		regions[i] = string(region)
	}

	weightsJSON, err := json.Marshal(result.Weights)
	if err != nil {
		return 0, fmt.Errorf("failed to encode weights: %w", err)
	}
	statsJSON, err := json.Marshal(result.Stats)
	if err != nil {
		return 0, fmt.Errorf("failed to encode stats: %w", err)
	}
	uncertaintyJSON, err := json.Marshal(result.Uncertainty)
	if err != nil {
		return 0, fmt.Errorf("failed to encode uncertainty: %w", err)
	}

	res, err := r.db.Exec(`
		INSERT INTO optimization_runs (created_at, gamma, max_weight, regions, weights, stats, uncertainty)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.Timestamp.Format(time.RFC3339),
		result.Gamma,
		result.MaxWeight,
		strings.Join(regions, ","),
		string(weightsJSON),
		string(statsJSON),
		string(uncertaintyJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read insert id: %w", err)
	}
	return id, nil
}

// List returns the most recent runs, newest first.
func (r *Repository) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`
		SELECT id, created_at, gamma, max_weight, regions, weights, stats, uncertainty
		FROM optimization_runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                                             Run
			createdAt, regions, weights, stats, uncertainty string
		)
		if err := rows.Scan(&run.ID, &createdAt, &run.Gamma, &run.MaxWeight, &regions, &weights, &stats, &uncertainty); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run timestamp: %w", err)
		}
		for _, region := range strings.Split(regions, ",") {
			run.Regions = append(run.Regions, domain.Region(region))
		}
		if err := json.Unmarshal([]byte(weights), &run.Weights); err != nil {
			return nil, fmt.Errorf("failed to decode weights: %w", err)
		}
		if err := json.Unmarshal([]byte(stats), &run.Stats); err != nil {
			return nil, fmt.Errorf("failed to decode stats: %w", err)
		}
		if err := json.Unmarshal([]byte(uncertainty), &run.Uncertainty); err != nil {
			return nil, fmt.Errorf("failed to decode uncertainty: %w", err)
		}

		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// PruneOlderThan deletes runs older than the cutoff and returns the count.
func (r *Repository) PruneOlderThan(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(
		`DELETE FROM optimization_runs WHERE created_at < ?`,
		cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		r.log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Pruned old optimization runs")
	}
	return deleted, nil
}
