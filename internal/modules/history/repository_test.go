package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jswierk/allocator/internal/database"
	"github.com/jswierk/allocator/internal/domain"
	"github.com/jswierk/allocator/internal/modules/optimization"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	return NewRepository(db.Conn(), zerolog.Nop())
}

func sampleResult(ts time.Time) *optimization.Result {
	sharpe := 0.28
	return &optimization.Result{
		Timestamp: ts,
		Regions:   []domain.Region{domain.RegionUS, domain.RegionGold},
		Weights: map[domain.Region]float64{
			domain.RegionUS:   0.6,
			domain.RegionGold: 0.4,
		},
		Gamma:      3.0,
		MaxWeight:  0.5,
		Iterations: 120,
		Stats: optimization.PortfolioStatistics{
			Return:      0.054,
			Variance:    0.0129,
			Volatility:  0.1136,
			SharpeRatio: &sharpe,
			CRRAUtility: 0.0346,
			RiskContribution: map[domain.Region]float64{
				domain.RegionUS:   0.72,
				domain.RegionGold: 0.28,
			},
		},
		Uncertainty: optimization.UncertaintyReport{
			Level:              "medium",
			ReturnSpreadPct:    2.0,
			Herfindahl:         0.52,
			ConfidenceInterval: [2]float64{0.034, 0.074},
		},
	}
}

func TestRepository_SaveAndList(t *testing.T) {
	repo := testRepository(t)

	id, err := repo.Save(sampleResult(time.Now().UTC()))
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	runs, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, id, run.ID)
	assert.Equal(t, 3.0, run.Gamma)
	assert.Equal(t, []domain.Region{domain.RegionUS, domain.RegionGold}, run.Regions)
	assert.InDelta(t, 0.6, run.Weights[domain.RegionUS], 1e-9)
	assert.Equal(t, "medium", run.Uncertainty.Level)
	require.NotNil(t, run.Stats.SharpeRatio)
	assert.InDelta(t, 0.28, *run.Stats.SharpeRatio, 1e-9)
}

func TestRepository_ListNewestFirst(t *testing.T) {
	repo := testRepository(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.Save(sampleResult(base.Add(time.Duration(i) * time.Hour)))
		require.NoError(t, err)
	}

	runs, err := repo.List(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt))
}

func TestRepository_PruneOlderThan(t *testing.T) {
	repo := testRepository(t)

	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.Save(sampleResult(old))
	require.NoError(t, err)
	_, err = repo.Save(sampleResult(recent))
	require.NoError(t, err)

	deleted, err := repo.PruneOlderThan(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	runs, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, recent, runs[0].CreatedAt)
}
