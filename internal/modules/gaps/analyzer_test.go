package gaps

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jswierk/allocator/internal/domain"
)

func signalPtr(s domain.ValuationSignal) *domain.ValuationSignal { return &s }

func stancePtr(s domain.InstitutionalStance) *domain.InstitutionalStance { return &s }

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		gap       float64
		valuation *domain.ValuationSignal
		stance    *domain.InstitutionalStance
		want      string
	}{
		{name: "large underweight is high", gap: 12.0, want: PriorityHigh},
		{name: "just above high threshold", gap: 10.1, want: PriorityHigh},
		{name: "exactly at high threshold is high", gap: 10.0, want: PriorityHigh},
		{name: "just under high threshold is medium", gap: 9.9, want: PriorityMedium},
		{name: "moderate underweight is medium", gap: 5.0, want: PriorityMedium},
		{name: "small gap without views holds", gap: 2.0, want: PriorityHold},
		{
			name:      "small gap with favorable valuation is consider",
			gap:       2.0,
			valuation: signalPtr(domain.SignalFavorable),
			want:      PriorityConsider,
		},
		{
			name:   "small gap with overweight stance is consider",
			gap:    2.0,
			stance: stancePtr(domain.StanceOverweight),
			want:   PriorityConsider,
		},
		{
			name:      "cautious valuation does not promote",
			gap:       2.0,
			valuation: signalPtr(domain.SignalCautious),
			want:      PriorityHold,
		},
		{name: "on target holds", gap: 0.0, want: PriorityHold},
		{name: "small overweight holds", gap: -2.5, want: PriorityHold},
		{name: "large overweight skips", gap: -8.0, want: PrioritySkip},
		{
			name:      "overweight skips even with favorable valuation",
			gap:       -8.0,
			valuation: signalPtr(domain.SignalFavorable),
			want:      PrioritySkip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.gap, tt.valuation, tt.stance))
		})
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	analyzer := NewAnalyzer(zerolog.Nop())

	current := map[domain.Region]float64{
		domain.RegionUS:     50,
		domain.RegionEurope: 28,
		domain.RegionGold:   10,
	}
	target := map[domain.Region]float64{
		domain.RegionUS:     62,
		domain.RegionEurope: 24,
		domain.RegionGold:   12,
	}
	valuations := map[domain.Region]domain.ValuationSignal{
		domain.RegionGold: domain.SignalFavorable,
	}

	analysis := analyzer.Analyze(current, target, valuations, nil)
	require.Len(t, analysis.Rows, 3)

	// Sorted by absolute gap descending.
	assert.Equal(t, domain.RegionUS, analysis.Rows[0].Region)
	assert.InDelta(t, 12.0, analysis.Rows[0].Gap, 1e-9)
	assert.Equal(t, PriorityHigh, analysis.Rows[0].Priority)

	assert.Equal(t, domain.RegionEurope, analysis.Rows[1].Region)
	assert.InDelta(t, -4.0, analysis.Rows[1].Gap, 1e-9)
	assert.Equal(t, PrioritySkip, analysis.Rows[1].Priority)

	assert.Equal(t, domain.RegionGold, analysis.Rows[2].Region)
	assert.InDelta(t, 2.0, analysis.Rows[2].Gap, 1e-9)
	assert.Equal(t, PriorityConsider, analysis.Rows[2].Priority)

	assert.Equal(t, []domain.Region{domain.RegionUS}, analysis.HighPriority)
	assert.Empty(t, analysis.MediumPriority)
}

func TestAnalyzer_TenPointGapIsHigh(t *testing.T) {
	analyzer := NewAnalyzer(zerolog.Nop())

	current := map[domain.Region]float64{domain.RegionUS: 95, domain.RegionGold: 5}
	target := map[domain.Region]float64{domain.RegionUS: 85, domain.RegionGold: 15}

	analysis := analyzer.Analyze(current, target, nil, nil)

	byRegion := make(map[domain.Region]Row)
	for _, row := range analysis.Rows {
		byRegion[row.Region] = row
	}
	assert.InDelta(t, 10.0, byRegion[domain.RegionGold].Gap, 1e-9)
	assert.Equal(t, PriorityHigh, byRegion[domain.RegionGold].Priority)
	assert.Equal(t, []domain.Region{domain.RegionGold}, analysis.HighPriority)
}

func TestAnalyzer_UnionOfRegions(t *testing.T) {
	analyzer := NewAnalyzer(zerolog.Nop())

	// Gold has a target but no current position; EM is held with no target.
	current := map[domain.Region]float64{
		domain.RegionUS: 90,
		domain.RegionEM: 10,
	}
	target := map[domain.Region]float64{
		domain.RegionUS:   88,
		domain.RegionGold: 12,
	}

	analysis := analyzer.Analyze(current, target, nil, nil)
	require.Len(t, analysis.Rows, 3)

	byRegion := make(map[domain.Region]Row)
	for _, row := range analysis.Rows {
		byRegion[row.Region] = row
	}

	assert.InDelta(t, 12.0, byRegion[domain.RegionGold].Gap, 1e-9)
	assert.Equal(t, PriorityHigh, byRegion[domain.RegionGold].Priority)
	assert.InDelta(t, -10.0, byRegion[domain.RegionEM].Gap, 1e-9)
	assert.Equal(t, PrioritySkip, byRegion[domain.RegionEM].Priority)
}

func TestAnalyzer_TieBreakIsDeterministic(t *testing.T) {
	analyzer := NewAnalyzer(zerolog.Nop())

	current := map[domain.Region]float64{domain.RegionUS: 40, domain.RegionEurope: 40}
	target := map[domain.Region]float64{domain.RegionUS: 45, domain.RegionEurope: 45}

	for i := 0; i < 10; i++ {
		analysis := analyzer.Analyze(current, target, nil, nil)
		require.Len(t, analysis.Rows, 2)
		assert.Equal(t, domain.RegionEurope, analysis.Rows[0].Region)
		assert.Equal(t, domain.RegionUS, analysis.Rows[1].Region)
	}
}
