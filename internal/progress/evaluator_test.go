package progress

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/badgedex/internal/model"
)

func intp(v int) *int { return &v }

func pullShark() model.Achievement {
	return model.Achievement{
		ID:     "pull-shark",
		Name:   "Pull Shark",
		Status: model.StatusActive,
		Tiers: []model.Tier{
			{Name: "Bronze", Threshold: intp(2)},
			{Name: "Silver", Threshold: intp(16)},
			{Name: "Gold", Threshold: intp(128)},
		},
	}
}

func testEvaluator() *Evaluator {
	return NewEvaluator([]model.Tracker{
		{AchievementID: "pull-shark", Statistic: model.StatisticMergedPRs, OwnedAt: 2},
		{AchievementID: "starstruck", Statistic: model.StatisticTotalStars, OwnedAt: 16},
	})
}

func TestEvaluateScenarios(t *testing.T) {
	ev := testEvaluator()
	tests := []struct {
		name   string
		merged int
		want   model.ProgressSnapshot
	}{
		{
			name:   "zero progress",
			merged: 0,
			want:   model.ProgressSnapshot{Current: 0, Target: 2, Percent: 0, NextTierName: "Bronze"},
		},
		{
			name:   "on silver threshold targets gold",
			merged: 16,
			want:   model.ProgressSnapshot{Current: 16, Target: 128, Percent: 13, NextTierName: "Gold"},
		},
		{
			name:   "exactly gold is maxed",
			merged: 128,
			want:   model.ProgressSnapshot{Current: 128, Target: 128, Percent: 100, IsMaxed: true},
		},
		{
			name:   "beyond gold clamps",
			merged: 200,
			want:   model.ProgressSnapshot{Current: 200, Target: 128, Percent: 100, IsMaxed: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ev.Evaluate(pullShark(), &model.UserStats{MergedPRs: tt.merged})
			require.True(t, ok)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluateAbsent(t *testing.T) {
	ev := testEvaluator()
	stats := &model.UserStats{MergedPRs: 50, TotalStars: 50}

	_, ok := ev.Evaluate(pullShark(), nil)
	assert.False(t, ok, "nil stats")

	untracked := pullShark()
	untracked.ID = "pair-extraordinaire"
	_, ok = ev.Evaluate(untracked, stats)
	assert.False(t, ok, "untracked achievement")

	noTiers := pullShark()
	noTiers.Tiers = nil
	_, ok = ev.Evaluate(noTiers, stats)
	assert.False(t, ok, "no tiers")
}

func TestEvaluateMissingThresholdTargetsOne(t *testing.T) {
	ev := NewEvaluator([]model.Tracker{{AchievementID: "x", Statistic: model.StatisticTotalStars}})
	a := model.Achievement{ID: "x", Tiers: []model.Tier{{Name: "Only"}}}

	got, ok := ev.Evaluate(a, &model.UserStats{TotalStars: 0})
	require.True(t, ok)
	assert.Equal(t, model.ProgressSnapshot{Current: 0, Target: 1, Percent: 0, IsMaxed: true}, got)

	got, ok = ev.Evaluate(a, &model.UserStats{TotalStars: 3})
	require.True(t, ok)
	assert.Equal(t, 100, got.Percent)
	assert.True(t, got.IsMaxed)
}

func TestEvaluatePercentBoundedAndMonotonic(t *testing.T) {
	ev := testEvaluator()
	a := pullShark()
	a.ID = "starstruck"
	a.Tiers = []model.Tier{
		{Name: "Bronze", Threshold: intp(16)},
		{Name: "Silver", Threshold: intp(128)},
		{Name: "Gold", Threshold: intp(512)},
	}

	// Monotonic within a single target; the target jumps at tier boundaries.
	prevTarget, prevPercent := 0, -1
	for stars := 0; stars <= 700; stars++ {
		snap, ok := ev.Evaluate(a, &model.UserStats{TotalStars: stars})
		require.True(t, ok)
		require.GreaterOrEqual(t, snap.Percent, 0)
		require.LessOrEqual(t, snap.Percent, 100)
		if snap.Target == prevTarget {
			require.GreaterOrEqual(t, snap.Percent, prevPercent, "stars=%d", stars)
		}
		prevTarget, prevPercent = snap.Target, snap.Percent

		last := a.Tiers[len(a.Tiers)-1].ThresholdValue()
		assert.Equal(t, stars >= last, snap.IsMaxed, "stars=%d", stars)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	ev := testEvaluator()
	stats := &model.UserStats{MergedPRs: 40}
	first, ok1 := ev.Evaluate(pullShark(), stats)
	second, ok2 := ev.Evaluate(pullShark(), stats)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}

func TestPercentRoundsBeforeClamp(t *testing.T) {
	assert.Equal(t, 13, percent(16, 128))
	assert.Equal(t, 1, percent(1, 128))
	assert.Equal(t, 0, percent(0, 128))
	assert.Equal(t, 100, percent(1000, 128))
	assert.Equal(t, 50, percent(1, 2))
}
