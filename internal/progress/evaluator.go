// Package progress computes badge progress and ownership from user statistics.
package progress

import (
	"math"

	"github.com/verte-zerg/badgedex/internal/model"
)

// Evaluator maps trackable achievements to user statistics. It holds no
// mutable state and is safe for concurrent use.
type Evaluator struct {
	trackers map[string]model.Tracker
}

// NewEvaluator builds an evaluator from catalog tracking rows.
func NewEvaluator(trackers []model.Tracker) *Evaluator {
	m := make(map[string]model.Tracker, len(trackers))
	for _, t := range trackers {
		m[t.AchievementID] = t
	}
	return &Evaluator{trackers: m}
}

// Trackable reports whether progress for id can be computed from statistics.
func (e *Evaluator) Trackable(id string) bool {
	_, ok := e.trackers[id]
	return ok
}

// Evaluate returns the progress of a against stats. The second result is
// false when stats is nil, the achievement is not trackable, or it has no tiers.
func (e *Evaluator) Evaluate(a model.Achievement, stats *model.UserStats) (model.ProgressSnapshot, bool) {
	if stats == nil || !a.Tiered() {
		return model.ProgressSnapshot{}, false
	}
	tracker, ok := e.trackers[a.ID]
	if !ok {
		return model.ProgressSnapshot{}, false
	}

	current := tracker.Statistic.Value(*stats)
	snap := model.ProgressSnapshot{Current: current}

	next := -1
	for i, t := range a.Tiers {
		if t.ThresholdValue() > current {
			next = i
			break
		}
	}
	if next >= 0 {
		snap.Target = targetOf(a.Tiers[next])
		snap.NextTierName = a.Tiers[next].Name
	} else {
		snap.Target = targetOf(a.Tiers[len(a.Tiers)-1])
		snap.IsMaxed = true
	}
	snap.Percent = percent(current, snap.Target)
	return snap, true
}

// OwnedThreshold returns the absolute value at which a trackable badge is earned.
func (e *Evaluator) OwnedThreshold(id string) (int, bool) {
	t, ok := e.trackers[id]
	if !ok {
		return 0, false
	}
	return t.OwnedAt, true
}

func targetOf(t model.Tier) int {
	if v := t.ThresholdValue(); v > 0 {
		return v
	}
	return 1
}

// percent rounds before clamping to [0, 100].
func percent(current, target int) int {
	p := int(math.Round(float64(current) / float64(target) * 100))
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
