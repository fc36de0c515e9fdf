package catalog

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/badgedex/internal/model"
)

// validate rejects structurally broken entries and returns data-quality
// warnings for entries that load but look suspicious.
func validate(achievements []model.Achievement, trackers []model.Tracker) ([]string, error) {
	seen := make(map[string]int, len(achievements))
	for i, a := range achievements {
		if a.ID == "" {
			return nil, fmt.Errorf("%w: achievement %d has empty id", ErrInvalidCatalog, i)
		}
		if prev, ok := seen[a.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate id %q at %d and %d", ErrInvalidCatalog, a.ID, prev, i)
		}
		seen[a.ID] = i
		if strings.TrimSpace(a.Name) == "" {
			return nil, fmt.Errorf("%w: achievement %q has empty name", ErrInvalidCatalog, a.ID)
		}
		if err := validateTiers(a); err != nil {
			return nil, err
		}
	}

	var warnings []string
	tracked := make(map[string]struct{}, len(trackers))
	for _, t := range trackers {
		i, ok := seen[t.AchievementID]
		if !ok {
			return nil, fmt.Errorf("%w: tracking refers to unknown achievement %q", ErrInvalidCatalog, t.AchievementID)
		}
		if _, dup := tracked[t.AchievementID]; dup {
			return nil, fmt.Errorf("%w: achievement %q is tracked twice", ErrInvalidCatalog, t.AchievementID)
		}
		tracked[t.AchievementID] = struct{}{}
		if t.Statistic != model.StatisticMergedPRs && t.Statistic != model.StatisticTotalStars {
			return nil, fmt.Errorf("%w: achievement %q tracks unknown statistic %v", ErrInvalidCatalog, t.AchievementID, t.Statistic)
		}
		if t.OwnedAt < 0 {
			return nil, fmt.Errorf("%w: achievement %q has negative owned threshold", ErrInvalidCatalog, t.AchievementID)
		}
		a := achievements[i]
		if !a.Tiered() {
			warnings = append(warnings, fmt.Sprintf("%s is tracked but has no tiers; progress will never be shown", a.ID))
			continue
		}
		if first := a.Tiers[0].ThresholdValue(); first != t.OwnedAt {
			warnings = append(warnings, fmt.Sprintf("%s owned threshold %d differs from first tier threshold %d", a.ID, t.OwnedAt, first))
		}
	}
	return warnings, nil
}

func validateTiers(a model.Achievement) error {
	prev := -1
	for i, t := range a.Tiers {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("%w: achievement %q tier %d has empty name", ErrInvalidCatalog, a.ID, i)
		}
		if t.Threshold == nil {
			continue
		}
		v := *t.Threshold
		if v < 0 {
			return fmt.Errorf("%w: achievement %q tier %q has negative threshold", ErrInvalidCatalog, a.ID, t.Name)
		}
		if v <= prev {
			return fmt.Errorf("%w: achievement %q tier thresholds are not strictly increasing at %q", ErrInvalidCatalog, a.ID, t.Name)
		}
		prev = v
	}
	return nil
}
