// Package model defines shared data structures.
package model

// Achievement is a catalog entry describing a collectible badge.
type Achievement struct {
	ID          string
	Name        string
	Emoji       string
	Description string
	HowToEarn   string
	Status      Status
	Tiers       []Tier
	GuideSteps  []string
	ImageURL    string
}

// Tiered reports whether the achievement has at least one tier.
func (a Achievement) Tiered() bool {
	return len(a.Tiers) > 0
}

// Tier is a named progress rung within an achievement.
type Tier struct {
	Name      string
	Color     string
	Criteria  string
	Threshold *int
}

// ThresholdValue returns the tier threshold, or 0 when it is absent.
func (t Tier) ThresholdValue() int {
	if t.Threshold == nil {
		return 0
	}
	return *t.Threshold
}

// UserStats captures public profile counters fetched for a user.
type UserStats struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	PublicRepos int    `json:"publicRepos"`
	Followers   int    `json:"followers"`
	MergedPRs   int    `json:"mergedPRs"`
	TotalStars  int    `json:"totalStars"`
}

// Tracker maps a trackable achievement to the statistic that drives it.
// OwnedAt is the absolute value at which the badge counts as earned; it is
// independent of the tier thresholds.
type Tracker struct {
	AchievementID string
	Statistic     Statistic
	OwnedAt       int
}

// ProgressSnapshot is derived on demand and never persisted.
type ProgressSnapshot struct {
	Current      int    `json:"current"`
	Target       int    `json:"target"`
	Percent      int    `json:"percent"`
	IsMaxed      bool   `json:"isMaxed"`
	NextTierName string `json:"nextTierName,omitempty"`
}

// BrowseConfig defines how the catalog is presented.
type BrowseConfig struct {
	Search string
	Filter OwnershipFilter
	Sort   SortKey
	Status *Status
}
