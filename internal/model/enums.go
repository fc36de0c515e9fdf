package model

import (
	"fmt"
	"strings"
)

// Status is the lifecycle category of an achievement.
type Status int

const (
	StatusActive Status = iota
	StatusRetired
	StatusUnreleased
	StatusProfileHighlight
)

// Statuses lists every status in declaration order.
var Statuses = []Status{StatusActive, StatusRetired, StatusUnreleased, StatusProfileHighlight}

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusRetired:
		return "Retired"
	case StatusUnreleased:
		return "Unreleased"
	case StatusProfileHighlight:
		return "Profile Highlight"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus accepts a status label or a short alias ("highlight").
func ParseStatus(v string) (Status, error) {
	switch normalizeKey(v) {
	case "active":
		return StatusActive, nil
	case "retired":
		return StatusRetired, nil
	case "unreleased":
		return StatusUnreleased, nil
	case "profile-highlight", "highlight", "highlights":
		return StatusProfileHighlight, nil
	default:
		return 0, fmt.Errorf("unknown status %q", v)
	}
}

// Statistic identifies a counter in UserStats.
type Statistic int

const (
	StatisticMergedPRs Statistic = iota + 1
	StatisticTotalStars
)

func (s Statistic) String() string {
	switch s {
	case StatisticMergedPRs:
		return "merged_prs"
	case StatisticTotalStars:
		return "total_stars"
	default:
		return fmt.Sprintf("Statistic(%d)", int(s))
	}
}

// Value extracts the statistic from stats.
func (s Statistic) Value(stats UserStats) int {
	switch s {
	case StatisticMergedPRs:
		return stats.MergedPRs
	case StatisticTotalStars:
		return stats.TotalStars
	default:
		return 0
	}
}

// ParseStatistic parses the catalog name of a statistic.
func ParseStatistic(v string) (Statistic, error) {
	switch normalizeKey(v) {
	case "merged-prs":
		return StatisticMergedPRs, nil
	case "total-stars":
		return StatisticTotalStars, nil
	default:
		return 0, fmt.Errorf("unknown statistic %q", v)
	}
}

// OwnershipFilter restricts results by owned state.
type OwnershipFilter int

const (
	FilterAll OwnershipFilter = iota
	FilterOwned
	FilterUnowned
)

func (f OwnershipFilter) String() string {
	switch f {
	case FilterOwned:
		return "owned"
	case FilterUnowned:
		return "unowned"
	default:
		return "all"
	}
}

// Next cycles through the filters.
func (f OwnershipFilter) Next() OwnershipFilter {
	return (f + 1) % 3
}

// ParseOwnershipFilter parses "all", "owned" or "unowned".
func ParseOwnershipFilter(v string) (OwnershipFilter, error) {
	switch normalizeKey(v) {
	case "", "all":
		return FilterAll, nil
	case "owned":
		return FilterOwned, nil
	case "unowned", "not-owned":
		return FilterUnowned, nil
	default:
		return FilterAll, fmt.Errorf("unknown filter %q (want all, owned or unowned)", v)
	}
}

// SortKey selects the ordering of query results.
type SortKey int

const (
	SortName SortKey = iota
	SortStatus
	SortRarity
)

func (k SortKey) String() string {
	switch k {
	case SortStatus:
		return "status"
	case SortRarity:
		return "rarity"
	default:
		return "name"
	}
}

// Next cycles through the sort keys.
func (k SortKey) Next() SortKey {
	return (k + 1) % 3
}

// ParseSortKey parses "name", "status" or "rarity".
func ParseSortKey(v string) (SortKey, error) {
	switch normalizeKey(v) {
	case "", "name":
		return SortName, nil
	case "status":
		return SortStatus, nil
	case "rarity":
		return SortRarity, nil
	default:
		return SortName, fmt.Errorf("unknown sort %q (want name, status or rarity)", v)
	}
}

func normalizeKey(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.ReplaceAll(v, "_", "-")
	return strings.ReplaceAll(v, " ", "-")
}
