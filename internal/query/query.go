// Package query filters, searches and orders the achievement catalog for display.
package query

import (
	"sort"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/verte-zerg/badgedex/internal/model"
)

// OwnershipFunc reports whether an achievement is owned.
type OwnershipFunc func(model.Achievement) bool

// Options selects which achievements are returned and in what order.
type Options struct {
	Search string
	Filter model.OwnershipFilter
	Sort   model.SortKey
	// Status restricts results to one lifecycle status when set.
	Status *model.Status
}

// OptionsFrom converts a browse config into query options.
func OptionsFrom(cfg model.BrowseConfig) Options {
	return Options{Search: cfg.Search, Filter: cfg.Filter, Sort: cfg.Sort, Status: cfg.Status}
}

// Run returns the achievements matching opts, stably sorted. The input slice
// is not modified. A nil owned func treats every achievement as unowned.
func Run(items []model.Achievement, opts Options, owned OwnershipFunc) []model.Achievement {
	if owned == nil {
		owned = func(model.Achievement) bool { return false }
	}
	needle := strings.ToLower(strings.TrimSpace(opts.Search))
	out := lo.Filter(items, func(a model.Achievement, _ int) bool {
		if opts.Status != nil && a.Status != *opts.Status {
			return false
		}
		return matchesSearch(a, needle) && matchesFilter(a, opts.Filter, owned)
	})
	sortStable(out, opts.Sort)
	return out
}

// Partition splits sorted results into earnable and retired groups, keeping
// the relative order of each.
func Partition(sorted []model.Achievement) (earnable, retired []model.Achievement) {
	isRetired := func(a model.Achievement, _ int) bool { return a.Status == model.StatusRetired }
	return lo.Reject(sorted, isRetired), lo.Filter(sorted, isRetired)
}

// RarityWeight ranks statuses for the rarity sort; higher is rarer.
func RarityWeight(s model.Status) int {
	switch s {
	case model.StatusProfileHighlight:
		return 3
	case model.StatusActive:
		return 2
	case model.StatusRetired, model.StatusUnreleased:
		return 1
	default:
		return 1
	}
}

func matchesSearch(a model.Achievement, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Name), needle) ||
		strings.Contains(strings.ToLower(a.Description), needle)
}

func matchesFilter(a model.Achievement, filter model.OwnershipFilter, owned OwnershipFunc) bool {
	switch filter {
	case model.FilterOwned:
		return owned(a)
	case model.FilterUnowned:
		return !owned(a)
	default:
		return true
	}
}

func sortStable(items []model.Achievement, key model.SortKey) {
	col := collate.New(language.English)
	byName := func(i, j int) int {
		return col.CompareString(items[i].Name, items[j].Name)
	}
	switch key {
	case model.SortStatus:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Status.String() < items[j].Status.String()
		})
	case model.SortRarity:
		sort.SliceStable(items, func(i, j int) bool {
			wi, wj := RarityWeight(items[i].Status), RarityWeight(items[j].Status)
			if wi != wj {
				return wi > wj
			}
			return byName(i, j) < 0
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return byName(i, j) < 0
		})
	}
}
