package progress

import (
	"sort"

	"github.com/samber/lo"

	"github.com/verte-zerg/badgedex/internal/model"
)

// OwnedSet holds achievement ids the user has marked as owned by hand.
// Values are treated as immutable; Toggle returns a new set.
type OwnedSet struct {
	ids map[string]struct{}
}

// NewOwnedSet builds a set from ids, ignoring blanks and duplicates.
func NewOwnedSet(ids ...string) OwnedSet {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		m[id] = struct{}{}
	}
	return OwnedSet{ids: m}
}

// Has reports whether id was marked owned.
func (s OwnedSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of marked ids.
func (s OwnedSet) Len() int {
	return len(s.ids)
}

// Toggle flips the membership of id. Applying it twice restores the original set.
func (s OwnedSet) Toggle(id string) OwnedSet {
	next := make(map[string]struct{}, len(s.ids)+1)
	for k := range s.ids {
		next[k] = struct{}{}
	}
	if _, ok := next[id]; ok {
		delete(next, id)
	} else if id != "" {
		next[id] = struct{}{}
	}
	return OwnedSet{ids: next}
}

// IDs returns the marked ids in sorted order.
func (s OwnedSet) IDs() []string {
	out := lo.Keys(s.ids)
	sort.Strings(out)
	return out
}

// IsOwned reports whether id counts as owned. A manual mark always wins;
// otherwise a trackable badge is owned once its statistic reaches the
// badge's owned threshold.
func (e *Evaluator) IsOwned(id string, owned OwnedSet, snap *model.ProgressSnapshot) bool {
	if owned.Has(id) {
		return true
	}
	if snap == nil {
		return false
	}
	t, ok := e.trackers[id]
	if !ok {
		return false
	}
	return snap.Current >= t.OwnedAt
}

// Resolver binds an evaluator, a manual set and optional stats into a
// per-achievement ownership predicate.
func (e *Evaluator) Resolver(owned OwnedSet, stats *model.UserStats) func(model.Achievement) bool {
	return func(a model.Achievement) bool {
		snap, ok := e.Evaluate(a, stats)
		if !ok {
			return e.IsOwned(a.ID, owned, nil)
		}
		return e.IsOwned(a.ID, owned, &snap)
	}
}
