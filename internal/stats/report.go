package stats

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/badgedex/internal/model"
	"github.com/verte-zerg/badgedex/internal/progress"
)

// OwnedSource loads the manually owned ids.
type OwnedSource interface {
	LoadOwned(ctx context.Context) ([]string, error)
}

// Row is one achievement with its resolved state.
type Row struct {
	Achievement model.Achievement
	Owned       bool
	Manual      bool
	Progress    *model.ProgressSnapshot
}

// Report contains precomputed data for text rendering.
type Report struct {
	Rows    []Row
	Summary Summary
}

// BuildReport loads the owned set and resolves every achievement in items.
// userStats may be nil.
func BuildReport(ctx context.Context, src OwnedSource, items []model.Achievement, ev *progress.Evaluator, userStats *model.UserStats) (Report, error) {
	ids, err := src.LoadOwned(ctx)
	if err != nil {
		return Report{}, err
	}
	return Resolve(items, progress.NewOwnedSet(ids...), ev, userStats), nil
}

// Resolve builds a report from an already loaded owned set.
func Resolve(items []model.Achievement, owned progress.OwnedSet, ev *progress.Evaluator, userStats *model.UserStats) Report {
	rows := make([]Row, 0, len(items))
	for _, a := range items {
		row := Row{Achievement: a, Manual: owned.Has(a.ID)}
		if snap, ok := ev.Evaluate(a, userStats); ok {
			row.Progress = &snap
		}
		row.Owned = ev.IsOwned(a.ID, owned, row.Progress)
		rows = append(rows, row)
	}
	resolve := ev.Resolver(owned, userStats)
	return Report{Rows: rows, Summary: Summarize(items, resolve)}
}

// RenderRows renders rows as an aligned table.
func RenderRows(rows []Row) string {
	t := newTable(
		column{title: "ID"},
		column{title: "Badge", max: 28},
		column{title: "Status"},
		column{title: "Owned"},
		column{title: "Progress"},
	)
	for _, r := range rows {
		mark := ""
		if r.Owned {
			mark = "✓"
		}
		t.add(
			r.Achievement.ID,
			strings.TrimSpace(r.Achievement.Emoji+" "+r.Achievement.Name),
			r.Achievement.Status.String(),
			mark,
			progressCell(r.Progress),
		)
	}
	return t.String()
}

func progressCell(snap *model.ProgressSnapshot) string {
	if snap == nil {
		return "-"
	}
	cell := fmt.Sprintf("%s %3d%% %d/%d", Bar(snap.Percent, 10), snap.Percent, snap.Current, snap.Target)
	if snap.IsMaxed {
		return cell + " max"
	}
	return cell + " → " + snap.NextTierName
}

// RenderProfile renders the stat tiles for a fetched user followed by the
// progress of every trackable achievement in rows.
func RenderProfile(user model.UserStats, rows []Row) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (@%s)\n", user.DisplayName, user.Username)
	tiles := newTable(column{}, column{right: true})
	tiles.add("Repos", humanize.Comma(int64(user.PublicRepos)))
	tiles.add("Followers", humanize.Comma(int64(user.Followers)))
	tiles.add("Merged PRs", humanize.Comma(int64(user.MergedPRs)))
	tiles.add("Stars", humanize.Comma(int64(user.TotalStars)))
	b.WriteString(tiles.String())
	for _, r := range rows {
		if r.Progress == nil {
			continue
		}
		fmt.Fprintf(&b, "\n\n%s %s\n%s", r.Achievement.Emoji, r.Achievement.Name, progressCell(r.Progress))
	}
	return b.String()
}
