package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/badgedex/internal/guide"
	"github.com/verte-zerg/badgedex/internal/model"
	"github.com/verte-zerg/badgedex/internal/query"
	"github.com/verte-zerg/badgedex/internal/stats"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List achievements, earnable first",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	owned, err := a.ownedSet(ctx)
	if err != nil {
		return err
	}
	user, err := a.fetchLinked(ctx)
	if err != nil {
		logErrf("%v; showing manual ownership only\n", err)
	}

	sorted := query.Run(a.catalog.All(), query.OptionsFrom(a.browse), a.evaluator.Resolver(owned, user))
	if len(sorted) == 0 {
		logErrln("No achievements match.")
		return nil
	}
	earnable, retired := query.Partition(sorted)
	report := stats.Resolve(earnable, owned, a.evaluator, user)
	var sections []string
	if len(earnable) > 0 {
		sections = append(sections, "Earnable\n"+stats.RenderRows(report.Rows))
	}
	if len(retired) > 0 {
		sections = append(sections, "Retired\n"+stats.RenderRows(stats.Resolve(retired, owned, a.evaluator, user).Rows))
	}
	return writeOut(cmd, strings.Join(sections, "\n\n"))
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an achievement guide",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ach, err := a.catalog.Lookup(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	owned, err := a.ownedSet(ctx)
	if err != nil {
		return err
	}
	user, err := a.fetchLinked(ctx)
	if err != nil {
		logErrf("%v; progress unavailable\n", err)
	}

	var b strings.Builder
	b.WriteString(guide.Strategy(ach))
	fmt.Fprintf(&b, "\n\n**Status:** %s", ach.Status)
	row := stats.Resolve([]model.Achievement{ach}, owned, a.evaluator, user).Rows[0]
	if row.Owned {
		b.WriteString(" · ✓ owned")
	}
	if p := row.Progress; p != nil {
		fmt.Fprintf(&b, "\n\n**Progress:** `%s` %d%% (%d/%d)", stats.Bar(p.Percent, 20), p.Percent, p.Current, p.Target)
		if !p.IsMaxed {
			fmt.Fprintf(&b, ", next tier %s", p.NextTierName)
		}
	}
	if related := a.catalog.Related(ach.ID, 3); len(related) > 0 {
		b.WriteString("\n\n**Related:**\n")
		for _, r := range related {
			fmt.Fprintf(&b, "- %s %s (`%s`)\n", r.Emoji, r.Name, r.ID)
		}
	}
	return writeOut(cmd, renderMarkdown(b.String()))
}

func newOwnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "own <id>...",
		Short: "Toggle manual ownership of achievements",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runOwnCmd,
	}
}

func runOwnCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	owned, err := a.ownedSet(ctx)
	if err != nil {
		return err
	}
	var lines []string
	for _, id := range args {
		ach, err := a.catalog.Lookup(id)
		if err != nil {
			return err
		}
		owned = owned.Toggle(ach.ID)
		state := "not owned"
		if owned.Has(ach.ID) {
			state = "owned"
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s", ach.Emoji, ach.Name, state))
	}
	if err := a.store.SaveOwned(ctx, owned.IDs()); err != nil {
		return fmt.Errorf("failed to save owned achievements: %w", err)
	}
	return writeOut(cmd, strings.Join(lines, "\n"))
}

func newLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <username>",
		Short: "Link a GitHub profile and show tracked progress",
		Args:  cobra.ExactArgs(1),
		RunE:  runLinkCmd,
	}
}

func runLinkCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	st, err := a.githubClient().FetchUserStats(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch @%s: %w", args[0], err)
	}
	if err := a.store.SetLinkedProfile(ctx, st.Username); err != nil {
		return fmt.Errorf("failed to save linked profile: %w", err)
	}
	owned, err := a.ownedSet(ctx)
	if err != nil {
		return err
	}
	report := stats.Resolve(a.catalog.All(), owned, a.evaluator, &st)
	logErrf("Linked @%s\n", st.Username)
	return writeOut(cmd, stats.RenderProfile(st, report.Rows))
}

func newUnlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink",
		Short: "Forget the linked GitHub profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.store.ClearLinkedProfile(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear linked profile: %w", err)
			}
			logErrln("Profile unlinked.")
			return nil
		},
	}
}

func newProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress [username]",
		Short: "Show tier progress for trackable achievements",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProgressCmd,
	}
}

func runProgressCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		profileUser = args[0]
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	user, err := a.fetchLinked(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no profile linked (run: badgedex link <username>)")
	}
	report, err := stats.BuildReport(ctx, a.store, a.catalog.All(), a.evaluator, user)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	tracked := make([]stats.Row, 0, len(report.Rows))
	for _, r := range report.Rows {
		if r.Progress != nil {
			tracked = append(tracked, r)
		}
	}
	return writeOut(cmd, stats.RenderRows(tracked))
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>...",
		Short: "Ask the guide about an achievement",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAskCmd,
	}
}

func runAskCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	responder, err := a.responder(cmd.Context())
	if err != nil {
		return err
	}
	answer := responder.Respond(cmd.Context(), strings.Join(args, " "))
	return writeOut(cmd, renderMarkdown(answer))
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show collection progress by status",
		Args:  cobra.NoArgs,
		RunE:  runSummaryCmd,
	}
}

func runSummaryCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	user, err := a.fetchLinked(ctx)
	if err != nil {
		logErrf("%v; counting manual ownership only\n", err)
	}
	report, err := stats.BuildReport(ctx, a.store, a.catalog.All(), a.evaluator, user)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return writeOut(cmd, stats.RenderSummary(report.Summary))
}

// renderMarkdown renders md for the terminal, falling back to the raw text.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(terminalWidth()-2, 100)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func writeOut(cmd *cobra.Command, text string) error {
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
