package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// withEngine opens the configured database and runs fn with an engine bound
// to it. Pending notifications are delivered before the database closes.
func withEngine(cmd *cobra.Command, ctx *commandContext, fn func(context.Context, *sql.DB, *matching.Engine) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	// Command output goes to stdout, so logs only go to stderr.
	slog.SetDefault(slog.New(newLevelRouter(cmd.ErrOrStderr(), cmd.ErrOrStderr(), level)))

	database, err := openDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	engine := newEngine(cfg, database)
	defer engine.Close()

	return fn(cmd.Context(), database, engine)
}

func parseID(arg, name string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, arg)
	}
	return id, nil
}

func newEvaluateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <item-id>",
		Short: "Re-run matching for one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0], "item id")
			if err != nil {
				return err
			}
			return withEngine(cmd, ctx, func(c context.Context, database *sql.DB, engine *matching.Engine) error {
				// The item's own direction is the one to evaluate.
				item, err := store.GetItem(c, database, itemID)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item %d not found", itemID)
				}
				matches, err := engine.EvaluateNewItem(c, item.ID, item.Status)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Item %d (%s, %s): %d match(es)\n", item.ID, item.Status, item.ItemStatus, len(matches))
				printMatches(out, matches)
				return nil
			})
		},
	}
}

func newMatchesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "matches <user-id>",
		Short: "List a user's matches by score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "user id")
			if err != nil {
				return err
			}
			return withEngine(cmd, ctx, func(c context.Context, database *sql.DB, engine *matching.Engine) error {
				matches, err := engine.ListForUser(c, userID)
				if err != nil {
					return err
				}
				if len(matches) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
					return nil
				}
				printMatches(cmd.OutOrStdout(), matches)
				return nil
			})
		},
	}
}

func newCompareCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <lost-item-id> <found-item-id>",
		Short: "Show the score breakdown of one pair without saving it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lostID, err := parseID(args[0], "lost item id")
			if err != nil {
				return err
			}
			foundID, err := parseID(args[1], "found item id")
			if err != nil {
				return err
			}
			return withEngine(cmd, ctx, func(c context.Context, database *sql.DB, engine *matching.Engine) error {
				result, existing, err := engine.Compare(c, lostID, foundID)
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), result, existing)
				return nil
			})
		},
	}
}

func printMatches(w io.Writer, matches []model.Match) {
	for _, m := range matches {
		fmt.Fprintf(w, "  #%d  %.2f  %-9s  lost %d %q  found %d %q\n",
			m.ID, m.MatchScore, m.Status,
			m.LostItemID, m.LostItemTitle, m.FoundItemID, m.FoundItemTitle)
	}
}

func printResult(w io.Writer, r matching.Result, existing *model.Match) {
	b := r.Breakdown
	fmt.Fprintf(w, "Score:             %.2f (threshold %.2f)\n", r.Score, matching.Threshold)
	fmt.Fprintf(w, "  category         %.2f\n", b.CategoryScore)
	fmt.Fprintf(w, "  title            %.2f\n", b.TitleScore)
	fmt.Fprintf(w, "  description      %.2f\n", b.DescriptionScore)
	fmt.Fprintf(w, "  title+desc       %.2f\n", b.TitleDescriptionScore)
	fmt.Fprintf(w, "  location         %.2f\n", b.LocationScore)
	fmt.Fprintf(w, "  keywords         %.2f\n", b.KeywordScore)

	switch {
	case existing != nil:
		fmt.Fprintf(w, "Existing match #%d (%s, stored score %.2f)\n", existing.ID, existing.Status, existing.MatchScore)
	case r.Accepted():
		fmt.Fprintln(w, "Would be matched.")
	default:
		fmt.Fprintln(w, "Below threshold.")
	}
}
