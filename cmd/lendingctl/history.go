package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-lending-engine/library"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit  int
		userID string
		isbn   string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the latest journaled operations, newest first",
		Long: `Read the operation journal without seeding. With the memory backend the
journal starts empty on every invocation, so this is mostly useful with sqlite or postgres.

Examples:
  lendingctl history --journal sqlite --limit 50
  lendingctl history --journal postgres --user U001`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID != "" && isbn != "" {
				return errors.New("use either --user or --book, not both")
			}

			ctx := cmd.Context()

			lib, err := a.newLibrary(ctx)
			if err != nil {
				return err
			}

			var entries []library.HistoryEntry

			switch {
			case userID != "":
				entries, err = lib.UserHistory(ctx, userID, limit)
			case isbn != "":
				entries, err = lib.BookHistory(ctx, isbn, limit)
			default:
				entries, err = lib.History(ctx, limit)
			}

			if err != nil {
				return err
			}

			a.heading("── History (%d entries)", len(entries))
			a.renderHistory(entries)

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries")
	cmd.Flags().StringVar(&userID, "user", "", "only operations concerning this user id")
	cmd.Flags().StringVar(&isbn, "book", "", "only operations concerning this isbn")

	return cmd
}
