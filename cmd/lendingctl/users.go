package main

import (
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-lending-engine/library"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered users",
	}

	cmd.AddCommand(newUsersListCmd(a))

	return cmd
}

func newUsersListCmd(a *app) *cobra.Command {
	var (
		filter library.UserFilter
		sortBy string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users, optionally filtered and sorted",
		Long: `List the registered users.

Sort keys: user_id, name, activity, borrowed.

Examples:
  lendingctl users list --sort name
  lendingctl users list --query garcia`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, err := a.newSeededLibrary(cmd.Context())
			if err != nil {
				return err
			}

			users := lib.ListUsers(filter, library.UserSortKey(sortBy))

			a.heading("── Users (%d)", len(users))
			a.renderUsers(users)

			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Query, "query", "", "substring of id, name or email")
	cmd.Flags().BoolVar(&filter.ActiveOnly, "active", false, "only users with a book on loan")
	cmd.Flags().StringVar(&sortBy, "sort", "user_id", "sort key")

	return cmd
}
