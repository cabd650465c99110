package main

import (
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-lending-engine/simulation"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		top      int
		simulate int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print statistics, rankings and active loans",
		Long: `Seed the library, optionally run a simulation, then print the statistics, the
most popular books, the most active users, the most borrowed books and all active loans.

Examples:
  lendingctl report
  lendingctl report --simulate 500 --top 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			lib, err := a.newSeededLibrary(ctx)
			if err != nil {
				return err
			}

			if simulate > 0 {
				if _, err = simulation.Run(ctx, lib, simulation.Config{
					Workers:          a.cfg.Simulation.Workers,
					Operations:       simulate,
					Seed:             a.cfg.Simulation.Seed,
					Logger:           a.logger,
					ContextualLogger: a.obs.ContextualLogger,
				}); err != nil {
					return err
				}
			}

			a.renderStats(lib.Stats())

			a.heading("── Top %d books by popularity", top)
			a.renderBooks(lib.TopBooks(top))

			a.heading("── Top %d users by activity", top)
			a.renderUsers(lib.TopUsers(top))

			a.heading("── Most borrowed books")
			a.renderBooks(lib.MostBorrowedBooks(top))

			a.heading("── Active loans")
			a.renderLoans(lib.ActiveLoans())

			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 5, "entries per ranking")
	cmd.Flags().IntVar(&simulate, "simulate", 0, "run this many simulated operations before reporting")

	return cmd
}
