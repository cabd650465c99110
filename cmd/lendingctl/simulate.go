package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-lending-engine/shell/config"
	"github.com/AntonStoeckl/library-lending-engine/simulation"
)

func newSimulateCmd(a *app) *cobra.Command {
	var returnRatio float64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run concurrent borrows and returns against the seeded library",
		Long: `Seed the library, then let concurrent readers borrow and return random books.
Prints the outcome of every operation grouped by result and verifies all invariants.

Examples:
  lendingctl simulate
  lendingctl simulate --workers 32 --operations 100000 --rand-seed 7
  lendingctl simulate --journal sqlite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			lib, err := a.newSeededLibrary(ctx)
			if err != nil {
				return err
			}

			result, err := simulation.Run(ctx, lib, simulation.Config{
				Workers:          a.cfg.Simulation.Workers,
				Operations:       a.cfg.Simulation.Operations,
				Seed:             a.cfg.Simulation.Seed,
				ReturnRatio:      returnRatio,
				Logger:           a.logger,
				ContextualLogger: a.obs.ContextualLogger,
			})
			if err != nil {
				return err
			}

			a.heading("── Outcomes (%d operations, %d workers, %s)",
				result.Total(), a.cfg.Simulation.Workers, result.Duration.Round(time.Millisecond))

			rows := make([][]string, 0, len(result.Outcomes))
			for _, key := range result.Keys() {
				rows = append(rows, []string{key, strconv.Itoa(result.Outcomes[key])})
			}
			a.table([]string{"OUTCOME", "COUNT"}, rows)

			_, _ = fmt.Fprintln(a.out)
			a.renderStats(lib.Stats())
			a.ok("all invariants hold")

			if dropped := lib.DroppedNotifications(); dropped > 0 {
				a.warn("%d notifications were dropped, the queue holds %d", dropped, a.cfg.Library.NotificationCapacity)
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.Int("workers", 0, "concurrent readers (default from config: 8)")
	flags.Int("operations", 0, "total operations (default from config: 1000)")
	flags.Int64("rand-seed", 0, "seed of the pseudo-random readers (default from config: 1)")
	flags.Float64Var(&returnRatio, "return-ratio", 0, "chance that a reader holding books returns one (0 means 0.4)")

	a.bind(config.KeySimulationWorkers, flags.Lookup("workers"))
	a.bind(config.KeySimulationOperations, flags.Lookup("operations"))
	a.bind(config.KeySimulationSeed, flags.Lookup("rand-seed"))

	return cmd
}
