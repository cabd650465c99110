package main

import (
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-lending-engine/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Work with seed files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate [file]",
		Short: "Check a seed file against all catalog and registry rules",
		Long: `Apply a seed file to a scratch library and report every entry it rejects.
Without an argument the configured seed file (or the built-in catalog) is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Seed.File
			if len(args) == 1 {
				path = args[0]
			}

			doc, err := seed.Load(path)
			if err != nil {
				return err
			}

			if err = seed.Validate(cmd.Context(), doc); err != nil {
				return err
			}

			source := path
			if source == "" {
				source = "built-in catalog"
			}

			a.ok("%s: %d books, %d users", source, len(doc.Books), len(doc.Users))

			return nil
		},
	})

	return cmd
}
