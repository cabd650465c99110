package main

import (
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/library"
)

func newBooksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List or search the seeded catalog",
	}

	cmd.AddCommand(newBooksListCmd(a), newBooksSearchCmd(a))

	return cmd
}

func newBooksListCmd(a *app) *cobra.Command {
	var (
		filter library.BookFilter
		sortBy string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books, optionally filtered and sorted",
		Long: `List the catalog.

Sort keys: isbn, title, author, year, popularity, times_borrowed, available.

Examples:
  lendingctl books list --sort title
  lendingctl books list --query orwell --available`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, err := a.newSeededLibrary(cmd.Context())
			if err != nil {
				return err
			}

			books := lib.ListBooks(filter, library.BookSortKey(sortBy))

			a.heading("── Books (%d)", len(books))
			a.renderBooks(books)

			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Query, "query", "", "substring of isbn, title or author")
	cmd.Flags().BoolVar(&filter.AvailableOnly, "available", false, "only books with a copy on the shelf")
	cmd.Flags().BoolVar(&filter.OnLoanOnly, "on-loan", false, "only books with a copy on loan")
	cmd.Flags().StringVar(&sortBy, "sort", "isbn", "sort key")

	return cmd
}

func newBooksSearchCmd(a *app) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search books by title prefix, author prefix or any field",
		Long: `Search the catalog. Title and author searches match case-insensitive prefixes,
the default searches isbn, title and author for a substring.

Examples:
  lendingctl books search "cien"
  lendingctl books search --by author "harper"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.newSeededLibrary(cmd.Context())
			if err != nil {
				return err
			}

			var books []core.Book
			switch by {
			case "title":
				books = lib.FindBooksByTitle(args[0])
			case "author":
				books = lib.FindBooksByAuthor(args[0])
			default:
				books = lib.SearchBooks(args[0])
			}

			a.heading("── Matches for %q (%d)", args[0], len(books))
			a.renderBooks(books)

			return nil
		},
	}

	cmd.Flags().StringVar(&by, "by", "any", "title, author or any")

	return cmd
}
