package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()

	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)

	return code, out.String(), errOut.String()
}

func Test_Commands(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		contains   []string
		notContain []string
	}{
		{
			name:     "seed validate built-in",
			args:     []string{"seed", "validate"},
			contains: []string{"built-in catalog: 5 books, 3 users"},
		},
		{
			name:     "books list sorted by title",
			args:     []string{"books", "list", "--sort", "title"},
			contains: []string{"Books (5)", "1984", "Cien Años de Soledad", "F. Scott Fitzgerald"},
		},
		{
			name:       "books search by author",
			args:       []string{"books", "search", "--by", "author", "harper"},
			contains:   []string{"Matar a un Ruiseñor"},
			notContain: []string{"1984"},
		},
		{
			name:       "users list filtered",
			args:       []string{"users", "list", "--query", "garcia"},
			contains:   []string{"Users (1)", "Ana García"},
			notContain: []string{"U002"},
		},
		{
			name:     "simulate",
			args:     []string{"simulate", "--workers", "4", "--operations", "200", "--rand-seed", "3"},
			contains: []string{"200 operations, 4 workers", "success_borrow", "Library statistics", "all invariants hold"},
		},
		{
			name:     "report after simulation",
			args:     []string{"report", "--simulate", "100", "--top", "2"},
			contains: []string{"Library statistics", "Top 2 books by popularity", "Active loans"},
		},
		{
			name:     "history of an empty memory journal",
			args:     []string{"history"},
			contains: []string{"History (0 entries)", "(none)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := execute(t, tt.args...)

			require.Equal(t, 0, code, stderr)
			for _, s := range tt.contains {
				assert.Contains(t, stdout, s)
			}
			for _, s := range tt.notContain {
				assert.NotContains(t, stdout, s)
			}
		})
	}
}

func Test_Commands_Fail(t *testing.T) {
	brokenSeed := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(brokenSeed, []byte("users:\n  - user_id: u1\n    name: U\n    email: nope\n"), 0o600))

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{name: "unknown journal backend", args: []string{"books", "list", "--journal", "tape"}, contains: "invalid config"},
		{name: "invalid log level", args: []string{"books", "list", "--log-level", "loud"}, contains: "error:"},
		{name: "invalid seed file", args: []string{"seed", "validate", brokenSeed}, contains: "invalid email"},
		{name: "missing seed file", args: []string{"seed", "validate", brokenSeed + ".missing"}, contains: "reading seed failed"},
		{name: "user and book history", args: []string{"history", "--user", "U001", "--book", "978-0-452-28423-4"}, contains: "either --user or --book"},
		{name: "missing config file", args: []string{"--config", brokenSeed + ".yaml", "books", "list"}, contains: "reading config failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, tt.args...)

			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.contains)
		})
	}
}

func Test_History_ReadsAPersistentJournal(t *testing.T) {
	// arrange
	t.Setenv("LENDING_JOURNAL_SQLITE_PATH", filepath.Join(t.TempDir(), "journal.db"))
	code, _, stderr := execute(t, "books", "list", "--journal", "sqlite")
	require.Equal(t, 0, code, stderr)

	// act
	code, stdout, stderr := execute(t, "history", "--journal", "sqlite", "--limit", "3")
	userCode, userStdout, _ := execute(t, "history", "--journal", "sqlite", "--user", "U002")

	// assert
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "History (3 entries)")
	assert.Contains(t, stdout, "add_user")
	assert.Contains(t, stdout, "María Rodríguez")
	assert.NotContains(t, stdout, "add_book")

	require.Equal(t, 0, userCode)
	assert.Contains(t, userStdout, "History (1 entries)")
	assert.Contains(t, userStdout, "Carlos López")
}
