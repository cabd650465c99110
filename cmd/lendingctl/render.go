package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/library"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	cellPadding = lipgloss.NewStyle().PaddingRight(2)
)

// heading prints a cyan section title.
func (a *app) heading(format string, args ...any) {
	_, _ = fmt.Fprintln(a.out)
	_, _ = fmt.Fprintln(a.out, color.CyanString(fmt.Sprintf(format, args...)))
}

// table renders rows in left-aligned columns sized to their widest cell.
func (a *app) table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(a.out, dimStyle.Render("  (none)"))
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		rendered := make([]string, len(cells))
		for i, cell := range cells {
			rendered[i] = cellPadding.Width(widths[i] + 2).Render(style.Render(cell))
		}

		return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, rendered...), " ")
	}

	_, _ = fmt.Fprintln(a.out, line(headers, headerStyle))
	for _, row := range rows {
		_, _ = fmt.Fprintln(a.out, line(row, lipgloss.NewStyle()))
	}
}

func (a *app) renderStats(stats core.Stats) {
	lines := []string{
		headerStyle.Render("Library statistics"),
		fmt.Sprintf("Books:        %d", stats.TotalBooks),
		fmt.Sprintf("Copies:       %d (%d available, %d on loan)", stats.TotalCopies, stats.AvailableCopies, stats.BorrowedCopies),
		fmt.Sprintf("Users:        %d (%d active)", stats.TotalUsers, stats.ActiveUsers),
		fmt.Sprintf("Utilization:  %.2f%%", stats.UtilizationRate),
	}

	_, _ = fmt.Fprintln(a.out, boxStyle.Render(strings.Join(lines, "\n")))
}

func (a *app) renderBooks(books []core.Book) {
	rows := make([][]string, 0, len(books))
	for _, b := range books {
		rows = append(rows, []string{
			b.ISBN,
			b.Title,
			b.Author,
			strconv.Itoa(b.Year),
			fmt.Sprintf("%d/%d", b.AvailableCopies, b.TotalCopies),
			strconv.Itoa(b.TimesBorrowed),
		})
	}

	a.table([]string{"ISBN", "TITLE", "AUTHOR", "YEAR", "AVAILABLE", "BORROWED"}, rows)
}

func (a *app) renderUsers(users []core.User) {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			u.UserID,
			u.Name,
			u.Email,
			strconv.Itoa(u.BorrowedCount),
			strconv.FormatFloat(u.ActivityScore, 'f', 2, 64),
		})
	}

	a.table([]string{"ID", "NAME", "EMAIL", "LOANS", "ACTIVITY"}, rows)
}

func (a *app) renderLoans(loans []core.Loan) {
	rows := make([][]string, 0, len(loans))
	for _, l := range loans {
		rows = append(rows, []string{l.UserID, l.UserName, l.ISBN, l.BookTitle, l.LoanDate.Format("2006-01-02 15:04:05")})
	}

	a.table([]string{"USER", "NAME", "ISBN", "TITLE", "SINCE"}, rows)
}

func (a *app) renderHistory(entries []library.HistoryEntry) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(e.SequenceNumber), 10),
			e.OccurredAt.Format("2006-01-02 15:04:05"),
			e.Action,
			e.ISBN,
			e.Title,
			e.UserID,
			e.Name,
		})
	}

	a.table([]string{"SEQ", "OCCURRED", "ACTION", "ISBN", "TITLE", "USER", "NAME"}, rows)
}
