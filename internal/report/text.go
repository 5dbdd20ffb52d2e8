package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	cellStyle = lipgloss.NewStyle().PaddingRight(3)
)

// WriteText prints the statistics as terminal tables.
func WriteText(w io.Writer, st Stats, year int) error {
	period := "all years"
	if year > 0 {
		period = strconv.Itoa(year)
	}

	popular := [][]string{{"Item", "Rentals"}}
	for _, p := range st.Popular {
		popular = append(popular, []string{p.Name, strconv.Itoa(p.RentalCount)})
	}

	wear := [][]string{{"Item", "Integrity %", "Condition"}}
	for _, it := range st.Worn {
		wear = append(wear, []string{it.Name, strconv.Itoa(it.IntegrityPercentage), it.ConditionName})
	}

	monthly := [][]string{{"Month", "Rentals", "Late"}}
	for _, m := range st.Monthly {
		monthly = append(monthly, []string{
			time.Month(m.Month).String(), strconv.Itoa(m.RentalCount), strconv.Itoa(m.LateCount),
		})
	}

	sections := []string{
		section("Most rented", popular),
		section("Most worn", wear),
		section("Rentals per month ("+period+")", monthly),
	}
	_, err := fmt.Fprintln(w, strings.Join(sections, "\n\n"))
	return err
}

// section renders a title above a table whose first row is the header.
// A table with only a header prints "(none)".
func section(title string, rows [][]string) string {
	if len(rows) == 1 {
		return titleStyle.Render(title) + "\n(none)"
	}
	return titleStyle.Render(title) + "\n" + table(rows)
}

func table(rows [][]string) string {
	columns := make([]string, len(rows[0]))
	for c := range columns {
		cells := make([]string, len(rows))
		for r, row := range rows {
			if r == 0 {
				cells[r] = headerStyle.Render(row[c])
			} else {
				cells[r] = row[c]
			}
		}
		columns[c] = cellStyle.Render(strings.Join(cells, "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}
