// Package report exports inventory, rental history and statistics as XLSX workbooks.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// Kind selects a workbook.
type Kind string

// Workbook kinds.
const (
	KindInventory Kind = "inventory"
	KindRentals   Kind = "rentals"
	KindStats     Kind = "stats"
)

// ParseKind validates a workbook kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindInventory, KindRentals, KindStats:
		return k, nil
	default:
		return "", fmt.Errorf("unknown report kind %q (inventory, rentals, stats)", s)
	}
}

// Filename is the suggested download name for a workbook.
func (k Kind) Filename() string {
	return "izposoja-" + string(k) + ".xlsx"
}

// Options parameterize report generation.
type Options struct {
	// Today is the day rental labels are derived for.
	Today model.Date
	// CriticalBelow is the integrity under which items are flagged critical.
	CriticalBelow int
	// Year restricts the monthly statistics; 0 means all years.
	Year int
}

// Write reads the data for kind from the database and writes the workbook to w.
func Write(ctx context.Context, db *sql.DB, kind Kind, opts Options, w io.Writer) error {
	switch kind {
	case KindInventory:
		items, err := store.ListItemDetails(ctx, db, model.ItemFilter{}, opts.CriticalBelow)
		if err != nil {
			return err
		}
		return Inventory(w, items)

	case KindRentals:
		rentals, err := store.ListRentals(ctx, db, model.RentalFilter{}, opts.Today)
		if err != nil {
			return err
		}
		return Rentals(w, rentals)

	case KindStats:
		s, err := LoadStats(ctx, db, opts.Year)
		if err != nil {
			return err
		}
		return Statistics(w, s)

	default:
		return fmt.Errorf("unknown report kind %q", kind)
	}
}

// Stats groups the three aggregations of the statistics workbook.
type Stats struct {
	Popular []model.PopularItem
	Worn    []model.WornItem
	Monthly []model.MonthlyVolume
}

// LoadStats runs the three aggregations. Year 0 counts every year.
func LoadStats(ctx context.Context, db *sql.DB, year int) (Stats, error) {
	var s Stats
	var err error
	if s.Popular, err = store.MostRented(ctx, db, store.DefaultRankingLimit); err != nil {
		return s, err
	}
	if s.Worn, err = store.MostWorn(ctx, db, store.DefaultRankingLimit); err != nil {
		return s, err
	}
	if s.Monthly, err = store.MonthlyRentals(ctx, db, year); err != nil {
		return s, err
	}
	return s, nil
}

// Sheet names.
const (
	SheetInventory = "Inventory"
	SheetRentals   = "Rentals"
	SheetPopular   = "Popular"
	SheetWear      = "Wear"
	SheetMonthly   = "Monthly"
)

type column struct {
	header string
	width  float64
}

type sheet struct {
	name    string
	columns []column
	rows    [][]any
}

// Inventory writes the inventory projection as a single-sheet workbook.
func Inventory(w io.Writer, items []model.ItemDetail) error {
	s := sheet{
		name: SheetInventory,
		columns: []column{
			{"Inventory No.", 14}, {"Name", 30}, {"Category", 18}, {"Status", 14},
			{"Condition", 12}, {"Integrity %", 12}, {"Purchase Date", 14}, {"Critical", 10}, {"Notes", 40},
		},
	}
	for _, it := range items {
		s.rows = append(s.rows, []any{
			it.InventoryNumber, it.Name, it.CategoryName, it.StatusName, it.ConditionName,
			it.IntegrityPercentage, dateCell(it.PurchaseDate), yesNo(it.Critical), it.Notes,
		})
	}
	return writeWorkbook(w, s)
}

// Rentals writes the rental history with derived labels.
func Rentals(w io.Writer, rentals []model.Rental) error {
	s := sheet{
		name: SheetRentals,
		columns: []column{
			{"Rental", 8}, {"Inventory No.", 14}, {"Item", 30}, {"User", 24}, {"Start", 12},
			{"Due", 12}, {"Returned", 12}, {"Status", 14}, {"Notes", 40},
		},
	}
	for _, r := range rentals {
		s.rows = append(s.rows, []any{
			r.ID, r.InventoryNumber, r.ItemName, r.UserName, dateCell(r.StartDate),
			dateCell(r.EndDate), dateCell(r.ReturnedDate), string(r.Status), r.Notes,
		})
	}
	return writeWorkbook(w, s)
}

// Statistics writes the popularity, wear and monthly volume sheets.
func Statistics(w io.Writer, st Stats) error {
	popular := sheet{
		name:    SheetPopular,
		columns: []column{{"Item", 30}, {"Rentals", 10}},
	}
	for _, p := range st.Popular {
		popular.rows = append(popular.rows, []any{p.Name, p.RentalCount})
	}

	wear := sheet{
		name:    SheetWear,
		columns: []column{{"Item", 30}, {"Integrity %", 12}, {"Condition", 12}},
	}
	for _, it := range st.Worn {
		wear.rows = append(wear.rows, []any{it.Name, it.IntegrityPercentage, it.ConditionName})
	}

	monthly := sheet{
		name:    SheetMonthly,
		columns: []column{{"Month", 12}, {"Rentals", 10}, {"Late", 10}},
	}
	for _, m := range st.Monthly {
		monthly.rows = append(monthly.rows, []any{time.Month(m.Month).String(), m.RentalCount, m.LateCount})
	}

	return writeWorkbook(w, popular, wear, monthly)
}

func writeWorkbook(w io.Writer, sheets ...sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	headers := make([]any, len(s.columns))
	for i, c := range s.columns {
		headers[i] = c.header

		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("converting column number: %w", err)
		}
		if err := f.SetColWidth(s.name, col, col, c.width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	if err := f.SetSheetRow(s.name, "A1", &headers); err != nil {
		return fmt.Errorf("writing %s header: %w", s.name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(s.columns), 1)
	if err != nil {
		return fmt.Errorf("converting coordinates: %w", err)
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", s.name, err)
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("converting coordinates: %w", err)
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", s.name, i+2, err)
		}
	}

	err = f.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return fmt.Errorf("freezing %s header: %w", s.name, err)
	}
	return nil
}

func dateCell(d model.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
