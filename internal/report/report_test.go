package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func rows(t *testing.T, f *excelize.File, sheet string) [][]string {
	t.Helper()
	r, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("reading sheet %s: %v", sheet, err)
	}
	return r
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"inventory", "rentals", "stats"} {
		k, err := ParseKind(name)
		if err != nil || string(k) != name {
			t.Errorf("ParseKind(%q) = %q, %v", name, k, err)
		}
	}
	if _, err := ParseKind("invoices"); err == nil {
		t.Error("expected error for unknown kind")
	}
	if got := KindRentals.Filename(); got != "izposoja-rentals.xlsx" {
		t.Errorf("unexpected filename %q", got)
	}
}

func TestInventoryWorkbook(t *testing.T) {
	var buf bytes.Buffer
	err := Inventory(&buf, []model.ItemDetail{{
		InventoryNumber: "INV-00001", Name: "Tent A", CategoryName: "Tents", StatusName: "Available",
		ConditionName: "Critical", IntegrityPercentage: 12, PurchaseDate: model.NewDate(2023, 4, 2), Critical: true,
	}})
	if err != nil {
		t.Fatalf("Inventory: %v", err)
	}

	f := openWorkbook(t, buf.Bytes())
	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetInventory {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	r := rows(t, f, SheetInventory)
	if len(r) != 2 {
		t.Fatalf("expected header and 1 row, got %d rows", len(r))
	}
	if r[0][0] != "Inventory No." || r[0][5] != "Integrity %" {
		t.Errorf("unexpected header %v", r[0])
	}
	want := []string{"INV-00001", "Tent A", "Tents", "Available", "Critical", "12", "2023-04-02", "Yes"}
	for i, v := range want {
		if r[1][i] != v {
			t.Errorf("column %d: expected %q, got %q", i, v, r[1][i])
		}
	}

	style, err := f.GetCellStyle(SheetInventory, "A1")
	if err != nil || style == 0 {
		t.Errorf("expected a styled header, got style %d (%v)", style, err)
	}
}

func TestStatisticsWorkbook(t *testing.T) {
	months := make([]model.MonthlyVolume, 12)
	for i := range months {
		months[i].Month = i + 1
	}
	months[5] = model.MonthlyVolume{Month: 6, RentalCount: 4, LateCount: 1}

	var buf bytes.Buffer
	err := Statistics(&buf, Stats{
		Popular: []model.PopularItem{{ItemID: 1, Name: "Tent A", RentalCount: 4}},
		Worn:    []model.WornItem{{ItemID: 2, Name: "Stove", IntegrityPercentage: 25, ConditionName: "Critical"}},
		Monthly: months,
	})
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}

	f := openWorkbook(t, buf.Bytes())
	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != SheetPopular || sheets[1] != SheetWear || sheets[2] != SheetMonthly {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	popular := rows(t, f, SheetPopular)
	if len(popular) != 2 || popular[1][0] != "Tent A" || popular[1][1] != "4" {
		t.Errorf("unexpected popular sheet %v", popular)
	}

	monthly := rows(t, f, SheetMonthly)
	if len(monthly) != 13 {
		t.Fatalf("expected header and 12 months, got %d rows", len(monthly))
	}
	if monthly[1][0] != "January" || monthly[6][0] != "June" || monthly[6][1] != "4" || monthly[6][2] != "1" {
		t.Errorf("unexpected monthly rows %v", monthly[6])
	}
}

func TestWriteFromDatabase(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	categoryID, _, _ := store.GetOrCreateCategory(ctx, database, "Tents")
	available, _ := store.StatusIDByName(ctx, database, model.StatusAvailable)
	item, err := store.CreateItem(ctx, database, model.ItemInput{
		Name: "Tent A", CategoryID: categoryID, StatusID: available, IntegrityPercentage: 100,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	historyID, err := store.RentItem(ctx, database, model.RentalInput{
		ItemID: item.ID, UserName: "Alice",
		StartDate: model.NewDate(2024, 6, 1), EndDate: model.NewDate(2024, 6, 7),
	})
	if err != nil {
		t.Fatalf("RentItem: %v", err)
	}

	opts := Options{Today: model.NewDate(2024, 6, 10), CriticalBelow: model.DefaultCriticalIntegrity, Year: 2024}

	var buf bytes.Buffer
	if err := Write(ctx, database, KindRentals, opts, &buf); err != nil {
		t.Fatalf("Write rentals: %v", err)
	}
	r := rows(t, openWorkbook(t, buf.Bytes()), SheetRentals)
	if len(r) != 2 {
		t.Fatalf("expected 1 rental row, got %d rows", len(r))
	}
	if r[1][2] != "Tent A" || r[1][3] != "Alice" || r[1][7] != string(model.RentalStatusOverdue) {
		t.Errorf("unexpected rental row %v (history %d)", r[1], historyID)
	}

	for _, kind := range []Kind{KindInventory, KindStats} {
		buf.Reset()
		if err := Write(ctx, database, kind, opts, &buf); err != nil {
			t.Errorf("Write %s: %v", kind, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Write %s produced no data", kind)
		}
	}

	if err := Write(ctx, database, Kind("bogus"), opts, &buf); err == nil {
		t.Error("expected error for unknown kind")
	}
}
