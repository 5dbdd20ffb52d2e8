package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// seedDatabase creates a database file with one closed and one open rental.
func seedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "izposoja.sqlite3")

	database, err := db.Open(path)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer database.Close()
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	ctx := context.Background()
	categoryID, _, _ := store.GetOrCreateCategory(ctx, database, "Tents")
	available, _ := store.StatusIDByName(ctx, database, model.StatusAvailable)

	var ids []int64
	for _, name := range []string{"Tent A", "Tent B"} {
		item, err := store.CreateItem(ctx, database, model.ItemInput{
			Name: name, CategoryID: categoryID, StatusID: available, IntegrityPercentage: 90,
		})
		if err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
		ids = append(ids, item.ID)
	}

	closed, err := store.RentItem(ctx, database, model.RentalInput{
		ItemID: ids[0], UserName: "Alice",
		StartDate: model.NewDate(2024, 7, 1), EndDate: model.NewDate(2024, 7, 3),
	})
	if err != nil {
		t.Fatalf("RentItem: %v", err)
	}
	err = store.ReturnItem(ctx, database, closed, model.ReturnInput{
		ReturnedDate: model.NewDate(2024, 7, 5), IntegrityPercentage: 70,
	})
	if err != nil {
		t.Fatalf("ReturnItem: %v", err)
	}
	_, err = store.RentItem(ctx, database, model.RentalInput{
		ItemID: ids[1], UserName: "Bob",
		StartDate: model.NewDate(2024, 7, 2), EndDate: model.NewDate(2024, 7, 9),
	})
	if err != nil {
		t.Fatalf("RentItem: %v", err)
	}
	return path
}

func TestStatsCommand(t *testing.T) {
	path := seedDatabase(t)

	var out bytes.Buffer
	if err := run(context.Background(), []string{"stats", "-d", path, "-year", "2024"}, &out); err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{"Most rented", "Tent A", "July"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestExportCommand(t *testing.T) {
	path := seedDatabase(t)
	target := filepath.Join(t.TempDir(), "rentals.xlsx")

	var out bytes.Buffer
	err := run(context.Background(), []string{"export", "-db", path, "-kind", "rentals", "-o", target}, &out)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	info, err := os.Stat(target)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected a non-empty workbook at %s (%v)", target, err)
	}

	err = run(context.Background(), []string{"export", "-db", path, "-kind", "invoices", "-o", target}, &out)
	if err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestPurgeCommand(t *testing.T) {
	path := seedDatabase(t)

	var out bytes.Buffer
	if err := run(context.Background(), []string{"purge", "-d", path}, &out); err == nil {
		t.Fatal("expected purge without -yes to be refused")
	}

	if err := run(context.Background(), []string{"purge", "-d", path, "-yes"}, &out); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted 1 closed rental") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestMissingDatabase(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.sqlite3")
	if err := run(context.Background(), []string{"stats", "-d", missing}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for a missing database file")
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Error("a missing database must not be created")
	}
}
