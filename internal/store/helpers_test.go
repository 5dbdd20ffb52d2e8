package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/izposoja/internal/model"
)

// newItem creates an available item in the named category.
func newItem(t *testing.T, database *sql.DB, name, category string, integrity int) *model.Item {
	t.Helper()
	ctx := context.Background()

	categoryID, _, err := GetOrCreateCategory(ctx, database, category)
	if err != nil {
		t.Fatalf("GetOrCreateCategory: %v", err)
	}
	statusID, err := StatusIDByName(ctx, database, model.StatusAvailable)
	if err != nil {
		t.Fatalf("StatusIDByName: %v", err)
	}

	item, err := CreateItem(ctx, database, model.ItemInput{
		Name:                name,
		CategoryID:          categoryID,
		StatusID:            statusID,
		IntegrityPercentage: integrity,
		PurchaseDate:        model.NewDate(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return item
}

// rent opens a rental and fails the test on error.
func rent(t *testing.T, database *sql.DB, itemID int64, user string, start, end model.Date) int64 {
	t.Helper()
	id, err := RentItem(context.Background(), database, model.RentalInput{
		ItemID: itemID, UserName: user, StartDate: start, EndDate: end,
	})
	if err != nil {
		t.Fatalf("RentItem: %v", err)
	}
	return id
}

func statusName(t *testing.T, database *sql.DB, itemID int64) string {
	t.Helper()
	var name string
	err := database.QueryRow(
		`SELECT s.status_name FROM inventory i JOIN availability_statuses s ON s.status_id = i.status_id
		 WHERE i.item_id = ?`, itemID,
	).Scan(&name)
	if err != nil {
		t.Fatalf("reading item status: %v", err)
	}
	return name
}
