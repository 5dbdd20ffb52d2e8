package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
)

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, database, "Tent A", "Tents", 100)

	if item.Name != "Tent A" {
		t.Errorf("expected name 'Tent A', got %q", item.Name)
	}
	if item.InventoryNumber != "INV-00001" {
		t.Errorf("expected inventory number INV-00001, got %q", item.InventoryNumber)
	}
	if item.PurchaseDate != model.NewDate(2024, 1, 1) {
		t.Errorf("expected purchase date 2024-01-01, got %s", item.PurchaseDate)
	}
	if item.ConditionID == nil {
		t.Fatal("expected condition to be derived from integrity")
	}

	got, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.IntegrityPercentage != 100 {
		t.Errorf("expected integrity 100, got %d", got.IntegrityPercentage)
	}
}

func TestCreateItemValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	categoryID, _, _ := GetOrCreateCategory(ctx, database, "Tents")
	available, _ := StatusIDByName(ctx, database, model.StatusAvailable)

	valid := model.ItemInput{Name: "Tent", CategoryID: categoryID, StatusID: available, IntegrityPercentage: 50}

	for _, integrity := range []int{-1, 101, 150, -100} {
		in := valid
		in.IntegrityPercentage = integrity
		if _, err := CreateItem(ctx, database, in); !errors.Is(err, ErrValidation) {
			t.Errorf("integrity %d: expected ErrValidation, got %v", integrity, err)
		}
	}

	in := valid
	in.Name = "   "
	if _, err := CreateItem(ctx, database, in); !errors.Is(err, ErrValidation) {
		t.Errorf("empty name: expected ErrValidation, got %v", err)
	}

	in = valid
	in.CategoryID = 999
	if _, err := CreateItem(ctx, database, in); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown category: expected ErrNotFound, got %v", err)
	}

	in = valid
	in.StatusID = 999
	if _, err := CreateItem(ctx, database, in); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown status: expected ErrNotFound, got %v", err)
	}

	in = valid
	in.StatusID, _ = StatusIDByName(ctx, database, model.StatusRented)
	if _, err := CreateItem(ctx, database, in); !errors.Is(err, ErrConflict) {
		t.Errorf("rented status: expected ErrConflict, got %v", err)
	}
}

func TestCreateItemDuplicateInventoryNumber(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, database, "Tent A", "Tents", 100)

	_, err := CreateItem(ctx, database, model.ItemInput{
		InventoryNumber:     item.InventoryNumber,
		Name:                "Tent B",
		CategoryID:          item.CategoryID,
		StatusID:            item.StatusID,
		IntegrityPercentage: 90,
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestUpdateItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, database, "Tent A", "Tents", 100)
	repair, _ := StatusIDByName(ctx, database, model.StatusUnderRepair)

	err := UpdateItem(ctx, database, item.ID, model.ItemInput{
		Name:                "Tent A (patched)",
		CategoryID:          item.CategoryID,
		StatusID:            repair,
		IntegrityPercentage: 40,
		PurchaseDate:        item.PurchaseDate,
		Notes:               "seam taped",
	})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Name != "Tent A (patched)" || got.IntegrityPercentage != 40 || got.StatusID != repair {
		t.Errorf("update not applied: %+v", got)
	}
	if got.InventoryNumber != item.InventoryNumber {
		t.Errorf("expected inventory number kept, got %q", got.InventoryNumber)
	}
	if *got.ConditionID == *item.ConditionID {
		t.Error("expected condition to follow integrity")
	}
}

func TestUpdateItemErrors(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, database, "Tent A", "Tents", 100)
	in := model.ItemInput{Name: "Tent A", CategoryID: item.CategoryID, StatusID: item.StatusID, IntegrityPercentage: 100}

	if err := UpdateItem(ctx, database, 999, in); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown item: expected ErrNotFound, got %v", err)
	}

	for _, integrity := range []int{-5, 101} {
		bad := in
		bad.IntegrityPercentage = integrity
		if err := UpdateItem(ctx, database, item.ID, bad); !errors.Is(err, ErrValidation) {
			t.Errorf("integrity %d: expected ErrValidation, got %v", integrity, err)
		}
	}

	rented := in
	rented.StatusID, _ = StatusIDByName(ctx, database, model.StatusRented)
	if err := UpdateItem(ctx, database, item.ID, rented); !errors.Is(err, ErrConflict) {
		t.Errorf("rented without rental: expected ErrConflict, got %v", err)
	}
}

func TestUpdateRentedItemCannotLeaveRented(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, database, "Tent A", "Tents", 100)
	rent(t, database, item.ID, "Alice", model.NewDate(2024, 6, 1), model.NewDate(2024, 6, 7))

	available, _ := StatusIDByName(ctx, database, model.StatusAvailable)
	rented, _ := StatusIDByName(ctx, database, model.StatusRented)
	in := model.ItemInput{Name: "Tent A", CategoryID: item.CategoryID, IntegrityPercentage: 90}

	in.StatusID = available
	if err := UpdateItem(ctx, database, item.ID, in); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	in.StatusID = rented
	if err := UpdateItem(ctx, database, item.ID, in); err != nil {
		t.Errorf("editing a rented item while keeping it rented: %v", err)
	}
}

func TestDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, database, "Tent A", "Tents", 100)
	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	if _, err := GetItem(ctx, database, item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := DeleteItem(ctx, database, item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestDeleteItemWithOpenRentalRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, database, "Tent A", "Tents", 100)
	historyID := rent(t, database, item.ID, "Alice", model.NewDate(2024, 6, 1), model.NewDate(2024, 6, 7))

	if err := DeleteItem(ctx, database, item.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	ReturnItem(ctx, database, historyID, model.ReturnInput{ReturnedDate: model.NewDate(2024, 6, 7), IntegrityPercentage: 95})
	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteItem after return: %v", err)
	}

	var history int
	database.QueryRow(`SELECT COUNT(*) FROM usage_history WHERE item_id = ?`, item.ID).Scan(&history)
	if history != 0 {
		t.Errorf("expected history to cascade, got %d rows", history)
	}
}

func TestListItemDetails(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	tent := newItem(t, database, "Tent A", "Tents", 100)
	newItem(t, database, "Tent B", "Tents", 15)
	stove := newItem(t, database, "Gas stove", "Stoves", 70)

	all, err := ListItemDetails(ctx, database, model.ItemFilter{}, model.DefaultCriticalIntegrity)
	if err != nil {
		t.Fatalf("ListItemDetails: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 items, got %d", len(all))
	}
	if all[0].ID != tent.ID || all[0].CategoryName != "Tents" || all[0].StatusName != "Available" {
		t.Errorf("unexpected first row: %+v", all[0])
	}
	if all[0].ConditionName != "New" || all[2].ConditionName != "Good" {
		t.Errorf("unexpected conditions: %q, %q", all[0].ConditionName, all[2].ConditionName)
	}
	if all[0].Critical || !all[1].Critical {
		t.Errorf("expected only Tent B flagged critical: %+v", all)
	}

	byCategory, _ := ListItemDetails(ctx, database, model.ItemFilter{CategoryID: stove.CategoryID}, model.DefaultCriticalIntegrity)
	if len(byCategory) != 1 || byCategory[0].ID != stove.ID {
		t.Errorf("expected only the stove, got %+v", byCategory)
	}

	bySearch, _ := ListItemDetails(ctx, database, model.ItemFilter{Search: "TENT"}, model.DefaultCriticalIntegrity)
	if len(bySearch) != 2 {
		t.Errorf("expected 2 tents, got %d", len(bySearch))
	}

	byNumber, _ := ListItemDetails(ctx, database, model.ItemFilter{Search: stove.InventoryNumber}, model.DefaultCriticalIntegrity)
	if len(byNumber) != 1 {
		t.Errorf("expected search by inventory number to match 1 item, got %d", len(byNumber))
	}

	rented, _ := StatusIDByName(ctx, database, model.StatusRented)
	byStatus, _ := ListItemDetails(ctx, database, model.ItemFilter{StatusID: rented}, model.DefaultCriticalIntegrity)
	if len(byStatus) != 0 {
		t.Errorf("expected no rented items, got %d", len(byStatus))
	}
}

func TestItemImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, database, "Tent A", "Tents", 100)

	data, _, err := GetItemImage(ctx, database, item.ID)
	if err != nil || data != nil {
		t.Fatalf("expected no image yet, got %v, %v", data, err)
	}

	SetItemImage(ctx, database, item.ID, []byte("fake image data"), "image/jpeg")

	data, mime, err := GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if string(data) != "fake image data" || mime != "image/jpeg" {
		t.Errorf("unexpected image %q %q", data, mime)
	}

	if err := SetItemImage(ctx, database, 999, []byte("x"), "image/jpeg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestItemCategoryByName(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	available, _ := StatusIDByName(ctx, database, model.StatusAvailable)
	in := model.ItemInput{Name: "Tent", CategoryName: "Tents", StatusID: available, IntegrityPercentage: 150}

	if _, err := CreateItem(ctx, database, in); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	existing := newItem(t, database, "Stove", "Kitchen", 90)
	taken := model.ItemInput{
		Name: "Tent", CategoryName: "Tents", StatusID: available, IntegrityPercentage: 80,
		InventoryNumber: existing.InventoryNumber,
	}
	if _, err := CreateItem(ctx, database, taken); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	categories, err := ListCategories(ctx, database)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "Kitchen" {
		t.Fatalf("rejected items must not leave categories behind, got %+v", categories)
	}

	in.IntegrityPercentage = 80
	first, err := CreateItem(ctx, database, in)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	in.Name = "Tent 2"
	second, err := CreateItem(ctx, database, in)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if first.CategoryID == 0 || first.CategoryID != second.CategoryID {
		t.Errorf("expected both items in one category, got %d and %d", first.CategoryID, second.CategoryID)
	}

	move := model.ItemInput{Name: "Stove", CategoryName: "Cooking", StatusID: available, IntegrityPercentage: 90}
	if err := UpdateItem(ctx, database, existing.ID, move); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	moved, _ := GetItem(ctx, database, existing.ID)
	if moved.CategoryID == existing.CategoryID {
		t.Error("expected the item to move to the new category")
	}
}
