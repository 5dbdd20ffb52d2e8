package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/erazemk/izposoja/internal/model"
)

// conditionForIntegrity picks the wear band with the highest threshold not above the integrity.
const conditionForIntegrity = `(SELECT condition_id FROM conditions
	WHERE min_integrity <= ? ORDER BY min_integrity DESC LIMIT 1)`

const itemColumns = `item_id, inventory_number, item_name, category_id, status_id, condition_id,
	integrity_percentage, purchase_date, item_notes, image_mime, created_at, updated_at`

// CreateItem registers a new item. Without an inventory number one is assigned from the item ID.
func CreateItem(ctx context.Context, db *sql.DB, in model.ItemInput) (*model.Item, error) {
	in, err := validateItemInput(in)
	if err != nil {
		return nil, err
	}

	var id int64
	err = withTx(ctx, db, func(tx *sql.Tx) error {
		if err := resolveItemCategory(ctx, tx, &in); err != nil {
			return err
		}
		if err := checkItemReferences(ctx, tx, in); err != nil {
			return err
		}

		rentedID, err := statusID(ctx, tx, model.StatusRented)
		if err != nil {
			return err
		}
		if in.StatusID == rentedID {
			return conflictError("a new item cannot start as rented")
		}

		if in.InventoryNumber != "" {
			if err := checkInventoryNumber(ctx, tx, in.InventoryNumber, 0); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO inventory (inventory_number, item_name, category_id, status_id, condition_id,
			                        integrity_percentage, purchase_date, item_notes)
			 VALUES (NULLIF(?, ''), ?, ?, ?, `+conditionForIntegrity+`, ?, ?, ?)`,
			in.InventoryNumber, in.Name, in.CategoryID, in.StatusID, in.IntegrityPercentage,
			in.IntegrityPercentage, in.PurchaseDate, in.Notes,
		)
		if err != nil {
			return storageError("creating item", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return storageError("getting item id", err)
		}

		if in.InventoryNumber == "" {
			_, err = tx.ExecContext(ctx,
				`UPDATE inventory SET inventory_number = printf('INV-%05d', item_id) WHERE item_id = ?`, id,
			)
			if err != nil {
				return storageError("assigning inventory number", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM inventory WHERE item_id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, notFoundError("item %d", id)
	}
	if err != nil {
		return nil, storageError("getting item", err)
	}
	return item, nil
}

// UpdateItem replaces an item's editable attributes.
//
// The Rented status belongs to the rental engine: an item can only be marked
// Rented while it has an open rental, and cannot leave Rented while one is open.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, in model.ItemInput) error {
	in, err := validateItemInput(in)
	if err != nil {
		return err
	}

	return withTx(ctx, db, func(tx *sql.Tx) error {
		if err := requireRow(ctx, tx, `SELECT 1 FROM inventory WHERE item_id = ?`, id, "item"); err != nil {
			return err
		}
		if err := resolveItemCategory(ctx, tx, &in); err != nil {
			return err
		}
		if err := checkItemReferences(ctx, tx, in); err != nil {
			return err
		}

		rentedID, err := statusID(ctx, tx, model.StatusRented)
		if err != nil {
			return err
		}
		open, err := openRentalID(ctx, tx, id)
		if err != nil {
			return err
		}
		switch {
		case in.StatusID == rentedID && open == 0:
			return conflictError("item %d has no open rental; use a rental to mark it rented", id)
		case in.StatusID != rentedID && open != 0:
			return conflictError("item %d has open rental %d; return it first", id, open)
		}

		if in.InventoryNumber != "" {
			if err := checkInventoryNumber(ctx, tx, in.InventoryNumber, id); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE inventory SET
			     inventory_number = COALESCE(NULLIF(?, ''), inventory_number),
			     item_name = ?, category_id = ?, status_id = ?,
			     condition_id = `+conditionForIntegrity+`,
			     integrity_percentage = ?, purchase_date = ?, item_notes = ?,
			     updated_at = CURRENT_TIMESTAMP
			 WHERE item_id = ?`,
			in.InventoryNumber, in.Name, in.CategoryID, in.StatusID,
			in.IntegrityPercentage, in.IntegrityPercentage, in.PurchaseDate, in.Notes, id,
		)
		if err != nil {
			return storageError("updating item", err)
		}
		return nil
	})
}

// DeleteItem removes an item and its history. Items with an open rental cannot be deleted.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	return withTx(ctx, db, func(tx *sql.Tx) error {
		if err := requireRow(ctx, tx, `SELECT 1 FROM inventory WHERE item_id = ?`, id, "item"); err != nil {
			return err
		}

		open, err := openRentalID(ctx, tx, id)
		if err != nil {
			return err
		}
		if open != 0 {
			return conflictError("item %d has open rental %d", id, open)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM inventory WHERE item_id = ?`, id); err != nil {
			return storageError("deleting item", err)
		}
		return nil
	})
}

// ListItemDetails returns the joined inventory projection ordered by item ID.
// Items with integrity below criticalBelow are flagged critical.
func ListItemDetails(ctx context.Context, db *sql.DB, filter model.ItemFilter, criticalBelow int) ([]model.ItemDetail, error) {
	query := `SELECT i.item_id, COALESCE(i.inventory_number, ''), i.item_name,
	                 i.category_id, c.category_name, i.status_id, s.status_name,
	                 COALESCE(cnd.condition_name, ''), i.integrity_percentage,
	                 i.purchase_date, COALESCE(i.item_notes, '')
	          FROM inventory i
	          JOIN categories c ON c.category_id = i.category_id
	          JOIN availability_statuses s ON s.status_id = i.status_id
	          LEFT JOIN conditions cnd ON cnd.condition_id = i.condition_id
	          WHERE 1=1`
	var args []any

	if filter.CategoryID > 0 {
		query += ` AND i.category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if filter.StatusID > 0 {
		query += ` AND i.status_id = ?`
		args = append(args, filter.StatusID)
	}

	query += ` ORDER BY i.item_id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("listing items", err)
	}
	defer rows.Close()

	// SQLite's LOWER only folds ASCII, so the text search runs here.
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var items []model.ItemDetail
	for rows.Next() {
		var d model.ItemDetail
		if err := rows.Scan(&d.ID, &d.InventoryNumber, &d.Name, &d.CategoryID, &d.CategoryName,
			&d.StatusID, &d.StatusName, &d.ConditionName, &d.IntegrityPercentage,
			&d.PurchaseDate, &d.Notes); err != nil {
			return nil, storageError("scanning item", err)
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(d.Name), search) &&
			!strings.Contains(strings.ToLower(d.InventoryNumber), search) {
			continue
		}
		d.Critical = d.IntegrityPercentage < criticalBelow
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("listing items", err)
	}
	return items, nil
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE inventory SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE item_id = ?`,
		image, mime, id,
	)
	if err != nil {
		return storageError("setting item image", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notFoundError("item %d", id)
	}
	return nil
}

// GetItemImage returns an item's image data and MIME type. Data is nil when the item has no image.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM inventory WHERE item_id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", notFoundError("item %d", id)
	}
	if err != nil {
		return nil, "", storageError("getting item image", err)
	}
	return image, mime.String, nil
}

func validateItemInput(in model.ItemInput) (model.ItemInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.InventoryNumber = strings.TrimSpace(in.InventoryNumber)
	in.Notes = strings.TrimSpace(in.Notes)
	in.CategoryName = strings.TrimSpace(in.CategoryName)

	if in.Name == "" {
		return in, validationError("item name required")
	}
	if !model.ValidIntegrity(in.IntegrityPercentage) {
		return in, validationError("integrity must be between %d and %d, got %d",
			model.MinIntegrity, model.MaxIntegrity, in.IntegrityPercentage)
	}
	return in, nil
}

// resolveItemCategory fills in.CategoryID from in.CategoryName when no ID is given.
// A new category is only kept if the surrounding transaction commits.
func resolveItemCategory(ctx context.Context, q querier, in *model.ItemInput) error {
	if in.CategoryID != 0 || in.CategoryName == "" {
		return nil
	}
	id, _, err := getOrCreateCategory(ctx, q, in.CategoryName)
	if err != nil {
		return err
	}
	in.CategoryID = id
	return nil
}

func checkItemReferences(ctx context.Context, q querier, in model.ItemInput) error {
	if err := requireRow(ctx, q, `SELECT 1 FROM categories WHERE category_id = ?`, in.CategoryID, "category"); err != nil {
		return err
	}
	return requireRow(ctx, q, `SELECT 1 FROM availability_statuses WHERE status_id = ?`, in.StatusID, "status")
}

func checkInventoryNumber(ctx context.Context, q querier, number string, exceptID int64) error {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory WHERE inventory_number = ? AND item_id != ?`, number, exceptID,
	).Scan(&count)
	if err != nil {
		return storageError("checking inventory number", err)
	}
	if count > 0 {
		return conflictError("inventory number %q already in use", number)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var number, notes, imageMime sql.NullString
	var conditionID sql.NullInt64
	err := row.Scan(&item.ID, &number, &item.Name, &item.CategoryID, &item.StatusID, &conditionID,
		&item.IntegrityPercentage, &item.PurchaseDate, &notes, &imageMime, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.InventoryNumber = number.String
	item.Notes = notes.String
	item.ImageMime = imageMime.String
	if conditionID.Valid {
		item.ConditionID = &conditionID.Int64
	}
	return item, nil
}
