package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/erazemk/izposoja/internal/model"
)

const rentalSelect = `SELECT uh.history_id, uh.item_id, uh.user_name, uh.start_date, uh.end_date,
	                         uh.returned_date, COALESCE(uh.usage_notes, ''),
	                         i.item_name, COALESCE(i.inventory_number, '')
	                  FROM usage_history uh
	                  JOIN inventory i ON i.item_id = uh.item_id
	                  WHERE uh.is_rental = 1`

var rentalOrder = map[string]string{
	model.SortStartDateAsc:  `uh.start_date ASC, uh.history_id ASC`,
	model.SortStartDateDesc: `uh.start_date DESC, uh.history_id DESC`,
	model.SortEndDateAsc:    `uh.end_date ASC, uh.history_id ASC`,
	model.SortEndDateDesc:   `uh.end_date DESC, uh.history_id DESC`,
	model.SortNameAsc:       `i.item_name ASC, uh.history_id ASC`,
	model.SortNameDesc:      `i.item_name DESC, uh.history_id DESC`,
	model.SortUserAsc:       `uh.user_name ASC, uh.history_id ASC`,
	model.SortUserDesc:      `uh.user_name DESC, uh.history_id DESC`,
}

// ValidRentalSort reports whether sort is a known ordering. Empty means the default.
func ValidRentalSort(sort string) bool {
	_, ok := rentalOrder[sort]
	return ok || sort == ""
}

// RentItem opens a rental and marks the item rented, in one transaction.
// The item must be Available and must not already have an open rental.
func RentItem(ctx context.Context, db *sql.DB, in model.RentalInput) (int64, error) {
	in.UserName = strings.TrimSpace(in.UserName)
	in.Notes = strings.TrimSpace(in.Notes)

	if in.UserName == "" {
		return 0, validationError("renter name required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return 0, validationError("start and end date required")
	}
	if in.StartDate.After(in.EndDate) {
		return 0, validationError("start date %s is after end date %s", in.StartDate, in.EndDate)
	}

	var historyID int64
	err := withTx(ctx, db, func(tx *sql.Tx) error {
		var itemStatus int64
		err := tx.QueryRowContext(ctx,
			`SELECT status_id FROM inventory WHERE item_id = ?`, in.ItemID,
		).Scan(&itemStatus)
		if err == sql.ErrNoRows {
			return notFoundError("item %d", in.ItemID)
		}
		if err != nil {
			return storageError("checking item", err)
		}

		open, err := openRentalID(ctx, tx, in.ItemID)
		if err != nil {
			return err
		}
		if open != 0 {
			return conflictError("item %d is already rented (rental %d)", in.ItemID, open)
		}

		availableID, err := statusID(ctx, tx, model.StatusAvailable)
		if err != nil {
			return err
		}
		if itemStatus != availableID {
			return conflictError("item %d is not available", in.ItemID)
		}
		rentedID, err := statusID(ctx, tx, model.StatusRented)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO usage_history (item_id, user_name, start_date, end_date, returned_date, usage_notes, is_rental)
			 VALUES (?, ?, ?, ?, NULL, ?, 1)`,
			in.ItemID, in.UserName, in.StartDate, in.EndDate, in.Notes,
		)
		if err != nil {
			return storageError("recording rental", err)
		}
		historyID, err = result.LastInsertId()
		if err != nil {
			return storageError("getting rental id", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE inventory SET status_id = ?, updated_at = CURRENT_TIMESTAMP WHERE item_id = ?`,
			rentedID, in.ItemID,
		)
		if err != nil {
			return storageError("marking item rented", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return historyID, nil
}

// ReturnItem closes an open rental. In one transaction it records the return
// date and notes, and sets the item's integrity, condition and status back to Available.
// Empty notes keep the notes recorded when the rental was opened.
func ReturnItem(ctx context.Context, db *sql.DB, historyID int64, in model.ReturnInput) error {
	in.Notes = strings.TrimSpace(in.Notes)

	if !model.ValidIntegrity(in.IntegrityPercentage) {
		return validationError("integrity must be between %d and %d, got %d",
			model.MinIntegrity, model.MaxIntegrity, in.IntegrityPercentage)
	}
	if in.ReturnedDate.IsZero() {
		return validationError("return date required")
	}

	return withTx(ctx, db, func(tx *sql.Tx) error {
		var itemID int64
		var startDate, returnedDate model.Date
		var isRental bool
		err := tx.QueryRowContext(ctx,
			`SELECT item_id, start_date, returned_date, is_rental FROM usage_history WHERE history_id = ?`,
			historyID,
		).Scan(&itemID, &startDate, &returnedDate, &isRental)
		if err == sql.ErrNoRows || (err == nil && !isRental) {
			return notFoundError("rental %d", historyID)
		}
		if err != nil {
			return storageError("looking up rental", err)
		}
		if !returnedDate.IsZero() {
			return conflictError("rental %d was already returned on %s", historyID, returnedDate)
		}
		if in.ReturnedDate.Before(startDate) {
			return validationError("return date %s is before start date %s", in.ReturnedDate, startDate)
		}

		availableID, err := statusID(ctx, tx, model.StatusAvailable)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE usage_history SET returned_date = ?, usage_notes = COALESCE(NULLIF(?, ''), usage_notes)
			 WHERE history_id = ? AND returned_date IS NULL`,
			in.ReturnedDate, in.Notes, historyID,
		)
		if err != nil {
			return storageError("recording return", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return conflictError("rental %d was already returned", historyID)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE inventory SET integrity_percentage = ?, condition_id = `+conditionForIntegrity+`,
			     status_id = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE item_id = ?`,
			in.IntegrityPercentage, in.IntegrityPercentage, availableID, itemID,
		)
		if err != nil {
			return storageError("updating item integrity", err)
		}
		return nil
	})
}

// GetRental returns a rental labelled as of today.
func GetRental(ctx context.Context, db *sql.DB, id int64, today model.Date) (*model.Rental, error) {
	row := db.QueryRowContext(ctx, rentalSelect+` AND uh.history_id = ?`, id)
	r, err := scanRental(row)
	if err == sql.ErrNoRows {
		return nil, notFoundError("rental %d", id)
	}
	if err != nil {
		return nil, storageError("getting rental", err)
	}
	r.Status = r.StatusAt(today)
	return r, nil
}

// ListRentals returns the rental history labelled as of today, ordered and filtered.
// Label filtering goes through the derivation, never through a stored column.
func ListRentals(ctx context.Context, db *sql.DB, filter model.RentalFilter, today model.Date) ([]model.Rental, error) {
	order, ok := rentalOrder[filter.Sort]
	if !ok {
		if filter.Sort != "" {
			return nil, validationError("unknown sort %q", filter.Sort)
		}
		order = rentalOrder[model.SortStartDateDesc]
	}

	query := rentalSelect
	var args []any
	if filter.ItemID > 0 {
		query += ` AND uh.item_id = ?`
		args = append(args, filter.ItemID)
	}
	query += ` ORDER BY ` + order

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("listing rentals", err)
	}
	defer rows.Close()

	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var rentals []model.Rental
	for rows.Next() {
		r, err := scanRental(rows)
		if err != nil {
			return nil, storageError("scanning rental", err)
		}
		r.Status = r.StatusAt(today)
		if !r.Status.Matches(filter.Status) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.ItemName), search) &&
			!strings.Contains(strings.ToLower(r.UserName), search) {
			continue
		}
		rentals = append(rentals, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("listing rentals", err)
	}
	return rentals, nil
}

// ListActiveRentals returns every open rental, labelled Rented or Overdue as of today.
func ListActiveRentals(ctx context.Context, db *sql.DB, today model.Date) ([]model.Rental, error) {
	rows, err := db.QueryContext(ctx,
		rentalSelect+` AND uh.returned_date IS NULL ORDER BY uh.start_date DESC, uh.history_id DESC`,
	)
	if err != nil {
		return nil, storageError("listing active rentals", err)
	}
	defer rows.Close()

	var rentals []model.Rental
	for rows.Next() {
		r, err := scanRental(rows)
		if err != nil {
			return nil, storageError("scanning rental", err)
		}
		r.Status = r.StatusAt(today)
		rentals = append(rentals, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("listing active rentals", err)
	}
	return rentals, nil
}

// PurgeHistory deletes all closed rentals and returns how many were removed.
// Open rentals are kept so item statuses stay consistent with them.
func PurgeHistory(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM usage_history WHERE returned_date IS NOT NULL`,
	)
	if err != nil {
		return 0, storageError("purging history", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, storageError("purging history", err)
	}
	return n, nil
}

// openRentalID returns the ID of the item's open rental, or 0 when there is none.
func openRentalID(ctx context.Context, q querier, itemID int64) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`SELECT history_id FROM usage_history
		 WHERE item_id = ? AND is_rental = 1 AND returned_date IS NULL
		 ORDER BY history_id LIMIT 1`, itemID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, storageError("checking open rentals", err)
	}
	return id, nil
}

func scanRental(row rowScanner) (*model.Rental, error) {
	r := &model.Rental{}
	err := row.Scan(&r.ID, &r.ItemID, &r.UserName, &r.StartDate, &r.EndDate,
		&r.ReturnedDate, &r.Notes, &r.ItemName, &r.InventoryNumber)
	if err != nil {
		return nil, err
	}
	return r, nil
}
