package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/erazemk/izposoja/internal/model"
)

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context, db *sql.DB) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT category_id, category_name FROM categories ORDER BY category_name`,
	)
	if err != nil {
		return nil, storageError("listing categories", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, storageError("scanning category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("listing categories", err)
	}
	return categories, nil
}

// GetCategory returns a category by ID.
func GetCategory(ctx context.Context, db *sql.DB, id int64) (*model.Category, error) {
	c := &model.Category{}
	err := db.QueryRowContext(ctx,
		`SELECT category_id, category_name FROM categories WHERE category_id = ?`, id,
	).Scan(&c.ID, &c.Name)
	if err == sql.ErrNoRows {
		return nil, notFoundError("category %d", id)
	}
	if err != nil {
		return nil, storageError("getting category", err)
	}
	return c, nil
}

// GetOrCreateCategory returns the ID of the category with exactly this name,
// creating it first if needed. Repeated calls never create duplicates.
// created reports whether this call inserted the row.
func GetOrCreateCategory(ctx context.Context, db *sql.DB, name string) (id int64, created bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, validationError("category name required")
	}

	err = withTx(ctx, db, func(tx *sql.Tx) error {
		id, created, err = getOrCreateCategory(ctx, tx, name)
		return err
	})
	if err != nil {
		return 0, false, err
	}
	return id, created, nil
}

func getOrCreateCategory(ctx context.Context, q querier, name string) (id int64, created bool, err error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO categories (category_name) VALUES (?) ON CONFLICT (category_name) DO NOTHING`,
		name,
	)
	if err != nil {
		return 0, false, storageError("creating category", err)
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		created = true
	}

	err = q.QueryRowContext(ctx,
		`SELECT category_id FROM categories WHERE category_name = ?`, name,
	).Scan(&id)
	if err != nil {
		return 0, false, storageError("looking up category", err)
	}
	return id, created, nil
}

// RenameCategory changes a category's name. Names stay unique.
func RenameCategory(ctx context.Context, db *sql.DB, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return validationError("category name required")
	}

	return withTx(ctx, db, func(tx *sql.Tx) error {
		var taken int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM categories WHERE category_name = ? AND category_id != ?`, name, id,
		).Scan(&taken)
		if err != nil {
			return storageError("checking category name", err)
		}
		if taken > 0 {
			return conflictError("category %q already exists", name)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE categories SET category_name = ? WHERE category_id = ?`, name, id,
		)
		if err != nil {
			return storageError("renaming category", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return notFoundError("category %d", id)
		}
		return nil
	})
}

// DeleteCategory removes a category. It is rejected while any item still uses it.
func DeleteCategory(ctx context.Context, db *sql.DB, id int64) error {
	return withTx(ctx, db, func(tx *sql.Tx) error {
		if err := requireRow(ctx, tx, `SELECT 1 FROM categories WHERE category_id = ?`, id, "category"); err != nil {
			return err
		}

		var count int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM inventory WHERE category_id = ?`, id,
		).Scan(&count)
		if err != nil {
			return storageError("checking category items", err)
		}
		if count > 0 {
			return conflictError("category %d is still used by %d items", id, count)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE category_id = ?`, id); err != nil {
			return storageError("deleting category", err)
		}
		return nil
	})
}

// ListStatuses returns the availability statuses ordered by ID.
func ListStatuses(ctx context.Context, db *sql.DB) ([]model.Status, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT status_id, status_name FROM availability_statuses ORDER BY status_id`,
	)
	if err != nil {
		return nil, storageError("listing statuses", err)
	}
	defer rows.Close()

	var statuses []model.Status
	for rows.Next() {
		var s model.Status
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, storageError("scanning status", err)
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("listing statuses", err)
	}
	return statuses, nil
}

// StatusIDByName resolves one of the fixed availability statuses.
func StatusIDByName(ctx context.Context, db *sql.DB, name string) (int64, error) {
	return statusID(ctx, db, name)
}

func statusID(ctx context.Context, q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`SELECT status_id FROM availability_statuses WHERE status_name = ?`, name,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, notFoundError("status %q", name)
	}
	if err != nil {
		return 0, storageError("looking up status", err)
	}
	return id, nil
}

// ListConditions returns the wear bands, best first.
func ListConditions(ctx context.Context, db *sql.DB) ([]model.Condition, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT condition_id, condition_name, min_integrity FROM conditions ORDER BY min_integrity DESC`,
	)
	if err != nil {
		return nil, storageError("listing conditions", err)
	}
	defer rows.Close()

	var conditions []model.Condition
	for rows.Next() {
		var c model.Condition
		if err := rows.Scan(&c.ID, &c.Name, &c.MinIntegrity); err != nil {
			return nil, storageError("scanning condition", err)
		}
		conditions = append(conditions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("listing conditions", err)
	}
	return conditions, nil
}

// requireRow returns a not-found error naming what when query yields no row.
func requireRow(ctx context.Context, q querier, query string, id int64, what string) error {
	var one int
	err := q.QueryRowContext(ctx, query, id).Scan(&one)
	if err == sql.ErrNoRows {
		return notFoundError("%s %d", what, id)
	}
	if err != nil {
		return storageError("checking "+what, err)
	}
	return nil
}
