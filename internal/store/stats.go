package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// DefaultRankingLimit is the size of the popularity and wear rankings.
const DefaultRankingLimit = 10

// MostRented returns the items with the most rentals, most rented first.
func MostRented(ctx context.Context, db *sql.DB, limit int) ([]model.PopularItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.item_id, i.item_name, COUNT(uh.history_id) AS rental_count
		 FROM inventory i
		 JOIN usage_history uh ON uh.item_id = i.item_id
		 WHERE uh.is_rental = 1
		 GROUP BY i.item_id
		 ORDER BY rental_count DESC, i.item_name
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, storageError("ranking popular items", err)
	}
	defer rows.Close()

	var items []model.PopularItem
	for rows.Next() {
		var p model.PopularItem
		if err := rows.Scan(&p.ItemID, &p.Name, &p.RentalCount); err != nil {
			return nil, storageError("scanning popular item", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("ranking popular items", err)
	}
	return items, nil
}

// MostWorn returns the items with the lowest integrity, most worn first.
func MostWorn(ctx context.Context, db *sql.DB, limit int) ([]model.WornItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.item_id, i.item_name, i.integrity_percentage, COALESCE(cnd.condition_name, '')
		 FROM inventory i
		 LEFT JOIN conditions cnd ON cnd.condition_id = i.condition_id
		 ORDER BY i.integrity_percentage ASC, i.item_id
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, storageError("ranking worn items", err)
	}
	defer rows.Close()

	var items []model.WornItem
	for rows.Next() {
		var w model.WornItem
		if err := rows.Scan(&w.ItemID, &w.Name, &w.IntegrityPercentage, &w.ConditionName); err != nil {
			return nil, storageError("scanning worn item", err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("ranking worn items", err)
	}
	return items, nil
}

// MonthlyRentals returns twelve buckets, January first, counting rentals by the
// month they started and how many of them came back late. Year 0 means all years.
func MonthlyRentals(ctx context.Context, db *sql.DB, year int) ([]model.MonthlyVolume, error) {
	query := `SELECT CAST(strftime('%m', start_date) AS INTEGER) AS month,
	                 COUNT(*),
	                 COUNT(CASE WHEN returned_date > end_date THEN 1 END)
	          FROM usage_history
	          WHERE is_rental = 1`
	var args []any
	if year > 0 {
		query += ` AND strftime('%Y', start_date) = ?`
		args = append(args, fmt.Sprintf("%04d", year))
	}
	query += ` GROUP BY month`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("counting monthly rentals", err)
	}
	defer rows.Close()

	months := make([]model.MonthlyVolume, 12)
	for i := range months {
		months[i].Month = i + 1
	}
	for rows.Next() {
		var month, total, late int
		if err := rows.Scan(&month, &total, &late); err != nil {
			return nil, storageError("scanning monthly rentals", err)
		}
		if month < 1 || month > 12 {
			continue
		}
		months[month-1].RentalCount = total
		months[month-1].LateCount = late
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("counting monthly rentals", err)
	}
	return months, nil
}

// GetSummary returns headline counts as of today.
func GetSummary(ctx context.Context, db *sql.DB, today model.Date, criticalBelow int) (*model.Summary, error) {
	s := &model.Summary{}
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(CASE WHEN s.status_name = ? THEN 1 END),
		        COUNT(CASE WHEN i.integrity_percentage < ? THEN 1 END)
		 FROM inventory i
		 JOIN availability_statuses s ON s.status_id = i.status_id`,
		model.StatusAvailable, criticalBelow,
	).Scan(&s.Items, &s.AvailableItems, &s.CriticalItems)
	if err != nil {
		return nil, storageError("summarizing inventory", err)
	}

	active, err := ListActiveRentals(ctx, db, today)
	if err != nil {
		return nil, err
	}
	s.ActiveRentals = len(active)
	for _, r := range active {
		if r.Status == model.RentalStatusOverdue {
			s.OverdueRentals++
		}
	}
	return s, nil
}
