package model

// PopularItem is one row of the most-rented ranking.
type PopularItem struct {
	ItemID      int64  `json:"item_id"`
	Name        string `json:"name"`
	RentalCount int    `json:"rental_count"`
}

// WornItem is one row of the wear ranking.
type WornItem struct {
	ItemID              int64  `json:"item_id"`
	Name                string `json:"name"`
	IntegrityPercentage int    `json:"integrity_percentage"`
	ConditionName       string `json:"condition_name,omitempty"`
}

// MonthlyVolume is the rental volume for one calendar month.
type MonthlyVolume struct {
	Month       int `json:"month"`
	RentalCount int `json:"rental_count"`
	LateCount   int `json:"late_count"`
}

// Summary is a headline overview of the inventory. OverdueRentals is a subset of ActiveRentals.
type Summary struct {
	Items          int `json:"items"`
	AvailableItems int `json:"available_items"`
	ActiveRentals  int `json:"active_rentals"`
	OverdueRentals int `json:"overdue_rentals"`
	CriticalItems  int `json:"critical_items"`
}
