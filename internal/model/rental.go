package model

// Rental is a usage_history entry flagged as a rental.
type Rental struct {
	ID           int64  `json:"id"`
	ItemID       int64  `json:"item_id"`
	UserName     string `json:"user_name"`
	StartDate    Date   `json:"start_date"`
	EndDate      Date   `json:"end_date"`
	ReturnedDate Date   `json:"returned_date"`
	Notes        string `json:"notes,omitempty"`

	// Joined fields (not always populated).
	ItemName        string `json:"item_name,omitempty"`
	InventoryNumber string `json:"inventory_number,omitempty"`

	// Derived on read, never stored.
	Status RentalStatus `json:"status"`
}

// IsOpen reports whether the rental has not been returned yet.
func (r *Rental) IsOpen() bool {
	return r.ReturnedDate.IsZero()
}

// RentalStatus is the display label derived from a rental's dates.
type RentalStatus string

// Rental statuses.
const (
	RentalStatusRented       RentalStatus = "Rented"
	RentalStatusOverdue      RentalStatus = "Overdue"
	RentalStatusReturned     RentalStatus = "Returned"
	RentalStatusReturnedLate RentalStatus = "ReturnedLate"
)

// DeriveRentalStatus computes the label of a rental on the given day.
// It is the only place the comparison lives; every listing relabels through it.
func DeriveRentalStatus(endDate, returnedDate, today Date) RentalStatus {
	switch {
	case returnedDate.IsZero() && endDate.Before(today):
		return RentalStatusOverdue
	case returnedDate.IsZero():
		return RentalStatusRented
	case returnedDate.After(endDate):
		return RentalStatusReturnedLate
	default:
		return RentalStatusReturned
	}
}

// StatusAt returns the rental's label on the given day.
func (r *Rental) StatusAt(today Date) RentalStatus {
	return DeriveRentalStatus(r.EndDate, r.ReturnedDate, today)
}

// RentalInput holds the data needed to open a rental.
type RentalInput struct {
	ItemID    int64  `json:"item_id"`
	UserName  string `json:"user_name"`
	StartDate Date   `json:"start_date"`
	EndDate   Date   `json:"end_date"`
	Notes     string `json:"notes"`
}

// ReturnInput holds the data needed to close a rental.
type ReturnInput struct {
	ReturnedDate        Date   `json:"returned_date"`
	IntegrityPercentage int    `json:"integrity_percentage"`
	Notes               string `json:"notes"`
}

// Rental label filters.
const (
	RentalFilterActive   = "active"
	RentalFilterOverdue  = "overdue"
	RentalFilterReturned = "returned"
)

// Matches reports whether status passes the given label filter. An empty filter matches everything.
func (s RentalStatus) Matches(filter string) bool {
	switch filter {
	case "":
		return true
	case RentalFilterActive:
		return s == RentalStatusRented
	case RentalFilterOverdue:
		return s == RentalStatusOverdue
	case RentalFilterReturned:
		return s == RentalStatusReturned || s == RentalStatusReturnedLate
	default:
		return false
	}
}

// Rental history sort options.
const (
	SortStartDateAsc  = "start_date_asc"
	SortStartDateDesc = "start_date_desc"
	SortEndDateAsc    = "end_date_asc"
	SortEndDateDesc   = "end_date_desc"
	SortNameAsc       = "name_asc"
	SortNameDesc      = "name_desc"
	SortUserAsc       = "user_asc"
	SortUserDesc      = "user_desc"
)

// RentalFilter narrows and orders ListRentals.
type RentalFilter struct {
	ItemID int64
	Search string
	Status string
	Sort   string
}
