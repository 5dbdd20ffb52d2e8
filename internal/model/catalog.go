package model

// Category groups items, e.g. "Tents".
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Status is an availability status from the fixed reference set.
type Status struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Condition is a wear band derived from integrity.
type Condition struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	MinIntegrity int    `json:"min_integrity"`
}

// Availability status names seeded by the schema.
const (
	StatusAvailable   = "Available"
	StatusRented      = "Rented"
	StatusUnderRepair = "Under repair"
	StatusWrittenOff  = "Written off"
)
