package model

import "testing"

func TestDeriveRentalStatus(t *testing.T) {
	end := NewDate(2024, 6, 7)

	tests := []struct {
		name     string
		returned Date
		today    Date
		expected RentalStatus
	}{
		{"open before end", Date{}, NewDate(2024, 6, 1), RentalStatusRented},
		{"open on end date", Date{}, end, RentalStatusRented},
		{"open after end", Date{}, NewDate(2024, 6, 8), RentalStatusOverdue},
		{"returned early", NewDate(2024, 6, 5), NewDate(2024, 7, 1), RentalStatusReturned},
		{"returned on end date", end, NewDate(2024, 7, 1), RentalStatusReturned},
		{"returned late", NewDate(2024, 6, 10), NewDate(2024, 7, 1), RentalStatusReturnedLate},
		// Closed rentals ignore the clock.
		{"returned late, read earlier", NewDate(2024, 6, 10), NewDate(2024, 6, 1), RentalStatusReturnedLate},
	}

	for _, tt := range tests {
		got := DeriveRentalStatus(end, tt.returned, tt.today)
		if got != tt.expected {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestRentalStatusIsPureAndMonotonic(t *testing.T) {
	r := &Rental{StartDate: NewDate(2024, 6, 1), EndDate: NewDate(2024, 6, 7)}

	day := NewDate(2024, 6, 1)
	if r.StatusAt(day) != r.StatusAt(day) {
		t.Fatal("same day must give same label")
	}

	overdue := false
	for i := 0; i < 30; i++ {
		got := r.StatusAt(day.AddDays(i))
		if got == RentalStatusOverdue {
			overdue = true
			continue
		}
		if overdue {
			t.Fatalf("label reverted to %q after becoming overdue (day %d)", got, i)
		}
		if got != RentalStatusRented {
			t.Fatalf("unexpected label %q for open rental", got)
		}
	}
	if !overdue {
		t.Error("expected open rental to become overdue")
	}
}

func TestRentalStatusMatches(t *testing.T) {
	tests := []struct {
		status   RentalStatus
		filter   string
		expected bool
	}{
		{RentalStatusRented, "", true},
		{RentalStatusRented, RentalFilterActive, true},
		{RentalStatusOverdue, RentalFilterActive, false},
		{RentalStatusOverdue, RentalFilterOverdue, true},
		{RentalStatusReturned, RentalFilterReturned, true},
		{RentalStatusReturnedLate, RentalFilterReturned, true},
		{RentalStatusRented, RentalFilterReturned, false},
		{RentalStatusRented, "bogus", false},
	}

	for _, tt := range tests {
		if got := tt.status.Matches(tt.filter); got != tt.expected {
			t.Errorf("%q.Matches(%q) = %v, want %v", tt.status, tt.filter, got, tt.expected)
		}
	}
}
