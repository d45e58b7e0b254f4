package main

// BorrowStatus is the lifecycle state of a borrow record.
type BorrowStatus string

const (
	StatusActive   BorrowStatus = "active"
	StatusReturned BorrowStatus = "returned"
	StatusOverdue  BorrowStatus = "overdue"
)

// BorrowRecord is one ledger entry. At most one active record exists per
// (UserID, BookID) pair. ReturnDate is nil while the borrow is outstanding
// and a returned record is never mutated again. The overdue status is
// imposed from outside the store; the store only preserves it.
type BorrowRecord struct {
	ID         int          `json:"id"`
	UserID     int          `json:"userId"`
	BookID     int          `json:"bookId"`
	BorrowDate string       `json:"borrowDate"`
	ReturnDate *string      `json:"returnDate"`
	Status     BorrowStatus `json:"status"`
}

func (r BorrowRecord) clone() BorrowRecord {
	if r.ReturnDate != nil {
		d := *r.ReturnDate
		r.ReturnDate = &d
	}
	return r
}
