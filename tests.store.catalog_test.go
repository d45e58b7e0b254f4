package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestIdentity(users ...User) *IdentityStore {
	dir := &MockDirectory{Users: users}
	return NewIdentityStore(zap.NewNop(), NewImmediateDispatcher(), dir, &MockStorage{})
}

func loginAs(t *testing.T, s *IdentityStore, username, password string) {
	t.Helper()
	<-s.Login(context.Background(), username, password)
	require.True(t, s.IsAuthenticated(), "login failed for %s", username)
}

func newTestCatalog(identity *IdentityStore, books []Book, borrowings []BorrowRecord) (*CatalogStore, *RecordingQueue) {
	q := &RecordingQueue{}
	cs := NewCatalogStore(zap.NewNop(), NewMockClocker(), NewImmediateDispatcher(), identity, q, books, borrowings)
	return cs, q
}

func testBook(id, quantity int, borrowedBy ...int) Book {
	if borrowedBy == nil {
		borrowedBy = []int{}
	}
	return Book{
		ID:         id,
		Title:      "Test book title",
		Author:     "Test book author",
		ISBN:       "978-0000000000",
		Category:   "Fiction",
		Quantity:   quantity,
		BorrowedBy: borrowedBy,
		Available:  len(borrowedBy) < quantity,
	}
}

var testUsers = []User{
	{ID: 7, Username: "user7", Password: "pw7", Name: "User Seven", Role: RoleUser, Email: "u7@example.com"},
	{ID: 9, Username: "user9", Password: "pw9", Name: "User Nine", Role: RoleUser, Email: "u9@example.com"},
}

// requireAvailabilityInvariant checks that the cached availability of every
// book matches its derivation from quantity and outstanding borrowers.
func requireAvailabilityInvariant(t *testing.T, cs *CatalogStore) {
	t.Helper()
	for _, b := range cs.Books() {
		require.Equal(t, len(b.BorrowedBy) < b.Quantity, b.Available, "book %d availability out of sync", b.ID)
	}
}

// Ensures borrowing the last copy flips availability and appends one active
// ledger record attributed to the caller.
func TestBorrowBook_LastCopy(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	loginAs(t, identity, "user7", "pw7")
	cs, q := newTestCatalog(identity, []Book{testBook(1, 1)}, nil)

	<-cs.BorrowBook(context.Background(), 1)

	b, ok := cs.GetBookByID(1)
	require.True(t, ok)
	assert.Equal(t, []int{7}, b.BorrowedBy)
	assert.False(t, b.Available)
	requireAvailabilityInvariant(t, cs)

	records := cs.Borrowings()
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].ID)
	assert.Equal(t, 7, records[0].UserID)
	assert.Equal(t, 1, records[0].BookID)
	assert.Equal(t, "2023-11-05", records[0].BorrowDate)
	assert.Nil(t, records[0].ReturnDate)
	assert.Equal(t, StatusActive, records[0].Status)

	assert.Equal(t, []string{OpBookBorrowed}, q.Ops(CatalogQueue))
	assert.Equal(t, []string{OpBookBorrowed}, q.Ops(LedgerQueue))
	assert.False(t, cs.Loading())
}

// Ensures a borrow of an unavailable book is a silent no-op.
func TestBorrowBook_Unavailable(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	loginAs(t, identity, "user7", "pw7")
	cs, q := newTestCatalog(identity, []Book{testBook(1, 1)}, nil)

	<-cs.BorrowBook(context.Background(), 1)
	identity.Logout()
	loginAs(t, identity, "user9", "pw9")
	<-cs.BorrowBook(context.Background(), 1)

	b, _ := cs.GetBookByID(1)
	assert.Equal(t, []int{7}, b.BorrowedBy)
	assert.Len(t, cs.Borrowings(), 1)
	assert.Len(t, q.Ops(LedgerQueue), 1)
	requireAvailabilityInvariant(t, cs)
}

// Ensures one user cannot hold two active records for the same title even
// when free copies remain.
func TestBorrowBook_NoDoubleBorrow(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	loginAs(t, identity, "user7", "pw7")
	cs, _ := newTestCatalog(identity, []Book{testBook(1, 3)}, nil)

	<-cs.BorrowBook(context.Background(), 1)
	<-cs.BorrowBook(context.Background(), 1)

	b, _ := cs.GetBookByID(1)
	assert.Equal(t, []int{7}, b.BorrowedBy)
	assert.Len(t, cs.Borrowings(), 1)
	requireAvailabilityInvariant(t, cs)
}

// Ensures borrowing without an authenticated principal changes nothing and
// never fires a request.
func TestBorrowBook_NoSession(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	cs, q := newTestCatalog(identity, []Book{testBook(1, 1)}, nil)

	<-cs.BorrowBook(context.Background(), 1)

	b, _ := cs.GetBookByID(1)
	assert.Empty(t, b.BorrowedBy)
	assert.Empty(t, cs.Borrowings())
	assert.Empty(t, q.Pushed)
	assert.False(t, cs.Loading())
}

// Ensures two overlapping borrow intents for the last copy cannot
// over-allocate: preconditions are re-checked when each mutation applies.
func TestBorrowBook_OverlappingIntents(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	q := &RecordingQueue{}
	dispatcher := NewLatencyDispatcher(zap.NewNop(), NewMockClocker(), NewIDsHandler(), 5*time.Millisecond)
	cs := NewCatalogStore(zap.NewNop(), NewMockClocker(), dispatcher, identity, q, []Book{testBook(1, 1)}, nil)

	loginAs(t, identity, "user7", "pw7")
	first := cs.BorrowBook(context.Background(), 1)
	identity.Logout()
	loginAs(t, identity, "user9", "pw9")
	second := cs.BorrowBook(context.Background(), 1)
	<-first
	<-second

	b, _ := cs.GetBookByID(1)
	assert.Len(t, b.BorrowedBy, 1)
	assert.Len(t, cs.Borrowings(), 1)
	assert.False(t, cs.Loading())
	requireAvailabilityInvariant(t, cs)
}

// Ensures a quantity update recomputes availability against current borrowers.
func TestUpdateBook_RecomputesAvailability(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	cs, q := newTestCatalog(identity, []Book{testBook(1, 2, 7, 9)}, nil)

	b, _ := cs.GetBookByID(1)
	require.False(t, b.Available)

	five := 5
	<-cs.UpdateBook(context.Background(), 1, BookPatch{Quantity: &five})

	b, _ = cs.GetBookByID(1)
	assert.Equal(t, 5, b.Quantity)
	assert.True(t, b.Available)
	assert.Equal(t, []string{OpBookUpdated}, q.Ops(CatalogQueue))
	requireAvailabilityInvariant(t, cs)
}

// Ensures a patch without quantity keeps the prior value for the
// availability derivation and untouched fields survive the merge.
func TestUpdateBook_PartialPatch(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	cs, _ := newTestCatalog(identity, []Book{testBook(1, 2, 7)}, nil)

	title := "Renamed"
	<-cs.UpdateBook(context.Background(), 1, BookPatch{Title: &title})

	b, _ := cs.GetBookByID(1)
	assert.Equal(t, "Renamed", b.Title)
	assert.Equal(t, "Test book author", b.Author)
	assert.Equal(t, 2, b.Quantity)
	assert.True(t, b.Available)
	requireAvailabilityInvariant(t, cs)
}

// Ensures updating an unknown id is a silent no-op, not an error.
func TestUpdateBook_UnknownID(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	cs, q := newTestCatalog(identity, []Book{testBook(1, 2)}, nil)

	ten := 10
	<-cs.UpdateBook(context.Background(), 42, BookPatch{Quantity: &ten})

	assert.Len(t, cs.Books(), 1)
	assert.Empty(t, q.Ops(CatalogQueue))
}

// Ensures new books get one past the highest id, an empty borrower list
// and availability derived from the draft quantity.
func TestAddBook(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	cs, q := newTestCatalog(identity, []Book{testBook(3, 1)}, nil)

	<-cs.AddBook(context.Background(), BookDraft{Title: "New arrival", Quantity: 2})
	<-cs.AddBook(context.Background(), BookDraft{Title: "Out of stock", Quantity: 0})

	books := cs.Books()
	require.Len(t, books, 3)
	assert.Equal(t, 4, books[1].ID)
	assert.Equal(t, []int{}, books[1].BorrowedBy)
	assert.True(t, books[1].Available)
	assert.Equal(t, 5, books[2].ID)
	assert.False(t, books[2].Available)
	assert.Equal(t, []string{OpBookAdded, OpBookAdded}, q.Ops(CatalogQueue))
	requireAvailabilityInvariant(t, cs)
}

// Ensures the first id of an empty catalog is 1.
func TestAddBook_EmptyCatalog(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	cs, _ := newTestCatalog(identity, nil, nil)

	<-cs.AddBook(context.Background(), BookDraft{Title: "First", Quantity: 1})

	books := cs.Books()
	require.Len(t, books, 1)
	assert.Equal(t, 1, books[0].ID)
}

// Ensures deletion is refused while any copy is out, protecting the ledger.
func TestDeleteBook_WithBorrowers(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	cs, q := newTestCatalog(identity, []Book{testBook(1, 2, 7)}, nil)

	<-cs.DeleteBook(context.Background(), 1)

	assert.Len(t, cs.Books(), 1)
	assert.Empty(t, q.Ops(CatalogQueue))
}

// Ensures deletion removes a book nobody holds.
func TestDeleteBook_NoBorrowers(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	cs, q := newTestCatalog(identity, []Book{testBook(1, 2), testBook(2, 1)}, nil)

	<-cs.DeleteBook(context.Background(), 1)

	books := cs.Books()
	require.Len(t, books, 1)
	assert.Equal(t, 2, books[0].ID)
	assert.Equal(t, []string{OpBookDeleted}, q.Ops(CatalogQueue))
}

// Ensures a return removes exactly one occurrence of the caller, reopens
// availability unconditionally and closes the matching active record.
func TestReturnBook(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	loginAs(t, identity, "user7", "pw7")
	cs, q := newTestCatalog(identity, []Book{testBook(1, 2, 7, 9)}, []BorrowRecord{
		{ID: 1, UserID: 7, BookID: 1, BorrowDate: "2023-10-01", Status: StatusActive},
		{ID: 2, UserID: 9, BookID: 1, BorrowDate: "2023-10-02", Status: StatusActive},
	})

	<-cs.ReturnBook(context.Background(), 1)

	b, _ := cs.GetBookByID(1)
	assert.Equal(t, []int{9}, b.BorrowedBy)
	assert.True(t, b.Available)

	records := cs.GetUserBorrowings(7)
	require.Len(t, records, 1)
	assert.Equal(t, StatusReturned, records[0].Status)
	require.NotNil(t, records[0].ReturnDate)
	assert.Equal(t, "2023-11-05", *records[0].ReturnDate)

	// the other borrower's record stays active.
	other := cs.GetUserBorrowings(9)
	require.Len(t, other, 1)
	assert.Equal(t, StatusActive, other[0].Status)

	assert.Equal(t, []string{OpBookReturned}, q.Ops(CatalogQueue))
	assert.Equal(t, []string{OpBookReturned}, q.Ops(LedgerQueue))
}

// The return policy is deliberate: any return reopens availability even
// when the quantity was lowered below the remaining borrowers.
func TestReturnBook_AlwaysReopensAvailability(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	loginAs(t, identity, "user7", "pw7")
	book := testBook(1, 1, 7, 9) // quantity lowered after both borrows
	cs, _ := newTestCatalog(identity, []Book{book}, []BorrowRecord{
		{ID: 1, UserID: 7, BookID: 1, BorrowDate: "2023-10-01", Status: StatusActive},
	})

	<-cs.ReturnBook(context.Background(), 1)

	b, _ := cs.GetBookByID(1)
	assert.Equal(t, []int{9}, b.BorrowedBy)
	assert.True(t, b.Available)
}

// Ensures a repeated return with no outstanding borrow leaves state unchanged.
func TestReturnBook_Idempotent(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	loginAs(t, identity, "user7", "pw7")
	cs, _ := newTestCatalog(identity, []Book{testBook(1, 1, 7)}, []BorrowRecord{
		{ID: 1, UserID: 7, BookID: 1, BorrowDate: "2023-10-01", Status: StatusActive},
	})

	<-cs.ReturnBook(context.Background(), 1)
	before := cs.Books()
	beforeRecords := cs.Borrowings()

	<-cs.ReturnBook(context.Background(), 1)

	assert.Equal(t, before, cs.Books())
	assert.Equal(t, beforeRecords, cs.Borrowings())
}

// The catalog and the ledger are not transactionally linked: the book-side
// mutation applies even when no matching active record exists.
func TestReturnBook_MissingLedgerRecord(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	loginAs(t, identity, "user7", "pw7")
	cs, q := newTestCatalog(identity, []Book{testBook(1, 1, 7)}, nil)

	<-cs.ReturnBook(context.Background(), 1)

	b, _ := cs.GetBookByID(1)
	assert.Empty(t, b.BorrowedBy)
	assert.True(t, b.Available)
	assert.Empty(t, q.Ops(LedgerQueue))
	assert.Equal(t, []string{OpBookReturned}, q.Ops(CatalogQueue))
}

// Ensures the overdue transition only applies to active records.
func TestMarkOverdue(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	returned := "2023-10-20"
	cs, q := newTestCatalog(identity, []Book{testBook(1, 3, 7, 9)}, []BorrowRecord{
		{ID: 1, UserID: 7, BookID: 1, BorrowDate: "2023-09-01", Status: StatusActive},
		{ID: 2, UserID: 9, BookID: 1, BorrowDate: "2023-10-01", ReturnDate: &returned, Status: StatusReturned},
	})

	assert.True(t, cs.MarkOverdue(1))
	assert.False(t, cs.MarkOverdue(1)) // already overdue
	assert.False(t, cs.MarkOverdue(2)) // returned records are immutable
	assert.False(t, cs.MarkOverdue(42))

	records := cs.Borrowings()
	assert.Equal(t, StatusOverdue, records[0].Status)
	assert.Equal(t, StatusReturned, records[1].Status)
	assert.Equal(t, []string{OpRecordOverdue}, q.Ops(LedgerQueue))
}

// Ensures the ledger accessor filters per user.
func TestGetUserBorrowings(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	cs, _ := newTestCatalog(identity, nil, []BorrowRecord{
		{ID: 1, UserID: 7, BookID: 1, BorrowDate: "2023-10-01", Status: StatusActive},
		{ID: 2, UserID: 9, BookID: 2, BorrowDate: "2023-10-02", Status: StatusActive},
		{ID: 3, UserID: 7, BookID: 3, BorrowDate: "2023-10-03", Status: StatusActive},
	})

	records := cs.GetUserBorrowings(7)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].ID)
	assert.Equal(t, 3, records[1].ID)
	assert.Empty(t, cs.GetUserBorrowings(5))
}

// Ensures seeds are deep-copied: mutating the store never leaks into them.
func TestCatalogSeedsAreCopied(t *testing.T) {
	identity := newTestIdentity(testUsers...)
	loginAs(t, identity, "user7", "pw7")
	seed := []Book{testBook(1, 2)}
	cs, _ := newTestCatalog(identity, seed, nil)

	<-cs.BorrowBook(context.Background(), 1)

	assert.Empty(t, seed[0].BorrowedBy)
}
