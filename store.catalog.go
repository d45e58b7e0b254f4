package main

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// CatalogStore owns the book collection and the borrow-record ledger for
// the lifetime of the process. Mutating operations resolve through the
// dispatcher: preconditions are evaluated inside the atomically applied
// mutation body, so two overlapping intents against the same book can
// never over-allocate copies. All precondition failures are silent no-ops.
type CatalogStore struct {
	logger     *zap.Logger
	clock      Clocker
	dispatcher Dispatcher
	identity   *IdentityStore
	queue      Queuer

	mu             sync.Mutex
	books          []Book
	borrowings     []BorrowRecord
	loading        bool
	searchQuery    string
	categoryFilter string
}

// NewCatalogStore seeds the store with deep copies of the given books and
// borrow records, so later mutations never leak into the seed data.
func NewCatalogStore(logger *zap.Logger, clock Clocker, dispatcher Dispatcher, identity *IdentityStore, queue Queuer, books []Book, borrowings []BorrowRecord) *CatalogStore {
	cs := &CatalogStore{
		logger:     logger,
		clock:      clock,
		dispatcher: dispatcher,
		identity:   identity,
		queue:      queue,
		books:      make([]Book, 0, len(books)),
		borrowings: make([]BorrowRecord, 0, len(borrowings)),
	}
	for _, b := range books {
		cs.books = append(cs.books, b.clone())
	}
	for _, r := range borrowings {
		cs.borrowings = append(cs.borrowings, r.clone())
	}
	return cs
}

// Loading reports whether any mutating operation is in flight. The flag is
// shared by all operations of the store: overlapping calls toggle the same
// indicator and the last completion determines its final state.
func (cs *CatalogStore) Loading() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.loading
}

func (cs *CatalogStore) setLoading() {
	cs.mu.Lock()
	cs.loading = true
	cs.mu.Unlock()
}

// doneLoading runs under cs.mu, inside the applied mutation body.
func (cs *CatalogStore) doneLoading() {
	cs.loading = false
}

// AddBook creates a new catalog entry from the draft. The new id is one
// past the highest existing id. Duplicate isbn values are accepted.
func (cs *CatalogStore) AddBook(ctx context.Context, draft BookDraft) <-chan struct{} {
	cs.setLoading()
	return cs.dispatcher.Dispatch(ctx, "catalog.add", func() {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		defer cs.doneLoading()

		book := Book{
			ID:          cs.nextBookID(),
			Title:       draft.Title,
			Author:      draft.Author,
			ISBN:        draft.ISBN,
			PublishYear: draft.PublishYear,
			Category:    draft.Category,
			Description: draft.Description,
			CoverImage:  draft.CoverImage,
			Quantity:    draft.Quantity,
			BorrowedBy:  []int{},
			Available:   draft.Quantity > 0,
		}
		cs.books = append(cs.books, book)
		cs.logger.Info("catalog: book added", zap.Int("book.id", book.ID), zap.String("book.title", book.Title))
		cs.journal(CatalogQueue, JournalEntry{Op: OpBookAdded, Book: ptrBook(book)})
	})
}

// UpdateBook merges the patch onto the existing record and recomputes
// availability from the effective quantity versus current borrowers.
// Unknown id is a no-op, not an error.
func (cs *CatalogStore) UpdateBook(ctx context.Context, id int, patch BookPatch) <-chan struct{} {
	cs.setLoading()
	return cs.dispatcher.Dispatch(ctx, "catalog.update", func() {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		defer cs.doneLoading()

		b := cs.findBook(id)
		if b == nil {
			cs.logger.Debug("catalog: update of unknown book ignored", zap.Int("book.id", id))
			return
		}
		patch.applyTo(b)
		b.Available = b.Quantity > len(b.BorrowedBy)
		cs.logger.Info("catalog: book updated", zap.Int("book.id", id))
		cs.journal(CatalogQueue, JournalEntry{Op: OpBookUpdated, Book: ptrBook(*b)})
	})
}

// DeleteBook removes the record only if no one currently holds a copy;
// otherwise the deletion is silently refused, protecting the ledger from
// referencing a vanished book.
func (cs *CatalogStore) DeleteBook(ctx context.Context, id int) <-chan struct{} {
	cs.setLoading()
	return cs.dispatcher.Dispatch(ctx, "catalog.delete", func() {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		defer cs.doneLoading()

		for i := range cs.books {
			if cs.books[i].ID != id {
				continue
			}
			if len(cs.books[i].BorrowedBy) > 0 {
				cs.logger.Debug("catalog: delete refused, book has borrowers", zap.Int("book.id", id))
				return
			}
			deleted := cs.books[i]
			cs.books = append(cs.books[:i], cs.books[i+1:]...)
			cs.logger.Info("catalog: book deleted", zap.Int("book.id", id))
			cs.journal(CatalogQueue, JournalEntry{Op: OpBookDeleted, Book: ptrBook(deleted)})
			return
		}
	})
}

// BorrowBook lends one copy to the authenticated principal. Without a
// session the call is a no-op before any request fires; the caller is
// expected to have gated access already. Availability and the
// one-active-record-per-pair rule are re-checked when the mutation
// applies, so an overlapping borrow of the last copy resolves to a no-op.
func (cs *CatalogStore) BorrowBook(ctx context.Context, bookID int) <-chan struct{} {
	sess, ok := cs.identity.Current()
	if !ok {
		cs.logger.Debug("catalog: borrow without authenticated principal", zap.Int("book.id", bookID))
		return doneNow()
	}
	cs.setLoading()
	return cs.dispatcher.Dispatch(ctx, "catalog.borrow", func() {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		defer cs.doneLoading()

		b := cs.findBook(bookID)
		if b == nil || !b.Available {
			cs.logger.Debug("catalog: borrow of unavailable book ignored", zap.Int("book.id", bookID))
			return
		}
		if cs.findActiveRecord(sess.ID, bookID) != nil {
			cs.logger.Debug("catalog: double borrow ignored", zap.Int("book.id", bookID), zap.Int("user.id", sess.ID))
			return
		}

		b.BorrowedBy = append(b.BorrowedBy, sess.ID)
		b.Available = len(b.BorrowedBy) < b.Quantity

		rec := BorrowRecord{
			ID:         cs.nextRecordID(),
			UserID:     sess.ID,
			BookID:     bookID,
			BorrowDate: ISODate(cs.clock.Now()),
			ReturnDate: nil,
			Status:     StatusActive,
		}
		cs.borrowings = append(cs.borrowings, rec)
		cs.logger.Info("catalog: book borrowed", zap.Int("book.id", bookID), zap.Int("user.id", sess.ID), zap.Int("record.id", rec.ID))
		cs.journal(CatalogQueue, JournalEntry{Op: OpBookBorrowed, Book: ptrBook(*b)})
		cs.journal(LedgerQueue, JournalEntry{Op: OpBookBorrowed, Record: ptrRecord(rec)})
	})
}

// ReturnBook hands back the caller's copy. It removes exactly one
// occurrence of the caller from the borrower list and reopens availability
// unconditionally: any return makes the book available again regardless of
// other outstanding borrowers. The matching active ledger record, when one
// exists, transitions to returned; when none does the book-side mutation
// still applies, the ledger and the catalog are not transactionally linked.
func (cs *CatalogStore) ReturnBook(ctx context.Context, bookID int) <-chan struct{} {
	sess, ok := cs.identity.Current()
	if !ok {
		cs.logger.Debug("catalog: return without authenticated principal", zap.Int("book.id", bookID))
		return doneNow()
	}
	cs.setLoading()
	return cs.dispatcher.Dispatch(ctx, "catalog.return", func() {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		defer cs.doneLoading()

		b := cs.findBook(bookID)
		if b == nil {
			return
		}
		i := indexOf(b.BorrowedBy, sess.ID)
		if i == -1 {
			cs.logger.Debug("catalog: return of not-borrowed book ignored", zap.Int("book.id", bookID), zap.Int("user.id", sess.ID))
			return
		}
		b.BorrowedBy = append(b.BorrowedBy[:i], b.BorrowedBy[i+1:]...)
		b.Available = true

		if rec := cs.findActiveRecord(sess.ID, bookID); rec != nil {
			date := ISODate(cs.clock.Now())
			rec.ReturnDate = &date
			rec.Status = StatusReturned
			cs.journal(LedgerQueue, JournalEntry{Op: OpBookReturned, Record: ptrRecord(*rec)})
		}
		cs.logger.Info("catalog: book returned", zap.Int("book.id", bookID), zap.Int("user.id", sess.ID))
		cs.journal(CatalogQueue, JournalEntry{Op: OpBookReturned, Book: ptrBook(*b)})
	})
}

// MarkOverdue transitions an active record to overdue. It is the entry
// point for the external scheduler; the store itself never decides what is
// overdue. It reports whether the transition happened.
func (cs *CatalogStore) MarkOverdue(recordID int) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for i := range cs.borrowings {
		if cs.borrowings[i].ID != recordID {
			continue
		}
		if cs.borrowings[i].Status != StatusActive {
			return false
		}
		cs.borrowings[i].Status = StatusOverdue
		cs.logger.Info("catalog: borrow record marked overdue", zap.Int("record.id", recordID))
		cs.journal(LedgerQueue, JournalEntry{Op: OpRecordOverdue, Record: ptrRecord(cs.borrowings[i])})
		return true
	}
	return false
}

// GetBookByID returns a snapshot of the book with the given id.
func (cs *CatalogStore) GetBookByID(id int) (Book, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if b := cs.findBook(id); b != nil {
		return b.clone(), true
	}
	return Book{}, false
}

// GetUserBorrowings returns snapshots of all ledger entries of one user.
func (cs *CatalogStore) GetUserBorrowings(userID int) []BorrowRecord {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := []BorrowRecord{}
	for _, r := range cs.borrowings {
		if r.UserID == userID {
			out = append(out, r.clone())
		}
	}
	return out
}

// Books returns a snapshot of the whole catalog.
func (cs *CatalogStore) Books() []Book {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]Book, 0, len(cs.books))
	for _, b := range cs.books {
		out = append(out, b.clone())
	}
	return out
}

// Borrowings returns a snapshot of the whole ledger.
func (cs *CatalogStore) Borrowings() []BorrowRecord {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]BorrowRecord, 0, len(cs.borrowings))
	for _, r := range cs.borrowings {
		out = append(out, r.clone())
	}
	return out
}

// findBook runs under cs.mu.
func (cs *CatalogStore) findBook(id int) *Book {
	for i := range cs.books {
		if cs.books[i].ID == id {
			return &cs.books[i]
		}
	}
	return nil
}

// findActiveRecord runs under cs.mu.
func (cs *CatalogStore) findActiveRecord(userID, bookID int) *BorrowRecord {
	for i := range cs.borrowings {
		r := &cs.borrowings[i]
		if r.UserID == userID && r.BookID == bookID && r.Status == StatusActive {
			return r
		}
	}
	return nil
}

// nextBookID runs under cs.mu.
func (cs *CatalogStore) nextBookID() int {
	max := 0
	for _, b := range cs.books {
		if b.ID > max {
			max = b.ID
		}
	}
	return max + 1
}

// nextRecordID runs under cs.mu.
func (cs *CatalogStore) nextRecordID() int {
	max := 0
	for _, r := range cs.borrowings {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}

func (cs *CatalogStore) journal(qid string, e JournalEntry) {
	e.At = cs.clock.Now().Format("2006-01-02 15:04:05")
	if err := cs.queue.Push(context.Background(), qid, e); err != nil {
		cs.logger.Error("catalog: failed to push journal entry", zap.String("qid", qid), zap.Error(err))
	}
}

func ptrBook(b Book) *Book {
	b = b.clone()
	return &b
}

func ptrRecord(r BorrowRecord) *BorrowRecord {
	r = r.clone()
	return &r
}
