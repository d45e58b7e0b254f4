package main

import (
	"context"
	"errors"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

// MockClocker implements a fake Clocker with a settable fixed time.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time. This equals
// to `2023-11-05 00:00:00 +0000 UTC` in String format, so ledger dates
// produced under it read `2023-11-05`.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 11, 5, 0, 0, 0, 0, time.UTC)}
}

// Now returns the configured time.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// NewTicker provides a real ticker so the mock satisfies TickerClocker.
func (mck *MockClocker) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// MockDirectory matches credentials by plain equality against its records.
type MockDirectory struct {
	Users []User
}

func (d *MockDirectory) Lookup(username, password string) (User, bool) {
	for _, u := range d.Users {
		if u.Username == username && u.Password == password {
			return u, true
		}
	}
	return User{}, false
}

// MockStorage implements the durable storage interfaces in memory.
type MockStorage struct {
	Session *Session
	Prefs   *Preferences
	Journal []JournalEntry
	SaveErr error
}

func (m *MockStorage) SaveSession(_ context.Context, s Session) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Session = &s
	return nil
}

func (m *MockStorage) LoadSession(_ context.Context) (Session, bool) {
	if m.Session == nil {
		return Session{}, false
	}
	return *m.Session, true
}

func (m *MockStorage) ClearSession(_ context.Context) error {
	m.Session = nil
	return nil
}

func (m *MockStorage) SavePrefs(_ context.Context, p Preferences) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Prefs = &p
	return nil
}

func (m *MockStorage) LoadPrefs(_ context.Context) (Preferences, bool) {
	if m.Prefs == nil {
		return Preferences{}, false
	}
	return *m.Prefs, true
}

func (m *MockStorage) AppendEntry(_ context.Context, e JournalEntry) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Journal = append(m.Journal, e)
	return nil
}

func (m *MockStorage) Entries(_ context.Context) ([]JournalEntry, error) {
	return append([]JournalEntry(nil), m.Journal...), nil
}

// RecordingQueue captures pushed journal entries in order.
type RecordingQueue struct {
	Pushed []taggedEntry
}

func (q *RecordingQueue) Push(_ context.Context, qid string, entry JournalEntry) error {
	q.Pushed = append(q.Pushed, taggedEntry{qid: qid, entry: entry})
	return nil
}

func (q *RecordingQueue) Pop(_ context.Context, qids ...string) (string, JournalEntry, error) {
	for i, t := range q.Pushed {
		if len(qids) == 0 || containsString(qids, t.qid) {
			q.Pushed = append(q.Pushed[:i], q.Pushed[i+1:]...)
			return t.qid, t.entry, nil
		}
	}
	return "", JournalEntry{}, errors.New("queue is empty")
}

// Ops returns the operation names captured for one queue id.
func (q *RecordingQueue) Ops(qid string) []string {
	ops := []string{}
	for _, t := range q.Pushed {
		if t.qid == qid {
			ops = append(ops, t.entry.Op)
		}
	}
	return ops
}
