package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

var (
	_ SessionStorage = (*boltStorage)(nil)
	_ PrefsStorage   = (*boltStorage)(nil)
	_ JournalStorage = (*boltStorage)(nil)
)

// SessionStorage persists the authenticated-session projection across
// process restarts. Load reports false when no usable session exists:
// a corrupt stored value is discarded silently, never surfaced.
type SessionStorage interface {
	SaveSession(ctx context.Context, s Session) error
	LoadSession(ctx context.Context) (Session, bool)
	ClearSession(ctx context.Context) error
}

// PrefsStorage persists the display preferences under their own key.
type PrefsStorage interface {
	SavePrefs(ctx context.Context, p Preferences) error
	LoadPrefs(ctx context.Context) (Preferences, bool)
}

// JournalStorage archives applied catalog and ledger mutations.
type JournalStorage interface {
	AppendEntry(ctx context.Context, e JournalEntry) error
	Entries(ctx context.Context) ([]JournalEntry, error)
}

type boltStorage struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient sets up the database and its buckets then provides a ready to use client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{config.BoltDB.SessionBucket, config.BoltDB.JournalBucket} {
			if _, errB := tx.CreateBucketIfNotExists([]byte(name)); errB != nil {
				return fmt.Errorf("failed to create %s bucket: %v", name, errB)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up buckets: %v", err)
	}
	return db, nil
}

// NewBoltStorage provides the bolt-based durable client storage.
func NewBoltStorage(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) *boltStorage {
	return &boltStorage{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the underlying bolt database.
func (bs *boltStorage) Close() error {
	return bs.client.Close()
}

func (bs *boltStorage) putJSON(bucket, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return bs.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), data)
	})
}

// getJSON loads the value stored under key into v. It reports false when
// the key is absent or holds bytes that do not unmarshal; a corrupt value
// is deleted on the way out so the next start does not trip over it again.
func (bs *boltStorage) getJSON(bucket, key string, v interface{}) bool {
	var raw []byte
	err := bs.client.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket([]byte(bucket)).Get([]byte(key)); data != nil {
			raw = append([]byte(nil), data...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return false
	}
	if err = json.Unmarshal(raw, v); err != nil {
		bs.logger.Debug("storage: discarding corrupt stored value", zap.String("key", key), zap.Error(err))
		_ = bs.deleteKey(bucket, key)
		return false
	}
	return true
}

func (bs *boltStorage) deleteKey(bucket, key string) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Delete([]byte(key))
	})
}

// SaveSession persists the credential-stripped session projection.
func (bs *boltStorage) SaveSession(_ context.Context, s Session) error {
	return bs.putJSON(bs.config.SessionBucket, SessionStorageKey, s)
}

// LoadSession restores a previously persisted session, if any usable one exists.
func (bs *boltStorage) LoadSession(_ context.Context) (Session, bool) {
	var s Session
	if !bs.getJSON(bs.config.SessionBucket, SessionStorageKey, &s) {
		return Session{}, false
	}
	return s, true
}

// ClearSession removes the persisted session.
func (bs *boltStorage) ClearSession(_ context.Context) error {
	return bs.deleteKey(bs.config.SessionBucket, SessionStorageKey)
}

// SavePrefs persists the display preferences.
func (bs *boltStorage) SavePrefs(_ context.Context, p Preferences) error {
	return bs.putJSON(bs.config.SessionBucket, PrefsStorageKey, p)
}

// LoadPrefs restores previously persisted display preferences.
func (bs *boltStorage) LoadPrefs(_ context.Context) (Preferences, bool) {
	var p Preferences
	if !bs.getJSON(bs.config.SessionBucket, PrefsStorageKey, &p) {
		return Preferences{}, false
	}
	return p, true
}

// AppendEntry archives one journal entry under the next sequence number.
func (bs *boltStorage) AppendEntry(_ context.Context, e JournalEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return bs.client.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bs.config.JournalBucket))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put([]byte(fmt.Sprintf("%012d", seq)), data)
	})
}

// Entries retrieves the archived journal in append order.
func (bs *boltStorage) Entries(_ context.Context) ([]JournalEntry, error) {
	tx, err := bs.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	c := tx.Bucket([]byte(bs.config.JournalBucket)).Cursor()
	entries := []JournalEntry{}
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var e JournalEntry
		if err = json.Unmarshal(v, &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
