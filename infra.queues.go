package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Predefined queue IDs.
const (
	CatalogQueue = "catalog.changes"
	LedgerQueue  = "ledger.changes"
)

// Journal operation names.
const (
	OpBookAdded     = "book.added"
	OpBookUpdated   = "book.updated"
	OpBookDeleted   = "book.deleted"
	OpBookBorrowed  = "book.borrowed"
	OpBookReturned  = "book.returned"
	OpRecordOverdue = "record.overdue"
)

// Ensure implementations satisfy Queuer.
var (
	_ Queuer = (*memoryQueue)(nil)
	_ Queuer = (*redisQueue)(nil)
)

// JournalEntry records one applied mutation of the catalog or the ledger.
// Entries are observational only; core state is never rebuilt from them.
type JournalEntry struct {
	Op     string        `json:"op"`
	At     string        `json:"at"`
	Book   *Book         `json:"book,omitempty"`
	Record *BorrowRecord `json:"record,omitempty"`
}

// Queuer describes the journal queue between the stores and the archiver.
type Queuer interface {
	Push(ctx context.Context, qid string, entry JournalEntry) error
	Pop(ctx context.Context, qids ...string) (string, JournalEntry, error)
}

type taggedEntry struct {
	qid   string
	entry JournalEntry
}

// memoryQueue is the in-process journal queue provider. It carries every
// queue id over one shared channel and assumes a single consumer draining
// all ids, which is how the journal pipeline runs.
type memoryQueue struct {
	ch chan taggedEntry
}

func NewMemoryQueue(size int) Queuer {
	return &memoryQueue{ch: make(chan taggedEntry, size)}
}

// Push enqueues an entry onto the queue identified by qid.
func (q *memoryQueue) Push(ctx context.Context, qid string, entry JournalEntry) error {
	select {
	case q.ch <- taggedEntry{qid: qid, entry: entry}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop returns the next entry pushed to any of the given queue ids. Entries
// on ids outside the requested set are dropped.
func (q *memoryQueue) Pop(ctx context.Context, qids ...string) (string, JournalEntry, error) {
	for {
		select {
		case <-ctx.Done():
			return "", JournalEntry{}, ctx.Err()
		case t := <-q.ch:
			if len(qids) == 0 || containsString(qids, t.qid) {
				return t.qid, t.entry, nil
			}
		}
	}
}

// redisQueue is the redis-backed journal queue provider.
type redisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) Queuer {
	return &redisQueue{client: client}
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// Push enqueues an entry onto the queue identified by qid.
func (q *redisQueue) Push(ctx context.Context, qid string, entry JournalEntry) error {
	entryBytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, qid, entryBytes).Err()
}

// Pop returns the first dequeued entry from the list of queue ids.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, JournalEntry, error) {
	var entry JournalEntry
	var qid string
	infos, err := q.client.BLPop(ctx, 0*time.Second, qids...).Result()
	if err != nil {
		return qid, entry, err
	}

	if err = json.Unmarshal([]byte(infos[1]), &entry); err != nil {
		return qid, entry, err
	}
	qid = infos[0]
	return qid, entry, nil
}
