package main

import (
	"context"
	"net"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRedisDockerContainer(t *testing.T) (string, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Failed to start Dockertest: %+v", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		t.Fatalf("Could not connect to Docker: %+v", err)
	}

	resource, err := pool.Run("redis", "7.0.10-alpine", nil)
	if err != nil {
		t.Fatalf("Failed to start redis: %+v", err)
	}

	// build address the container is listening on
	addr := net.JoinHostPort("localhost", resource.GetPort("6379/tcp"))

	// ensure to wait for the container to be ready
	err = pool.Retry(func() error {
		var e error
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()

		e = client.Ping(context.Background()).Err()
		return e
	})

	if err != nil {
		t.Fatalf("Failed to ping Redis: %+v", err)
	}

	destroyFunc := func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Failed to purge resource: %+v", err)
		}
	}

	return addr, destroyFunc
}

func TestRedisQueue(t *testing.T) {
	addr, destroyFunc := startRedisDockerContainer(t)
	defer destroyFunc()
	q := NewRedisQueue(redis.NewClient(&redis.Options{Addr: addr}))

	t.Run("Push And Pop One Entry", func(t *testing.T) {
		// ensures one journal entry survives the round trip intact.
		pushed := JournalEntry{
			Op: OpBookBorrowed,
			At: "2023-11-05 10:30:00",
			Book: &Book{
				ID:         1,
				Title:      "Redis test book title",
				Author:     "Redis test book author",
				Quantity:   1,
				BorrowedBy: []int{7},
			},
		}
		err := q.Push(context.Background(), CatalogQueue, pushed)
		assert.NoError(t, err)

		qid, entry, err := q.Pop(context.Background(), CatalogQueue)
		assert.NoError(t, err)
		assert.Equal(t, CatalogQueue, qid)
		assert.Equal(t, pushed, entry)
	})

	t.Run("Pop Preserves Order", func(t *testing.T) {
		// ensures entries dequeue first-in first-out per queue id.
		ops := []string{OpBookAdded, OpBookUpdated, OpBookDeleted}
		for _, op := range ops {
			err := q.Push(context.Background(), CatalogQueue, JournalEntry{Op: op})
			require.NoError(t, err)
		}
		for _, op := range ops {
			_, entry, err := q.Pop(context.Background(), CatalogQueue)
			require.NoError(t, err)
			assert.Equal(t, op, entry.Op)
		}
	})

	t.Run("Pop From Multiple Queues", func(t *testing.T) {
		// ensures one pop call can drain several queue ids and reports
		// which id each entry came from.
		err := q.Push(context.Background(), LedgerQueue, JournalEntry{Op: OpRecordOverdue, Record: &BorrowRecord{ID: 3, Status: StatusOverdue}})
		require.NoError(t, err)

		qid, entry, err := q.Pop(context.Background(), CatalogQueue, LedgerQueue)
		assert.NoError(t, err)
		assert.Equal(t, LedgerQueue, qid)
		assert.Equal(t, OpRecordOverdue, entry.Op)
		require.NotNil(t, entry.Record)
		assert.Equal(t, StatusOverdue, entry.Record.Status)
	})
}
