package main

import (
	"context"

	"go.uber.org/zap"
)

// Consumer drains journal queues until its context is done.
type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

// boltJournalConsumer is the write-behind archiver: every entry popped
// from the journal queues lands in the bolt journal bucket.
type boltJournalConsumer struct {
	logger  *zap.Logger
	queue   Queuer
	archive JournalStorage
}

func NewBoltJournalConsumer(logger *zap.Logger, q Queuer, archive JournalStorage) Consumer {
	return &boltJournalConsumer{logger, q, archive}
}

func (bc *boltJournalConsumer) Consume(ctx context.Context, qids ...string) error {
	for {
		qid, entry, err := bc.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			bc.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}
		if err != nil {
			bc.logger.Error("consumer: error on queue pop call", zap.Error(err))
			continue
		}

		if err = bc.archive.AppendEntry(ctx, entry); err != nil {
			bc.logger.Error("consumer: failed to archive journal entry",
				zap.String("qid", qid),
				zap.String("op", entry.Op),
				zap.Error(err),
			)
			continue
		}
		bc.logger.Debug("consumer: journal entry archived", zap.String("qid", qid), zap.String("op", entry.Op))
	}
}
