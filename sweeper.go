package main

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// OverdueSweeper is the external scheduler that imposes the overdue status
// on active borrow records past the policy age. The catalog store only
// preserves the status; the decision lives here.
type OverdueSweeper struct {
	logger  *zap.Logger
	clock   TickerClocker
	catalog *CatalogStore
	after   time.Duration
	every   time.Duration
}

func NewOverdueSweeper(logger *zap.Logger, clock TickerClocker, catalog *CatalogStore, after, every time.Duration) *OverdueSweeper {
	return &OverdueSweeper{
		logger:  logger,
		clock:   clock,
		catalog: catalog,
		after:   after,
		every:   every,
	}
}

// Run scans the ledger on every tick until the context is done.
func (s *OverdueSweeper) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep marks every active record older than the policy threshold overdue.
func (s *OverdueSweeper) Sweep() {
	now := s.clock.Now()
	for _, rec := range s.catalog.Borrowings() {
		if rec.Status != StatusActive {
			continue
		}
		borrowed, err := ParseISODate(rec.BorrowDate)
		if err != nil {
			s.logger.Warn("sweeper: unreadable borrow date", zap.Int("record.id", rec.ID), zap.Error(err))
			continue
		}
		if now.Sub(borrowed) > s.after {
			s.catalog.MarkOverdue(rec.ID)
		}
	}
}
