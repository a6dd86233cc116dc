package services

import (
	"context"
	"time"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/repository"
	"ledger/internal/storage"
)

type reportKey struct {
	start, end string
	generation uint64
}

// ReportService produces report data for a date range. Results are cached
// per store generation, so any committed write makes earlier entries
// unreachable.
type ReportService struct {
	store        *storage.Store
	transactions *repository.TransactionRepository
	cache        *cache.LRU[reportKey, core.Report]
	logger       *log.Logger
}

func NewReportService(store *storage.Store, transactions *repository.TransactionRepository,
	size int, ttl time.Duration, logger *log.Logger) *ReportService {
	return &ReportService{
		store:        store,
		transactions: transactions,
		cache:        cache.NewLRU[reportKey, core.Report](size, ttl),
		logger:       log.OrDefault(logger).WithComponent(log.ComponentReport),
	}
}

// Cache exposes the result cache for registration with a cache.Manager.
func (s *ReportService) Cache() *cache.LRU[reportKey, core.Report] {
	return s.cache
}

// Report returns the summary, running-balance rows and category rollups
// for r. The opening balance carries forward every transaction dated
// before r.Start.
func (s *ReportService) Report(ctx context.Context, r core.DateRange) (core.Report, error) {
	// Read the generation before the data: a concurrent write then only
	// leaves an entry nobody will ask for.
	gen, err := s.store.Generation(ctx)
	if err != nil {
		return core.Report{}, err
	}
	key := reportKey{start: dateKey(r.Start), end: dateKey(r.End), generation: gen}
	if rep, ok := s.cache.Get(key); ok {
		return rep, nil
	}

	start := time.Now()
	snap, err := s.transactions.Snapshot(ctx)
	if err != nil {
		return core.Report{}, err
	}
	rep := core.BuildReport(snap.Config.InitialBalance, snap.Transactions, r)
	s.cache.Set(key, rep)

	s.logger.DebugContext(ctx, "Report built",
		log.FieldStartDate, key.start,
		log.FieldEndDate, key.end,
		log.FieldCount, rep.Summary.TransactionCount,
		log.FieldDuration, time.Since(start).Milliseconds())
	return rep, nil
}

func dateKey(d *core.Date) string {
	if d == nil {
		return ""
	}
	return d.Format(core.DateLayout)
}
