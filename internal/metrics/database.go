package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/Togather-Foundation/eventplanner/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DBConnectionsOpen = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Total number of open database connections",
		},
	)

	DBConnectionsInUse = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_in_use",
			Help:      "Number of database connections currently acquired",
		},
	)

	DBConnectionsIdle = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Number of idle database connections",
		},
	)

	// StoreOperationDuration records document store latency by collection and operation.
	StoreOperationDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Document store operation duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"collection", "operation"},
	)

	// StoreErrors counts failed store operations. Not-found lookups are not errors.
	StoreErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Total number of document store errors",
		},
		[]string{"collection", "operation", "error_type"},
	)
)

// DBCollector periodically copies pgxpool statistics into gauges.
type DBCollector struct {
	pool *pgxpool.Pool
}

func NewDBCollector(pool *pgxpool.Pool) *DBCollector {
	return &DBCollector{pool: pool}
}

// Start collects immediately and then on every tick until ctx is cancelled.
func (c *DBCollector) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.collect()
	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-ctx.Done():
			return
		}
	}
}

func (c *DBCollector) collect() {
	if c.pool == nil {
		return
	}
	stat := c.pool.Stat()
	DBConnectionsOpen.Set(float64(stat.TotalConns()))
	DBConnectionsInUse.Set(float64(stat.AcquiredConns()))
	DBConnectionsIdle.Set(float64(stat.IdleConns()))
}

// RecordStoreOp observes one store call. Use with defer:
//
//	defer func(start time.Time) { metrics.RecordStoreOp("events", "get", start, err) }(time.Now())
func RecordStoreOp(collection, operation string, start time.Time, err error) {
	StoreOperationDuration.WithLabelValues(collection, operation).Observe(time.Since(start).Seconds())
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		return
	}
	errorType := "store_error"
	switch {
	case errors.Is(err, context.Canceled):
		errorType = "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		errorType = "timeout"
	}
	StoreErrors.WithLabelValues(collection, operation, errorType).Inc()
}

// InstrumentedStore decorates a DocumentStore with latency and error metrics.
type InstrumentedStore struct {
	next storage.DocumentStore
}

var _ storage.DocumentStore = (*InstrumentedStore)(nil)

func NewInstrumentedStore(next storage.DocumentStore) *InstrumentedStore {
	return &InstrumentedStore{next: next}
}

func (s *InstrumentedStore) Create(ctx context.Context, collection string, data map[string]any) (id string, err error) {
	defer func(start time.Time) { RecordStoreOp(collection, "create", start, err) }(time.Now())
	return s.next.Create(ctx, collection, data)
}

func (s *InstrumentedStore) GetAll(ctx context.Context, collection string) (docs []storage.Document, err error) {
	defer func(start time.Time) { RecordStoreOp(collection, "get_all", start, err) }(time.Now())
	return s.next.GetAll(ctx, collection)
}

func (s *InstrumentedStore) GetByID(ctx context.Context, collection, id string) (doc storage.Document, err error) {
	defer func(start time.Time) { RecordStoreOp(collection, "get_by_id", start, err) }(time.Now())
	return s.next.GetByID(ctx, collection, id)
}

func (s *InstrumentedStore) Find(ctx context.Context, collection, field string, value any) (docs []storage.Document, err error) {
	defer func(start time.Time) { RecordStoreOp(collection, "find", start, err) }(time.Now())
	return s.next.Find(ctx, collection, field, value)
}

func (s *InstrumentedStore) Update(ctx context.Context, collection, id string, data map[string]any) (err error) {
	defer func(start time.Time) { RecordStoreOp(collection, "update", start, err) }(time.Now())
	return s.next.Update(ctx, collection, id, data)
}

func (s *InstrumentedStore) Delete(ctx context.Context, collection, id string) (err error) {
	defer func(start time.Time) { RecordStoreOp(collection, "delete", start, err) }(time.Now())
	return s.next.Delete(ctx, collection, id)
}

func (s *InstrumentedStore) Ping(ctx context.Context) (err error) {
	defer func(start time.Time) { RecordStoreOp("", "ping", start, err) }(time.Now())
	return s.next.Ping(ctx)
}
