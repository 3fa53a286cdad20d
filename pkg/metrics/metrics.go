package metrics

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/nakabonne/tstorage"
)

var (
	mu      sync.RWMutex
	storage tstorage.Storage
)

// Summary aggregates recorded datapoints over a time window
type Summary struct {
	Count int     `json:"count"`
	Avg   float64 `json:"avg"`
	P95   float64 `json:"p95"`
}

// InitMetrics opens the embedded time-series store under workdir/data/metrics
func InitMetrics(workdir string) error {
	dataPath := filepath.Join(workdir, "data", "metrics")
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return err
	}

	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(dataPath),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithPartitionDuration(6*time.Hour),
	)
	if err != nil {
		return err
	}

	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

func insert(name string, value float64) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return
	}
	_ = s.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
		},
	})
}

// SetGauge records the current value of a gauge metric
func SetGauge(name string, value int64) {
	insert(name, float64(value))
}

// Incr records one occurrence of an event metric
func Incr(name string) {
	insert(name, 1)
}

// RecordLatency records a duration in milliseconds
func RecordLatency(name string, d time.Duration) {
	insert(name, float64(d.Milliseconds()))
}

// Summarize computes count/avg/p95 of a metric over the trailing window
func Summarize(name string, window time.Duration) (*Summary, error) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return &Summary{}, nil
	}

	end := time.Now().Unix()
	start := end - int64(window.Seconds())
	points, err := s.Select(name, nil, start, end)
	if err != nil {
		if err == tstorage.ErrNoDataPoints {
			return &Summary{}, nil
		}
		return nil, err
	}

	values := make([]float64, 0, len(points))
	for _, p := range points {
		values = append(values, p.Value)
	}

	avg, err := stats.Mean(values)
	if err != nil {
		return nil, err
	}
	p95, err := stats.Percentile(values, 95)
	if err != nil {
		return nil, err
	}
	return &Summary{Count: len(values), Avg: avg, P95: p95}, nil
}

// Close flushes and closes the metric store
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
