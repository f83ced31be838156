// Package telemetry keeps in-memory statistics about searches run by the
// fzsearch command. Nothing is persisted or reported anywhere.
package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/momingse/fzsearch/pkg/fzsearch"
)

// LatencyBucket represents a latency histogram bucket.
type LatencyBucket string

const (
	BucketUnder1ms   LatencyBucket = "<1ms"
	BucketUnder10ms  LatencyBucket = "1-10ms"
	BucketUnder100ms LatencyBucket = "10-100ms"
	BucketUnder1s    LatencyBucket = "100ms-1s"
	BucketOver1s     LatencyBucket = ">=1s"
)

// Buckets lists every bucket from fastest to slowest.
var Buckets = []LatencyBucket{BucketUnder1ms, BucketUnder10ms, BucketUnder100ms, BucketUnder1s, BucketOver1s}

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	switch {
	case d < time.Millisecond:
		return BucketUnder1ms
	case d < 10*time.Millisecond:
		return BucketUnder10ms
	case d < 100*time.Millisecond:
		return BucketUnder100ms
	case d < time.Second:
		return BucketUnder1s
	default:
		return BucketOver1s
	}
}

// ExtractTerms lowercases query and splits it into words of at least
// three bytes.
func ExtractTerms(query string) []string {
	var terms []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) >= 3 {
			terms = append(terms, w)
		}
	}
	return terms
}

// TermCount represents a term and its frequency count.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// Snapshot is an immutable copy of the collected metrics.
type Snapshot struct {
	TotalQueries        int64                   `json:"total_queries"`
	ZeroResultCount     int64                   `json:"zero_result_count"`
	ZeroResultQueries   []string                `json:"zero_result_queries"`
	TopTerms            []TermCount             `json:"top_terms"`
	LatencyDistribution map[LatencyBucket]int64 `json:"latency_distribution"`
	TotalLatency        time.Duration           `json:"total_latency_ns"`
	MaxLatency          time.Duration           `json:"max_latency_ns"`
	RecordsSearched     int64                   `json:"records_searched"`
	ResultsReturned     int64                   `json:"results_returned"`
	ExactRepeatCount    int64                   `json:"exact_repeat_count"`
	UniqueQueryCount    int64                   `json:"unique_query_count"`
	Recent              []fzsearch.SearchEvent  `json:"-"`
	Since               time.Time               `json:"since"`
}

// ZeroResultPercentage returns the percentage of zero-result queries.
func (s *Snapshot) ZeroResultPercentage() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ZeroResultCount) / float64(s.TotalQueries) * 100
}

// ExactRepeatRate returns the share of queries seen before, in [0, 1].
func (s *Snapshot) ExactRepeatRate() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ExactRepeatCount) / float64(s.TotalQueries)
}

// MeanLatency returns the average search latency.
func (s *Snapshot) MeanLatency() time.Duration {
	if s.TotalQueries == 0 {
		return 0
	}
	return s.TotalLatency / time.Duration(s.TotalQueries)
}

// Config configures the collector.
type Config struct {
	TopTermsCapacity      int // Max terms to track (default: 100)
	ZeroResultsCapacity   int // Max zero-result queries to keep (default: 100)
	RecentQueriesCapacity int // Max distinct queries remembered for repeats (default: 500)
	RecentEventsCapacity  int // Max events kept for display (default: 20)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TopTermsCapacity:      100,
		ZeroResultsCapacity:   100,
		RecentQueriesCapacity: 500,
		RecentEventsCapacity:  20,
	}
}

// Metrics collects search telemetry. It implements fzsearch.Observer and is
// safe for concurrent use.
type Metrics struct {
	mu sync.RWMutex

	topTerms      *lru.Cache[string, int64]
	zeroResults   *CircularBuffer[string]
	recent        *CircularBuffer[fzsearch.SearchEvent]
	recentQueries *lru.Cache[string, struct{}]
	latencies     map[LatencyBucket]int64

	totalQueries     int64
	zeroResultCount  int64
	totalLatency     time.Duration
	maxLatency       time.Duration
	recordsSearched  int64
	resultsReturned  int64
	exactRepeatCount int64
	startTime        time.Time
}

var _ fzsearch.Observer = (*Metrics)(nil)

// New creates a collector with the default configuration.
func New() *Metrics {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a collector; non-positive capacities take defaults.
func NewWithConfig(cfg Config) *Metrics {
	def := DefaultConfig()
	if cfg.TopTermsCapacity <= 0 {
		cfg.TopTermsCapacity = def.TopTermsCapacity
	}
	if cfg.ZeroResultsCapacity <= 0 {
		cfg.ZeroResultsCapacity = def.ZeroResultsCapacity
	}
	if cfg.RecentQueriesCapacity <= 0 {
		cfg.RecentQueriesCapacity = def.RecentQueriesCapacity
	}
	if cfg.RecentEventsCapacity <= 0 {
		cfg.RecentEventsCapacity = def.RecentEventsCapacity
	}

	// lru.New only fails for non-positive sizes.
	topTerms, _ := lru.New[string, int64](cfg.TopTermsCapacity)
	recentQueries, _ := lru.New[string, struct{}](cfg.RecentQueriesCapacity)

	return &Metrics{
		topTerms:      topTerms,
		zeroResults:   NewCircularBuffer[string](cfg.ZeroResultsCapacity),
		recent:        NewCircularBuffer[fzsearch.SearchEvent](cfg.RecentEventsCapacity),
		recentQueries: recentQueries,
		latencies:     make(map[LatencyBucket]int64),
		startTime:     time.Now(),
	}
}

// ObserveSearch records one completed search.
func (m *Metrics) ObserveSearch(ev fzsearch.SearchEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalQueries++
	m.recordsSearched += int64(ev.Records)
	m.resultsReturned += int64(ev.Results)
	m.totalLatency += ev.Latency
	if ev.Latency > m.maxLatency {
		m.maxLatency = ev.Latency
	}
	m.latencies[LatencyToBucket(ev.Latency)]++
	m.recent.Add(ev)

	for _, term := range ExtractTerms(ev.Query) {
		count, _ := m.topTerms.Get(term)
		m.topTerms.Add(term, count+1)
	}

	if ev.Results == 0 {
		m.zeroResults.Add(ev.Query)
		m.zeroResultCount++
	}

	key := hashQuery(ev.Query)
	if _, seen := m.recentQueries.Get(key); seen {
		m.exactRepeatCount++
	}
	m.recentQueries.Add(key, struct{}{})
}

// hashQuery normalizes query for repeat detection.
func hashQuery(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:16])
}

// Snapshot returns the current metrics.
func (m *Metrics) Snapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	topTerms := make([]TermCount, 0, m.topTerms.Len())
	for _, key := range m.topTerms.Keys() {
		if count, ok := m.topTerms.Peek(key); ok {
			topTerms = append(topTerms, TermCount{Term: key, Count: count})
		}
	}
	sort.SliceStable(topTerms, func(i, j int) bool {
		if topTerms[i].Count != topTerms[j].Count {
			return topTerms[i].Count > topTerms[j].Count
		}
		return topTerms[i].Term < topTerms[j].Term
	})

	latencies := make(map[LatencyBucket]int64, len(m.latencies))
	for k, v := range m.latencies {
		latencies[k] = v
	}

	return &Snapshot{
		TotalQueries:        m.totalQueries,
		ZeroResultCount:     m.zeroResultCount,
		ZeroResultQueries:   m.zeroResults.Items(),
		TopTerms:            topTerms,
		LatencyDistribution: latencies,
		TotalLatency:        m.totalLatency,
		MaxLatency:          m.maxLatency,
		RecordsSearched:     m.recordsSearched,
		ResultsReturned:     m.resultsReturned,
		ExactRepeatCount:    m.exactRepeatCount,
		UniqueQueryCount:    int64(m.recentQueries.Len()),
		Recent:              m.recent.Items(),
		Since:               m.startTime,
	}
}

// Reset discards everything collected so far.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.topTerms.Purge()
	m.recentQueries.Purge()
	m.zeroResults.Clear()
	m.recent.Clear()
	m.latencies = make(map[LatencyBucket]int64)
	m.totalQueries = 0
	m.zeroResultCount = 0
	m.totalLatency = 0
	m.maxLatency = 0
	m.recordsSearched = 0
	m.resultsReturned = 0
	m.exactRepeatCount = 0
	m.startTime = time.Now()
}
