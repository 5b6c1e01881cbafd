package metrics

import (
	"sort"
	"sync"
	"time"
)

// Metrics is the thread-safe store behind the Collector. Win latencies
// keep a bounded window per destination so memory stays flat under load.
type Metrics struct {
	mutex        sync.RWMutex
	requests     int64
	fallbacks    int64
	wins         map[string]int64
	failures     map[string]int64
	timeouts     map[string]int64
	winLatencies map[string][]time.Duration
	statusCodes  map[string]map[int]int64
	reachability map[string]bool
	startTime    time.Time
}

type Snapshot struct {
	TotalRequests int64                         `json:"total_requests"`
	Fallbacks     int64                         `json:"fallbacks"`
	Uptime        time.Duration                 `json:"uptime"`
	Destinations  map[string]DestinationMetrics `json:"destinations"`
}

type DestinationMetrics struct {
	Wins        int64         `json:"wins"`
	Failures    int64         `json:"failures"`
	Timeouts    int64         `json:"timeouts"`
	Reachable   bool          `json:"reachable"`
	AvgWin      time.Duration `json:"avg_win"`
	P50Win      time.Duration `json:"p50_win"`
	P95Win      time.Duration `json:"p95_win"`
	P99Win      time.Duration `json:"p99_win"`
	StatusCodes map[int]int64 `json:"status_codes"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		wins:         make(map[string]int64),
		failures:     make(map[string]int64),
		timeouts:     make(map[string]int64),
		winLatencies: make(map[string][]time.Duration),
		statusCodes:  make(map[string]map[int]int64),
		reachability: make(map[string]bool),
		startTime:    time.Now(),
	}
}

func (m *Metrics) IncrementRequests() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.requests++
}

func (m *Metrics) IncrementFallbacks() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.fallbacks++
}

func (m *Metrics) RecordWin(dest string, duration time.Duration, statusCode int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.wins[dest]++

	m.winLatencies[dest] = append(m.winLatencies[dest], duration)
	if len(m.winLatencies[dest]) > 1000 {
		m.winLatencies[dest] = m.winLatencies[dest][1:]
	}

	if m.statusCodes[dest] == nil {
		m.statusCodes[dest] = make(map[int]int64)
	}
	m.statusCodes[dest][statusCode]++
}

func (m *Metrics) RecordFailure(dest string, timedOut bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if timedOut {
		m.timeouts[dest]++
		return
	}
	m.failures[dest]++
}

func (m *Metrics) UpdateReachability(dest string, reachable bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.reachability[dest] = reachable
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		TotalRequests: m.requests,
		Fallbacks:     m.fallbacks,
		Uptime:        time.Since(m.startTime),
		Destinations:  make(map[string]DestinationMetrics),
	}

	allDests := make(map[string]bool)
	for dest := range m.wins {
		allDests[dest] = true
	}
	for dest := range m.failures {
		allDests[dest] = true
	}
	for dest := range m.timeouts {
		allDests[dest] = true
	}
	for dest := range m.reachability {
		allDests[dest] = true
	}

	for dest := range allDests {
		dm := DestinationMetrics{
			Wins:        m.wins[dest],
			Failures:    m.failures[dest],
			Timeouts:    m.timeouts[dest],
			Reachable:   m.reachability[dest],
			StatusCodes: m.statusCodes[dest],
		}

		durations := m.winLatencies[dest]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			dm.AvgWin = average(sorted)
			dm.P50Win = percentile(sorted, 0.50)
			dm.P95Win = percentile(sorted, 0.95)
			dm.P99Win = percentile(sorted, 0.99)
		}

		snap.Destinations[dest] = dm
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
