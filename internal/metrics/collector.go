// Package metrics provides in-memory request statistics for the backend client.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

// EndpointMetrics holds aggregated metrics for a single backend endpoint.
type EndpointMetrics struct {
	Count     int64
	Failures  int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// EndpointSnapshot provides computed stats from raw metrics.
type EndpointSnapshot struct {
	Endpoint    string
	Count       int64
	Failures    int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64
}

// Snapshot represents the client statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64
	Endpoints     []EndpointSnapshot
}

// Endpoint names for the collector. Path parameters are collapsed so every
// session maps to the same bucket.
const (
	EndpointChat            = "chat"
	EndpointValidateEmail   = "validate_email"
	EndpointUploadLogo      = "upload_logo"
	EndpointSessionLogos    = "session_logos"
	EndpointSessionMessages = "session_messages"
	EndpointSaveQuote       = "save_quote"
	EndpointGetQuote        = "get_quote"
	EndpointSavePhone       = "save_phone"
	EndpointGetPhone        = "get_phone"
)

// Collector aggregates in-memory request statistics.
// All methods are thread-safe; uploads record from several goroutines.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	endpoints map[string]*EndpointMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		endpoints: make(map[string]*EndpointMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an endpoint.
// Caller must hold write lock.
func (c *Collector) getOrCreate(endpoint string) *EndpointMetrics {
	m, ok := c.endpoints[endpoint]
	if !ok {
		m = &EndpointMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.endpoints[endpoint] = m
	}
	return m
}

// Record records one request. failed marks transport errors and non-2xx
// responses.
func (c *Collector) Record(endpoint string, duration time.Duration, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(endpoint)
	m.Count++
	m.TotalTime += duration
	if failed {
		m.Failures++
	}

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// snapshotEndpoint creates a snapshot for an endpoint, returning nil if no data.
func snapshotEndpoint(name string, m *EndpointMetrics) *EndpointSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}
	return &EndpointSnapshot{
		Endpoint:    name,
		Count:       m.Count,
		Failures:    m.Failures,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of all metrics, sorted by endpoint.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{UptimeSeconds: time.Since(c.startTime).Seconds()}
	for name, m := range c.endpoints {
		if s := snapshotEndpoint(name, m); s != nil {
			snap.Endpoints = append(snap.Endpoints, *s)
		}
	}
	sort.Slice(snap.Endpoints, func(i, j int) bool {
		return snap.Endpoints[i].Endpoint < snap.Endpoints[j].Endpoint
	})
	return snap
}
