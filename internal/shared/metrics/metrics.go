package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	packStartedTotal    atomic.Uint64
	packCompletedTotal  atomic.Uint64
	packFailedTotal     atomic.Uint64
	stampGeneratedTotal atomic.Uint64
	stampFailedTotal    atomic.Uint64

	stampDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncPackStarted increments the started pack counter.
func IncPackStarted() {
	packStartedTotal.Add(1)
}

// IncPackCompleted increments the completed pack counter.
func IncPackCompleted() {
	packCompletedTotal.Add(1)
}

// IncPackFailed increments the failed pack counter.
func IncPackFailed() {
	packFailedTotal.Add(1)
}

// IncStampGenerated increments the generated stamp counter.
func IncStampGenerated() {
	stampGeneratedTotal.Add(1)
}

// IncStampFailed increments the failed stamp counter.
func IncStampFailed() {
	stampFailedTotal.Add(1)
}

// ObserveStampDurationMs records a single stamp generation duration in milliseconds.
func ObserveStampDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	stampDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "pack_started_total", "Total sticker packs started", packStartedTotal.Load())
	writeCounter(&buf, "pack_completed_total", "Total sticker packs completed", packCompletedTotal.Load())
	writeCounter(&buf, "pack_failed_total", "Total sticker packs failed", packFailedTotal.Load())
	writeCounter(&buf, "stamp_generated_total", "Total stamps generated", stampGeneratedTotal.Load())
	writeCounter(&buf, "stamp_failed_total", "Total stamps failed", stampFailedTotal.Load())
	writeHistogram(&buf, "stamp_duration_ms", "Stamp generation duration in milliseconds", stampDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
