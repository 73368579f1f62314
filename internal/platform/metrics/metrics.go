package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	totalDurationMs uint64
	payslipsOK      uint64
	payslipsFailed  uint64
	cacheHits       uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordRender counts one payslip render attempt.
func (c *Collector) RecordRender(err error, cached bool) {
	if err != nil {
		atomic.AddUint64(&c.payslipsFailed, 1)
		return
	}
	atomic.AddUint64(&c.payslipsOK, 1)
	if cached {
		atomic.AddUint64(&c.cacheHits, 1)
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":         total,
		"errorsTotal":           atomic.LoadUint64(&c.errorRequests),
		"avgDurationMs":         avg,
		"totalDurationMs":       totalMs,
		"payslipsRendered":      atomic.LoadUint64(&c.payslipsOK),
		"payslipsFailed":        atomic.LoadUint64(&c.payslipsFailed),
		"payslipCacheHitsTotal": atomic.LoadUint64(&c.cacheHits),
	}
}
