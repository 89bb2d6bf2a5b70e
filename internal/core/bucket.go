package core

import "github.com/shopspring/decimal"

// BucketMetrics carries the aggregated counts and sums for one period
// bucket. Fields not applicable to a source stay at their zero value, so the
// shape is identical whether rows came from an aggregate view or from a
// base-table recomputation.
type BucketMetrics struct {
	// Service jobs
	Completed        int64           `json:"completed"`
	Scheduled        int64           `json:"scheduled"`
	Deferred         int64           `json:"deferred"`
	CompletedRevenue decimal.Decimal `json:"completedRevenue"`
	ScheduledRevenue decimal.Decimal `json:"scheduledRevenue"`
	PipelineRevenue  decimal.Decimal `json:"pipelineRevenue"`

	// Delivery tickets
	Tickets int64           `json:"totalTickets"`
	Gallons decimal.Decimal `json:"totalGallons"`
	Revenue decimal.Decimal `json:"revenue"`
}

// PeriodBucket is one aggregation bucket keyed by its period start date.
// Buckets are created transiently per aggregation call and never persisted
// by the aggregation core itself.
type PeriodBucket struct {
	Key     string        `json:"key"`
	Metrics BucketMetrics `json:"metrics"`
}

// Add returns the field-wise sum of two metric sets.
func (m BucketMetrics) Add(o BucketMetrics) BucketMetrics {
	return BucketMetrics{
		Completed:        m.Completed + o.Completed,
		Scheduled:        m.Scheduled + o.Scheduled,
		Deferred:         m.Deferred + o.Deferred,
		CompletedRevenue: m.CompletedRevenue.Add(o.CompletedRevenue),
		ScheduledRevenue: m.ScheduledRevenue.Add(o.ScheduledRevenue),
		PipelineRevenue:  m.PipelineRevenue.Add(o.PipelineRevenue),
		Tickets:          m.Tickets + o.Tickets,
		Gallons:          m.Gallons.Add(o.Gallons),
		Revenue:          m.Revenue.Add(o.Revenue),
	}
}
