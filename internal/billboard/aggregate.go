package billboard

import (
	"sort"
	"strings"

	"opsboard/internal/core"
)

// jobClass describes how one service-job status contributes to bucket
// metrics: which counter it bumps and which revenue sums receive its amount.
type jobClass struct {
	completed bool
	scheduled bool
	deferred  bool

	completedRevenue bool
	scheduledRevenue bool
	pipelineRevenue  bool
}

// classifyJob maps a status to its bucket contributions. Matching is
// case-insensitive and exhaustive: a status nobody recognizes still lands in
// pipeline revenue instead of being dropped.
func classifyJob(status core.JobStatus) jobClass {
	switch core.JobStatus(strings.ToLower(strings.TrimSpace(string(status)))) {
	case core.JobCompleted:
		return jobClass{completed: true, completedRevenue: true}
	case core.JobScheduled, core.JobAssigned, core.JobConfirmed:
		return jobClass{scheduled: true, scheduledRevenue: true, pipelineRevenue: true}
	case core.JobDeferred:
		return jobClass{deferred: true, pipelineRevenue: true}
	case core.JobUnscheduled, core.JobInProgress:
		return jobClass{scheduled: true, pipelineRevenue: true}
	default:
		return jobClass{pipelineRevenue: true}
	}
}

// AggregateServiceJobs folds service-job rows into one bucket per distinct
// period key, sorted ascending. It is a pure function of its inputs; an
// empty row list yields an empty (non-nil) bucket sequence.
func AggregateServiceJobs(jobs []core.ServiceJob, g core.Granularity) []core.PeriodBucket {
	byKey := make(map[string]core.BucketMetrics)

	for _, job := range jobs {
		key := core.BucketKey(job.Date.Time, g)
		m := byKey[key]

		class := classifyJob(job.Status)
		if class.completed {
			m.Completed++
		}
		if class.scheduled {
			m.Scheduled++
		}
		if class.deferred {
			m.Deferred++
		}
		if class.completedRevenue {
			m.CompletedRevenue = m.CompletedRevenue.Add(job.Amount)
		}
		if class.scheduledRevenue {
			m.ScheduledRevenue = m.ScheduledRevenue.Add(job.Amount)
		}
		if class.pipelineRevenue {
			m.PipelineRevenue = m.PipelineRevenue.Add(job.Amount)
		}

		byKey[key] = m
	}

	return sortedBuckets(byKey)
}

// AggregateDeliveryTickets folds delivery-ticket rows into period buckets.
// Void and canceled tickets are omitted entirely, not bucketed as zero.
func AggregateDeliveryTickets(tickets []core.DeliveryTicket, g core.Granularity) []core.PeriodBucket {
	byKey := make(map[string]core.BucketMetrics)

	for _, ticket := range tickets {
		if ticket.Status.Excluded() {
			continue
		}
		key := core.BucketKey(ticket.Date.Time, g)
		m := byKey[key]

		m.Tickets++
		m.Gallons = m.Gallons.Add(ticket.Gallons)
		m.Revenue = m.Revenue.Add(ticket.Amount)

		byKey[key] = m
	}

	return sortedBuckets(byKey)
}

func sortedBuckets(byKey map[string]core.BucketMetrics) []core.PeriodBucket {
	buckets := make([]core.PeriodBucket, 0, len(byKey))
	for key, metrics := range byKey {
		buckets = append(buckets, core.PeriodBucket{Key: key, Metrics: metrics})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}

// SumBuckets collapses a bucket sequence into a single metric set.
func SumBuckets(buckets []core.PeriodBucket) core.BucketMetrics {
	var total core.BucketMetrics
	for _, b := range buckets {
		total = total.Add(b.Metrics)
	}
	return total
}
