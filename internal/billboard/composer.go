package billboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"opsboard/internal/core"
)

// ServiceTracking summarizes the service-job side of the billboard.
type ServiceTracking struct {
	Completed        int64           `json:"completed"`
	Scheduled        int64           `json:"scheduled"`
	Deferred         int64           `json:"deferred"`
	CompletedRevenue decimal.Decimal `json:"completedRevenue"`
	PipelineRevenue  decimal.Decimal `json:"pipelineRevenue"`
	ScheduledRevenue decimal.Decimal `json:"scheduledRevenue"`
}

// DeliveryTotals summarizes the delivery-ticket side of the billboard.
type DeliveryTotals struct {
	TotalTickets int64           `json:"totalTickets"`
	TotalGallons decimal.Decimal `json:"totalGallons"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// WeekCompare holds the week-over-week revenue comparison.
type WeekCompare struct {
	ThisWeekTotalRevenue decimal.Decimal `json:"thisWeekTotalRevenue"`
	LastWeekTotalRevenue decimal.Decimal `json:"lastWeekTotalRevenue"`
	PercentChange        float64         `json:"percentChange"`
}

// Debug reports fallback and degraded-mode diagnostics so the presentation
// layer can show a non-blocking banner instead of an error screen.
type Debug struct {
	Degraded       bool   `json:"degraded"`
	UsedFallback   bool   `json:"usedFallback"`
	FallbackReason string `json:"fallbackReason,omitempty"`
	Hint           string `json:"hint,omitempty"`
}

// Summary is the billboard payload consumed by the ticker/TV mode.
type Summary struct {
	ServiceTracking ServiceTracking `json:"serviceTracking"`
	DeliveryTickets DeliveryTotals  `json:"deliveryTickets"`
	WeekCompare     WeekCompare     `json:"weekCompare"`
	LastUpdated     string          `json:"lastUpdated"`
	Debug           Debug           `json:"debug"`
}

// Timeseries is the chart payload for one source over a date range.
type Timeseries struct {
	Primary    []core.PeriodBucket `json:"primary"`
	Comparison []core.PeriodBucket `json:"comparison"`
	Totals     core.BucketMetrics  `json:"totals"`
	Debug      Debug               `json:"debug"`
}

// Composer combines current-week and prior-week aggregates into the
// billboard summary. Each call is a stateless computation over a fresh read.
type Composer struct {
	resolver *Resolver
	now      func() time.Time
}

func NewComposer(resolver *Resolver) *Composer {
	return &Composer{resolver: resolver, now: time.Now}
}

// Billboard computes the week-over-week summary. The four window reads are
// independent and read-only, so they run concurrently. When the store is
// unreachable or unconfigured the summary degrades to an all-zero payload
// rather than failing; every other error class propagates.
func (c *Composer) Billboard(ctx context.Context) (Summary, error) {
	now := c.now()
	if c.resolver == nil {
		slog.WarnContext(ctx, "No data source configured, serving zero billboard")
		return zeroSummary(now), nil
	}

	thisStart := core.WeekStart(now)
	thisEnd := core.WeekEnd(now)
	lastStart := thisStart.AddDate(0, 0, -7)
	lastEnd := core.WeekEnd(lastStart)

	var serviceThis, serviceLast, deliveryThis, deliveryLast Result

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		serviceThis, err = c.resolver.Aggregates(gctx, SourceServiceJobs, core.Weekly, thisStart, thisEnd)
		return err
	})
	g.Go(func() (err error) {
		serviceLast, err = c.resolver.Aggregates(gctx, SourceServiceJobs, core.Weekly, lastStart, lastEnd)
		return err
	})
	g.Go(func() (err error) {
		deliveryThis, err = c.resolver.Aggregates(gctx, SourceDeliveryTickets, core.Weekly, thisStart, thisEnd)
		return err
	})
	g.Go(func() (err error) {
		deliveryLast, err = c.resolver.Aggregates(gctx, SourceDeliveryTickets, core.Weekly, lastStart, lastEnd)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			slog.ErrorContext(ctx, "Data source unavailable, serving zero billboard", "error", err)
			return zeroSummary(now), nil
		}
		return Summary{}, fmt.Errorf("compose billboard: %w", err)
	}

	svc := SumBuckets(serviceThis.Buckets)
	del := SumBuckets(deliveryThis.Buckets)
	thisTotal := svc.CompletedRevenue.Add(del.Revenue)
	lastTotal := SumBuckets(serviceLast.Buckets).CompletedRevenue.Add(SumBuckets(deliveryLast.Buckets).Revenue)

	return Summary{
		ServiceTracking: ServiceTracking{
			Completed:        svc.Completed,
			Scheduled:        svc.Scheduled,
			Deferred:         svc.Deferred,
			CompletedRevenue: svc.CompletedRevenue,
			PipelineRevenue:  svc.PipelineRevenue,
			ScheduledRevenue: svc.ScheduledRevenue,
		},
		DeliveryTickets: DeliveryTotals{
			TotalTickets: del.Tickets,
			TotalGallons: del.Gallons,
			Revenue:      del.Revenue,
		},
		WeekCompare: WeekCompare{
			ThisWeekTotalRevenue: thisTotal,
			LastWeekTotalRevenue: lastTotal,
			PercentChange:        PercentChange(thisTotal, lastTotal),
		},
		LastUpdated: now.UTC().Format(time.RFC3339),
		Debug:       mergeDebug(serviceThis, serviceLast, deliveryThis, deliveryLast),
	}, nil
}

// Timeseries resolves chart buckets for one source. When compare is set, a
// second window of equal length immediately preceding [from, to] is fetched
// concurrently; otherwise the comparison series is null.
func (c *Composer) Timeseries(ctx context.Context, source Source, g core.Granularity, from, to time.Time, compare bool) (Timeseries, error) {
	if c.resolver == nil {
		slog.WarnContext(ctx, "No data source configured, serving empty timeseries")
		return Timeseries{Primary: []core.PeriodBucket{}, Debug: Debug{Degraded: true}}, nil
	}

	var primary, comparison Result

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		primary, err = c.resolver.Aggregates(gctx, source, g, from, to)
		return err
	})
	if compare {
		days := int(to.Sub(from).Hours()/24) + 1
		compTo := from.AddDate(0, 0, -1)
		compFrom := compTo.AddDate(0, 0, -(days - 1))
		eg.Go(func() (err error) {
			comparison, err = c.resolver.Aggregates(gctx, source, g, compFrom, compTo)
			return err
		})
	}

	if err := eg.Wait(); err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			slog.ErrorContext(ctx, "Data source unavailable, serving empty timeseries", "error", err, "source", source)
			return Timeseries{Primary: []core.PeriodBucket{}, Debug: Debug{Degraded: true}}, nil
		}
		return Timeseries{}, fmt.Errorf("compose timeseries for %s: %w", source, err)
	}

	buckets := primary.Buckets
	if buckets == nil {
		buckets = []core.PeriodBucket{}
	}
	ts := Timeseries{
		Primary: buckets,
		Totals:  SumBuckets(primary.Buckets),
		Debug:   mergeDebug(primary, comparison),
	}
	if compare {
		ts.Comparison = comparison.Buckets
		if ts.Comparison == nil {
			ts.Comparison = []core.PeriodBucket{}
		}
	}
	return ts, nil
}

// PercentChange implements the zero-guarded week-over-week change: 100 when
// activity is new, 0 when both weeks are empty, otherwise the percentage
// rounded to one decimal place.
func PercentChange(thisTotal, lastTotal decimal.Decimal) float64 {
	if lastTotal.IsZero() {
		if thisTotal.IsPositive() {
			return 100
		}
		return 0
	}
	change, _ := thisTotal.Sub(lastTotal).
		Div(lastTotal).
		Mul(decimal.NewFromInt(100)).
		Round(1).
		Float64()
	return change
}

func zeroSummary(now time.Time) Summary {
	return Summary{
		ServiceTracking: ServiceTracking{
			CompletedRevenue: decimal.Zero,
			PipelineRevenue:  decimal.Zero,
			ScheduledRevenue: decimal.Zero,
		},
		DeliveryTickets: DeliveryTotals{
			TotalGallons: decimal.Zero,
			Revenue:      decimal.Zero,
		},
		WeekCompare: WeekCompare{
			ThisWeekTotalRevenue: decimal.Zero,
			LastWeekTotalRevenue: decimal.Zero,
		},
		LastUpdated: now.UTC().Format(time.RFC3339),
		Debug:       Debug{Degraded: true},
	}
}

func mergeDebug(results ...Result) Debug {
	var d Debug
	for _, r := range results {
		if r.UsedFallback && !d.UsedFallback {
			d.UsedFallback = true
			d.FallbackReason = r.FallbackReason
			d.Hint = r.Hint
		}
	}
	return d
}
