package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/infra/observability"
	"github.com/fizzlab/salesintel/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var aggTracer = otel.Tracer("service/aggregation")

// regionCoordinates anchors each sales region on the map view. Unknown
// regions render at the null island origin rather than failing the rollup.
var regionCoordinates = map[string]domain.Coordinates{
	"North America": {Lat: 39.8283, Lng: -98.5795},
	"Latin America": {Lat: -8.7832, Lng: -55.4915},
	"Europe":        {Lat: 54.5260, Lng: 15.2551},
	"Asia Pacific":  {Lat: 34.0479, Lng: 100.6197},
	"Africa":        {Lat: -8.7832, Lng: 34.5085},
	"Middle East":   {Lat: 29.2985, Lng: 42.5510},
	"West":          {Lat: 37.7749, Lng: -122.4194},
	"East":          {Lat: 40.7128, Lng: -74.0060},
	"Central":       {Lat: 41.8781, Lng: -87.6298},
	"South":         {Lat: 29.7604, Lng: -95.3698},
}

// AggregationService computes the read-side dashboard rollups. Results are
// cached with a short TTL and invalidated by CRMService on every write.
type AggregationService struct {
	store          port.CRMStore
	views          port.Cache[any]
	metrics        *observability.Metrics
	logger         *zap.Logger
	churnThreshold float64
}

// NewAggregationService creates a new aggregation service. Accounts whose
// churn_risk_score is strictly above churnThreshold count as high risk.
func NewAggregationService(store port.CRMStore, views port.Cache[any], metrics *observability.Metrics, logger *zap.Logger, churnThreshold float64) *AggregationService {
	return &AggregationService{
		store:          store,
		views:          views,
		metrics:        metrics,
		logger:         logger,
		churnThreshold: churnThreshold,
	}
}

// ============================================================
// Regional heatmap
// ============================================================

// RegionalSummary groups all accounts by region and returns one rollup row
// per region, sorted by region name.
func (s *AggregationService) RegionalSummary(ctx context.Context) ([]domain.HeatmapRow, error) {
	ctx, span := aggTracer.Start(ctx, "AggregationService.RegionalSummary")
	defer span.End()

	const key = "view:heatmap"
	if v, ok := s.views.Get(key); ok {
		s.metrics.IncrCacheHit("dashboard")
		return v.([]domain.HeatmapRow), nil
	}
	s.metrics.IncrCacheMiss("dashboard")

	accounts, err := s.store.QueryAccounts(ctx, port.AccountFilter{})
	if err != nil {
		return nil, err
	}

	type bucket struct {
		count     int
		revenue   float64
		healthSum float64
		churnSum  float64
		atRisk    int
	}
	buckets := make(map[string]*bucket)
	for _, a := range accounts {
		b := buckets[a.Region]
		if b == nil {
			b = &bucket{}
			buckets[a.Region] = b
		}
		b.count++
		b.revenue += a.AnnualRevenue
		b.healthSum += a.HealthScore
		b.churnSum += a.ChurnRiskScore
		if a.ChurnRiskScore > s.churnThreshold {
			b.atRisk++
		}
	}

	rows := make([]domain.HeatmapRow, 0, len(buckets))
	for region, b := range buckets {
		avgHealth := b.healthSum / float64(b.count)
		avgChurn := b.churnSum / float64(b.count)
		rows = append(rows, domain.HeatmapRow{
			Region:                 region,
			AccountCount:           b.count,
			TotalRevenue:           b.revenue,
			AvgHealthScore:         round2(avgHealth),
			ChurnRiskAccounts:      b.atRisk,
			GrowthOpportunityScore: round2(growthScore(avgHealth, avgChurn, b.revenue)),
			Coordinates:            regionCoordinates[region],
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Region < rows[j].Region })

	span.SetAttributes(attribute.Int("heatmap.regions", len(rows)))
	s.views.Set(key, rows)
	return rows, nil
}

// growthScore blends health, churn headroom and revenue scale into a single
// 0-100ish ranking signal for the heatmap.
func growthScore(avgHealth, avgChurn, revenue float64) float64 {
	return avgHealth * (1 - avgChurn/100) * math.Log10(1+revenue) / 10
}

// ============================================================
// Dashboard summary
// ============================================================

// DashboardSummary computes the executive rollup with trend series bucketed
// at the given granularity.
func (s *AggregationService) DashboardSummary(ctx context.Context, bucket domain.TrendBucket) (*domain.DashboardSummary, error) {
	ctx, span := aggTracer.Start(ctx, "AggregationService.DashboardSummary")
	defer span.End()
	span.SetAttributes(attribute.String("trend.bucket", string(bucket)))

	if !bucket.Valid() {
		return nil, &domain.ErrValidation{Entity: "dashboard_query", Violations: []domain.Violation{
			{Field: "period", Message: "must be one of day, week, month"},
		}}
	}

	key := "view:dashboard:" + string(bucket)
	if v, ok := s.views.Get(key); ok {
		s.metrics.IncrCacheHit("dashboard")
		return v.(*domain.DashboardSummary), nil
	}
	s.metrics.IncrCacheMiss("dashboard")

	accounts, err := s.store.QueryAccounts(ctx, port.AccountFilter{})
	if err != nil {
		return nil, err
	}
	opps, err := s.store.QueryOpportunities(ctx, port.OpportunityFilter{})
	if err != nil {
		return nil, err
	}

	sum := &domain.DashboardSummary{TotalAccounts: len(accounts)}

	regionRevenue := make(map[string]float64)
	for _, a := range accounts {
		sum.TotalRevenue += a.AnnualRevenue
		regionRevenue[a.Region] += a.AnnualRevenue
		if a.ChurnRiskScore > s.churnThreshold {
			sum.HighRiskAccounts++
			sum.AtRiskRevenue += a.LifetimeValue
		}
	}
	sum.TopPerformingRegions = topRegions(regionRevenue, 3)

	// Deal size and the closing-this-month count span every stage, closed
	// deals included. Only the win rate splits on stage.
	now := time.Now().UTC()
	var won, lost int
	var totalAmount float64
	for _, o := range opps {
		totalAmount += o.Amount
		if sameMonth(o.ExpectedCloseDate, now) {
			sum.OppsClosingThisMonth++
		}
		switch o.Stage {
		case domain.StageClosedWon:
			won++
		case domain.StageClosedLost:
			lost++
		}
	}
	if len(opps) > 0 {
		sum.AvgDealSize = round2(totalAmount / float64(len(opps)))
	}
	if won+lost > 0 {
		sum.WinRate = float64(won) / float64(won+lost)
	}

	sum.RevenueTrend = trendSum(opps, bucket)
	sum.HealthScoreTrend = trendAvg(accounts, bucket, func(a domain.Account) float64 { return a.HealthScore })
	sum.ChurnRiskTrend = trendAvg(accounts, bucket, func(a domain.Account) float64 { return a.ChurnRiskScore })

	s.views.Set(key, sum)
	return sum, nil
}

// topRegions returns the n highest-revenue region names, best first.
func topRegions(revenue map[string]float64, n int) []string {
	names := make([]string, 0, len(revenue))
	for r := range revenue {
		names = append(names, r)
	}
	sort.Slice(names, func(i, j int) bool {
		if revenue[names[i]] != revenue[names[j]] {
			return revenue[names[i]] > revenue[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

// bucketKey formats t into its trend bucket label.
func bucketKey(t time.Time, bucket domain.TrendBucket) string {
	switch bucket {
	case domain.BucketDay:
		return t.Format("2006-01-02")
	case domain.BucketWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	default:
		return t.Format("2006-01")
	}
}

// trendSum buckets opportunity amounts by created date.
func trendSum(opps []domain.Opportunity, bucket domain.TrendBucket) []domain.TrendPoint {
	totals := make(map[string]float64)
	for _, o := range opps {
		if o.CreatedDate.IsZero() {
			continue
		}
		totals[bucketKey(o.CreatedDate, bucket)] += o.Amount
	}
	return sortedPoints(totals)
}

// trendAvg buckets an account metric by last activity date and averages it
// per bucket.
func trendAvg(accounts []domain.Account, bucket domain.TrendBucket, metric func(domain.Account) float64) []domain.TrendPoint {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, a := range accounts {
		if a.LastActivityDate.IsZero() {
			continue
		}
		k := bucketKey(a.LastActivityDate, bucket)
		sums[k] += metric(a)
		counts[k]++
	}
	avgs := make(map[string]float64, len(sums))
	for k, v := range sums {
		avgs[k] = round2(v / float64(counts[k]))
	}
	return sortedPoints(avgs)
}

func sortedPoints(values map[string]float64) []domain.TrendPoint {
	points := make([]domain.TrendPoint, 0, len(values))
	for k, v := range values {
		points = append(points, domain.TrendPoint{Period: k, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Period < points[j].Period })
	return points
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
