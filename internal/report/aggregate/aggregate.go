package aggregate

import (
	"sort"
	"time"
)

const (
	topLimit  = 10
	dayFormat = "2006-01-02"
)

// Compute reduces a record set into a Summary. It is pure: no I/O, no
// retained state, and it never fails on malformed input because records
// are normalized before they get here. now anchors the
// days-since-last-purchase figures.
func Compute(records []Record, now time.Time) Summary {
	summary := Summary{
		PaymentMethods: []Breakdown{},
		Destinations:   []Breakdown{},
		TopProducts:    []Breakdown{},
		SalesTrend:     []TrendPoint{},
		TopCustomers:   []CustomerSummary{},
		Transactions:   make([]RecordView, 0, len(records)),
	}

	byMethod := newGrouping()
	byDestination := newGrouping()
	byProduct := newGrouping()
	trend := newTrendGrouping()
	customers := newCustomerGrouping()

	for _, r := range records {
		summary.TotalSales += r.SalePrice
		summary.TotalProfit += r.Profit()

		byMethod.add(r.PaymentMethod, r)
		byDestination.add(r.Destination, r)
		byProduct.add(r.Product, r)
		trend.add(r)
		customers.add(r)

		summary.Transactions = append(summary.Transactions, RecordView{
			ID:            r.ID,
			Date:          r.Date,
			CustomerID:    r.CustomerID,
			CustomerName:  r.CustomerName,
			Product:       r.Product,
			CostPrice:     r.CostPrice,
			SalePrice:     r.SalePrice,
			Profit:        r.Profit(),
			PaymentMethod: r.PaymentMethod,
			Destination:   r.Destination,
			Tag:           r.Tag,
		})
	}

	summary.TotalTransactions = len(records)
	summary.AvgProfit = safeDiv(summary.TotalProfit, float64(summary.TotalTransactions))
	summary.ProfitabilityRate = safeRate(summary.TotalProfit, summary.TotalSales)
	summary.AvgTransactionValue = safeDiv(summary.TotalSales, float64(summary.TotalTransactions))

	summary.PaymentMethods = byMethod.breakdowns(summary.TotalSales)
	summary.Destinations = byDestination.breakdowns(summary.TotalSales)
	summary.TopProducts = topByTotal(byProduct.breakdowns(summary.TotalSales))
	summary.SalesTrend = trend.points()
	summary.TopCustomers = customers.top(now.UTC())

	return summary
}

// safeDiv returns a/b, or zero on a zero denominator so KPIs stay finite.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// safeRate returns 100*a/b with the same zero-denominator guard.
func safeRate(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return 100 * a / b
}

type bucket struct {
	total  float64
	profit float64
	count  int
}

// grouping is an insertion-ordered group-by accumulator. Output order is
// explicit: first-seen label first.
type grouping struct {
	order   []string
	buckets map[string]*bucket
}

func newGrouping() *grouping {
	return &grouping{buckets: map[string]*bucket{}}
}

func (g *grouping) add(key string, r Record) {
	b, ok := g.buckets[key]
	if !ok {
		b = &bucket{}
		g.buckets[key] = b
		g.order = append(g.order, key)
	}
	b.total += r.SalePrice
	b.profit += r.Profit()
	b.count++
}

func (g *grouping) breakdowns(totalSales float64) []Breakdown {
	out := make([]Breakdown, 0, len(g.order))
	for _, key := range g.order {
		b := g.buckets[key]
		out = append(out, Breakdown{
			Name:              key,
			Total:             b.total,
			Profit:            b.profit,
			Count:             b.count,
			PercentageOfSales: safeRate(b.total, totalSales),
			ProfitMargin:      safeRate(b.profit, b.total),
		})
	}
	return out
}

// topByTotal sorts descending by total, keeping encounter order for ties,
// and caps the result at topLimit entries.
func topByTotal(entries []Breakdown) []Breakdown {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total > entries[j].Total
	})
	if len(entries) > topLimit {
		entries = entries[:topLimit]
	}
	return entries
}

type trendGrouping struct {
	order   []time.Time
	buckets map[time.Time]*bucket
}

func newTrendGrouping() *trendGrouping {
	return &trendGrouping{buckets: map[time.Time]*bucket{}}
}

func (g *trendGrouping) add(r Record) {
	day := r.Date.Truncate(24 * time.Hour)
	b, ok := g.buckets[day]
	if !ok {
		b = &bucket{}
		g.buckets[day] = b
		g.order = append(g.order, day)
	}
	b.total += r.SalePrice
	b.profit += r.Profit()
	b.count++
}

// points returns one entry per calendar day, ascending by the day itself.
// The formatted date is display-only and never used for ordering.
func (g *trendGrouping) points() []TrendPoint {
	days := make([]time.Time, len(g.order))
	copy(days, g.order)
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]TrendPoint, 0, len(days))
	for _, day := range days {
		b := g.buckets[day]
		out = append(out, TrendPoint{
			Date:   day.Format(dayFormat),
			Total:  b.total,
			Profit: b.profit,
			Count:  b.count,
			day:    day,
		})
	}
	return out
}

type customerBucket struct {
	bucket
	name  string
	first time.Time
	last  time.Time
}

type customerGrouping struct {
	order   []string
	buckets map[string]*customerBucket
}

func newCustomerGrouping() *customerGrouping {
	return &customerGrouping{buckets: map[string]*customerBucket{}}
}

func (g *customerGrouping) add(r Record) {
	key := r.CustomerID
	b, ok := g.buckets[key]
	if !ok {
		b = &customerBucket{name: r.CustomerName, first: r.Date, last: r.Date}
		g.buckets[key] = b
		g.order = append(g.order, key)
	}
	b.total += r.SalePrice
	b.profit += r.Profit()
	b.count++
	if r.Date.Before(b.first) {
		b.first = r.Date
	}
	if r.Date.After(b.last) {
		b.last = r.Date
	}
}

func (g *customerGrouping) top(now time.Time) []CustomerSummary {
	out := make([]CustomerSummary, 0, len(g.order))
	for _, key := range g.order {
		b := g.buckets[key]
		out = append(out, CustomerSummary{
			CustomerID:            key,
			CustomerName:          b.name,
			Total:                 b.total,
			Profit:                b.profit,
			Count:                 b.count,
			AvgPurchaseValue:      safeDiv(b.total, float64(b.count)),
			FirstPurchase:         b.first,
			LastPurchase:          b.last,
			DaysSinceLastPurchase: daysSince(now, b.last),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	if len(out) > topLimit {
		out = out[:topLimit]
	}
	return out
}

func daysSince(now, last time.Time) int {
	if !now.After(last) {
		return 0
	}
	return int(now.Sub(last) / (24 * time.Hour))
}
