package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

func record(date time.Time, sale, cost float64, method string) Record {
	return NewRecord(RecordInput{
		Date:          date,
		SalePrice:     sale,
		CostPrice:     cost,
		PaymentMethod: method,
		Product:       "Kopi",
		Destination:   "Toko",
	})
}

func TestComputeTotals(t *testing.T) {
	d := day(t, "2025-03-01")
	records := []Record{
		record(d, 150000, 100000, "Cash"),
		record(d, 50000, 50000, "Cash"),
		record(d, 200000, 100000, "Transfer"),
	}

	got := Compute(records, d.AddDate(0, 0, 7))

	assert.Equal(t, float64(400000), got.TotalSales)
	assert.Equal(t, float64(150000), got.TotalProfit)
	assert.Equal(t, 3, got.TotalTransactions)
	assert.Equal(t, float64(50000), got.AvgProfit)
	assert.InDelta(t, 37.5, got.ProfitabilityRate, 1e-9)
	assert.InDelta(t, 400000.0/3, got.AvgTransactionValue, 1e-9)

	require.Len(t, got.PaymentMethods, 2)
	cash := got.PaymentMethods[0]
	assert.Equal(t, "Cash", cash.Name)
	assert.Equal(t, float64(200000), cash.Total)
	assert.Equal(t, float64(50000), cash.Profit)
	assert.Equal(t, 2, cash.Count)
	assert.InDelta(t, 50, cash.PercentageOfSales, 1e-9)
	assert.InDelta(t, 25, cash.ProfitMargin, 1e-9)

	transfer := got.PaymentMethods[1]
	assert.Equal(t, "Transfer", transfer.Name)
	assert.Equal(t, float64(200000), transfer.Total)
	assert.Equal(t, float64(100000), transfer.Profit)
	assert.Equal(t, 1, transfer.Count)
}

func TestComputeEmptyInput(t *testing.T) {
	got := Compute(nil, time.Now())

	assert.Zero(t, got.TotalSales)
	assert.Zero(t, got.TotalProfit)
	assert.Zero(t, got.TotalTransactions)
	assert.Zero(t, got.AvgProfit)
	assert.Zero(t, got.ProfitabilityRate)
	assert.Zero(t, got.AvgTransactionValue)
	assert.NotNil(t, got.PaymentMethods)
	assert.Empty(t, got.PaymentMethods)
	assert.NotNil(t, got.Destinations)
	assert.Empty(t, got.Destinations)
	assert.NotNil(t, got.TopProducts)
	assert.Empty(t, got.TopProducts)
	assert.NotNil(t, got.SalesTrend)
	assert.Empty(t, got.SalesTrend)
	assert.NotNil(t, got.TopCustomers)
	assert.Empty(t, got.TopCustomers)
	assert.NotNil(t, got.Transactions)
	assert.Empty(t, got.Transactions)
}

func TestBreakdownSumsMatchTotals(t *testing.T) {
	d := day(t, "2025-04-10")
	records := []Record{
		record(d, 10000, 4000, "Cash"),
		record(d.AddDate(0, 0, 1), 25000, 20000, "Transfer"),
		record(d.AddDate(0, 0, 2), 8000, 1000, "QRIS"),
		record(d.AddDate(0, 0, 2), 12000, 9000, "Cash"),
	}

	got := Compute(records, d.AddDate(0, 0, 30))

	for _, dim := range [][]Breakdown{got.PaymentMethods, got.Destinations} {
		var total, profit float64
		var count int
		for _, b := range dim {
			total += b.Total
			profit += b.Profit
			count += b.Count
		}
		assert.InDelta(t, got.TotalSales, total, 1e-9)
		assert.InDelta(t, got.TotalProfit, profit, 1e-9)
		assert.Equal(t, got.TotalTransactions, count)
	}

	var trendTotal float64
	for _, p := range got.SalesTrend {
		trendTotal += p.Total
	}
	assert.InDelta(t, got.TotalSales, trendTotal, 1e-9)
}

func TestProfitabilityRateZeroWhenNoSales(t *testing.T) {
	d := day(t, "2025-01-01")
	// Zero sale price with a positive cost yields negative profit but no
	// sales, and the rate must stay zero rather than divide by zero.
	records := []Record{
		{Date: d, CostPrice: 5000, PaymentMethod: "Cash", Product: "Teh", Destination: "Toko", CustomerName: UnknownLabel},
	}

	got := Compute(records, d)

	assert.Zero(t, got.TotalSales)
	assert.Equal(t, float64(-5000), got.TotalProfit)
	assert.Zero(t, got.ProfitabilityRate)
	assert.False(t, math.IsNaN(got.AvgTransactionValue))
	assert.False(t, math.IsInf(got.ProfitabilityRate, 0))
}

func TestUnknownLabelGrouping(t *testing.T) {
	d := day(t, "2025-02-02")
	records := []Record{
		NewRecord(RecordInput{Date: d, SalePrice: 1000, PaymentMethod: ""}),
		NewRecord(RecordInput{Date: d, SalePrice: 2000, PaymentMethod: "  "}),
		NewRecord(RecordInput{Date: d, SalePrice: 3000, PaymentMethod: "Cash"}),
	}

	got := Compute(records, d)

	require.Len(t, got.PaymentMethods, 2)
	assert.Equal(t, UnknownLabel, got.PaymentMethods[0].Name)
	assert.Equal(t, float64(3000), got.PaymentMethods[0].Total)
	assert.Equal(t, 2, got.PaymentMethods[0].Count)
}

func TestTopProductsCappedAndSorted(t *testing.T) {
	d := day(t, "2025-05-01")
	var records []Record
	for i := 0; i < 15; i++ {
		records = append(records, NewRecord(RecordInput{
			Date:      d,
			SalePrice: float64((i + 1) * 1000),
			Product:   string(rune('A' + i)),
		}))
	}

	got := Compute(records, d)

	require.Len(t, got.TopProducts, 10)
	for i := 1; i < len(got.TopProducts); i++ {
		assert.GreaterOrEqual(t, got.TopProducts[i-1].Total, got.TopProducts[i].Total)
	}
	assert.Equal(t, "O", got.TopProducts[0].Name)
}

func TestTopProductsStableOnTies(t *testing.T) {
	d := day(t, "2025-05-01")
	records := []Record{
		NewRecord(RecordInput{Date: d, SalePrice: 5000, Product: "Gula"}),
		NewRecord(RecordInput{Date: d, SalePrice: 5000, Product: "Beras"}),
		NewRecord(RecordInput{Date: d, SalePrice: 5000, Product: "Minyak"}),
	}

	got := Compute(records, d)

	require.Len(t, got.TopProducts, 3)
	assert.Equal(t, "Gula", got.TopProducts[0].Name)
	assert.Equal(t, "Beras", got.TopProducts[1].Name)
	assert.Equal(t, "Minyak", got.TopProducts[2].Name)
}

func TestSalesTrendOrderedByDate(t *testing.T) {
	// 2025-10-02 formats after 2025-09-30 but a naive string sort over a
	// localized "2/10/2025" vs "30/9/2025" rendering would invert them.
	records := []Record{
		record(day(t, "2025-10-02"), 1000, 0, "Cash"),
		record(day(t, "2025-09-30"), 2000, 0, "Cash"),
		record(day(t, "2025-10-01"), 3000, 0, "Cash"),
	}

	got := Compute(records, day(t, "2025-10-05"))

	require.Len(t, got.SalesTrend, 3)
	for i := 1; i < len(got.SalesTrend); i++ {
		assert.False(t, got.SalesTrend[i].day.Before(got.SalesTrend[i-1].day))
	}
	assert.Equal(t, "2025-09-30", got.SalesTrend[0].Date)
	assert.Equal(t, "2025-10-02", got.SalesTrend[2].Date)
}

func TestTopCustomers(t *testing.T) {
	first := day(t, "2025-06-01")
	last := day(t, "2025-06-20")
	now := day(t, "2025-06-25")

	records := []Record{
		NewRecord(RecordInput{Date: first, SalePrice: 10000, CustomerID: "1", CustomerName: "Budi"}),
		NewRecord(RecordInput{Date: last, SalePrice: 30000, CustomerID: "1", CustomerName: "Budi"}),
		NewRecord(RecordInput{Date: first, SalePrice: 5000, CustomerID: "2", CustomerName: "Sari"}),
	}

	got := Compute(records, now)

	require.Len(t, got.TopCustomers, 2)
	budi := got.TopCustomers[0]
	assert.Equal(t, "1", budi.CustomerID)
	assert.Equal(t, "Budi", budi.CustomerName)
	assert.Equal(t, float64(40000), budi.Total)
	assert.Equal(t, 2, budi.Count)
	assert.Equal(t, float64(20000), budi.AvgPurchaseValue)
	assert.Equal(t, first, budi.FirstPurchase)
	assert.Equal(t, last, budi.LastPurchase)
	assert.Equal(t, 5, budi.DaysSinceLastPurchase)

	assert.Equal(t, "Sari", got.TopCustomers[1].CustomerName)
}

func TestTopCustomersCapped(t *testing.T) {
	d := day(t, "2025-07-01")
	var records []Record
	for i := 0; i < 12; i++ {
		records = append(records, NewRecord(RecordInput{
			Date:       d,
			SalePrice:  float64((12 - i) * 100),
			CustomerID: string(rune('a' + i)),
		}))
	}

	got := Compute(records, d)

	require.Len(t, got.TopCustomers, 10)
	assert.Equal(t, "a", got.TopCustomers[0].CustomerID)
}

func TestNewRecordCoercesAmounts(t *testing.T) {
	r := NewRecord(RecordInput{
		Date:      day(t, "2025-01-01"),
		SalePrice: math.NaN(),
		CostPrice: math.Inf(1),
	})
	assert.Zero(t, r.SalePrice)
	assert.Zero(t, r.CostPrice)

	r = NewRecord(RecordInput{SalePrice: -100, CostPrice: -1})
	assert.Zero(t, r.SalePrice)
	assert.Zero(t, r.CostPrice)
}

func TestTransactionsEchoProfit(t *testing.T) {
	d := day(t, "2025-08-08")
	records := []Record{record(d, 12000, 7000, "Cash")}

	got := Compute(records, d)

	require.Len(t, got.Transactions, 1)
	assert.Equal(t, float64(5000), got.Transactions[0].Profit)
	assert.Equal(t, "Kopi", got.Transactions[0].Product)
}
