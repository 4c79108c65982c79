package aggregate

import "time"

// Summary is the full report payload. Field names follow the dashboard
// contract, hence the mixed Indonesian keys.
type Summary struct {
	TotalSales          float64           `json:"totalSales"`
	TotalProfit         float64           `json:"totalProfit"`
	TotalTransactions   int               `json:"totalTransaksi"`
	AvgProfit           float64           `json:"rataRataProfit"`
	ProfitabilityRate   float64           `json:"profitabilityRate"`
	AvgTransactionValue float64           `json:"avgTransactionValue"`
	PaymentMethods      []Breakdown       `json:"paymentMethods"`
	Destinations        []Breakdown       `json:"destinations"`
	TopProducts         []Breakdown       `json:"topProducts"`
	SalesTrend          []TrendPoint      `json:"salesTrend"`
	TopCustomers        []CustomerSummary `json:"topCustomers"`
	Transactions        []RecordView      `json:"transactions"`
}

// Breakdown aggregates the records sharing one categorical label.
type Breakdown struct {
	Name              string  `json:"name"`
	Total             float64 `json:"total"`
	Profit            float64 `json:"profit"`
	Count             int     `json:"count"`
	PercentageOfSales float64 `json:"percentageOfSales"`
	ProfitMargin      float64 `json:"profitMargin"`
}

// TrendPoint is one calendar day of sales, ordered by the underlying
// date rather than the formatted string.
type TrendPoint struct {
	Date   string  `json:"date"`
	Total  float64 `json:"total"`
	Profit float64 `json:"profit"`
	Count  int     `json:"count"`

	day time.Time
}

// CustomerSummary aggregates one customer's purchases.
type CustomerSummary struct {
	CustomerID            string    `json:"customerId"`
	CustomerName          string    `json:"customerName"`
	Total                 float64   `json:"total"`
	Profit                float64   `json:"profit"`
	Count                 int       `json:"count"`
	AvgPurchaseValue      float64   `json:"avgPurchaseValue"`
	FirstPurchase         time.Time `json:"firstPurchase"`
	LastPurchase          time.Time `json:"lastPurchase"`
	DaysSinceLastPurchase int       `json:"daysSinceLastPurchase"`
}

// RecordView echoes an input record with its profit precomputed, so
// clients can re-filter without redoing arithmetic.
type RecordView struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	CustomerID    string    `json:"customerId,omitempty"`
	CustomerName  string    `json:"customerName,omitempty"`
	Product       string    `json:"product"`
	CostPrice     float64   `json:"costPrice"`
	SalePrice     float64   `json:"salePrice"`
	Profit        float64   `json:"profit"`
	PaymentMethod string    `json:"paymentMethod"`
	Destination   string    `json:"destination"`
	Tag           string    `json:"tag,omitempty"`
}
