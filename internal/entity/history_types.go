package entity

// HistoryPeriod is the lookback window accepted by the history endpoint.
type HistoryPeriod string

const (
	PeriodAll HistoryPeriod = "all"
	Period7D  HistoryPeriod = "7d"
	Period30D HistoryPeriod = "30d"
	Period90D HistoryPeriod = "90d"
	Period1Y  HistoryPeriod = "1y"
)

// HistoryInterval is the sampling interval accepted by the history endpoint.
type HistoryInterval string

const (
	IntervalHourly  HistoryInterval = "hourly"
	IntervalDaily   HistoryInterval = "daily"
	IntervalWeekly  HistoryInterval = "weekly"
	IntervalMonthly HistoryInterval = "monthly"
)

// HistoryParams shapes a history request. StartDate/EndDate are optional ISO
// 8601 timestamps and are omitted from the query when empty.
type HistoryParams struct {
	Period    HistoryPeriod
	Interval  HistoryInterval
	StartDate string
	EndDate   string
}

// HistoryRecord is one observation at a timestamp.
//
// Amount fields (totalSupply, totalManagedFunds, deposits, withdrawals,
// netDeposits) are raw stroop integers serialized as strings and carry exactly
// 7 implied decimal digits. PricePerShare is the exception: the history
// endpoint delivers it pre-converted as a native decimal string and it must
// never be run through the stroop conversion.
type HistoryRecord struct {
	Timestamp             string   `json:"timestamp"`
	PricePerShare         string   `json:"pricePerShare"`
	TotalSupply           string   `json:"totalSupply"`
	TotalManagedFunds     string   `json:"totalManagedFunds"`
	PeriodDeposits        string   `json:"periodDeposits"`
	PeriodWithdrawals     string   `json:"periodWithdrawals"`
	NetDeposits           string   `json:"netDeposits"`
	PPSChangeFromPrevious *float64 `json:"ppsChangeFromPrevious"` // fraction, nullable
}

// PeriodMetrics aggregates vault performance over one window. All rate fields
// are percentages as delivered by the API; none require a further x100.
type PeriodMetrics struct {
	APY              *float64 `json:"apy"`
	PPSChange        *float64 `json:"ppsChange"`
	NetDeposits      *float64 `json:"netDeposits"`
	TotalReturn      *float64 `json:"totalReturn"`
	AnnualizedReturn *float64 `json:"annualizedReturn"`
	TotalGains       *float64 `json:"totalGains"`
}

// HistoryMetrics is the summary block of a history response.
type HistoryMetrics struct {
	Period7D         *PeriodMetrics `json:"period7d"`
	Period30D        *PeriodMetrics `json:"period30d"`
	AllTime          *PeriodMetrics `json:"allTime"`
	UniqueDepositors *int           `json:"uniqueDepositors"`
}

// CurrentState is the latest-observation snapshot attached to a history
// response.
type CurrentState struct {
	PricePerShare     string `json:"pricePerShare"`
	TotalSupply       string `json:"totalSupply"`
	TotalManagedFunds string `json:"totalManagedFunds"`
	Timestamp         string `json:"timestamp"`
}

// HistoryResult is the full history endpoint response: chronological records
// plus a current snapshot and aggregate metrics.
type HistoryResult struct {
	History      []HistoryRecord `json:"history"`
	CurrentState *CurrentState   `json:"currentState"`
	Metrics      *HistoryMetrics `json:"metrics"`
}

// ChartPoint is one chart-ready sample derived from a HistoryRecord.
type ChartPoint struct {
	Date              string   `json:"date"` // short label, e.g. "Jan 2"
	Timestamp         string   `json:"timestamp"`
	VaultPPS          float64  `json:"vaultPPS"`
	TotalSupply       float64  `json:"totalSupply"`
	TotalManagedFunds float64  `json:"totalManagedFunds"`
	PeriodDeposits    float64  `json:"periodDeposits"`
	PeriodWithdrawals float64  `json:"periodWithdrawals"`
	NetDeposits       float64  `json:"netDeposits"`
	PPSChange         *float64 `json:"ppsChange"` // percentage, nil when upstream had no previous sample
}
