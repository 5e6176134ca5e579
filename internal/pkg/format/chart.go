package format

import (
	"time"

	"vault_dashboard/internal/entity"
)

// chartDateLayout is the short label rendered on the chart X axis.
const chartDateLayout = "Jan 2"

// ToChartSeries reshapes a history result into a flat chart-ready series.
// Output order matches input order (the API delivers records chronologically).
// Absent or malformed history yields an empty series, never nil panics.
func ToChartSeries(result *entity.HistoryResult) []entity.ChartPoint {
	if result == nil || len(result.History) == 0 {
		return []entity.ChartPoint{}
	}

	points := make([]entity.ChartPoint, 0, len(result.History))
	for _, rec := range result.History {
		point := entity.ChartPoint{
			Date:              shortDateLabel(rec.Timestamp),
			Timestamp:         rec.Timestamp,
			VaultPPS:          ParseFloatOrZero(rec.PricePerShare),
			TotalSupply:       ParseFloatOrZero(rec.TotalSupply),
			TotalManagedFunds: ParseFloatOrZero(rec.TotalManagedFunds),
			PeriodDeposits:    ParseFloatOrZero(rec.PeriodDeposits),
			PeriodWithdrawals: ParseFloatOrZero(rec.PeriodWithdrawals),
			NetDeposits:       ParseFloatOrZero(rec.NetDeposits),
		}
		if rec.PPSChangeFromPrevious != nil {
			scaled := *rec.PPSChangeFromPrevious * 100
			point.PPSChange = &scaled
		}
		points = append(points, point)
	}
	return points
}

// shortDateLabel formats an ISO timestamp as "Jan 2". Unparsable timestamps
// fall back to the raw string so the point is still renderable.
func shortDateLabel(timestamp string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, timestamp); err == nil {
			return t.Format(chartDateLayout)
		}
	}
	return timestamp
}
