package output

import (
	"github.com/solardesk/profit-forecast/internal/analysis"
	"github.com/solardesk/profit-forecast/pkg/format"
)

// Chart holds per-year series in units of 10,000 won for plotting.
type Chart struct {
	Years      []int     `json:"years"`
	Revenue    []float64 `json:"revenue"`
	Expense    []float64 `json:"expense"`
	NetProfit  []float64 `json:"netProfit"`
	Cumulative []float64 `json:"cumulative"`
}

// ChartSeries converts the yearly data of a result into chart series.
func ChartSeries(result analysis.Result) Chart {
	n := len(result.YearlyData)
	c := Chart{
		Years:      make([]int, 0, n),
		Revenue:    make([]float64, 0, n),
		Expense:    make([]float64, 0, n),
		NetProfit:  make([]float64, 0, n),
		Cumulative: make([]float64, 0, n),
	}
	for _, y := range result.YearlyData {
		c.Years = append(c.Years, y.Year)
		c.Revenue = append(c.Revenue, format.TenThousandWon(y.TotalRevenue))
		c.Expense = append(c.Expense, format.TenThousandWon(y.TotalExpense))
		c.NetProfit = append(c.NetProfit, format.TenThousandWon(y.NetProfit))
		c.Cumulative = append(c.Cumulative, format.TenThousandWon(y.Cumulative))
	}
	return c
}
