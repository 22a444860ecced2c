// Package output provides utilities for formatting and displaying analysis results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/solardesk/profit-forecast/internal/analysis"
	"github.com/solardesk/profit-forecast/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report is one analysed quotation.
type Report struct {
	Name   string          `json:"name"`
	Input  analysis.Input  `json:"input"`
	Result analysis.Result `json:"result"`
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, reports []Report) {
	p := message.NewPrinter(language.English)
	for i, report := range reports {
		r := report.Result
		_, _ = fmt.Fprintf(w, "--- Results for quotation %s (%s) ---\n", report.Name, r.FinancingType.Label())
		_, _ = p.Fprintf(w, "Initial cost:        %s\n", format.Currency(r.InitialCost))
		_, _ = p.Fprintf(w, "Payback period:      %s\n", format.Payback(r.PaybackPeriod))
		_, _ = p.Fprintf(w, "20-year revenue:     %s\n", format.Currency(r.TotalRevenue20y))
		_, _ = p.Fprintf(w, "20-year expense:     %s\n", format.Currency(r.TotalExpense20y))
		_, _ = p.Fprintf(w, "20-year net profit:  %s\n", format.Currency(r.TotalProfit20y))
		_, _ = p.Fprintf(w, "ROI:                 %s\n", format.ROI(r.ROI, r.ROIDefined))
		_, _ = fmt.Fprintf(w, "Year | Generation (kWh) | Revenue | Expense | Net profit | Cumulative\n")
		_, _ = fmt.Fprintf(w, "____ | ________________ | _______ | _______ | __________ | __________\n")
		for _, y := range r.YearlyData {
			_, _ = p.Fprintf(w, "%4d | %.0f | %.0f | %.0f | %.0f | %.0f\n",
				y.Year, y.Generation, y.TotalRevenue, y.TotalExpense, y.NetProfit, y.Cumulative)
		}
		if i < len(reports)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
}

var csvHeader = []string{
	"quotation", "financing type", "year", "generation", "smp revenue", "rec revenue",
	"total revenue", "loan repayment", "interest payment", "maintenance cost",
	"monitoring cost", "total expense", "net profit", "cumulative",
}

// CsvFormat outputs the yearly data of every report in comma-separated value format.
func CsvFormat(w io.Writer, reports []Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, report := range reports {
		for _, y := range report.Result.YearlyData {
			record := []string{
				report.Name,
				string(report.Result.FinancingType),
				strconv.Itoa(y.Year),
				money(y.Generation),
				money(y.SMPRevenue),
				money(y.RECRevenue),
				money(y.TotalRevenue),
				money(y.LoanRepayment),
				money(y.InterestPayment),
				money(y.MaintenanceCost),
				money(y.MonitoringCost),
				money(y.TotalExpense),
				money(y.NetProfit),
				money(y.Cumulative),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs reports as an indented JSON array.
func JSONFormat(w io.Writer, reports []Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
