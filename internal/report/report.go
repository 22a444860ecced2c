// Package report renders an analysis as a PDF document.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/solardesk/profit-forecast/internal/analysis"
	"github.com/solardesk/profit-forecast/pkg/constants"
	"github.com/solardesk/profit-forecast/pkg/format"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
	rowHeight    = 6.0
)

// ErrNoYearlyData is returned when a result carries no projection to render.
var ErrNoYearlyData = errors.New("result has no yearly data")

type column struct {
	title string
	width float64
	value func(analysis.YearlyData) string
}

var columns = []column{
	{"Year", 12, func(y analysis.YearlyData) string { return fmt.Sprintf("%d", y.Year) }},
	{"Generation (kWh)", 30, func(y analysis.YearlyData) string { return format.NumericCurrency(y.Generation) }},
	{"Revenue", 30, func(y analysis.YearlyData) string { return format.NumericCurrency(y.TotalRevenue) }},
	{"Loan service", 30, func(y analysis.YearlyData) string {
		return format.NumericCurrency(y.LoanRepayment + y.InterestPayment)
	}},
	{"Expense", 26, func(y analysis.YearlyData) string { return format.NumericCurrency(y.TotalExpense) }},
	{"Net profit", 26, func(y analysis.YearlyData) string { return format.NumericCurrency(y.NetProfit) }},
	{"Cumulative", 26, func(y analysis.YearlyData) string { return format.NumericCurrency(y.Cumulative) }},
}

// Render writes an A4 report with the summary metrics and the yearly data
// split into tables of ten years each.
func Render(w io.Writer, title string, in analysis.Input, result analysis.Result) error {
	if len(result.YearlyData) == 0 {
		return ErrNoYearlyData
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(contentWidth, 10, title, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)

	addSummary(pdf, in, result)

	for start := 0; start < len(result.YearlyData); start += constants.YearsPerReportTable {
		end := start + constants.YearsPerReportTable
		if end > len(result.YearlyData) {
			end = len(result.YearlyData)
		}
		pdf.Ln(4)
		addTable(pdf, result.YearlyData[start:end])
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return pdf.Output(w)
}

func addSummary(pdf *fpdf.Fpdf, in analysis.Input, result analysis.Result) {
	rows := [][2]string{
		{"Financing", result.FinancingType.Label()},
		{"Capacity", fmt.Sprintf("%.1f kW", in.CapacityKW)},
		{"Total investment (KRW)", format.NumericCurrency(in.TotalInvestment)},
		{"Initial cost (KRW)", format.NumericCurrency(result.InitialCost)},
		{"Payback period", format.Payback(result.PaybackPeriod)},
		{"20-year revenue (KRW)", format.NumericCurrency(result.TotalRevenue20y)},
		{"20-year expense (KRW)", format.NumericCurrency(result.TotalExpense20y)},
		{"20-year net profit (KRW)", format.NumericCurrency(result.TotalProfit20y)},
		{"ROI", format.ROI(result.ROI, result.ROIDefined)},
	}
	if result.FinancingType.HasLoanService() {
		rows = append(rows,
			[2]string{"Loan amount (KRW)", format.NumericCurrency(in.LoanAmount)},
			[2]string{"Interest rate", format.Percent(in.InterestRate)},
			[2]string{"Loan period", fmt.Sprintf("%d years (+%d grace)", in.LoanPeriod, in.GracePeriod)},
		)
	}

	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(60, rowHeight, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(contentWidth-60, rowHeight, row[1], "", 1, "L", false, 0, "")
	}
}

func addTable(pdf *fpdf.Fpdf, years []analysis.YearlyData) {
	pdf.SetFont("Arial", "B", 8)
	pdf.SetFillColor(220, 230, 241)
	for _, c := range columns {
		pdf.CellFormat(c.width, rowHeight, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, y := range years {
		for i, c := range columns {
			align := "R"
			if i == 0 {
				align = "C"
			}
			pdf.CellFormat(c.width, rowHeight, c.value(y), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}
