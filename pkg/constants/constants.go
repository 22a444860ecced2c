// Package constants provides shared constants for the profit-forecast application.
package constants

// Projection constants
const (
	// ProjectionYears is the number of operating years covered by an analysis
	ProjectionYears = 20

	// DaysPerYear is the number of generating days assumed per year
	DaysPerYear = 365

	// KWhPerMWh converts generation in kWh into the MWh basis used for REC issuance
	KWhPerMWh = 1000.0

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// ROIDecimals is the number of decimals kept on the returned ROI
	ROIDecimals = 1

	// ChartBucket is the currency unit used by chart series (10,000 won)
	ChartBucket = 10000.0

	// YearsPerReportTable is the number of yearly rows rendered per PDF table
	YearsPerReportTable = 10
)

// Financing defaults
const (
	// LoanSelfFundingRate is the equity share for bank and government loans
	LoanSelfFundingRate = 0.2

	// BankInterestRate is the default annual bank loan rate in percent
	BankInterestRate = 5.5

	// GovernmentInterestRate is the fixed annual government policy loan rate in percent
	GovernmentInterestRate = 1.75

	// LoanPeriodYears is the default repayment period for bank and government loans
	LoanPeriodYears = 10

	// GovernmentGraceYears is the interest-only period of the government policy loan
	GovernmentGraceYears = 1

	// FactoringPeriodYears is the default factoring contract length
	FactoringPeriodYears = 5

	// GuaranteeFeeRate is the fixed one-time guarantee fee for factoring
	GuaranteeFeeRate = 0.05

	// FactoringFeeRate is the default one-time factoring fee
	FactoringFeeRate = 0.08
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatPDF writes one PDF report per quotation
	OutputFormatPDF = "pdf"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultServiceName identifies the service in traces
	DefaultServiceName = "profit-forecast"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultListedAnalyses is the number of stored analyses listed when no limit is given
	DefaultListedAnalyses = 20

	// MaxListedAnalyses caps the limit accepted when listing stored analyses
	MaxListedAnalyses = 100
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 won)
	CurrencyTolerance = 1.0
)
