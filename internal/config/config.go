// Package config defines the data structures related to configuration and
// includes functions for loading the config and turning quotations into
// analysis input.
package config

import (
	"fmt"
	"strings"

	"github.com/solardesk/profit-forecast/internal/analysis"
	"github.com/solardesk/profit-forecast/pkg/financing"
	"github.com/solardesk/profit-forecast/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for profit-forecast.
type Configuration struct {
	Market     Market
	Quotations []Quotation
	Logging    LoggingConfig `yaml:"logging,omitempty"`
	Output     OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json, pdf
	PDFDir string `yaml:"pdfDir,omitempty"`
}

// Market holds the figures shared by every quotation unless overridden:
// irradiance, degradation, electricity and REC prices and operating costs.
type Market struct {
	PeakHours          float64 `yaml:"peakHours"`
	DegradationRate    float64 `yaml:"degradationRate"`
	SMPPrice           float64 `yaml:"smpPrice"`
	RECPrice           float64 `yaml:"recPrice"`
	RECWeight          float64 `yaml:"recWeight"`
	MaintenanceCost    float64 `yaml:"maintenanceCost"`
	MonitoringCost     float64 `yaml:"monitoringCost"`
	CostEscalationRate float64 `yaml:"costEscalationRate,omitempty"`
}

// Quotation is one priced installation offered to a customer.
type Quotation struct {
	ID         string
	Name       string
	Active     bool
	CapacityKW float64 `yaml:"capacityKw"`

	// Investment covers equipment and construction. The grid connection
	// charge is billed separately and added to it.
	Investment           float64
	GridConnectionCharge float64 `yaml:"gridConnectionCharge"`

	Financing FinancingOverrides
	Overrides MarketOverrides
}

// FinancingOverrides selects the financing type and replaces its defaults
// where set.
type FinancingOverrides struct {
	Type             string
	SelfFundingRate  *float64 `yaml:"selfFundingRate,omitempty"`
	LoanAmount       *float64 `yaml:"loanAmount,omitempty"`
	InterestRate     *float64 `yaml:"interestRate,omitempty"`
	LoanPeriod       *int     `yaml:"loanPeriod,omitempty"`
	GracePeriod      *int     `yaml:"gracePeriod,omitempty"`
	FactoringFeeRate *float64 `yaml:"factoringFeeRate,omitempty"`
	RepaymentMethod  string   `yaml:"repaymentMethod,omitempty"`
}

// MarketOverrides replaces market figures for a single quotation.
type MarketOverrides struct {
	PeakHours       *float64 `yaml:"peakHours,omitempty"`
	DegradationRate *float64 `yaml:"degradationRate,omitempty"`
	SMPPrice        *float64 `yaml:"smpPrice,omitempty"`
	RECPrice        *float64 `yaml:"recPrice,omitempty"`
	RECWeight       *float64 `yaml:"recWeight,omitempty"`
	MaintenanceCost *float64 `yaml:"maintenanceCost,omitempty"`
	MonitoringCost  *float64 `yaml:"monitoringCost,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ActiveQuotations returns the quotations marked active, in file order.
func (c *Configuration) ActiveQuotations() []Quotation {
	var active []Quotation
	for _, q := range c.Quotations {
		if q.Active {
			active = append(active, q)
		}
	}
	return active
}

// Label names the quotation for output, falling back to its id.
func (q Quotation) Label() string {
	if q.Name != "" {
		return q.Name
	}
	if q.ID != "" {
		return q.ID
	}
	return "unnamed quotation"
}

// TotalInvestment is the investment including the grid connection charge.
func (q Quotation) TotalInvestment() float64 {
	return q.Investment + q.GridConnectionCharge
}

// Project merges the market figures with the quotation's own.
func (q Quotation) Project(m Market) analysis.Project {
	p := analysis.Project{
		CapacityKW:         q.CapacityKW,
		TotalInvestment:    q.TotalInvestment(),
		PeakHours:          m.PeakHours,
		DegradationRate:    m.DegradationRate,
		SMPPrice:           m.SMPPrice,
		RECPrice:           m.RECPrice,
		RECWeight:          m.RECWeight,
		MaintenanceCost:    m.MaintenanceCost,
		MonitoringCost:     m.MonitoringCost,
		CostEscalationRate: m.CostEscalationRate,
	}

	o := q.Overrides
	setFloat(&p.PeakHours, o.PeakHours)
	setFloat(&p.DegradationRate, o.DegradationRate)
	setFloat(&p.SMPPrice, o.SMPPrice)
	setFloat(&p.RECPrice, o.RECPrice)
	setFloat(&p.RECWeight, o.RECWeight)
	setFloat(&p.MaintenanceCost, o.MaintenanceCost)
	setFloat(&p.MonitoringCost, o.MonitoringCost)
	return p
}

// Input builds the analysis input for the quotation: financing defaults for
// the selected type, then the quotation's overrides. The loan amount is
// derived from the self-funding rate unless set explicitly.
func (q Quotation) Input(m Market) (analysis.Input, error) {
	ft, err := financing.ParseType(q.Financing.Type)
	if err != nil {
		return analysis.Input{}, fmt.Errorf("quotation %s: %w", q.Label(), err)
	}
	method, err := financing.ParseRepaymentMethod(q.Financing.RepaymentMethod)
	if err != nil {
		return analysis.Input{}, fmt.Errorf("quotation %s: %w", q.Label(), err)
	}

	p := q.Project(m)
	d, err := financing.DefaultsFor(ft, p.TotalInvestment)
	if err != nil {
		return analysis.Input{}, fmt.Errorf("quotation %s: %w", q.Label(), err)
	}

	f := q.Financing
	setFloat(&d.SelfFundingRate, f.SelfFundingRate)
	setFloat(&d.InterestRate, f.InterestRate)
	setFloat(&d.FactoringFeeRate, f.FactoringFeeRate)
	setInt(&d.LoanPeriod, f.LoanPeriod)
	setInt(&d.GracePeriod, f.GracePeriod)

	in := analysis.BuildInput(p, d, method)
	if ft.HasLoanService() {
		setFloat(&in.LoanAmount, f.LoanAmount)
	}
	return in, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	if len(c.ActiveQuotations()) == 0 {
		warnings = append(warnings, "no active quotations configured")
	}

	seen := make(map[string]struct{})
	for _, q := range c.Quotations {
		if q.ID != "" {
			if _, dup := seen[q.ID]; dup {
				warnings = append(warnings, fmt.Sprintf("Quotation id '%s' is used more than once", q.ID))
			}
			seen[q.ID] = struct{}{}
		}
		if !q.Active {
			continue
		}

		in, err := q.Input(c.Market)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		for _, w := range InputWarnings(in) {
			warnings = append(warnings, fmt.Sprintf("Quotation '%s': %s", q.Label(), w))
		}
	}
	return warnings
}

// InputWarnings reports figures the engine accepts but that are likely mistakes.
func InputWarnings(in analysis.Input) []string {
	return validation.ValidateInput(validation.InputInfo{
		FinancingType:   string(in.FinancingType),
		HasLoanService:  in.FinancingType.HasLoanService(),
		TotalInvestment: in.TotalInvestment,
		SelfFundingRate: in.SelfFundingRate,
		LoanAmount:      in.LoanAmount,
		DegradationRate: in.DegradationRate,
		CapacityKW:      in.CapacityKW,
		PeakHours:       in.PeakHours,
		LoanPeriod:      in.LoanPeriod,
		GracePeriod:     in.GracePeriod,
	})
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
