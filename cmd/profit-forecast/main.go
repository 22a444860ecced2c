package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/solardesk/profit-forecast/internal/analysis"
	"github.com/solardesk/profit-forecast/internal/config"
	"github.com/solardesk/profit-forecast/internal/logging"
	"github.com/solardesk/profit-forecast/internal/report"
	"github.com/solardesk/profit-forecast/pkg/constants"
	"github.com/solardesk/profit-forecast/pkg/output"
	"github.com/solardesk/profit-forecast/pkg/validation"
	"go.uber.org/zap"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json, pdf")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	compare := flag.Bool("compare", false, "compare every financing type for each active quotation")
	flag.Parse()

	// A missing .env file is fine
	_ = godotenv.Load()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	engine := analysis.NewEngine(logger, nil)
	ctx := context.Background()

	var reports []output.Report
	for _, q := range conf.ActiveQuotations() {
		if *compare {
			comparison, err := engine.Compare(ctx, q.Project(conf.Market), analysis.CompareOptions{})
			if err != nil {
				logger.Fatal("failed to compare financing types",
					zap.String("op", "main"),
					zap.String("quotation", q.Label()),
					zap.Error(err),
				)
			}
			for _, s := range comparison.Scenarios {
				reports = append(reports, output.Report{Name: q.Label(), Input: s.Input, Result: s.Result})
			}
			logger.Info("financing comparison",
				zap.String("op", "main"),
				zap.String("quotation", q.Label()),
				zap.String("bestByProfit", string(comparison.BestByProfit)),
				zap.String("bestByRoi", string(comparison.BestByROI)),
				zap.String("fastestPayback", string(comparison.FastestPayback)),
			)
			continue
		}

		in, err := q.Input(conf.Market)
		if err != nil {
			logger.Fatal("failed to build analysis input",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		result, err := engine.Calculate(ctx, in)
		if err != nil {
			logger.Fatal("failed to compute analysis",
				zap.String("op", "main"),
				zap.String("quotation", q.Label()),
				zap.Error(err),
			)
		}
		reports = append(reports, output.Report{Name: q.Label(), Input: in, Result: result})
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, reports)
	case constants.OutputFormatCSV:
		err = output.CsvFormat(os.Stdout, reports)
	case constants.OutputFormatJSON:
		err = output.JSONFormat(os.Stdout, reports)
	case constants.OutputFormatPDF:
		err = writePDFReports(logger, conf.Output.PDFDir, reports)
	}
	if err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.String("format", outputFormat),
			zap.Error(err),
		)
	}
}

func writePDFReports(logger *zap.Logger, dir string, reports []output.Report) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}

	for i, r := range reports {
		name := fmt.Sprintf("%02d-%s-%s.pdf", i+1,
			strings.Trim(unsafeFileChars.ReplaceAllString(r.Name, "-"), "-"),
			strings.ToLower(string(r.Result.FinancingType)))
		path := filepath.Join(dir, name)

		file, err := os.Create(path)
		if err != nil {
			return err
		}
		renderErr := report.Render(file, r.Name, r.Input, r.Result)
		closeErr := file.Close()
		if renderErr != nil {
			return renderErr
		}
		if closeErr != nil {
			return closeErr
		}

		logger.Info("report written",
			zap.String("op", "main.writePDFReports"),
			zap.String("path", path),
		)
	}
	return nil
}
