package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mailsift/mailsift/internal/analysis"
	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	service *analysis.Service,
	store core.CacheStore,
) error {
	defer logger.Sync()
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close cache store", zap.Error(err))
		}
	}()

	records, err := readRecords(flags, logger)
	if err != nil {
		return err
	}
	logger.Info("Loaded mailbox snapshot", zap.Int("records", len(records)))

	result, err := service.Analyze(context.Background(), records)
	if err != nil {
		return err
	}

	if flags.JSONOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	printResult(result)
	return nil
}

// readRecords loads the EmailRecord snapshot from a file or stdin.
func readRecords(flags *di.CLIFlags, logger *zap.Logger) ([]core.EmailRecord, error) {
	var reader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		reader = file
		logger.Info("Reading snapshot from file", zap.String("file", flags.InputFile))
	} else {
		reader = os.Stdin
		logger.Info("Reading snapshot from stdin")
	}

	var records []core.EmailRecord
	if err := json.NewDecoder(bufio.NewReader(reader)).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}
	return records, nil
}

// printResult renders a human-readable summary.
func printResult(result *core.EmailAnalysisResult) {
	fmt.Printf("\n=== Analysis Summary ===\n")
	fmt.Printf("Run ID: %s\n", result.RunID)
	fmt.Printf("Model: %s\n", result.ModelUsed)
	fmt.Printf("Emails analyzed: %d\n", result.Summary.TotalEmails)
	fmt.Printf("Unique senders: %d\n", result.Summary.UniqueSenders)
	if result.BatchResult != nil {
		fmt.Printf("Batch: %d ok, %d failed, %d skipped (%.1f items/s)\n",
			result.BatchResult.ProcessedSuccessfully,
			result.BatchResult.FailedItems,
			result.BatchResult.SkippedItems,
			result.BatchResult.ItemsPerSecond)
	}

	fmt.Printf("\n=== Patterns (%d) ===\n", len(result.Patterns))
	for _, p := range result.Patterns {
		fmt.Printf("  [%-10s] %-50s %4d emails  confidence %.2f\n",
			p.PatternType, p.Description, p.EmailCount, p.Confidence)
	}

	fmt.Printf("\n=== Suggestions (%d) ===\n", len(result.Suggestions))
	for _, s := range result.Suggestions {
		fmt.Printf("  %s\n", s.Name)
		fmt.Printf("    %s\n", s.Description)
		fmt.Printf("    Saves %.2f h, ROI %.0f%%\n", s.EstimatedTimeSavings, s.ROI.ROIPercent)
	}
	fmt.Println()
}
