package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/openelig/eligibility-tracker/internal/common"
	"github.com/openelig/eligibility-tracker/internal/entity"
	"github.com/openelig/eligibility-tracker/internal/export"
	"github.com/openelig/eligibility-tracker/internal/extract"
	"github.com/openelig/eligibility-tracker/internal/sentiment"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		file    = flag.String("file", "", "text file to extract from (default: stdin)")
		user    = flag.String("user", "cli", "user identifier recorded on the output row")
		out     = flag.String("out", "", "append the record to daily workbooks under this directory instead of printing JSON")
		lexicon = flag.String("lexicon", "", "sentiment lexicon JSON file (optional)")
	)
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	// Read input
	var (
		data []byte
		err  error
	)
	if *file != "" {
		data, err = os.ReadFile(*file)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		printError("Error: reading input: %v\n", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()

	lex := sentiment.DefaultLexicon()
	if *lexicon != "" {
		lex, err = sentiment.LoadLexicon(*lexicon)
		if err != nil {
			printError("Error: loading lexicon: %v\n", err)
			os.Exit(1)
		}
	}
	extractor := extract.NewExtractor(sentiment.NewClassifier(lex))

	rec, err := extractor.Extract(string(data), entity.Provenance{
		UserIdentifier: *user,
		ExtractedBy:    cfg.Extractor.Identity,
		CapturedAt:     time.Now(),
	})
	if err != nil {
		printError("Error: extraction failed: %v\n", err)
		os.Exit(1)
	}

	if *out != "" {
		store, err := export.NewWorkbookStore(*out, logger)
		if err != nil {
			printError("Error: opening workbook store: %v\n", err)
			os.Exit(1)
		}
		if err := store.Append(context.Background(), rec); err != nil {
			printError("Error: appending record: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("record appended under %s\n", *out)
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		printError("Error: encoding record: %v\n", err)
		os.Exit(1)
	}
}
