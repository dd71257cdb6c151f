package main

import (
	"context"
	"flag"
	"time"

	"github.com/IshpreetSingh8264/InflowBackend/internal/config"
	"github.com/IshpreetSingh8264/InflowBackend/internal/export"
	"github.com/IshpreetSingh8264/InflowBackend/internal/extract"
	infraBQ "github.com/IshpreetSingh8264/InflowBackend/internal/infra/bigquery"
	"github.com/IshpreetSingh8264/InflowBackend/internal/llm"
	"github.com/IshpreetSingh8264/InflowBackend/internal/logger"
)

func main() {
	log := logger.New()
	cfg := config.Load()

	userID := flag.String("user", "", "User ID to export a summary for (required)")
	monthStr := flag.String("month", "", "Month in YYYY-MM format (default: current month)")
	notionToken := flag.String("notion-token", cfg.NotionToken, "Notion API token (or set NOTION_TOKEN env)")
	notionDBID := flag.String("notion-db-id", cfg.NotionDBID, "Notion database ID (or set NOTION_DB_ID env)")
	flag.Parse()

	if *userID == "" {
		log.Fatal().Msg("Error: --user is required")
	}
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
	}

	month := time.Now().UTC()
	if *monthStr != "" {
		parsed, err := time.Parse("2006-01", *monthStr)
		if err != nil {
			log.Fatal().Err(err).Str("month", *monthStr).Msg("Error: invalid month format, expected YYYY-MM")
		}
		month = parsed
	}
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("user_id", *userID).
		Str("month", from.Format("2006-01")).
		Msg("Starting summary export")

	repo, err := infraBQ.NewRepository(ctx, cfg.GCPProjectID, cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	defer repo.Close()

	model, err := llm.NewGeminiClient(ctx, cfg.ModelName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create model client")
	}

	txs, err := repo.ListTransactions(ctx, *userID, from, to)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load transactions")
	}
	if len(txs) == 0 {
		log.Warn().Str("month", from.Format("2006-01")).Msg("No transactions in the selected month")
	}

	summarizer := extract.NewSummarizer(model, cfg.RetryAttempts, cfg.RetryDelay, log)
	result := summarizer.Summarize(ctx, txs)
	if result.Degraded {
		log.Warn().Msg("Summary is degraded - exporting aggregates without a model narrative")
	}

	notion := export.NewNotionClient(*notionToken)
	if err := export.ExportSummary(ctx, notion, *notionDBID, *userID, from, result); err != nil {
		log.Fatal().Err(err).Msg("Failed to export summary to Notion")
	}

	log.Info().
		Str("total_income", result.TotalIncome.String()).
		Str("total_expenses", result.TotalExpenses.String()).
		Str("net_amount", result.NetAmount.String()).
		Msg("Summary exported to Notion")
}
