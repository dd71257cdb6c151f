package extract

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IshpreetSingh8264/InflowBackend/internal/domain"
	"github.com/IshpreetSingh8264/InflowBackend/internal/llm"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SummaryResult is a narrative month review. The three decimal aggregates
// are always computed locally from the input transactions, never taken from
// the model. Degraded is true when the narrative is the canned fallback.
type SummaryResult struct {
	Summary         string          `json:"summary"`
	Insights        []string        `json:"insights"`
	Recommendations []string        `json:"recommendations"`
	FinancialHealth string          `json:"financialHealth"`
	TotalIncome     decimal.Decimal `json:"totalIncome"`
	TotalExpenses   decimal.Decimal `json:"totalExpenses"`
	NetAmount       decimal.Decimal `json:"netAmount"`
	Degraded        bool            `json:"degraded"`
	Raw             string          `json:"-"`
}

// Summarizer produces a narrative summary over an already-filtered
// transaction window. Date windowing is the caller's job.
type Summarizer struct {
	model    llm.ModelClient
	attempts int
	delay    time.Duration
	log      zerolog.Logger
}

// NewSummarizer creates a summary pipeline.
func NewSummarizer(model llm.ModelClient, attempts int, delay time.Duration, log zerolog.Logger) *Summarizer {
	return &Summarizer{
		model:    model,
		attempts: attempts,
		delay:    delay,
		log:      log,
	}
}

type modelSummary struct {
	Summary         string   `json:"summary"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
	FinancialHealth string   `json:"financialHealth"`
}

// Summarize builds the narrative for the given transactions. Like the
// category pipeline it never fails: model-side errors degrade to a fixed
// narrative around the locally computed aggregates.
func (s *Summarizer) Summarize(ctx context.Context, txs []domain.Transaction) SummaryResult {
	income, expenses := aggregate(txs)
	net := income.Sub(expenses)

	if len(txs) == 0 {
		return SummaryResult{
			Summary:         "No transactions were recorded in this period.",
			Insights:        []string{},
			Recommendations: []string{},
			FinancialHealth: "unknown",
			TotalIncome:     income,
			TotalExpenses:   expenses,
			NetAmount:       net,
		}
	}

	prompt := buildSummarizePrompt(txs, income, expenses, net)

	raw, err := Retry(ctx, s.attempts, s.delay, func(ctx context.Context) (string, error) {
		return s.model.Generate(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, llm.Options{Temperature: 0.4})
	})
	if err != nil {
		s.log.Warn().Err(err).Int("transactions", len(txs)).Msg("Summary model call failed, using fallback")
		return s.fallback(income, expenses, net)
	}

	payload, err := Normalize(raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("Summary response rejected, using fallback")
		return s.fallback(income, expenses, net)
	}

	var parsed modelSummary
	if err := json.Unmarshal(payload, &parsed); err != nil || parsed.Summary == "" {
		s.log.Warn().Err(err).Msg("Summary payload missing narrative, using fallback")
		return s.fallback(income, expenses, net)
	}

	return SummaryResult{
		Summary:         parsed.Summary,
		Insights:        parsed.Insights,
		Recommendations: parsed.Recommendations,
		FinancialHealth: parsed.FinancialHealth,
		TotalIncome:     income,
		TotalExpenses:   expenses,
		NetAmount:       net,
		Raw:             raw,
	}
}

func (s *Summarizer) fallback(income, expenses, net decimal.Decimal) SummaryResult {
	return SummaryResult{
		Summary:         "A summary could not be generated for this period.",
		Insights:        []string{},
		Recommendations: []string{},
		FinancialHealth: "unknown",
		TotalIncome:     income,
		TotalExpenses:   expenses,
		NetAmount:       net,
		Degraded:        true,
	}
}

func aggregate(txs []domain.Transaction) (income, expenses decimal.Decimal) {
	for _, tx := range txs {
		switch tx.Type {
		case domain.TypeIncome:
			income = income.Add(tx.Amount)
		case domain.TypeExpense:
			expenses = expenses.Add(tx.Amount)
		}
	}
	return income, expenses
}
