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

// CategoryBucket is one taxonomy label with the total amount assigned to it.
type CategoryBucket struct {
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

// CategoryResult always contains exactly one bucket per taxonomy label.
// Degraded is true when the buckets come from the deterministic fallback
// instead of genuine model output. Raw carries the model's unprocessed reply
// for archiving; it is empty on the fallback path.
type CategoryResult struct {
	Buckets  []CategoryBucket `json:"categories"`
	Degraded bool             `json:"degraded"`
	Raw      string           `json:"-"`
}

// Categorizer sorts a user's transactions into the fixed category taxonomy
// by prompting the model and validating its reply.
type Categorizer struct {
	model    llm.ModelClient
	taxonomy Taxonomy
	attempts int
	delay    time.Duration
	log      zerolog.Logger
}

// NewCategorizer creates a categorization pipeline.
func NewCategorizer(model llm.ModelClient, taxonomy Taxonomy, attempts int, delay time.Duration, log zerolog.Logger) *Categorizer {
	return &Categorizer{
		model:    model,
		taxonomy: taxonomy,
		attempts: attempts,
		delay:    delay,
		log:      log,
	}
}

// modelCategories mirrors the JSON shape the prompt demands.
type modelCategories struct {
	Categories []struct {
		Name   string      `json:"name"`
		Amount json.Number `json:"amount"`
	} `json:"categories"`
}

// Categorize produces one bucket per taxonomy label for the given
// transactions. It never fails: any model or normalization error degrades to
// the deterministic fallback, so callers always receive a complete
// well-formed bucket list. An empty transaction list short-circuits to
// all-zero buckets without a model call.
func (c *Categorizer) Categorize(ctx context.Context, txs []domain.Transaction) CategoryResult {
	if len(txs) == 0 {
		return CategoryResult{Buckets: c.zeroBuckets()}
	}

	prompt := buildCategorizePrompt(c.taxonomy, txs)

	raw, err := Retry(ctx, c.attempts, c.delay, func(ctx context.Context) (string, error) {
		return c.model.Generate(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, llm.Options{Temperature: 0.2})
	})
	if err != nil {
		c.log.Warn().Err(err).Int("transactions", len(txs)).Msg("Categorization model call failed, using fallback")
		return c.fallback(txs)
	}

	payload, err := Normalize(raw)
	if err != nil {
		c.log.Warn().Err(err).Msg("Categorization response rejected, using fallback")
		return c.fallback(txs)
	}

	var parsed modelCategories
	if err := json.Unmarshal(payload, &parsed); err != nil || len(parsed.Categories) == 0 {
		c.log.Warn().Err(err).Msg("Categorization payload has no categories, using fallback")
		return c.fallback(txs)
	}

	// Fold model buckets into the taxonomy. Labels outside the taxonomy are
	// absorbed by the catch-all so no amount is silently dropped.
	totals := make(map[string]decimal.Decimal, len(c.taxonomy.Labels))
	for _, cat := range parsed.Categories {
		amount, aerr := decimal.NewFromString(cat.Amount.String())
		if aerr != nil {
			continue
		}

		label := c.taxonomy.Canonical(cat.Name)
		if label == "" {
			label = c.taxonomy.CatchAll
		}
		totals[label] = totals[label].Add(amount)
	}

	buckets := make([]CategoryBucket, 0, len(c.taxonomy.Labels))
	total := decimal.Zero
	for _, label := range c.taxonomy.Labels {
		total = total.Add(totals[label])
	}
	for _, label := range c.taxonomy.Labels {
		buckets = append(buckets, CategoryBucket{
			Name:       label,
			Amount:     totals[label],
			Percentage: percentage(totals[label], total),
		})
	}

	return CategoryResult{Buckets: buckets, Raw: raw}
}

// fallback returns the full taxonomy at zero except the catch-all label,
// which receives the sum of all transaction amounts.
func (c *Categorizer) fallback(txs []domain.Transaction) CategoryResult {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}

	buckets := c.zeroBuckets()
	for i := range buckets {
		if buckets[i].Name == c.taxonomy.CatchAll {
			buckets[i].Amount = total
			if !total.IsZero() {
				buckets[i].Percentage = 100
			}
		}
	}

	return CategoryResult{Buckets: buckets, Degraded: true}
}

func (c *Categorizer) zeroBuckets() []CategoryBucket {
	buckets := make([]CategoryBucket, 0, len(c.taxonomy.Labels))
	for _, label := range c.taxonomy.Labels {
		buckets = append(buckets, CategoryBucket{Name: label, Amount: decimal.Zero})
	}
	return buckets
}

func percentage(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	f, _ := part.Div(total).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return f
}
