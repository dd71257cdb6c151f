package extract

import (
	"strings"

	"github.com/IshpreetSingh8264/InflowBackend/internal/domain"
	"github.com/shopspring/decimal"
)

// buildCategorizePrompt renders the categorization instructions, the allowed
// taxonomy, and every transaction into one deterministic prompt.
func buildCategorizePrompt(taxonomy Taxonomy, txs []domain.Transaction) string {
	var b strings.Builder

	b.WriteString("You are a personal-finance categorization engine.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Assign every transaction below to EXACTLY one of the allowed categories.\n")
	b.WriteString("- Sum the amounts per category.\n")
	b.WriteString("- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n\n")

	b.WriteString("Allowed categories (use these names EXACTLY):\n")
	for _, label := range taxonomy.Labels {
		b.WriteString("  - " + label + "\n")
	}
	b.WriteString("\nIf a transaction fits nowhere, use \"" + taxonomy.CatchAll + "\".\n\n")

	b.WriteString("Transactions:\n")
	writeTransactionList(&b, txs)

	b.WriteString("\nRequired output shape:\n")
	b.WriteString(`{"categories":[{"name":"<category>","amount":<number>,"percentage":<number>}]}` + "\n")
	b.WriteString("\nRules:\n")
	b.WriteString("- Amounts are plain numbers: no currency symbols, no arithmetic expressions.\n")
	b.WriteString("- Return ONLY valid raw JSON.\n")
	b.WriteString("- Do NOT wrap the response in code fences.\n")
	b.WriteString("- Output must begin with \"{\" and end with \"}\".\n")

	return b.String()
}

// buildSummarizePrompt renders the summary instructions with the locally
// pre-computed aggregates so the narrative stays grounded in real numbers.
func buildSummarizePrompt(txs []domain.Transaction, totalIncome, totalExpenses, net decimal.Decimal) string {
	var b strings.Builder

	b.WriteString("You are a personal-finance analyst writing a short monthly review.\n\n")

	b.WriteString("Pre-computed aggregates (authoritative, do not recompute):\n")
	b.WriteString("  total income:   " + totalIncome.String() + "\n")
	b.WriteString("  total expenses: " + totalExpenses.String() + "\n")
	b.WriteString("  net amount:     " + net.String() + "\n\n")

	b.WriteString("Transactions:\n")
	writeTransactionList(&b, txs)

	b.WriteString("\nRequired output shape:\n")
	b.WriteString(`{"summary":"...","insights":["..."],"recommendations":["..."],"financialHealth":"..."}` + "\n")
	b.WriteString("\nRules:\n")
	b.WriteString("- summary: 2-3 sentences on the month's spending pattern.\n")
	b.WriteString("- insights: 2-4 concrete observations grounded in the transactions above.\n")
	b.WriteString("- recommendations: 2-3 actionable suggestions.\n")
	b.WriteString("- financialHealth: one short phrase (e.g. \"healthy\", \"overspending\").\n")
	b.WriteString("- Return ONLY valid raw JSON, no code fences, no extra text.\n")

	return b.String()
}

func writeTransactionList(b *strings.Builder, txs []domain.Transaction) {
	for _, tx := range txs {
		b.WriteString("  - id=" + tx.ID)
		b.WriteString(" title=" + quoteField(tx.Title))
		if tx.Description != "" {
			b.WriteString(" description=" + quoteField(tx.Description))
		}
		b.WriteString(" amount=" + tx.Amount.String())
		b.WriteString(" type=" + string(tx.Type))
		b.WriteString("\n")
	}
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `'`) + `"`
}
