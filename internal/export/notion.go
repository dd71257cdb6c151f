// Package export pushes monthly summaries to a Notion database so they can
// be browsed outside the app.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/IshpreetSingh8264/InflowBackend/internal/extract"
	"github.com/IshpreetSingh8264/InflowBackend/internal/logger"
	"github.com/jomei/notionapi"
)

// NotionService is the subset of the Notion API the exporter needs. Narrow
// on purpose so tests can fake it.
type NotionService interface {
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties, children []notionapi.Block) (*notionapi.Page, error)
}

// NotionClient implements NotionService with the official Notion SDK.
type NotionClient struct {
	client *notionapi.Client
}

// NewNotionClient creates a client with the provided API token.
func NewNotionClient(token string) *NotionClient {
	return &NotionClient{
		client: notionapi.NewClient(notionapi.Token(token)),
	}
}

// CreatePage creates a new page in a Notion database.
func (n *NotionClient) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties, children []notionapi.Block) (*notionapi.Page, error) {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
		Children:   children,
	}

	page, err := n.client.Page.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("CreatePage: %w", err)
	}

	return page, nil
}

// ExportSummary creates one Notion page for a user's monthly summary. The
// aggregates become database properties; the narrative becomes page content.
func ExportSummary(ctx context.Context, notion NotionService, databaseID, userID string, month time.Time, result extract.SummaryResult) error {
	log := logger.FromContext(ctx)

	title := fmt.Sprintf("%s - %s", userID, month.Format("January 2006"))

	income, _ := result.TotalIncome.Float64()
	expenses, _ := result.TotalExpenses.Float64()
	net, _ := result.NetAmount.Float64()

	properties := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: title}}},
		},
		"Income":   notionapi.NumberProperty{Number: income},
		"Expenses": notionapi.NumberProperty{Number: expenses},
		"Net":      notionapi.NumberProperty{Number: net},
		"Health": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: result.FinancialHealth}}},
		},
		"Degraded": notionapi.CheckboxProperty{Checkbox: result.Degraded},
	}

	children := []notionapi.Block{
		paragraph(result.Summary),
	}
	if len(result.Insights) > 0 {
		children = append(children, paragraph("Insights:\n"+bulleted(result.Insights)))
	}
	if len(result.Recommendations) > 0 {
		children = append(children, paragraph("Recommendations:\n"+bulleted(result.Recommendations)))
	}

	page, err := notion.CreatePage(ctx, databaseID, properties, children)
	if err != nil {
		return fmt.Errorf("ExportSummary: %w", err)
	}

	log.Info().
		Str("user_id", userID).
		Str("page_id", string(page.ID)).
		Str("month", month.Format("2006-01")).
		Msg("Summary exported to Notion")

	return nil
}

func paragraph(text string) notionapi.Block {
	return &notionapi.ParagraphBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeParagraph,
		},
		Paragraph: notionapi.Paragraph{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: text}}},
		},
	}
}

func bulleted(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("• " + item + "\n")
	}
	return b.String()
}
