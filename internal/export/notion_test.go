package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IshpreetSingh8264/InflowBackend/internal/extract"
	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"
)

type fakeNotion struct {
	createFunc func(ctx context.Context, databaseID string, properties notionapi.Properties, children []notionapi.Block) (*notionapi.Page, error)
	calls      int
}

func (f *fakeNotion) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties, children []notionapi.Block) (*notionapi.Page, error) {
	f.calls++
	if f.createFunc != nil {
		return f.createFunc(ctx, databaseID, properties, children)
	}
	return &notionapi.Page{ID: "page-1"}, nil
}

func sampleSummary() extract.SummaryResult {
	return extract.SummaryResult{
		Summary:         "A steady month.",
		Insights:        []string{"Income outpaced spending."},
		Recommendations: []string{"Keep saving."},
		FinancialHealth: "healthy",
		TotalIncome:     decimal.NewFromInt(2000),
		TotalExpenses:   decimal.NewFromInt(500),
		NetAmount:       decimal.NewFromInt(1500),
	}
}

func TestExportSummary(t *testing.T) {
	var gotProps notionapi.Properties
	var gotChildren []notionapi.Block
	notion := &fakeNotion{
		createFunc: func(ctx context.Context, databaseID string, properties notionapi.Properties, children []notionapi.Block) (*notionapi.Page, error) {
			if databaseID != "db-1" {
				t.Errorf("databaseID = %q, want db-1", databaseID)
			}
			gotProps = properties
			gotChildren = children
			return &notionapi.Page{ID: "page-1"}, nil
		},
	}

	month := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	if err := ExportSummary(context.Background(), notion, "db-1", "user-1", month, sampleSummary()); err != nil {
		t.Fatalf("ExportSummary: %v", err)
	}

	income, ok := gotProps["Income"].(notionapi.NumberProperty)
	if !ok || income.Number != 2000 {
		t.Errorf("Income property = %+v, want 2000", gotProps["Income"])
	}
	net, ok := gotProps["Net"].(notionapi.NumberProperty)
	if !ok || net.Number != 1500 {
		t.Errorf("Net property = %+v, want 1500", gotProps["Net"])
	}
	deg, ok := gotProps["Degraded"].(notionapi.CheckboxProperty)
	if !ok || deg.Checkbox {
		t.Errorf("Degraded property = %+v, want unchecked", gotProps["Degraded"])
	}
	// Narrative paragraph plus one block each for insights and recommendations.
	if len(gotChildren) != 3 {
		t.Errorf("got %d content blocks, want 3", len(gotChildren))
	}
}

func TestExportSummaryCreateError(t *testing.T) {
	notion := &fakeNotion{
		createFunc: func(ctx context.Context, databaseID string, properties notionapi.Properties, children []notionapi.Block) (*notionapi.Page, error) {
			return nil, errors.New("notion unavailable")
		},
	}

	err := ExportSummary(context.Background(), notion, "db-1", "user-1", time.Now(), sampleSummary())
	if err == nil {
		t.Fatal("expected error when page creation fails")
	}
}
