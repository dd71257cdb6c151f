package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/IshpreetSingh8264/InflowBackend/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "fenced json block",
			raw:  "```json\n{\"categories\":[]}\n```",
			want: `{"categories":[]}`,
		},
		{
			name: "fence without format name",
			raw:  "```\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "already clean",
			raw:  `{"a":1}`,
			want: `{"a":1}`,
		},
		{
			name: "leading and trailing prose",
			raw:  "Here is your result:\n{\"a\":1}\nHope that helps!",
			want: `{"a":1}`,
		},
		{
			name: "currency symbols inside numbers",
			raw:  `{"amount": $12.50, "other": £3}`,
			want: `{"amount": 12.50, "other": 3}`,
		},
		{
			name: "unevaluated sum replaced by computed total",
			raw:  `{"amount": 10.5 + 2 = 99}`,
			want: `{"amount": 12.5}`,
		},
		{
			name: "sum does not trust model right-hand side",
			raw:  `{"amount": 1 + 1 = 3}`,
			want: `{"amount": 2}`,
		},
		{
			name:    "no object at all",
			raw:     "sorry, I cannot help with that",
			wantErr: true,
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "garbage inside braces",
			raw:     `{"a": }`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) succeeded, want error", tt.raw)
				}
				if !errors.Is(err, domain.ErrMalformedResponse) {
					t.Errorf("error = %v, want ErrMalformedResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) failed: %v", tt.raw, err)
			}
			if string(got) != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		`{"categories":[]}`,
		`{"summary":"spent a lot","net":-42.10}`,
		"```json\n{\"a\":{\"b\":[1,2,3]}}\n```",
	}

	for _, raw := range inputs {
		once, err := Normalize(raw)
		if err != nil {
			t.Fatalf("first Normalize(%q) failed: %v", raw, err)
		}
		twice, err := Normalize(string(once))
		if err != nil {
			t.Fatalf("second Normalize(%q) failed: %v", once, err)
		}
		if string(once) != string(twice) {
			t.Errorf("Normalize not idempotent: %q != %q", once, twice)
		}
	}
}

func TestNormalize_ErrorCarriesFragment(t *testing.T) {
	_, err := Normalize("model said: nothing useful here")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "nothing useful") {
		t.Errorf("error %q does not carry the offending fragment", err)
	}
}
