package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/IshpreetSingh8264/InflowBackend/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	currencyRe = regexp.MustCompile(`[$£€₹]\s*(-?\d)`)

	// Matches an unevaluated "<number> + <number> = <number>" the model
	// sometimes emits in place of a numeric value. Only this exact shape is
	// rewritten; anything else is left for the JSON parser to reject.
	arithmeticRe = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*\+\s*(-?\d+(?:\.\d+)?)\s*=\s*-?\d+(?:\.\d+)?`)
)

// Normalize turns a raw model reply into a syntactically valid JSON object.
// The reply may be wrapped in Markdown code fences, carry currency symbols
// inside numbers, embed unevaluated sums, or be surrounded by prose; all of
// that is stripped before parsing. It fails with domain.ErrMalformedResponse
// when no well-formed JSON object can be isolated.
func Normalize(raw string) (json.RawMessage, error) {
	s := stripFences(raw)

	// Drop currency symbols glued onto numbers ("$12.50" -> "12.50").
	s = currencyRe.ReplaceAllString(s, "$1")

	// Keep only the outermost object, tolerating prose before and after it.
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in %q", domain.ErrMalformedResponse, snippet(s))
	}
	s = s[start : end+1]

	// Replace "a + b = c" value positions with the evaluated sum. The sum is
	// recomputed from the operands; the model's own right-hand side is not
	// trusted.
	s = arithmeticRe.ReplaceAllStringFunc(s, evalSum)

	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v in %q", domain.ErrMalformedResponse, err, snippet(s))
	}

	return json.RawMessage(s), nil
}

// stripFences removes a leading ``` or ```json line and a trailing ``` line.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}

func evalSum(match string) string {
	parts := arithmeticRe.FindStringSubmatch(match)
	if len(parts) != 3 {
		return match
	}

	a, err := decimal.NewFromString(parts[1])
	if err != nil {
		return match
	}
	b, err := decimal.NewFromString(parts[2])
	if err != nil {
		return match
	}

	return a.Add(b).String()
}

func snippet(s string) string {
	const max = 120
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
