package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// notAvailable is shown for empty fields.
const notAvailable = "N/A"

// iterationRule separates rendered iterations.
var iterationRule = "\n" + strings.Repeat("=", 60) + "\n\n"

// FormatContent renders a log payload for reading.
//
// Items render as "Iteration N:" blocks separated by a rule of '='; an
// iteration number of zero falls back to the 1-based position. Objects
// render as indented JSON, text verbatim, and empty payloads as N/A.
func FormatContent(c domain.Content) string {
	switch c.Kind() {
	case domain.ContentItems:
		items, _ := c.Items()
		if len(items) == 0 {
			return notAvailable
		}
		blocks := make([]string, len(items))
		for i, it := range items {
			blocks[i] = formatIteration(i, it)
		}
		return strings.Join(blocks, iterationRule)
	case domain.ContentObject:
		fields, _ := c.Object()
		b, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", fields)
		}
		return string(b)
	case domain.ContentText:
		text, _ := c.Text()
		return orDefault(text, notAvailable)
	default:
		return notAvailable
	}
}

func formatIteration(index int, it domain.IterationItem) string {
	n := it.Iteration
	if n == 0 {
		n = index + 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Iteration %d:\n", n)
	fmt.Fprintf(&b, "Request: %s\n", orDefault(it.Request, notAvailable))
	fmt.Fprintf(&b, "Response: %s\n", orDefault(it.Response, notAvailable))
	fmt.Fprintf(&b, "Refinement: %s\n", orDefault(it.Refinement, notAvailable))
	fmt.Fprintf(&b, "Model: %s\n", orDefault(it.Model, notAvailable))
	fmt.Fprintf(&b, "Cost: %s\n", orDefault(it.Cost, notAvailable))
	fmt.Fprintf(&b, "Agent Code: %s\n", orDefault(it.AgentCode, notAvailable))
	fmt.Fprintf(&b, "Token Count: %s\n", orDefault(it.TokenCount, notAvailable))
	fmt.Fprintf(&b, "AI Call Time: %s\n", orDefault(it.AICallTime, notAvailable))
	fmt.Fprintf(&b, "Iteration Time: %s", orDefault(it.IterationTime, notAvailable))
	return b.String()
}

// Summary returns a one-line preview of a payload, cut to width runes.
func Summary(c domain.Content, width int) string {
	var s string
	switch c.Kind() {
	case domain.ContentItems:
		items, _ := c.Items()
		s = fmt.Sprintf("%d iterations", len(items))
		if len(items) > 0 && items[0].Request != "" {
			s += ": " + items[0].Request
		}
	case domain.ContentObject:
		b, _ := json.Marshal(c)
		s = string(b)
	case domain.ContentText:
		s, _ = c.Text()
	default:
		s = notAvailable
	}
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if width > 1 && len(r) > width {
		return string(r[:width-1]) + "…"
	}
	return s
}
