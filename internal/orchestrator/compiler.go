package orchestrator

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// sectionOrder fixes the presentation order of agent sections,
// independent of completion order.
var sectionOrder = []string{"infrastructure", "kubernetes", "cost", "deployment", "rca", "report"}

// Compiler renders per-agent results into one report. Compile is pure:
// identical inputs always render identical text.
type Compiler struct{}

// NewCompiler creates a compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile renders the result set for a request. Degraded sections are
// marked explicitly; a banner reports partial success.
func (c *Compiler) Compile(results map[string]AgentResult, originalRequest string, at time.Time) string {
	var b strings.Builder

	b.WriteString("DevOps Sentinel Response:\n\n")
	fmt.Fprintf(&b, "Original Request: %s\n", originalRequest)
	fmt.Fprintf(&b, "Analysis completed at %s UTC\n\n", at.UTC().Format("2006-01-02 15:04:05"))

	succeeded := 0
	for _, res := range results {
		if res.Status == StatusSuccess {
			succeeded++
		}
	}
	if succeeded < len(results) {
		fmt.Fprintf(&b, "⚠️ Partial results: %d/%d agents succeeded\n\n", succeeded, len(results))
	}

	for _, name := range orderedAgents(results) {
		writeSection(&b, name, results[name])
	}

	b.WriteString("---\n")
	b.WriteString("DevOps Sentinel Multi-Agent System\n")
	fmt.Fprintf(&b, "Agents involved: %d\n", len(results))
	return b.String()
}

// orderedAgents returns the fixed priority order first, then any agents
// outside that list sorted by name for a stable rendering.
func orderedAgents(results map[string]AgentResult) []string {
	var out []string
	seen := make(map[string]bool, len(results))
	for _, name := range sectionOrder {
		if _, ok := results[name]; ok {
			out = append(out, name)
			seen[name] = true
		}
	}

	var extras []string
	for name := range results {
		if !seen[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	return append(out, extras...)
}

func writeSection(b *strings.Builder, name string, res AgentResult) {
	switch res.Status {
	case StatusSuccess:
		fmt.Fprintf(b, "📊 %s analysis:\n%s\n\n", name, res.Result)
	case StatusTimeout:
		fmt.Fprintf(b, "⏱ %s timed out:\n%s\n\n", name, res.Error)
	case StatusUnavailable:
		fmt.Fprintf(b, "❌ %s unavailable:\n%s\n\n", name, res.Error)
	default:
		fmt.Fprintf(b, "❌ %s error:\n%s\n\n", name, res.Error)
	}
}
