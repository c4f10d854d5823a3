package main

import (
	"encoding/json"
	"fmt"
	"io"

	"flooring-cost/decision/estimation"
	"flooring-cost/decision/pricing"
	"flooring-cost/decision/review"
	"flooring-cost/pkg/money"
)

// =============================================================================
// OUTPUT FORMATTERS
// =============================================================================

type JSONOutput struct {
	Items    []estimation.EstimateItem `json:"items"`
	Subtotal float64                   `json:"subtotal"`
	Tax      float64                   `json:"tax"`
	Total    float64                   `json:"total"`
	Config   estimation.PricingConfig  `json:"config"`
	Summary  estimation.Summary        `json:"summary"`
	Review   *review.Result            `json:"review"`
}

func outputJSON(w io.Writer, est estimation.Estimate, cfg estimation.PricingConfig, rev *review.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(JSONOutput{
		Items:    est.Items,
		Subtotal: est.Subtotal,
		Tax:      est.Tax,
		Total:    est.Total,
		Config:   cfg,
		Summary:  est.Summary(),
		Review:   rev,
	})
}

func outputTable(w io.Writer, est estimation.Estimate, rev *review.Result) error {
	s := est.Summary()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║                    🪵 FLOORING ESTIMATE                        ║")
	fmt.Fprintln(w, "╠══════════════════════════════════════════════════════════════╣")

	for _, item := range est.Items {
		fmt.Fprintf(w, "║  %-42s  %15s ║\n", truncate(item.Description, 42), money.Format(item.Total))
	}

	fmt.Fprintln(w, "╠══════════════════════════════════════════════════════════════╣")
	fmt.Fprintf(w, "║  Total Area:            %-37s ║\n", fmt.Sprintf("%.2f sqft", s.TotalArea))
	fmt.Fprintf(w, "║  Labor Hours:           %-37s ║\n", fmt.Sprintf("%.0f", s.LaborHours))
	fmt.Fprintf(w, "║  Subtotal:              %-37s ║\n", money.Format(est.Subtotal))
	fmt.Fprintf(w, "║  Tax:                   %-37s ║\n", money.Format(est.Tax))
	fmt.Fprintf(w, "║  Total:                 %-37s ║\n", money.Format(est.Total))
	fmt.Fprintln(w, "╠══════════════════════════════════════════════════════════════╣")

	if rev != nil {
		fmt.Fprintf(w, "║  Review Result:         %-37s ║\n", decisionLabel(rev.Decision))
		for _, v := range rev.Violations {
			fmt.Fprintf(w, "║  ❌ %-57s ║\n", truncate(v.Message, 57))
		}
		for _, warn := range rev.Warnings {
			fmt.Fprintf(w, "║  ⚠️  %-56s ║\n", truncate(warn.Message, 56))
		}
	}

	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════════════╝")
	return nil
}

func outputMarkdown(w io.Writer, est estimation.Estimate, rev *review.Result) error {
	s := est.Summary()

	fmt.Fprintln(w, "## 🪵 Flooring Estimate")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Item | Room | Qty (sqft) | Unit Price | Total |")
	fmt.Fprintln(w, "|------|------|-----------:|-----------:|------:|")
	for _, item := range est.Items {
		fmt.Fprintf(w, "| %s | %s | %.2f | %s | %s |\n",
			item.Description, item.Room, item.Quantity, money.Format(item.UnitPrice), money.Format(item.Total))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Metric | Value |")
	fmt.Fprintln(w, "|--------|-------|")
	fmt.Fprintf(w, "| **Total Area** | %.2f sqft |\n", s.TotalArea)
	fmt.Fprintf(w, "| **Labor Hours** | %.0f |\n", s.LaborHours)
	fmt.Fprintf(w, "| **Subtotal** | %s |\n", money.Format(est.Subtotal))
	fmt.Fprintf(w, "| **Tax** | %s |\n", money.Format(est.Tax))
	fmt.Fprintf(w, "| **Total** | %s |\n", money.Format(est.Total))

	if rev == nil {
		return nil
	}
	fmt.Fprintf(w, "| **Review Result** | %s |\n", rev.Decision)

	if len(rev.Violations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "### ❌ Review Violations")
		fmt.Fprintln(w)
		for _, v := range rev.Violations {
			fmt.Fprintf(w, "- **%s**: %s\n", v.PolicyName, v.Message)
		}
	}

	if len(rev.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "### ⚠️ Warnings")
		fmt.Fprintln(w)
		for _, warn := range rev.Warnings {
			fmt.Fprintf(w, "- %s\n", warn.Message)
		}
	}

	return nil
}

func outputCatalog(w io.Writer, c *pricing.Catalog) error {
	fmt.Fprintf(w, "Tax rate: %.2f%%\n\n", c.TaxRate*100)

	fmt.Fprintln(w, "Tiers:")
	for _, name := range c.TierNames() {
		t := c.Tiers[name]
		fmt.Fprintf(w, "  - %-12s material %s/sqft, install %s/sqft\n",
			name, money.Format(t.MaterialPrice), money.Format(t.InstallRate))
	}

	fmt.Fprintln(w, "\nSpecies:")
	for _, name := range c.SpeciesNames() {
		fmt.Fprintf(w, "  - %-18s x%.2f\n", name, c.Species[name].Multiplier)
	}

	if len(c.Grades) > 0 {
		fmt.Fprintln(w, "\nGrades:")
		for _, g := range c.Grades {
			fmt.Fprintf(w, "  - %s\n", g)
		}
	}
	return nil
}

func decisionLabel(d review.Decision) string {
	switch d {
	case review.DecisionPass:
		return "✅ PASS"
	case review.DecisionWarn:
		return "⚠️  WARN"
	case review.DecisionDeny:
		return "❌ DENY"
	default:
		return string(d)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
