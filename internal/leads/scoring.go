package leads

import (
	"fmt"
	"strings"

	"leadrouter/internal/enrich"
	"leadrouter/internal/model"
)

const (
	MaxScore = 100

	hotThreshold  = 70
	warmThreshold = 40

	GeneralPool = "General Pool"
)

// EnrichmentScore rates the enrichment signals: lead priority (high 40,
// medium 20), a high email trust level (20) and a verified phone (20).
// A nil or unenriched response scores zero.
func EnrichmentScore(resp *enrich.Response) int {
	if resp == nil || resp.Data == nil {
		return 0
	}
	d := resp.Data

	score := 0
	switch strings.ToLower(strings.TrimSpace(d.LeadPriority)) {
	case "high":
		score += 40
	case "medium":
		score += 20
	}
	if d.EmailInsights != nil && strings.EqualFold(d.EmailInsights.TrustLevel, "high") {
		score += 20
	}
	if d.PhoneInsights != nil && d.PhoneInsights.Verified {
		score += 20
	}
	return score
}

// CarScore rates the requested model: luxury 20 or electric 15, plus 10
// when it is in stock.
func CarScore(car model.CarModel) int {
	score := 0
	switch strings.ToLower(strings.TrimSpace(car.Category)) {
	case "luxury":
		score += 20
	case "electric":
		score += 15
	}
	if strings.EqualFold(strings.TrimSpace(car.Availability), "in stock") {
		score += 10
	}
	return score
}

// CompositeScore sums the component scores and caps the result at
// MaxScore.
func CompositeScore(enrichmentScore, carScore int) int {
	score := enrichmentScore + carScore
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Route maps a final score to its priority tier and assignee.
func Route(score int, branch model.Branch, workerCode string) (model.Priority, string) {
	switch {
	case score >= hotThreshold:
		return model.PriorityHot, branch.Manager
	case score >= warmThreshold:
		return model.PriorityWarm, fmt.Sprintf("Sales Rep %s", workerCode)
	default:
		return model.PriorityCold, GeneralPool
	}
}
