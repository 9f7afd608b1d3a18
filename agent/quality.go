package agent

import "strings"

// Response-quality heuristic. Deliberately crude; the exact shape is kept
// for comparability with historical metric data.

// refusalKeywords force the quality score to 0.2 when any appears in the
// response (case-insensitive).
var refusalKeywords = []string{
	"i cannot",
	"i can't",
	"i am unable",
	"i'm unable",
	"i won't",
	"as an ai",
}

// structuralMarkers indicate a formatted response.
var structuralMarkers = []string{
	"\n",
	"- ",
	"* ",
	"1.",
	":",
}

// QualityReport is the scored assessment of one response.
type QualityReport struct {
	Score           float64
	Refused         bool
	FormatCompliant bool
}

// AssessQuality scores a response: 0.5 base, +0.2 for a length in [50, 500],
// +0.1 for any structural marker, capped at 1.0. A refusal keyword overrides
// everything and scores 0.2.
func AssessQuality(response string) QualityReport {
	report := QualityReport{
		FormatCompliant: hasStructuralMarker(response),
	}

	lower := strings.ToLower(response)
	for _, kw := range refusalKeywords {
		if strings.Contains(lower, kw) {
			report.Refused = true
			report.Score = 0.2
			return report
		}
	}

	score := 0.5
	if n := len(response); n >= 50 && n <= 500 {
		score += 0.2
	}
	if report.FormatCompliant {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	report.Score = score
	return report
}

func hasStructuralMarker(response string) bool {
	for _, m := range structuralMarkers {
		if strings.Contains(response, m) {
			return true
		}
	}
	return false
}

// CostEstimator converts observed latency into a cost figure. The default is
// a placeholder, kept pluggable so a token-based estimator can replace it.
type CostEstimator interface {
	EstimateCost(latencySeconds float64) float64
}

// LatencyCost charges a fixed rate per second of latency.
type LatencyCost struct {
	// RatePerSecond defaults to 0.001 when zero.
	RatePerSecond float64
}

func (c LatencyCost) EstimateCost(latencySeconds float64) float64 {
	rate := c.RatePerSecond
	if rate == 0 {
		rate = 0.001
	}
	return latencySeconds * rate
}
