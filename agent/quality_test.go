package agent

import (
	"math"
	"strings"
	"testing"
)

// closeTo compares accumulated float scores without tripping over
// representation error (0.5 + 0.2 + 0.1 is not exactly 0.8 in float64).
func closeTo(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestAssessQuality_Base(t *testing.T) {
	report := AssessQuality("ok")
	if !closeTo(report.Score, 0.5) {
		t.Errorf("short plain response should score 0.5, got %v", report.Score)
	}
	if report.Refused || report.FormatCompliant {
		t.Errorf("unexpected flags: %+v", report)
	}
}

func TestAssessQuality_LengthBonus(t *testing.T) {
	response := strings.Repeat("a", 100)
	report := AssessQuality(response)
	if !closeTo(report.Score, 0.7) {
		t.Errorf("in-range length should score 0.7, got %v", report.Score)
	}

	long := strings.Repeat("a", 501)
	if got := AssessQuality(long).Score; !closeTo(got, 0.5) {
		t.Errorf("over-length response should lose the bonus, got %v", got)
	}

	if got := AssessQuality(strings.Repeat("a", 49)).Score; !closeTo(got, 0.5) {
		t.Errorf("under-length response should lose the bonus, got %v", got)
	}
}

func TestAssessQuality_StructureBonus(t *testing.T) {
	response := strings.Repeat("a", 100) + "\n" + strings.Repeat("b", 100)
	report := AssessQuality(response)
	if !closeTo(report.Score, 0.8) {
		t.Errorf("structured in-range response should score 0.8, got %v", report.Score)
	}
	if !report.FormatCompliant {
		t.Error("newline should mark the response format compliant")
	}

	listed := strings.Repeat("a", 600) + "\n- item"
	got := AssessQuality(listed)
	if !closeTo(got.Score, 0.6) {
		t.Errorf("structured over-length response should score 0.6, got %v", got.Score)
	}
}

func TestAssessQuality_RefusalOverridesBonuses(t *testing.T) {
	response := "I cannot help with that request, " + strings.Repeat("a", 60) + "\n- sorry"
	report := AssessQuality(response)
	if !report.Refused {
		t.Error("expected refusal detection")
	}
	if !closeTo(report.Score, 0.2) {
		t.Errorf("refusal must force score 0.2, got %v", report.Score)
	}
}

func TestAssessQuality_RefusalCaseInsensitive(t *testing.T) {
	if !AssessQuality("I CANNOT do that").Refused {
		t.Error("refusal detection must be case-insensitive")
	}
}

func TestLatencyCost(t *testing.T) {
	var est CostEstimator = LatencyCost{}
	if got := est.EstimateCost(2.0); !closeTo(got, 0.002) {
		t.Errorf("default rate should yield 0.002, got %v", got)
	}
	if got := (LatencyCost{RatePerSecond: 0.01}).EstimateCost(2.0); !closeTo(got, 0.02) {
		t.Errorf("custom rate should yield 0.02, got %v", got)
	}
}
