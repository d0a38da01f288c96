package memory

import (
	"math"
	"strings"
	"time"
)

// DefaultTrendWindow is the number of interactions compared per window in
// PerformanceTrends.
const DefaultTrendWindow = 20

// Expertise classification thresholds, evaluated in strict order.
const (
	expertExperience   = 50
	expertSuccessRate  = 0.9
	advancedExperience = 20
	advancedSuccess    = 0.8
	intermediateExp    = 10
	intermediateRate   = 0.7
)

// DomainExpertise classifies the agent's standing in a domain from the
// interactions matched to it. An interaction matches when its tags include
// the domain or its prompt contains the domain text, case-insensitively.
//
// With no matching interactions the result is novice with zero confidence
// and zero experience. Otherwise the level thresholds are evaluated in
// strict order: expert at 50 interactions and a 0.9 success rate, advanced
// at 20 and 0.8, intermediate at 10 and 0.7, novice otherwise.
func (s *Store) DomainExpertise(domain string) Expertise {
	lowered := strings.ToLower(domain)

	var matched []*Interaction
	n := s.interactions.len()
	for i := 0; i < n; i++ {
		in := s.interactions.at(i)
		if in.HasTag(domain) || strings.Contains(strings.ToLower(in.Prompt), lowered) {
			matched = append(matched, in)
		}
	}

	if len(matched) == 0 {
		return Expertise{Level: LevelNovice}
	}

	var successes int
	var total time.Duration
	for _, in := range matched {
		if in.Success {
			successes++
		}
		total += in.Duration
	}

	experience := len(matched)
	successRate := float64(successes) / float64(experience)
	avgDuration := total / time.Duration(experience)

	exp := Expertise{
		Experience:      experience,
		SuccessRate:     successRate,
		AverageDuration: avgDuration,
	}

	switch {
	case experience >= expertExperience && successRate >= expertSuccessRate:
		exp.Level = LevelExpert
		exp.Confidence = math.Min(0.95, successRate+0.05)
	case experience >= advancedExperience && successRate >= advancedSuccess:
		exp.Level = LevelAdvanced
		exp.Confidence = successRate + 0.02
	case experience >= intermediateExp && successRate >= intermediateRate:
		exp.Level = LevelIntermediate
		exp.Confidence = successRate
	default:
		exp.Level = LevelNovice
		exp.Confidence = successRate
	}
	return exp
}

// PerformanceTrends compares the most recent windowSize interactions
// against the preceding windowSize and classifies the direction of change.
//
// With fewer than windowSize interactions the trend is insufficient_data.
// When no interactions precede the recent window, the older window falls
// back to the recent one, yielding zero diffs and a stable trend.
//
// SuccessDiff is the recent success rate minus the older one. TimeDiff is
// the relative speedup, positive when recent interactions complete faster.
// The trend is improving when either diff exceeds 0.1, declining when
// either falls below -0.1, stable otherwise. Confidence is
// min(0.9, 0.5 + |successDiff| + |timeDiff|).
//
// A windowSize of zero or less uses DefaultTrendWindow.
func (s *Store) PerformanceTrends(windowSize int) TrendReport {
	if windowSize <= 0 {
		windowSize = DefaultTrendWindow
	}

	n := s.interactions.len()
	if n < windowSize {
		return TrendReport{Trend: TrendInsufficientData}
	}

	all := s.interactions.snapshot()
	recent := all[n-windowSize:]

	olderStart := n - 2*windowSize
	if olderStart < 0 {
		olderStart = 0
	}
	older := all[olderStart : n-windowSize]
	if len(older) == 0 {
		older = recent
	}

	recentRate, recentAvg := windowMetrics(recent)
	olderRate, olderAvg := windowMetrics(older)

	successDiff := recentRate - olderRate
	var timeDiff float64
	if olderAvg > 0 {
		timeDiff = float64(olderAvg-recentAvg) / float64(olderAvg)
	}

	report := TrendReport{
		SuccessDiff: successDiff,
		TimeDiff:    timeDiff,
		Confidence:  math.Min(0.9, 0.5+math.Abs(successDiff)+math.Abs(timeDiff)),
	}

	switch {
	case successDiff > 0.1 || timeDiff > 0.1:
		report.Trend = TrendImproving
	case successDiff < -0.1 || timeDiff < -0.1:
		report.Trend = TrendDeclining
	default:
		report.Trend = TrendStable
	}
	return report
}

func windowMetrics(window []Interaction) (successRate float64, avgDuration time.Duration) {
	if len(window) == 0 {
		return 0, 0
	}
	var successes int
	var total time.Duration
	for _, in := range window {
		if in.Success {
			successes++
		}
		total += in.Duration
	}
	return float64(successes) / float64(len(window)), total / time.Duration(len(window))
}
