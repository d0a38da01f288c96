package memory

import "sort"

// Compression defaults and weights. The weights are a behavioral contract.
const (
	// DefaultKeepRecent is the number of most recent interactions always
	// retained by compression.
	DefaultKeepRecent = 50

	// DefaultCompressThreshold is the interaction count below which
	// compression is a no-op.
	DefaultCompressThreshold = 100

	// keptOlderFraction of the compression threshold bounds how many older
	// interactions survive on importance.
	keptOlderFraction = 0.3

	compressSuccessWeight   = 0.4
	compressUniquenessBase  = 0.3
	compressSimilarityPenal = 0.05
	compressRecencyBase     = 0.2
	compressRecencyDecay    = 0.01
	similarityCutoff        = 0.7
)

// CompressOptions tunes a compression pass. Zero fields use the defaults.
type CompressOptions struct {
	// KeepRecent is the count of most recent interactions retained
	// unconditionally. Default 50.
	KeepRecent int `json:"keep_recent,omitempty" yaml:"keep_recent,omitempty"`

	// Threshold is the interaction count at or below which compression
	// does nothing. Default 100.
	Threshold int `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

func (o CompressOptions) keepRecent() int {
	if o.KeepRecent <= 0 {
		return DefaultKeepRecent
	}
	return o.KeepRecent
}

func (o CompressOptions) threshold() int {
	if o.Threshold <= 0 {
		return DefaultCompressThreshold
	}
	return o.Threshold
}

// CompressResult reports what a compression pass did.
type CompressResult struct {
	// Before is the interaction count before compression.
	Before int `json:"before" yaml:"before"`

	// After is the interaction count after compression.
	After int `json:"after" yaml:"after"`

	// Dropped is the number of discarded interactions.
	Dropped int `json:"dropped" yaml:"dropped"`
}

// CompressInteractions shrinks an interaction sequence under growth
// pressure and returns the retained interactions in their original order.
//
// A sequence no longer than Threshold is returned unchanged. Otherwise the
// most recent KeepRecent interactions are retained unconditionally; the
// remaining older interactions are scored for importance (success 0.4, a
// uniqueness bonus shrinking with the number of similar interactions, a
// recency bonus decaying over age, and any feedback rating at a tenth of
// its value), and only the top 30% of Threshold survive. The importance
// scores are transient and never attached to the returned records.
func CompressInteractions(all []Interaction, opts CompressOptions) []Interaction {
	n := len(all)
	if n <= opts.threshold() {
		return all
	}

	keepRecent := opts.keepRecent()
	if keepRecent > n {
		keepRecent = n
	}
	recent := all[n-keepRecent:]
	older := all[:n-keepRecent]

	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, len(older))
	for i := range older {
		ranked[i] = scored{index: i, score: interactionImportance(&older[i], all)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	keepOlder := int(keptOlderFraction * float64(opts.threshold()))
	if keepOlder > len(ranked) {
		keepOlder = len(ranked)
	}
	keep := make(map[int]bool, keepOlder)
	for _, r := range ranked[:keepOlder] {
		keep[r.index] = true
	}

	compacted := make([]Interaction, 0, keepOlder+len(recent))
	for i := range older {
		if keep[i] {
			compacted = append(compacted, older[i])
		}
	}
	return append(compacted, recent...)
}

// Compress applies CompressInteractions to the store's retained history.
func (s *Store) Compress(opts CompressOptions) CompressResult {
	before := s.interactions.len()
	compacted := CompressInteractions(s.interactions.snapshot(), opts)
	if len(compacted) == before {
		return CompressResult{Before: before, After: before}
	}

	s.interactions.replace(compacted)
	s.bump()

	return CompressResult{
		Before:  before,
		After:   len(compacted),
		Dropped: before - len(compacted),
	}
}

// interactionImportance scores one older interaction for retention:
// success weight, a uniqueness bonus reduced by each similar interaction,
// a recency bonus, and the feedback rating scaled down.
func interactionImportance(in *Interaction, all []Interaction) float64 {
	var score float64

	if in.Success {
		score += compressSuccessWeight
	}

	keywords := extractKeywords(in.Prompt)
	similar := 0
	for i := range all {
		if all[i].ID == in.ID {
			continue
		}
		if relevanceScore(&all[i], keywords, "") > similarityCutoff {
			similar++
		}
	}
	uniqueness := compressUniquenessBase - float64(similar)*compressSimilarityPenal
	if uniqueness > 0 {
		score += uniqueness
	}

	recency := compressRecencyBase - in.AgeInDays()*compressRecencyDecay
	if recency > 0 {
		score += recency
	}

	if in.Feedback != nil {
		score += float64(in.Feedback.Rating) / 10
	}
	return score
}
