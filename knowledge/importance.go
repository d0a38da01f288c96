package knowledge

import "math"

// ImportanceFactors configures the importance model. All weights are
// caller-overridable; the defaults reproduce the historical scoring
// behavior exactly and are relied on by downstream consumers.
type ImportanceFactors struct {
	// HierarchyBonus is the per-segment bonus for hierarchy depth.
	HierarchyBonus float64 `json:"hierarchy_bonus" yaml:"hierarchy_bonus"`

	// ChildrenBonus is the per-child bonus.
	ChildrenBonus float64 `json:"children_bonus" yaml:"children_bonus"`

	// ReferencesBonus is the per-reference bonus.
	ReferencesBonus float64 `json:"references_bonus" yaml:"references_bonus"`

	// TagBonus is the per-tag bonus.
	TagBonus float64 `json:"tag_bonus" yaml:"tag_bonus"`

	// AgeDecay is the importance subtracted per day since the last update.
	AgeDecay float64 `json:"age_decay" yaml:"age_decay"`
}

// DefaultImportanceFactors returns the contractual default weights.
func DefaultImportanceFactors() ImportanceFactors {
	return ImportanceFactors{
		HierarchyBonus:  5,
		ChildrenBonus:   3,
		ReferencesBonus: 2,
		TagBonus:        1,
		AgeDecay:        0.1,
	}
}

// CalculateImportance computes the importance score of a context from
// structural and temporal signals.
//
// The score starts from the context's current importance, adds the
// configured bonuses for hierarchy depth, children, references, tags, and
// the fixed per-type bonus, then subtracts the age decay term. The result
// is clamped to [0, 100] and rounded to the nearest integer, so the output
// stays in range regardless of input magnitudes.
func CalculateImportance(c *Context, f ImportanceFactors) int {
	score := float64(c.Importance)

	score += float64(c.Depth()) * f.HierarchyBonus
	score += float64(len(c.Relationships.Children)) * f.ChildrenBonus
	score += float64(len(c.Relationships.References)) * f.ReferencesBonus
	score += float64(len(c.Metadata.Tags)) * f.TagBonus
	score += c.Type.Bonus()

	score -= c.AgeInDays() * f.AgeDecay

	return int(math.Round(clamp(score, 0, 100)))
}

// UpdateImportance recomputes the importance in place with the given
// factors and stamps Updated. Importance is never changed by any other
// operation.
func (c *Context) UpdateImportance(f ImportanceFactors) int {
	c.Importance = CalculateImportance(c, f)
	c.touch()
	return c.Importance
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
