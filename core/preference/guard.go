package preference

import "github.com/cscx-ai/meetopt/core/model"

// replacePolicy is the promotion decision table: existing provenance crossed
// with the confidence comparison decides whether an auto_learned write may
// replace the stored record.
var replacePolicy = map[model.Provenance]func(currentConf, newConf float64) bool{
	// Human-entered records are never replaced by inference.
	model.SourceManual: func(float64, float64) bool { return false },
	model.SourceStated: func(float64, float64) bool { return false },
	// A learned record yields only to an at-least-as-confident inference.
	model.SourceAutoLearned: func(cur, next float64) bool { return next >= cur },
}

// CanReplace reports whether an auto_learned record at newConf may replace a
// stored record with the given provenance and confidence. Unknown provenance
// is treated as manual.
func CanReplace(current model.Provenance, currentConf, newConf float64) bool {
	policy, ok := replacePolicy[current]
	if !ok {
		return false
	}
	return policy(currentConf, newConf)
}
