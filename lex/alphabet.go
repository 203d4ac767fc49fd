package lex

import (
	"sort"

	"github.com/npillmayer/tabgen/lex/charset"
)

// ExtractAlphabet partitions the character domain into classes such that every
// transition label of an automaton is a union of classes. The partition is the
// coarsest one with this property. Classes are sorted by their lowest rune.
//
// Refinement starts from the universal set and splits every class by every label:
// a class c becomes c ∩ label and c \ label, dropping empty parts.
func ExtractAlphabet(a *Automaton) []charset.Set {
	classes := []charset.Set{charset.Universal}
	seen := make(map[string]bool)
	for _, t := range a.Transitions() {
		label, ok := a.TransitionLabel(t)
		if !ok || label.IsEmpty() {
			continue
		}
		key := label.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		refined := make([]charset.Set, 0, len(classes)+1)
		for _, c := range classes {
			in := c.Intersect(label)
			if in.IsEmpty() {
				refined = append(refined, c)
				continue
			}
			refined = append(refined, in)
			if out := c.Subtract(label); !out.IsEmpty() {
				refined = append(refined, out)
			}
		}
		classes = refined
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Min() < classes[j].Min() })
	tracer().Debugf("alphabet has %d classes", len(classes))
	return classes
}
