// Package nli provides natural language inference classifiers for the
// contradiction engine: a deterministic rule-based scorer that needs no
// model, and an HTTP client for a remote NLI service.
package nli

import (
	"context"
	"math"

	"theo-discovery/internal/domain"
	"theo-discovery/internal/text"
)

var _ domain.Classifier = (*RuleClassifier)(nil)

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "nothing": {}, "neither": {}, "nor": {},
	"cannot": {}, "can't": {}, "isn't": {}, "wasn't": {}, "aren't": {}, "weren't": {},
	"doesn't": {}, "don't": {}, "didn't": {}, "won't": {}, "without": {},
	"deny": {}, "denies": {}, "denied": {}, "reject": {}, "rejects": {}, "rejected": {},
}

// antonymGroups pairs word sets whose members oppose each other.
var antonymGroups = [][2][]string{
	{{"true", "truth"}, {"false", "falsehood"}},
	{{"literal", "literally"}, {"figurative", "metaphorical", "symbolic", "allegorical"}},
	{{"human", "mortal"}, {"divine", "immortal"}},
	{{"created"}, {"uncreated", "eternal"}},
	{{"early", "earlier"}, {"late", "later"}},
	{{"affirm", "affirms", "affirmed", "accept", "accepts", "accepted"}, {"deny", "denies", "denied", "reject", "rejects", "rejected"}},
	{{"physical", "bodily"}, {"spiritual"}},
	{{"grace"}, {"works"}},
	{{"single", "one"}, {"multiple", "many"}},
	{{"authentic", "genuine"}, {"forged", "spurious", "pseudepigraphal"}},
}

// RuleClassifier scores sentence pairs with token overlap, negation mismatch
// and antonym heuristics. Output depends only on the two texts.
type RuleClassifier struct{}

// NewRuleClassifier returns the rule-based classifier.
func NewRuleClassifier() *RuleClassifier { return &RuleClassifier{} }

// Name identifies the classifier.
func (c *RuleClassifier) Name() string { return "rule" }

// Predict never fails and ignores ctx.
func (c *RuleClassifier) Predict(_ context.Context, premise, hypothesis string) (domain.Prediction, error) {
	return Score(premise, hypothesis), nil
}

// Score computes the rule-based prediction for a pair of texts.
//
// With a conflict (negation mismatch or antonym cross presence):
//
//	contradiction = min(0.9, 0.3 + 0.45*overlap + 0.1*negation + 0.1*antonym)
//	entailment    = 0.05
//
// Without one:
//
//	contradiction = 0.05
//	entailment    = 0.1 + 0.7*overlap
//
// and neutral takes the remainder. overlap is the Jaccard index of the
// content tokens with negation words removed.
func Score(premise, hypothesis string) domain.Prediction {
	a, negA := contentTokens(premise)
	b, negB := contentTokens(hypothesis)

	overlap := jaccard(a, b)
	negation := negA != negB
	antonym := hasAntonymConflict(a, b)

	var p domain.Prediction
	if negation || antonym {
		c := 0.3 + 0.45*overlap
		if negation {
			c += 0.1
		}
		if antonym {
			c += 0.1
		}
		p.Contradiction = math.Min(0.9, c)
		p.Entailment = 0.05
	} else {
		p.Contradiction = 0.05
		p.Entailment = 0.1 + 0.7*overlap
	}
	p.Neutral = 1 - p.Contradiction - p.Entailment
	return p
}

// contentTokens returns the token set without negations and whether any
// negation appeared. Negations that belong to an antonym group stay in the set.
func contentTokens(s string) (map[string]struct{}, bool) {
	set := make(map[string]struct{})
	negated := false
	for _, tok := range text.Tokens(s) {
		if _, ok := negations[tok]; ok {
			negated = true
			if !inAntonymGroup(tok) {
				continue
			}
		}
		set[tok] = struct{}{}
	}
	return set, negated
}

func inAntonymGroup(tok string) bool {
	for _, g := range antonymGroups {
		for _, side := range g {
			for _, w := range side {
				if w == tok {
					return true
				}
			}
		}
	}
	return false
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func hasAntonymConflict(a, b map[string]struct{}) bool {
	for _, g := range antonymGroups {
		aLeft, aRight := containsAny(a, g[0]), containsAny(a, g[1])
		bLeft, bRight := containsAny(b, g[0]), containsAny(b, g[1])
		if (aLeft && !aRight && bRight && !bLeft) || (aRight && !aLeft && bLeft && !bRight) {
			return true
		}
	}
	return false
}

func containsAny(set map[string]struct{}, words []string) bool {
	for _, w := range words {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}
