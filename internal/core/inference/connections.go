// Package inference suggests integrations that none of the datasets declare.
package inference

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/fuxi/internal/core/classify"
	"github.com/agenthands/fuxi/internal/core/keys"
	"github.com/agenthands/fuxi/internal/core/model"
)

const DefaultThreshold = 0.6

// InferConnections scores every unordered pair of systems that is not yet
// connected and returns the pairs scoring at least threshold.
//
// score = 0.5·overlap + 0.5·[same first token] + 0.1·[same non-empty domain],
// clamped to 1 and rounded to two decimals.
func InferConnections(nodes []model.HarmonizedSystem, edges []model.Edge, threshold float64) []model.ConnectionSuggestion {
	connected := make(map[[2]string]struct{}, len(edges))
	for _, e := range edges {
		connected[pair(e.Source, e.Target)] = struct{}{}
	}

	out := []model.ConnectionSuggestion{}
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			if a.ID == b.ID {
				continue
			}
			if _, ok := connected[pair(a.ID, b.ID)]; ok {
				continue
			}
			score, rationale := Score(a, b)
			if score < threshold {
				continue
			}
			src, dst := a.ID, b.ID
			if dst < src {
				src, dst = dst, src
			}
			out = append(out, model.ConnectionSuggestion{
				Source:     src,
				Target:     dst,
				Confidence: score,
				Rationale:  rationale,
			})
		}
	}

	SortSuggestions(out)
	return out
}

// Score rates how likely two systems are to integrate.
func Score(a, b model.HarmonizedSystem) (float64, string) {
	ka, kb := keys.NormalizeKey(nameOf(a)), keys.NormalizeKey(nameOf(b))

	var reasons []string
	score := 0.5 * keys.Overlap(ka, kb)
	if score > 0 {
		reasons = append(reasons, "shared name tokens")
	}
	if fa, fb := firstToken(ka), firstToken(kb); fa != "" && fa == fb {
		score += 0.5
		reasons = append(reasons, fmt.Sprintf("same product family %q", fa))
	}
	if da := keys.NormalizeKey(a.Domain); da != "" && da == keys.NormalizeKey(b.Domain) {
		score += 0.1
		reasons = append(reasons, fmt.Sprintf("same domain %q", a.Domain))
	}

	return classify.Round2(classify.Clamp(score)), strings.Join(reasons, "; ")
}

// SortSuggestions orders by confidence descending, then source and target.
func SortSuggestions(s []model.ConnectionSuggestion) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Confidence != s[j].Confidence {
			return s[i].Confidence > s[j].Confidence
		}
		if s[i].Source != s[j].Source {
			return s[i].Source < s[j].Source
		}
		return s[i].Target < s[j].Target
	})
}

func nameOf(n model.HarmonizedSystem) string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

func firstToken(key string) string {
	if i := strings.IndexByte(key, ' '); i >= 0 {
		return key[:i]
	}
	return key
}

func pair(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}
