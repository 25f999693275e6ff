// Package keys turns free-text system names into comparable keys and
// resolves dependency references against the known set of keys.
package keys

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeKey lowercases name, replaces every run of non-alphanumeric
// characters with a single space and trims the result. Letters and digits
// from any script count as alphanumeric. Input is NFC-composed first so
// precomposed and decomposed accents give the same key; a combining mark
// left over stays attached to the word it follows.
func NormalizeKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingSpace := false
	for _, r := range strings.ToLower(norm.NFC.String(name)) {
		if unicode.Is(unicode.Mn, r) && !pendingSpace && b.Len() > 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Tokens returns the distinct tokens of a normalized key.
func Tokens(key string) map[string]struct{} {
	fields := strings.Fields(key)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Jaccard is |A∩B| / |A∪B| over the token sets of two keys.
func Jaccard(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 0
	}
	inter := intersection(ta, tb)
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

// Overlap is |A∩B| / min(|A|,|B|) over the token sets of two keys.
func Overlap(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	smaller := len(ta)
	if len(tb) < smaller {
		smaller = len(tb)
	}
	if smaller == 0 {
		return 0
	}
	return float64(intersection(ta, tb)) / float64(smaller)
}

func intersection(a, b map[string]struct{}) int {
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}

// Resolver maps free-text references onto known keys.
type Resolver struct {
	known     map[string]struct{}
	sorted    []string
	threshold float64
}

// BuildResolver indexes the known keys. References that do not match a key
// exactly resolve to the most similar key when the Jaccard similarity is at
// least threshold.
func BuildResolver(known []string, threshold float64) *Resolver {
	r := &Resolver{
		known:     make(map[string]struct{}, len(known)),
		threshold: threshold,
	}
	for _, k := range known {
		if k == "" {
			continue
		}
		if _, dup := r.known[k]; dup {
			continue
		}
		r.known[k] = struct{}{}
		r.sorted = append(r.sorted, k)
	}
	sort.Strings(r.sorted)
	return r
}

// Resolve returns the key ref refers to and the similarity of the match.
// ok is false when no key is similar enough.
func (r *Resolver) Resolve(ref string) (key string, score float64, ok bool) {
	k := NormalizeKey(ref)
	if k == "" {
		return "", 0, false
	}
	if _, exact := r.known[k]; exact {
		return k, 1, true
	}

	best, bestScore := "", 0.0
	// sorted iteration with strict > keeps the smallest key on ties
	for _, candidate := range r.sorted {
		s := Jaccard(k, candidate)
		if s > bestScore {
			best, bestScore = candidate, s
		}
	}
	if best == "" || bestScore < r.threshold {
		return "", bestScore, false
	}
	return best, bestScore, true
}

// Threshold is the minimum similarity accepted for fuzzy matches.
func (r *Resolver) Threshold() float64 {
	return r.threshold
}
