package keys

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNormalizeKeyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("normalization is idempotent", prop.ForAll(
		func(s string) bool {
			k := NormalizeKey(s)
			return NormalizeKey(k) == k
		},
		gen.AnyString(),
	))

	properties.Property("case and punctuation do not matter", prop.ForAll(
		func(words []string) bool {
			plain := strings.Join(words, " ")
			noisy := "  " + strings.ToUpper(strings.Join(words, "--!!")) + "??"
			return NormalizeKey(plain) == NormalizeKey(noisy)
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("jaccard is symmetric and bounded", prop.ForAll(
		func(a, b string) bool {
			ka, kb := NormalizeKey(a), NormalizeKey(b)
			s := Jaccard(ka, kb)
			return s == Jaccard(kb, ka) && s >= 0 && s <= 1
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
