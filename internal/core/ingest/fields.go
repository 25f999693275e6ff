package ingest

import "github.com/agenthands/fuxi/internal/core/keys"

// Concern is one attribute the normalizer extracts from a row.
type Concern string

const (
	ConcernLabel       Concern = "label"
	ConcernName        Concern = "name"
	ConcernDomain      Concern = "domain"
	ConcernUpstream    Concern = "upstream"
	ConcernDownstream  Concern = "downstream"
	ConcernDisposition Concern = "disposition"
)

// Concerns lists every concern in the order coverage is reported.
var Concerns = []Concern{
	ConcernLabel, ConcernName, ConcernDomain,
	ConcernUpstream, ConcernDownstream, ConcernDisposition,
}

// Candidates holds, per concern, the header names tried in order. The first
// non-empty value wins. Headers are compared after keys.NormalizeKey, so
// "System_Name" matches "system name".
var Candidates = map[Concern][]string{
	ConcernLabel:       {"label", "display name", "text area 1", "name", "system name", "system", "title"},
	ConcernName:        {"system name", "system", "application", "name", "label", "text area 1", "title"},
	ConcernDomain:      {"domain", "business domain", "capability", "category", "layer"},
	ConcernUpstream:    {"upstream", "depends on", "dependencies", "inputs", "sources", "source systems"},
	ConcernDownstream:  {"downstream", "consumers", "outputs", "targets", "integrations", "target systems"},
	ConcernDisposition: {"disposition", "status", "action", "change type", "lifecycle"},
}

// JunkLabels are diagram placeholders that never name a real system.
var JunkLabels = map[string]struct{}{
	"unknown":   {},
	"rectangle": {},
	"page":      {},
	"document":  {},
	"new":       {},
	"existing":  {},
}

// IsJunk reports whether name normalizes to empty or to a junk label.
func IsJunk(name string) bool {
	k := keys.NormalizeKey(name)
	if k == "" {
		return true
	}
	_, junk := JunkLabels[k]
	return junk
}

// Row is one input row keyed by normalized header.
type Row map[string]string

// First returns the first non-empty value among the concern's candidates.
func (r Row) First(c Concern) string {
	for _, h := range Candidates[c] {
		if v, ok := r[h]; ok && v != "" {
			return v
		}
	}
	return ""
}
