// Package dedupe merges raw records that name the same system into one
// entry per canonical key.
package dedupe

import (
	"sort"

	"github.com/agenthands/fuxi/internal/core/keys"
	"github.com/agenthands/fuxi/internal/core/model"
)

// Reference is a dependency named by a record, kept with the source that
// declared it so edges can be classified like systems.
type Reference struct {
	Ref    string
	Source model.Source
}

// MergedSystem accumulates every record that shares a key.
type MergedSystem struct {
	Key         string
	Label       string
	Domain      string
	Disposition string
	Sources     []model.Source
	Changed     bool
	Upstream    []Reference
	Downstream  []Reference
}

// Has reports whether source contributed to the system.
func (m *MergedSystem) Has(source model.Source) bool {
	for _, s := range m.Sources {
		if s == source {
			return true
		}
	}
	return false
}

// SortedSources returns the contributing sources in alphabetical order.
func (m *MergedSystem) SortedSources() []model.Source {
	out := make([]model.Source, len(m.Sources))
	copy(out, m.Sources)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Result holds the merged systems in first-seen order.
type Result struct {
	Systems   []*MergedSystem
	Conflicts []model.Conflict
	byKey     map[string]*MergedSystem
}

// Get returns the merged system for key.
func (r *Result) Get(key string) (*MergedSystem, bool) {
	m, ok := r.byKey[key]
	return m, ok
}

// Keys returns every merged key in first-seen order.
func (r *Result) Keys() []string {
	out := make([]string, len(r.Systems))
	for i, m := range r.Systems {
		out[i] = m.Key
	}
	return out
}

// HasSource reports whether any merged system came from source.
func (r *Result) HasSource(source model.Source) bool {
	for _, m := range r.Systems {
		if m.Has(source) {
			return true
		}
	}
	return false
}

// Merge groups records by key. The first non-empty label, domain and
// disposition win; a later non-empty domain that differs marks the system
// changed and is reported as a conflict.
func Merge(records []model.RawRecord) *Result {
	res := &Result{byKey: make(map[string]*MergedSystem)}
	reported := make(map[string]struct{})

	for _, rec := range records {
		if rec.Key == "" {
			continue
		}
		m, ok := res.byKey[rec.Key]
		if !ok {
			m = &MergedSystem{Key: rec.Key}
			res.byKey[rec.Key] = m
			res.Systems = append(res.Systems, m)
		}

		if !m.Has(rec.Source) {
			m.Sources = append(m.Sources, rec.Source)
		}
		if m.Label == "" {
			m.Label = rec.Label
		}
		if m.Disposition == "" {
			m.Disposition = rec.Disposition
		}

		switch {
		case rec.Domain == "":
		case m.Domain == "":
			m.Domain = rec.Domain
		case keys.NormalizeKey(rec.Domain) != keys.NormalizeKey(m.Domain):
			m.Changed = true
			id := rec.Key + "\x00" + keys.NormalizeKey(rec.Domain)
			if _, dup := reported[id]; !dup {
				reported[id] = struct{}{}
				res.Conflicts = append(res.Conflicts, model.Conflict{
					Key:         rec.Key,
					Canonical:   m.Domain,
					Conflicting: rec.Domain,
					Source:      rec.Source,
				})
			}
		}

		for _, u := range rec.Upstream {
			m.Upstream = appendRef(m.Upstream, Reference{Ref: u, Source: rec.Source})
		}
		for _, d := range rec.Downstream {
			m.Downstream = appendRef(m.Downstream, Reference{Ref: d, Source: rec.Source})
		}
	}

	return res
}

func appendRef(refs []Reference, r Reference) []Reference {
	for _, existing := range refs {
		if existing == r {
			return refs
		}
	}
	return append(refs, r)
}
