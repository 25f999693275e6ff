// Package ingest reads the architecture diagram export, the inventory
// spreadsheets and the future-state datasets and normalizes their rows into
// model.RawRecord values.
package ingest

import (
	"strings"

	"github.com/agenthands/fuxi/internal/core/keys"
	"github.com/agenthands/fuxi/internal/core/model"
)

// Normalize converts the rows of every dataset into raw records, in dataset
// order. Rows without a usable system name are discarded.
func Normalize(datasets []Dataset) []model.RawRecord {
	var out []model.RawRecord
	for _, ds := range datasets {
		for _, row := range ds.Rows {
			if rec, ok := NormalizeRow(row, ds.Spec.Origin); ok {
				out = append(out, rec)
			}
		}
	}
	return out
}

// NormalizeRow resolves a single row. ok is false for junk rows.
func NormalizeRow(row Row, origin model.Source) (model.RawRecord, bool) {
	name := row.First(ConcernName)
	label := row.First(ConcernLabel)
	if name == "" {
		name = label
	}
	if IsJunk(name) {
		return model.RawRecord{}, false
	}
	if label == "" || IsJunk(label) {
		label = name
	}

	return model.RawRecord{
		Key:         keys.NormalizeKey(name),
		Name:        collapse(name),
		Label:       collapse(label),
		Domain:      collapse(row.First(ConcernDomain)),
		Source:      origin,
		Upstream:    SplitRefs(row.First(ConcernUpstream)),
		Downstream:  SplitRefs(row.First(ConcernDownstream)),
		Disposition: collapse(row.First(ConcernDisposition)),
	}, true
}

// SplitRefs splits a dependency cell on commas and semicolons.
func SplitRefs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = collapse(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
