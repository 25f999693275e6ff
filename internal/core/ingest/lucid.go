package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agenthands/fuxi/internal/core/keys"
)

// LucidRecord is one system shape from a Lucid diagram export, in the shape
// written to lucid_clean.json.
type LucidRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Domain      string   `json:"domain"`
	Shape       string   `json:"shape,omitempty"`
	Page        string   `json:"page,omitempty"`
	Upstream    []string `json:"upstream"`
	Downstream  []string `json:"downstream"`
	Disposition string   `json:"disposition"`
}

type lucidShape struct {
	id          string
	kind        string
	page        string
	text        string
	containedBy []string
	lineSource  string
	lineDest    string
}

// ParseLucidCSV converts a raw Lucid CSV export into system records. Shape
// rows become systems, "Line" rows connect them, and a shape contained by
// another labelled shape takes the container's label as its domain.
func ParseLucidCSV(r io.Reader) ([]LucidRecord, error) {
	rows, _, err := ParseCSV(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse lucid export: %w", err)
	}

	var shapes []lucidShape
	byID := make(map[string]*lucidShape)
	for _, row := range rows {
		s := lucidShape{
			id:          row["id"],
			kind:        row["name"],
			page:        row["page id"],
			text:        collapse(row["text area 1"]),
			containedBy: SplitRefs(row["contained by"]),
			lineSource:  row["line source"],
			lineDest:    row["line destination"],
		}
		if s.id == "" {
			continue
		}
		shapes = append(shapes, s)
	}
	for i := range shapes {
		byID[shapes[i].id] = &shapes[i]
	}

	var records []LucidRecord
	index := make(map[string]int)
	containers := make(map[string]bool)
	for _, s := range shapes {
		for _, c := range s.containedBy {
			containers[c] = true
		}
	}

	for _, s := range shapes {
		if isLine(s) || isStructural(s) || containers[s.id] {
			continue
		}
		label := s.text
		if label == "" {
			label = s.kind
		}
		if IsJunk(label) {
			continue
		}
		rec := LucidRecord{
			ID:     s.id,
			Name:   label,
			Label:  label,
			Shape:  s.kind,
			Page:   s.page,
			Domain: containerLabel(s, byID),

			Upstream:   []string{},
			Downstream: []string{},
		}
		index[s.id] = len(records)
		records = append(records, rec)
	}

	for _, s := range shapes {
		if !isLine(s) {
			continue
		}
		src, okSrc := index[s.lineSource]
		dst, okDst := index[s.lineDest]
		if !okSrc || !okDst || src == dst {
			continue
		}
		records[src].Downstream = appendUnique(records[src].Downstream, records[dst].Label)
		records[dst].Upstream = appendUnique(records[dst].Upstream, records[src].Label)
	}

	return records, nil
}

// WriteLucidClean writes records as the lucid_clean.json array.
func WriteLucidClean(path string, records []LucidRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if records == nil {
		records = []LucidRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal lucid records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LucidRows adapts parsed records to rows so a freshly ingested diagram can
// be harmonized without a round trip through disk.
func LucidRows(records []LucidRecord) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			"id":          r.ID,
			"name":        r.Name,
			"label":       r.Label,
			"domain":      r.Domain,
			"shape":       r.Shape,
			"upstream":    strings.Join(r.Upstream, ", "),
			"downstream":  strings.Join(r.Downstream, ", "),
			"disposition": r.Disposition,
		})
	}
	return rows
}

func isLine(s lucidShape) bool {
	return keys.NormalizeKey(s.kind) == "line" || (s.lineSource != "" && s.lineDest != "")
}

// isStructural matches the document and page rows every export starts with.
func isStructural(s lucidShape) bool {
	k := keys.NormalizeKey(s.kind)
	return k == "document" || k == "page"
}

func containerLabel(s lucidShape, byID map[string]*lucidShape) string {
	for _, id := range s.containedBy {
		if c, ok := byID[id]; ok && c.text != "" && !IsJunk(c.text) {
			return c.text
		}
	}
	return ""
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
