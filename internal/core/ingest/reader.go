package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/fuxi/internal/config"
	"github.com/agenthands/fuxi/internal/core/keys"
	"github.com/agenthands/fuxi/internal/core/model"
	fuxierr "github.com/agenthands/fuxi/internal/errors"
	"github.com/agenthands/fuxi/internal/logging"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// SourceSpec describes one input file.
type SourceSpec struct {
	Name   string
	Origin model.Source
	Path   string // relative to the data root
	Format Format
}

// DefaultSources returns the five inputs in pipeline order.
func DefaultSources(cfg config.DataConfig) []SourceSpec {
	return []SourceSpec{
		{Name: "lucid", Origin: model.SourceLucid, Path: cfg.LucidClean, Format: FormatJSON},
		{Name: "inventory", Origin: model.SourceInventory, Path: cfg.Inventory, Format: FormatJSON},
		{Name: "future_state", Origin: model.SourceFuture, Path: cfg.FutureState, Format: FormatJSON},
		{Name: "current_state_csv", Origin: model.SourceInventory, Path: cfg.CurrentStateCSV, Format: FormatCSV},
		{Name: "future_state_csv", Origin: model.SourceFuture, Path: cfg.FutureStateCSV, Format: FormatCSV},
	}
}

// Dataset is the parsed content of one source. A source that could not be
// read or parsed has Present == false, no rows and Err set.
type Dataset struct {
	Spec    SourceSpec
	Headers []string
	Rows    []Row
	Present bool
	Err     error
}

// LoadAll reads every source concurrently. Individual failures are recorded
// on the dataset and logged, never returned.
func LoadAll(ctx context.Context, root string, specs []SourceSpec) ([]Dataset, error) {
	out := make([]Dataset, len(specs))
	g, ctx := errgroup.WithContext(ctx)

	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = Load(ctx, root, spec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	return out, nil
}

// Load reads a single source.
func Load(ctx context.Context, root string, spec SourceSpec) Dataset {
	log := logging.FromContext(ctx)
	ds := Dataset{Spec: spec}
	path := spec.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		ds.Err = fuxierr.NewSourceError(spec.Name, path, err)
		log.Debug().Str("source", spec.Name).Str("path", path).Msg("Source absent")
		return ds
	}

	var rows []Row
	var headers []string
	switch spec.Format {
	case FormatCSV:
		rows, headers, err = ParseCSV(bytes.NewReader(data))
	default:
		rows, headers, err = ParseJSON(data)
	}
	if err != nil {
		ds.Err = fuxierr.NewSourceError(spec.Name, path, err)
		log.Warn().Err(err).Str("source", spec.Name).Str("path", path).Msg("Failed to parse source, treating as empty")
		return ds
	}

	ds.Rows = rows
	ds.Headers = headers
	ds.Present = true
	return ds
}

// ParseCSV reads a header row followed by data rows. Quoted fields are
// honoured and rows may have fewer or more fields than the header.
func ParseCSV(r io.Reader) ([]Row, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = keys.NormalizeKey(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		empty := true
		for i, v := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			v = strings.TrimSpace(v)
			if v != "" {
				empty = false
			}
			if _, seen := row[header[i]]; !seen || row[header[i]] == "" {
				row[header[i]] = v
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, dedupeHeaders(header), nil
}

// ParseJSON accepts an array of objects, or an object holding that array
// under records, systems, nodes or items.
func ParseJSON(data []byte) ([]Row, []string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil, nil
	}

	var items []map[string]any
	if trimmed[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
		}
		for _, key := range []string{"records", "systems", "nodes", "items"} {
			if raw, ok := wrapper[key]; ok {
				if err := json.Unmarshal(raw, &items); err != nil {
					return nil, nil, fmt.Errorf("failed to unmarshal %q: %w", key, err)
				}
				break
			}
		}
	} else if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	headerSet := make(map[string]struct{})
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		row := make(Row, len(item))
		// Raw keys are visited in sorted order so colliding headers resolve
		// the same way on every run.
		rawKeys := make([]string, 0, len(item))
		for k := range item {
			rawKeys = append(rawKeys, k)
		}
		sort.Strings(rawKeys)
		for _, k := range rawKeys {
			h := keys.NormalizeKey(k)
			if h == "" {
				continue
			}
			headerSet[h] = struct{}{}
			if prev, seen := row[h]; !seen || prev == "" {
				row[h] = stringify(item[k])
			}
		}
		rows = append(rows, row)
	}

	headers := make([]string, 0, len(headerSet))
	for h := range headerSet {
		headers = append(headers, h)
	}
	sort.Strings(headers)
	return rows, headers, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		// {"name": "..."} references are common in exported dependency lists
		for _, k := range []string{"name", "label", "system", "id"} {
			if s, ok := val[k].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func dedupeHeaders(header []string) []string {
	seen := make(map[string]struct{}, len(header))
	out := make([]string, 0, len(header))
	for _, h := range header {
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
