package core

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agenthands/fuxi/internal/core/keys"
	"github.com/agenthands/fuxi/internal/core/model"
)

var names = []string{"SAP ECC", "sap-ecc", "General Ledger", "Salesforce CRM", "Salesforce Sales Cloud", "Workday", "Payroll Engine", "Data Lake"}

func genRecord() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, len(names)-1),
		gen.OneConstOf(model.SourceLucid, model.SourceInventory, model.SourceFuture),
		gen.OneConstOf("", "Finance", "Sales", "HR"),
		gen.SliceOfN(2, gen.IntRange(0, len(names)-1)),
		gen.SliceOfN(2, gen.IntRange(0, len(names)-1)),
	).Map(func(v []interface{}) model.RawRecord {
		name := names[v[0].(int)]
		rec := model.RawRecord{
			Key:    keys.NormalizeKey(name),
			Name:   name,
			Label:  name,
			Source: v[1].(model.Source),
			Domain: v[2].(string),
		}
		for _, i := range v[3].([]int) {
			rec.Upstream = append(rec.Upstream, names[i])
		}
		for _, i := range v[4].([]int) {
			rec.Downstream = append(rec.Downstream, names[i]+" Prod")
		}
		return rec
	})
}

func TestBuildGraphProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 150
	properties := gopter.NewProperties(parameters)

	properties.Property("every edge endpoint is a node", prop.ForAll(
		func(records []model.RawRecord) bool {
			g := BuildGraph(records, 0.5).Graph
			ids := map[string]bool{}
			for _, n := range g.Nodes {
				ids[n.ID] = true
			}
			for _, e := range g.Edges {
				if !ids[e.Source] || !ids[e.Target] || e.Source == e.Target {
					return false
				}
				if e.ID != model.EdgeID(e.Source, e.Target) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genRecord()),
	))

	properties.Property("confidences stay within bounds", prop.ForAll(
		func(records []model.RawRecord) bool {
			g := BuildGraph(records, 0.5).Graph
			for _, n := range g.Nodes {
				if n.Confidence < 0 || n.Confidence > 1 {
					return false
				}
			}
			for _, e := range g.Edges {
				if e.Confidence < 0 || e.Confidence > 1 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genRecord()),
	))

	properties.Property("building is deterministic", prop.ForAll(
		func(records []model.RawRecord) bool {
			return reflect.DeepEqual(BuildGraph(records, 0.5), BuildGraph(records, 0.5))
		},
		gen.SliceOf(genRecord()),
	))

	properties.Property("filtered views keep edges closed over their nodes", prop.ForAll(
		func(records []model.RawRecord, mode model.Mode) bool {
			full := BuildGraph(records, 0.5).Graph
			view := FilterByMode(full, mode)
			ids := map[string]bool{}
			for _, n := range view.Nodes {
				ids[n.ID] = true
			}
			for _, e := range view.Edges {
				if !ids[e.Source] || !ids[e.Target] {
					return false
				}
			}
			return len(view.Nodes) <= len(full.Nodes)
		},
		gen.SliceOf(genRecord()),
		gen.OneConstOf(model.ModeAll, model.ModeCurrent, model.ModeFuture),
	))

	properties.Property("without future data nothing changes state", prop.ForAll(
		func(records []model.RawRecord) bool {
			var current []model.RawRecord
			for _, r := range records {
				if r.Source != model.SourceFuture {
					current = append(current, r)
				}
			}
			for _, n := range BuildGraph(current, 0.5).Graph.Nodes {
				if n.State != model.StateUnchanged {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genRecord()),
	))

	properties.TestingRun(t)
}
