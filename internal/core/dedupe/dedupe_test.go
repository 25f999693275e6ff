package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/fuxi/internal/core/model"
)

func TestMerge_SameKeyAcrossSources(t *testing.T) {
	// Scenario: inventory "SAP ECC" and diagram "sap-ecc" are one system
	records := []model.RawRecord{
		{Key: "sap ecc", Label: "SAP ECC", Source: model.SourceInventory, Domain: "Finance"},
		{Key: "sap ecc", Label: "sap-ecc", Source: model.SourceLucid},
		{Key: "crm", Label: "CRM", Source: model.SourceLucid, Downstream: []string{"SAP ECC"}},
	}

	res := Merge(records)

	require.Len(t, res.Systems, 2)
	sap, ok := res.Get("sap ecc")
	require.True(t, ok)
	assert.Equal(t, "SAP ECC", sap.Label)
	assert.Equal(t, "Finance", sap.Domain)
	assert.False(t, sap.Changed)
	assert.Equal(t, []model.Source{model.SourceInventory, model.SourceLucid}, sap.SortedSources())
	assert.True(t, sap.Has(model.SourceLucid))
	assert.False(t, sap.Has(model.SourceFuture))

	assert.Equal(t, []string{"sap ecc", "crm"}, res.Keys())
	assert.Empty(t, res.Conflicts)
	assert.False(t, res.HasSource(model.SourceFuture))
}

func TestMerge_DomainConflict(t *testing.T) {
	records := []model.RawRecord{
		{Key: "ledger", Label: "Ledger", Source: model.SourceLucid},
		{Key: "ledger", Label: "Ledger", Source: model.SourceInventory, Domain: "Finance"},
		{Key: "ledger", Label: "Ledger", Source: model.SourceFuture, Domain: "finance"},
		{Key: "ledger", Label: "Ledger", Source: model.SourceFuture, Domain: "Shared Services"},
		{Key: "ledger", Label: "Ledger", Source: model.SourceFuture, Domain: "Shared  Services"},
	}

	res := Merge(records)

	ledger, _ := res.Get("ledger")
	assert.Equal(t, "Finance", ledger.Domain, "first non-empty domain is canonical")
	assert.True(t, ledger.Changed)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, model.Conflict{
		Key:         "ledger",
		Canonical:   "Finance",
		Conflicting: "Shared Services",
		Source:      model.SourceFuture,
	}, res.Conflicts[0])
}

func TestMerge_References(t *testing.T) {
	records := []model.RawRecord{
		{Key: "crm", Source: model.SourceLucid, Downstream: []string{"ERP", "ERP"}},
		{Key: "crm", Source: model.SourceFuture, Downstream: []string{"ERP"}, Upstream: []string{"Web"}},
		{Key: "", Source: model.SourceFuture, Downstream: []string{"ignored"}},
	}

	res := Merge(records)

	crm, _ := res.Get("crm")
	assert.Equal(t, []Reference{
		{Ref: "ERP", Source: model.SourceLucid},
		{Ref: "ERP", Source: model.SourceFuture},
	}, crm.Downstream)
	assert.Equal(t, []Reference{{Ref: "Web", Source: model.SourceFuture}}, crm.Upstream)
	assert.Len(t, res.Systems, 1)
}
