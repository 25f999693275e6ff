package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/fuxi/internal/core/model"
)

func TestNormalizeRow_CandidateOrder(t *testing.T) {
	row := Row{
		"system":     "SAP ECC",
		"label":      "SAP ERP Central Component",
		"domain":     "Finance",
		"upstream":   "Salesforce CRM; Workday",
		"downstream": "Data Lake, , Reporting",
		"status":     "Retire",
	}

	rec, ok := NormalizeRow(row, model.SourceInventory)
	require.True(t, ok)
	assert.Equal(t, "sap ecc", rec.Key)
	assert.Equal(t, "SAP ECC", rec.Name)
	assert.Equal(t, "SAP ERP Central Component", rec.Label)
	assert.Equal(t, "Finance", rec.Domain)
	assert.Equal(t, []string{"Salesforce CRM", "Workday"}, rec.Upstream)
	assert.Equal(t, []string{"Data Lake", "Reporting"}, rec.Downstream)
	assert.Equal(t, "Retire", rec.Disposition)
	assert.Equal(t, model.SourceInventory, rec.Source)
}

func TestNormalizeRow_FallsBackToLabel(t *testing.T) {
	rec, ok := NormalizeRow(Row{"text area 1": "Order  Hub"}, model.SourceLucid)
	require.True(t, ok)
	assert.Equal(t, "order hub", rec.Key)
	assert.Equal(t, "Order Hub", rec.Label)
}

func TestNormalizeRow_DiscardsJunk(t *testing.T) {
	for _, name := range []string{"Unknown", "RECTANGLE", "page", "Document", "New", "existing!", "", "  --  "} {
		_, ok := NormalizeRow(Row{"name": name}, model.SourceLucid)
		assert.False(t, ok, "name %q should be discarded", name)
	}
	_, ok := NormalizeRow(Row{"name": "New Billing"}, model.SourceLucid)
	assert.True(t, ok)
}

func TestNormalize_KeepsDatasetOrder(t *testing.T) {
	datasets := []Dataset{
		{Spec: SourceSpec{Origin: model.SourceLucid}, Rows: []Row{{"name": "sap-ecc"}, {"name": "Page"}}},
		{Spec: SourceSpec{Origin: model.SourceInventory}, Rows: []Row{{"system": "SAP ECC"}}},
	}

	records := Normalize(datasets)
	require.Len(t, records, 2)
	assert.Equal(t, model.SourceLucid, records[0].Source)
	assert.Equal(t, model.SourceInventory, records[1].Source)
	assert.Equal(t, records[0].Key, records[1].Key)
}

func TestSplitRefs(t *testing.T) {
	assert.Nil(t, SplitRefs(""))
	assert.Nil(t, SplitRefs(" ; , "))
	assert.Equal(t, []string{"A", "B C", "D"}, SplitRefs("A;  B   C ,D"))
}

func TestParseCSV_QuotedFields(t *testing.T) {
	input := "System Name,Domain,Downstream\n" +
		"\"Billing, Legacy\",Finance,\"Ledger; Data Lake\"\n" +
		"CRM,Sales\n" +
		",,\n"

	rows, headers, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"system name", "domain", "downstream"}, headers)
	require.Len(t, rows, 2)
	assert.Equal(t, "Billing, Legacy", rows[0]["system name"])
	assert.Equal(t, "Ledger; Data Lake", rows[0]["downstream"])
	assert.Equal(t, "CRM", rows[1]["system name"])
	_, hasDownstream := rows[1]["downstream"]
	assert.False(t, hasDownstream)
}

func TestParseJSON_ArrayAndWrapper(t *testing.T) {
	rows, headers, err := ParseJSON([]byte(`[
		{"System": "SAP ECC", "Upstream": ["Salesforce", "Workday"], "Tier": 1},
		{"System": "CRM", "Upstream": null}
	]`))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"system", "tier", "upstream"}, headers)
	assert.Equal(t, "Salesforce, Workday", rows[0]["upstream"])
	assert.Equal(t, "1", rows[0]["tier"])
	assert.Equal(t, "", rows[1]["upstream"])

	rows, _, err = ParseJSON([]byte(`{"systems": [{"name": "Ledger", "downstream": [{"name": "Data Lake"}]}]}`))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Data Lake", rows[0]["downstream"])

	rows, _, err = ParseJSON([]byte("  "))
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, _, err = ParseJSON([]byte(`[{"name": `))
	assert.Error(t, err)
}

func TestParseJSON_CollidingHeadersAreDeterministic(t *testing.T) {
	data := []byte(`[{"System Name":"SAP ECC","system_name":"Oracle EBS"}]`)
	for i := 0; i < 100; i++ {
		rows, headers, err := ParseJSON(data)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, []string{"system name"}, headers)
		assert.Equal(t, "SAP ECC", rows[0]["system name"])
	}

	rows, _, err := ParseJSON([]byte(`[{"System Name":"","system_name":"Oracle EBS"}]`))
	require.NoError(t, err)
	assert.Equal(t, "Oracle EBS", rows[0]["system name"])
}
