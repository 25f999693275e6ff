package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agenthands/fuxi/internal/config"
)

func writeData(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.Root = t.TempDir()
	return cfg
}

// writeTransformation lays out a current and a future snapshot:
//
//	SAP ECC         Lucid + Inventory          -> removed
//	General Ledger  Lucid + Future, new domain -> modified
//	Salesforce CRM  Inventory + Future         -> unchanged
//	SAP S/4HANA     Future                     -> added
//	Workday         Future CSV                 -> added
func writeTransformation(t *testing.T, cfg *config.Config) {
	t.Helper()
	root := cfg.Data.Root
	writeData(t, root, cfg.Data.LucidClean, `[
		{"label": "SAP ECC", "domain": "Finance", "downstream": ["General Ledger"]},
		{"label": "General Ledger", "domain": "Finance"},
		{"label": "Rectangle"}
	]`)
	writeData(t, root, cfg.Data.Inventory, `{"systems": [
		{"system_name": "sap-ecc", "domain": "Finance"},
		{"system_name": "Salesforce CRM", "domain": "Sales", "consumers": "SAP-ECC"}
	]}`)
	writeData(t, root, cfg.Data.FutureState, `[
		{"system": "SAP S/4HANA", "domain": "Finance", "upstream": "Salesforce CRM"},
		{"system": "General Ledger", "domain": "Shared Services"},
		{"system": "Salesforce CRM", "domain": "Sales"}
	]`)
	writeData(t, root, cfg.Data.FutureStateCSV, "System Name,Domain,Depends On\nWorkday,HR,Payroll Engine\n")
}
