package gc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFixtureTableParsesAndOrdersCells(t *testing.T) {
	dump := "1:m\tFiles\tdefault\t20\tf1;\\nf2;\\n\n" +
		"1:m\tFiles\tdefault\t10\tf1;\\nf3;\\n\n" +
		"# a comment line is ignored\n" +
		"\n"

	table, err := LoadFixtureTable(strings.NewReader(dump))
	require.NoError(t, err)
	require.Len(t, table.cells, 2)
	assert.Equal(t, uint64(20), table.cells[0].Timestamp, "newest version scans first")
	assert.Equal(t, uint64(10), table.cells[1].Timestamp)
	assert.Equal(t, []byte("f1;\nf2;\n"), table.cells[0].Value, "\\n is unescaped into the cell value")
}

func TestLoadFixtureTableRejectsMalformedLine(t *testing.T) {
	_, err := LoadFixtureTable(strings.NewReader("only\tthree\tfields\n"))
	require.Error(t, err)
}

func TestFixtureTableScannerRespectsColumnAndRowFilters(t *testing.T) {
	dump := "1:a\tFiles\tdefault\t1\tfa;\\n\n" +
		"1:m\tFiles\tdefault\t2\tfm;\\n\n" +
		"1:m\tOther\tdefault\t2\tignored;\\n\n"

	table, err := LoadFixtureTable(strings.NewReader(dump))
	require.NoError(t, err)

	scanner, err := table.CreateScanner(ScanSpec{
		Columns:  []string{"Files"},
		StartRow: "1:a",
		EndRow:   "1:z",
	})
	require.NoError(t, err)

	var rows []string
	var cell Cell
	for scanner.Next(&cell) {
		rows = append(rows, cell.RowKey)
	}
	assert.Equal(t, []string{"1:m"}, rows, "start row is exclusive by default, and the Other column family is filtered out")
}

func TestFixtureTableMutatorAppliesRowAndCellDeletes(t *testing.T) {
	dump := "1:m\tFiles\tdefault\t2\tfm;\\n\n" +
		"1:n\tFiles\tdefault\t1\tfn;\\n\n"

	table, err := LoadFixtureTable(strings.NewReader(dump))
	require.NoError(t, err)

	mutator, err := table.CreateMutator()
	require.NoError(t, err)
	mutator.SetDelete(0, KeySpec{Row: "1:m"})
	require.NoError(t, mutator.Flush())

	require.Len(t, table.cells, 1)
	assert.Equal(t, "1:n", table.cells[0].RowKey)
}
