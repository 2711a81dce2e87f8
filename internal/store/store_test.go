package store

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/marathoncoach/internal/refdata"
	"github.com/briangreenhill/marathoncoach/internal/vdot"
)

func cellsFor(t *testing.T, name string) []ReferenceCell {
	t.Helper()
	tables := refdata.MustEmbedded()
	src := tables.Times
	if name == refdata.PacesTable {
		src = tables.Paces
	}
	var cells []ReferenceCell
	for _, c := range Cells(src) {
		cells = append(cells, ReferenceCell{Vdot: c.Vdot, ColumnName: c.ColumnName, ColumnPos: c.ColumnPos, Seconds: c.Seconds})
	}
	return cells
}

func TestBuildTableKeepsColumnOrder(t *testing.T) {
	cells := cellsFor(t, refdata.TimesTable)
	// Storage order is not guaranteed.
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}

	tbl, err := BuildTable(refdata.TimesTable, cells)
	require.NoError(t, err)
	assert.Equal(t, refdata.MustEmbedded().Times.Columns(), tbl.Columns())
	assert.Equal(t, 56, tbl.Len())

	row, ok := tbl.Row(50)
	require.True(t, ok)
	assert.Equal(t, 11440, row.Values[vdot.ColumnMarathon])
}

func TestBuildTableEmpty(t *testing.T) {
	_, err := BuildTable("x", nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestCellsSkipMissingValues(t *testing.T) {
	tbl, err := BuildTable("x", []ReferenceCell{
		{Vdot: 40, ColumnName: "A", ColumnPos: 0, Seconds: 300},
		{Vdot: 40, ColumnName: "B", ColumnPos: 1, Seconds: 200},
		{Vdot: 42, ColumnName: "A", ColumnPos: 0, Seconds: 290},
	})
	require.NoError(t, err)

	cells := Cells(tbl)
	assert.Len(t, cells, 3)
	assert.Equal(t, int32(42), cells[2].Vdot)
}

func TestSeedAndLoad(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping postgres test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	defer pool.Close()

	n, err := Seed(ctx, pool, refdata.MustEmbedded())
	require.NoError(t, err)
	assert.Equal(t, len(cellsFor(t, refdata.TimesTable))+len(cellsFor(t, refdata.PacesTable)), n)

	tables, err := Source{Q: New(pool)}.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3:10:40", vdot.FitnessToTime(tables.Times, 50))

	set, _, err := vdot.FitnessToPaces(tables.Paces, 50)
	require.NoError(t, err)
	assert.Equal(t, "4:31", set.Display(vdot.Marathon))
}
