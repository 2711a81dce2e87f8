package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/briangreenhill/marathoncoach/internal/refdata"
	"github.com/briangreenhill/marathoncoach/internal/table"
)

// ErrEmpty is returned when a stored table has no cells.
var ErrEmpty = errors.New("no stored rows")

// Source serves reference tables stored with Seed. It implements
// refdata.Source.
type Source struct {
	Q *Queries
}

// Name implements refdata.Source.
func (Source) Name() string { return "postgres" }

// Load implements refdata.Source.
func (s Source) Load(ctx context.Context) (refdata.Tables, error) {
	times, err := s.loadTable(ctx, refdata.TimesTable)
	if err != nil {
		return refdata.Tables{}, err
	}
	paces, err := s.loadTable(ctx, refdata.PacesTable)
	if err != nil {
		return refdata.Tables{}, err
	}
	return refdata.NewTables(times, paces)
}

func (s Source) loadTable(ctx context.Context, name string) (*table.Table, error) {
	cells, err := s.Q.ListReferenceCells(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", name, err)
	}
	return BuildTable(name, cells)
}

// BuildTable assembles stored cells into a table. Columns keep their stored
// positions.
func BuildTable(name string, cells []ReferenceCell) (*table.Table, error) {
	if len(cells) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmpty)
	}

	pos := make(map[string]int32)
	byIndex := make(map[int]map[string]int)
	for _, c := range cells {
		pos[c.ColumnName] = c.ColumnPos
		vals, ok := byIndex[int(c.Vdot)]
		if !ok {
			vals = make(map[string]int)
			byIndex[int(c.Vdot)] = vals
		}
		vals[c.ColumnName] = int(c.Seconds)
	}

	columns := make([]string, 0, len(pos))
	for col := range pos {
		columns = append(columns, col)
	}
	sort.Slice(columns, func(i, j int) bool {
		if pos[columns[i]] != pos[columns[j]] {
			return pos[columns[i]] < pos[columns[j]]
		}
		return columns[i] < columns[j]
	})

	rows := make([]table.Row, 0, len(byIndex))
	for idx, vals := range byIndex {
		rows = append(rows, table.Row{Index: idx, Values: vals})
	}
	return table.New(name, columns, rows)
}

// TxBeginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Seed replaces the stored reference tables with tables in one transaction
// and returns the number of cells written.
func Seed(ctx context.Context, db TxBeginner, tables refdata.Tables) (int, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := New(tx)
	if err := q.Migrate(ctx); err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}

	written := 0
	for _, t := range []*table.Table{tables.Times, tables.Paces} {
		if _, err := q.DeleteReferenceTable(ctx, t.Name()); err != nil {
			return 0, fmt.Errorf("clear %s: %w", t.Name(), err)
		}
		n, err := writeTable(ctx, q, t)
		if err != nil {
			return 0, err
		}
		written += n
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return written, nil
}

func writeTable(ctx context.Context, q *Queries, t *table.Table) (int, error) {
	written := 0
	for _, arg := range Cells(t) {
		if err := q.UpsertReferenceCell(ctx, arg); err != nil {
			return written, fmt.Errorf("write %s[%d].%s: %w", arg.TableName, arg.Vdot, arg.ColumnName, err)
		}
		written++
	}
	return written, nil
}

// Cells flattens t into upsert arguments, row by row.
func Cells(t *table.Table) []UpsertReferenceCellParams {
	columns := t.Columns()
	var out []UpsertReferenceCellParams
	for idx := t.MinIndex(); idx <= t.MaxIndex(); idx++ {
		row, ok := t.Row(idx)
		if !ok {
			continue
		}
		for pos, col := range columns {
			v, ok := row.Value(col)
			if !ok {
				continue
			}
			out = append(out, UpsertReferenceCellParams{
				TableName:  t.Name(),
				Vdot:       int32(idx),
				ColumnName: col,
				ColumnPos:  int32(pos),
				Seconds:    int32(v),
			})
		}
	}
	return out
}
