package store

import (
	"context"
)

const createSchema = `
CREATE TABLE IF NOT EXISTS reference_cells (
    table_name  TEXT    NOT NULL,
    vdot        INTEGER NOT NULL,
    column_name TEXT    NOT NULL,
    column_pos  INTEGER NOT NULL,
    seconds     INTEGER NOT NULL,
    PRIMARY KEY (table_name, vdot, column_name)
)
`

// Migrate creates the schema if it does not exist.
func (q *Queries) Migrate(ctx context.Context) error {
	_, err := q.db.Exec(ctx, createSchema)
	return err
}

const listReferenceCells = `
SELECT vdot, column_name, column_pos, seconds
FROM reference_cells
WHERE table_name = $1
ORDER BY vdot, column_pos
`

// ReferenceCell is one duration in a stored reference table.
type ReferenceCell struct {
	Vdot       int32
	ColumnName string
	ColumnPos  int32
	Seconds    int32
}

// ListReferenceCells returns every cell of tableName ordered by row and
// column.
func (q *Queries) ListReferenceCells(ctx context.Context, tableName string) ([]ReferenceCell, error) {
	rows, err := q.db.Query(ctx, listReferenceCells, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ReferenceCell
	for rows.Next() {
		var i ReferenceCell
		if err := rows.Scan(&i.Vdot, &i.ColumnName, &i.ColumnPos, &i.Seconds); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertReferenceCell = `
INSERT INTO reference_cells (table_name, vdot, column_name, column_pos, seconds)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (table_name, vdot, column_name)
DO UPDATE SET column_pos = EXCLUDED.column_pos, seconds = EXCLUDED.seconds
`

// UpsertReferenceCellParams are the arguments of UpsertReferenceCell.
type UpsertReferenceCellParams struct {
	TableName  string
	Vdot       int32
	ColumnName string
	ColumnPos  int32
	Seconds    int32
}

// UpsertReferenceCell writes one cell.
func (q *Queries) UpsertReferenceCell(ctx context.Context, arg UpsertReferenceCellParams) error {
	_, err := q.db.Exec(ctx, upsertReferenceCell,
		arg.TableName,
		arg.Vdot,
		arg.ColumnName,
		arg.ColumnPos,
		arg.Seconds,
	)
	return err
}

const deleteReferenceTable = `
DELETE FROM reference_cells WHERE table_name = $1
`

// DeleteReferenceTable removes every cell of tableName.
func (q *Queries) DeleteReferenceTable(ctx context.Context, tableName string) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteReferenceTable, tableName)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
