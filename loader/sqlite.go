package loader

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/spektr-org/needsradar/engine"
)

// decodeSQLite reads every row of the configured table. The database is
// opened read-only and closed before returning.
func decodeSQLite(ctx context.Context, path string, cfg *config) (*engine.Dataset, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, &LoadError{Source: path, Op: "read", Err: err}
	}
	defer db.Close()

	tables, err := listTables(ctx, db)
	if err != nil {
		return nil, &LoadError{Source: path, Op: "query", Err: err}
	}
	name := resolveSheet(cfg.sheet, tables)
	if name == "" {
		return nil, &SheetNotFoundError{Source: path, Sheet: cfg.sheet, Available: tables}
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name))
	if err != nil {
		return nil, &LoadError{Source: path, Op: "query", Err: err}
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, &LoadError{Source: path, Op: "query", Err: err}
	}

	var out [][]string
	cells := make([]sql.NullString, len(headers))
	dest := make([]any, len(headers))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, &LoadError{Source: path, Op: "query", Err: err}
		}
		row := make([]string, len(cells))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &LoadError{Source: path, Op: "query", Err: err}
	}

	return buildDataset(path, table{headers: headers, rows: out, firstRow: 1}, cfg)
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
