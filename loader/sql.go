package loader

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/aluiziolira/go-nyc-airbnb/models"
	"github.com/aluiziolira/go-nyc-airbnb/parser"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// readSQL selects the dataset columns from the configured table. Values are
// scanned as text and typed by the CSV parser rules, so a database source
// decodes exactly like the equivalent CSV.
func (l *Loader) readSQL(ctx context.Context, driver, dsn string) (*models.Table, error) {
	table := l.cfg.DatasetTable
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", driver, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, classifyError(fmt.Errorf("ping %s db: %w", driver, err), 0)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(parser.Columns, ", "), table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	records := [][]string{parser.Columns}
	values := make([]sql.NullString, len(parser.Columns))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = v.String
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}

	parsed, err := parser.ParseRecords(records)
	if err != nil {
		return nil, ErrParse{Err: err}
	}
	return parsed, nil
}
