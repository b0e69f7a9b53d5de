package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
)

// Supported dialects. They match the database/sql driver names.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

type ColumnType int

const (
	// ColumnIdentity is an auto-generated, strictly increasing integer key.
	ColumnIdentity ColumnType = iota
	ColumnVarchar
	ColumnBoolean
)

// Column describes one column and the constraints the store must enforce on it.
type Column struct {
	Name     string
	Type     ColumnType
	Length   int
	Nullable bool
	Unique   bool
}

// Schema describes a table. The database engine enforces it once the
// rendered DDL has been applied.
type Schema struct {
	Table   string
	Columns []Column
}

// CustomerSchema is the customers table layout shared with existing data.
var CustomerSchema = Schema{
	Table: "customers",
	Columns: []Column{
		{Name: "customer_id", Type: ColumnIdentity},
		{Name: "name", Type: ColumnVarchar, Length: 100},
		{Name: "address", Type: ColumnVarchar, Length: 255, Nullable: true},
		{Name: "email", Type: ColumnVarchar, Length: 150, Unique: true},
		{Name: "status", Type: ColumnBoolean},
	},
}

// ColumnNames lists the columns in declaration order.
func (s Schema) ColumnNames() []string {
	names := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		names = append(names, c.Name)
	}
	return names
}

// CreateTableSQL renders an idempotent CREATE TABLE statement for dialect.
func (s Schema) CreateTableSQL(dialect string) (string, error) {
	if dialect != DialectPostgres && dialect != DialectSQLite {
		return "", errors.Newf("unsupported dialect %q", dialect)
	}

	defs := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		defs = append(defs, "    "+columnDDL(c, dialect))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", s.Table, strings.Join(defs, ",\n")), nil
}

func columnDDL(c Column, dialect string) string {
	if c.Type == ColumnIdentity {
		if dialect == DialectSQLite {
			// AUTOINCREMENT keeps ids from being reused after deletes.
			return c.Name + " INTEGER PRIMARY KEY AUTOINCREMENT"
		}
		return c.Name + " BIGSERIAL PRIMARY KEY"
	}

	var b strings.Builder
	b.WriteString(c.Name)
	switch c.Type {
	case ColumnVarchar:
		fmt.Fprintf(&b, " VARCHAR(%d)", c.Length)
	case ColumnBoolean:
		b.WriteString(" BOOLEAN")
	}
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	// sqlite ignores VARCHAR lengths
	if dialect == DialectSQLite && c.Type == ColumnVarchar && c.Length > 0 {
		fmt.Fprintf(&b, " CHECK (length(%s) <= %d)", c.Name, c.Length)
	}
	return b.String()
}

// Migrate creates every table in schemas that does not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB, schemas ...Schema) error {
	for _, s := range schemas {
		ddl, err := s.CreateTableSQL(db.DriverName())
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return errors.Wrapf(err, "create table %s", s.Table)
		}
	}
	return nil
}
