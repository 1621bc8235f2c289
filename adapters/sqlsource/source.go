package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"dataprof/adapters/memsource"
	"dataprof/domain/analysis"
	"dataprof/domain/core"
	"dataprof/internal"
	apperrors "dataprof/internal/errors"
	"dataprof/ports"
)

// Source serves one Postgres table through the DataSource port. The
// describe aggregations run as a single SELECT so no rows cross the
// wire for a pushdown describe.
type Source struct {
	db     *sqlx.DB
	table  string
	logger *internal.Logger

	schema ports.Schema
}

// NewSource wraps a table of an open database handle
func NewSource(db *sqlx.DB, table string) *Source {
	return &Source{
		db:     db,
		table:  table,
		logger: internal.DefaultLogger.WithPrefix("sqlsource"),
	}
}

// Open connects to Postgres and verifies the connection
func Open(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, apperrors.DatabaseError("database connection failed", err)
	}
	return db, nil
}

func (s *Source) Schema(ctx context.Context) (ports.Schema, error) {
	if s.schema != nil {
		return s.schema, nil
	}

	query := `SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position`

	rows, err := s.db.QueryContext(ctx, query, s.table)
	if err != nil {
		return nil, apperrors.SourceError("schema query failed", err)
	}
	defer rows.Close()

	var schema ports.Schema
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, apperrors.SourceError("schema scan failed", err)
		}
		schema = append(schema, ports.ColumnSchema{Name: name, Type: columnType(dataType)})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.SourceError("schema read failed", err)
	}
	if len(schema) == 0 {
		return nil, apperrors.SourceError(fmt.Sprintf("table %s", s.table), core.ErrTableNotFound)
	}
	s.schema = schema
	return schema, nil
}

func (s *Source) RowCount(ctx context.Context) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", pq.QuoteIdentifier(s.table))
	if err := s.db.GetContext(ctx, &count, query); err != nil {
		return 0, apperrors.SourceError("row count failed", err)
	}
	return count, nil
}

// Head materializes at most limit rows into an in-memory frame. Numeric
// columns are cast to float8 on the server; everything else arrives as
// text.
func (s *Source) Head(ctx context.Context, limit int) (ports.Frame, error) {
	schema, err := s.Schema(ctx)
	if err != nil {
		return nil, err
	}

	exprs := make([]string, len(schema))
	for i, col := range schema {
		quoted := pq.QuoteIdentifier(col.Name)
		if col.Type == analysis.ColumnNumeric {
			exprs[i] = quoted + "::float8"
		} else {
			exprs[i] = quoted + "::text"
		}
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), pq.QuoteIdentifier(s.table))
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.SourceError("row query failed", err)
	}
	defer rows.Close()

	numeric := make(map[string][]float64)
	strCols := make(map[string][]string)
	valid := make(map[string][]bool)

	dest := make([]interface{}, len(schema))
	for rows.Next() {
		for i, col := range schema {
			if col.Type == analysis.ColumnNumeric {
				dest[i] = new(sql.NullFloat64)
			} else {
				dest[i] = new(sql.NullString)
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.SourceError("row scan failed", err)
		}
		for i, col := range schema {
			if col.Type == analysis.ColumnNumeric {
				nf := dest[i].(*sql.NullFloat64)
				v := math.NaN()
				if nf.Valid {
					v = nf.Float64
				}
				numeric[col.Name] = append(numeric[col.Name], v)
				continue
			}
			ns := dest[i].(*sql.NullString)
			strCols[col.Name] = append(strCols[col.Name], ns.String)
			valid[col.Name] = append(valid[col.Name], ns.Valid)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.SourceError("row read failed", err)
	}

	frame := memsource.NewFrame()
	for _, col := range schema {
		if col.Type == analysis.ColumnNumeric {
			if err := frame.AddNumeric(col.Name, numeric[col.Name]); err != nil {
				return nil, err
			}
			continue
		}
		if err := frame.AddString(col.Name, strCols[col.Name], valid[col.Name]); err != nil {
			return nil, err
		}
	}
	s.logger.Debug("materialized %d rows from %s", frame.RowCount(), s.table)
	return frame, nil
}

// Aggregate runs the describe spec as one SELECT. Quartiles select the
// round(p*(n-1)) ordinal so the server returns the exact value the
// engine's nearest-rank percentiles would pick.
func (s *Source) Aggregate(ctx context.Context, specs []ports.AggSpec) (*ports.AggResult, error) {
	schema, err := s.Schema(ctx)
	if err != nil {
		return nil, err
	}

	exprs := make([]string, 0, len(specs))
	kinds := make([]ports.AggSpec, 0, len(specs))
	for _, spec := range specs {
		col := schema.Column(spec.Column)
		if col == nil {
			return nil, core.NewColumnError(spec.Column, core.ErrColumnNotFound)
		}
		expr, err := aggExpr(s.table, *col, spec.Kind)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
		kinds = append(kinds, spec)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), pq.QuoteIdentifier(s.table))
	row := s.db.QueryRowxContext(ctx, query)

	dest := make([]interface{}, len(kinds))
	for i, spec := range kinds {
		if isStringAgg(schema.Column(spec.Column).Type, spec.Kind) {
			dest[i] = new(sql.NullString)
		} else {
			dest[i] = new(sql.NullFloat64)
		}
	}
	if err := row.Scan(dest...); err != nil {
		return nil, apperrors.SourceError("aggregation query failed", err)
	}

	result := &ports.AggResult{
		Floats:  make(map[string]float64),
		Strings: make(map[string]string),
	}
	for i, spec := range kinds {
		if ns, ok := dest[i].(*sql.NullString); ok {
			if ns.Valid {
				result.Strings[spec.Key()] = ns.String
			}
			continue
		}
		nf := dest[i].(*sql.NullFloat64)
		if nf.Valid {
			result.Floats[spec.Key()] = nf.Float64
		}
	}
	return result, nil
}

func aggExpr(table string, col ports.ColumnSchema, kind ports.AggKind) (string, error) {
	quoted := pq.QuoteIdentifier(col.Name)
	numeric := col.Type == analysis.ColumnNumeric
	if numeric {
		quoted += "::float8"
	}

	switch kind {
	case ports.AggCount:
		return fmt.Sprintf("COUNT(%s)::float8", pq.QuoteIdentifier(col.Name)), nil
	case ports.AggNullCount:
		return fmt.Sprintf("(COUNT(*) - COUNT(%s))::float8", pq.QuoteIdentifier(col.Name)), nil
	case ports.AggMin:
		if !numeric {
			return fmt.Sprintf("MIN(%s::text)", pq.QuoteIdentifier(col.Name)), nil
		}
		return fmt.Sprintf("MIN(%s)", quoted), nil
	case ports.AggMax:
		if !numeric {
			return fmt.Sprintf("MAX(%s::text)", pq.QuoteIdentifier(col.Name)), nil
		}
		return fmt.Sprintf("MAX(%s)", quoted), nil
	}
	if !numeric {
		return "", core.NewColumnError(col.Name, core.ErrColumnNotNumeric)
	}

	switch kind {
	case ports.AggMean:
		return fmt.Sprintf("AVG(%s)", quoted), nil
	case ports.AggStd:
		return fmt.Sprintf("STDDEV_SAMP(%s)", quoted), nil
	case ports.AggQ25:
		return quantileExpr(table, col.Name, "0.25"), nil
	case ports.AggMedian:
		return quantileExpr(table, col.Name, "0.5"), nil
	case ports.AggQ75:
		return quantileExpr(table, col.Name, "0.75"), nil
	}
	return "", apperrors.InvalidInput(fmt.Sprintf("unknown aggregation %q", kind))
}

// quantileExpr selects the value at index round(p*(n-1)) over the
// sorted non-null column, the same ordinal the in-memory path uses.
// ROUND runs over numeric so ties round away from zero like math.Round.
func quantileExpr(table, column, frac string) string {
	name := pq.QuoteIdentifier(column)
	tbl := pq.QuoteIdentifier(table)
	idx := fmt.Sprintf("(SELECT GREATEST(ROUND((%s * (COUNT(%s) - 1))::numeric), 0) FROM %s)", frac, name, tbl)
	return fmt.Sprintf("(SELECT %s::float8 FROM %s WHERE %s IS NOT NULL ORDER BY %s::float8 OFFSET %s LIMIT 1)",
		name, tbl, name, name, idx)
}

func isStringAgg(t analysis.ColumnType, kind ports.AggKind) bool {
	if t == analysis.ColumnNumeric {
		return false
	}
	return kind == ports.AggMin || kind == ports.AggMax
}

func columnType(dataType string) analysis.ColumnType {
	switch strings.ToLower(dataType) {
	case "smallint", "integer", "bigint", "real", "double precision", "numeric", "decimal":
		return analysis.ColumnNumeric
	case "boolean":
		return analysis.ColumnBoolean
	case "date", "time", "timestamp", "timestamp without time zone", "timestamp with time zone":
		return analysis.ColumnTemporal
	default:
		return analysis.ColumnCategorical
	}
}
