package sqlsource

import (
	"strings"
	"testing"

	"dataprof/domain/analysis"
	"dataprof/ports"
)

func TestColumnType(t *testing.T) {
	tests := []struct {
		dataType string
		want     analysis.ColumnType
	}{
		{"integer", analysis.ColumnNumeric},
		{"bigint", analysis.ColumnNumeric},
		{"double precision", analysis.ColumnNumeric},
		{"numeric", analysis.ColumnNumeric},
		{"boolean", analysis.ColumnBoolean},
		{"timestamp with time zone", analysis.ColumnTemporal},
		{"date", analysis.ColumnTemporal},
		{"character varying", analysis.ColumnCategorical},
		{"text", analysis.ColumnCategorical},
		{"jsonb", analysis.ColumnCategorical},
	}
	for _, tt := range tests {
		if got := columnType(tt.dataType); got != tt.want {
			t.Errorf("columnType(%q) = %q, want %q", tt.dataType, got, tt.want)
		}
	}
}

func TestAggExprNumeric(t *testing.T) {
	col := ports.ColumnSchema{Name: "amount", Type: analysis.ColumnNumeric}
	tests := []struct {
		kind ports.AggKind
		want string
	}{
		{ports.AggCount, `COUNT("amount")::float8`},
		{ports.AggNullCount, `(COUNT(*) - COUNT("amount"))::float8`},
		{ports.AggMean, `AVG("amount"::float8)`},
		{ports.AggStd, `STDDEV_SAMP("amount"::float8)`},
		{ports.AggMin, `MIN("amount"::float8)`},
		{ports.AggMax, `MAX("amount"::float8)`},
	}
	for _, tt := range tests {
		got, err := aggExpr("orders", col, tt.kind)
		if err != nil {
			t.Errorf("aggExpr(%s): %v", tt.kind, err)
			continue
		}
		if got != tt.want {
			t.Errorf("aggExpr(%s) = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestAggExprQuartiles(t *testing.T) {
	col := ports.ColumnSchema{Name: "amount", Type: analysis.ColumnNumeric}
	tests := []struct {
		kind ports.AggKind
		want string
	}{
		// the ordinal subquery walks the sorted column to index
		// round(p*(n-1)), e.g. n=4 and p=0.25 lands on the second value
		{ports.AggQ25, `(SELECT "amount"::float8 FROM "orders" WHERE "amount" IS NOT NULL ORDER BY "amount"::float8 OFFSET (SELECT GREATEST(ROUND((0.25 * (COUNT("amount") - 1))::numeric), 0) FROM "orders") LIMIT 1)`},
		{ports.AggMedian, `(SELECT "amount"::float8 FROM "orders" WHERE "amount" IS NOT NULL ORDER BY "amount"::float8 OFFSET (SELECT GREATEST(ROUND((0.5 * (COUNT("amount") - 1))::numeric), 0) FROM "orders") LIMIT 1)`},
		{ports.AggQ75, `(SELECT "amount"::float8 FROM "orders" WHERE "amount" IS NOT NULL ORDER BY "amount"::float8 OFFSET (SELECT GREATEST(ROUND((0.75 * (COUNT("amount") - 1))::numeric), 0) FROM "orders") LIMIT 1)`},
	}
	for _, tt := range tests {
		got, err := aggExpr("orders", col, tt.kind)
		if err != nil {
			t.Errorf("aggExpr(%s): %v", tt.kind, err)
			continue
		}
		if got != tt.want {
			t.Errorf("aggExpr(%s) = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestAggExprCategorical(t *testing.T) {
	col := ports.ColumnSchema{Name: "region", Type: analysis.ColumnCategorical}

	got, err := aggExpr("orders", col, ports.AggMin)
	if err != nil {
		t.Fatal(err)
	}
	if got != `MIN("region"::text)` {
		t.Errorf("unexpected expression %s", got)
	}

	if _, err := aggExpr("orders", col, ports.AggMean); err == nil {
		t.Error("mean over a categorical column should fail")
	}
}

func TestAggExprQuotesIdentifiers(t *testing.T) {
	col := ports.ColumnSchema{Name: `bad"name`, Type: analysis.ColumnNumeric}
	got, err := aggExpr("orders", col, ports.AggCount)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `"bad""name"`) {
		t.Errorf("identifier not quoted: %s", got)
	}
}

func TestIsStringAgg(t *testing.T) {
	if isStringAgg(analysis.ColumnNumeric, ports.AggMin) {
		t.Error("numeric min scans as float")
	}
	if !isStringAgg(analysis.ColumnCategorical, ports.AggMax) {
		t.Error("categorical max scans as string")
	}
	if isStringAgg(analysis.ColumnCategorical, ports.AggCount) {
		t.Error("counts always scan as float")
	}
}
