package sqlitestore

import "strings"

// insertBuilder collects column/value pairs for a single-row INSERT.
type insertBuilder struct {
	table   string
	columns []string
	args    []any
}

func newInsert(table string) *insertBuilder {
	return &insertBuilder{table: table}
}

func (b *insertBuilder) set(column string, value any) *insertBuilder {
	b.columns = append(b.columns, column)
	b.args = append(b.args, value)
	return b
}

func (b *insertBuilder) setIf(ok bool, column string, value any) *insertBuilder {
	if ok {
		b.set(column, value)
	}
	return b
}

func (b *insertBuilder) query() string {
	return "INSERT INTO " + b.table + " (" + strings.Join(b.columns, ", ") + ") VALUES (" + makePlaceholders(len(b.columns)) + ")"
}

func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
