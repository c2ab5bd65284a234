// Package querybuilder assembles the SQL statements the ledger tables need.
// Placeholders are Postgres-style $n, numbered in the order the fragments
// bind their arguments.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// stmt collects SQL text and its bound arguments while a builder renders.
type stmt struct {
	sql  strings.Builder
	args []any
}

func (s *stmt) write(text string) {
	s.sql.WriteString(text)
}

// bind registers an argument and returns its placeholder.
func (s *stmt) bind(value any) string {
	s.args = append(s.args, value)
	return "$" + strconv.Itoa(len(s.args))
}

// Condition renders one WHERE fragment. Conditions on the same builder are
// joined with AND.
type Condition func(s *stmt)

func Eq(column string, value any) Condition {
	return func(s *stmt) {
		s.write(column)
		s.write(" = ")
		s.write(s.bind(value))
	}
}

func IsNull(column string) Condition {
	return func(s *stmt) {
		s.write(column)
		s.write(" IS NULL")
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(columns ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, columns...)
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select needs columns")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select needs a table")
	}

	var s stmt
	s.write("SELECT ")
	s.write(strings.Join(b.columns, ", "))
	s.write(" FROM ")
	s.write(b.table)
	writeWhere(&s, b.where)
	if len(b.orderBy) > 0 {
		s.write(" ORDER BY ")
		s.write(strings.Join(b.orderBy, ", "))
	}
	return s.sql.String(), s.args, nil
}

// InsertBuilder renders a single-row INSERT.
type InsertBuilder struct {
	table   string
	columns []string
	values  []any
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.values = append([]any(nil), values...)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert needs a table")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert needs columns")
	}
	if len(b.values) != len(b.columns) {
		return "", nil, fmt.Errorf("insert has %d values for %d columns", len(b.values), len(b.columns))
	}

	var s stmt
	s.write("INSERT INTO ")
	s.write(b.table)
	s.write(" (")
	s.write(strings.Join(b.columns, ", "))
	s.write(") VALUES (")
	for i, value := range b.values {
		if i > 0 {
			s.write(", ")
		}
		s.write(s.bind(value))
	}
	s.write(")")
	return s.sql.String(), s.args, nil
}

type UpdateBuilder struct {
	table string
	sets  []func(s *stmt)
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, func(s *stmt) {
		s.write(column)
		s.write(" = ")
		s.write(s.bind(value))
	})
	return b
}

// SetExpr assigns a raw SQL expression. ? placeholders in the expression are
// rewritten to numbered bindings for the given args.
func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, func(s *stmt) {
		s.write(column)
		s.write(" = ")
		s.write(expandExpr(s, expr, args))
	})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update needs a table")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update needs assignments")
	}

	var s stmt
	s.write("UPDATE ")
	s.write(b.table)
	s.write(" SET ")
	for i, set := range b.sets {
		if i > 0 {
			s.write(", ")
		}
		set(&s)
	}
	writeWhere(&s, b.where)
	return s.sql.String(), s.args, nil
}

func writeWhere(s *stmt, conditions []Condition) {
	for i, cond := range conditions {
		if i == 0 {
			s.write(" WHERE ")
		} else {
			s.write(" AND ")
		}
		cond(s)
	}
}

// expandExpr rewrites ? placeholders to numbered bindings. A ? beyond the
// last argument is written through untouched.
func expandExpr(s *stmt, expr string, args []any) string {
	if len(args) == 0 {
		return expr
	}
	var out strings.Builder
	next := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && next < len(args) {
			out.WriteString(s.bind(args[next]))
			next++
			continue
		}
		out.WriteByte(expr[i])
	}
	return out.String()
}
