package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// renderer accumulates SQL text and bound arguments. Binding an argument
// yields its positional placeholder.
type renderer struct {
	sql  strings.Builder
	args []any
}

func (r *renderer) write(s string) {
	r.sql.WriteString(s)
}

func (r *renderer) bind(value any) string {
	r.args = append(r.args, value)
	return "$" + strconv.Itoa(len(r.args))
}

// rewriteExpr copies expr, replacing each `?` with the placeholder of the
// next bound argument.
func (r *renderer) rewriteExpr(expr string, exprArgs []any) {
	if len(exprArgs) == 0 {
		r.write(expr)
		return
	}
	next := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && next < len(exprArgs) {
			r.write(r.bind(exprArgs[next]))
			next++
			continue
		}
		r.sql.WriteByte(expr[i])
	}
}

// Condition renders one WHERE predicate.
type Condition interface {
	render(r *renderer)
}

type condFunc func(r *renderer)

func (f condFunc) render(r *renderer) { f(r) }

func Eq(column string, value any) Condition {
	return condFunc(func(r *renderer) {
		r.write(column)
		r.write(" = ")
		r.write(r.bind(value))
	})
}

func In(column string, values []any) Condition {
	return condFunc(func(r *renderer) {
		if len(values) == 0 {
			r.write("1=0")
			return
		}
		r.write(column)
		r.write(" IN (")
		for i, v := range values {
			if i > 0 {
				r.write(", ")
			}
			r.write(r.bind(v))
		}
		r.write(")")
	})
}

func IsNull(column string) Condition {
	return condFunc(func(r *renderer) {
		r.write(column)
		r.write(" IS NULL")
	})
}

func renderWhere(r *renderer, conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	r.write(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			r.write(" AND ")
		}
		c.render(r)
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

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	r := &renderer{}
	r.write("SELECT ")
	r.write(strings.Join(b.columns, ", "))
	r.write(" FROM ")
	r.write(b.table)
	renderWhere(r, b.where)
	if len(b.orderBy) > 0 {
		r.write(" ORDER BY ")
		r.write(strings.Join(b.orderBy, ", "))
	}
	return r.sql.String(), r.args, nil
}

type setClause struct {
	column string
	value  any
	expr   bool
	args   []any
}

type UpdateBuilder struct {
	table string
	sets  []setClause
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, value: value})
	return b
}

func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, value: expr, expr: true, args: args})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	r := &renderer{}
	r.write("UPDATE ")
	r.write(b.table)
	r.write(" SET ")
	for i, s := range b.sets {
		if i > 0 {
			r.write(", ")
		}
		r.write(s.column)
		r.write(" = ")
		if s.expr {
			r.rewriteExpr(s.value.(string), s.args)
			continue
		}
		r.write(r.bind(s.value))
	}

	renderWhere(r, b.where)
	return r.sql.String(), r.args, nil
}
