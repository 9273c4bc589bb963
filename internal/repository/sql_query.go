package repository

import (
	"strings"

	"careerhub/internal/listing"
)

// compileSQL renders a filter as a parenthesized WHERE expression with positional
// arguments. Field names come from the category whitelists, never from input.
func compileSQL(f listing.Filter) (string, []any) {
	var parts []string
	var args []any
	for _, p := range f.Predicates {
		s, a := predicateSQL(p)
		parts = append(parts, s)
		args = append(args, a...)
	}
	for _, g := range f.Groups {
		s, a := compileSQL(g)
		if s == "" {
			continue
		}
		parts = append(parts, s)
		args = append(args, a...)
	}
	if len(parts) == 0 {
		return "", nil
	}

	sep := " AND "
	if f.Logic == listing.LogicOr {
		sep = " OR "
	}
	return "(" + strings.Join(parts, sep) + ")", args
}

func predicateSQL(p listing.Predicate) (string, []any) {
	switch p.Match {
	case listing.MatchContains:
		return "LOWER(" + p.Field + ") LIKE ?", []any{"%" + strings.ToLower(p.Value) + "%"}
	case listing.MatchRange:
		if p.Max != nil {
			return p.Field + " BETWEEN ? AND ?", []any{p.Min, *p.Max}
		}
		return p.Field + " >= ?", []any{p.Min}
	default:
		return p.Field + " = ?", []any{p.Value}
	}
}

// orderSQL qualifies a sort field with its table and adds the id tie-breaker.
func orderSQL(table string, s listing.Sort) string {
	field := s.Field
	if !strings.Contains(field, ".") {
		field = table + "." + field
	}
	dir := " asc"
	if s.Desc {
		dir = " desc"
	}
	return field + dir + ", " + table + ".id" + dir
}
