package tablestore

import (
	"fmt"
	"strings"
)

// Expr is a typed filter over record fields. It renders to the remote
// store's filter grammar with values escaped by construction, so no
// caller ever interpolates strings into a query, and it can be
// evaluated locally against a field map (which is what the in-memory
// store does).
type Expr interface {
	Render() string
	Matches(fields map[string]any) bool
}

// Eq matches records whose field equals value (compared as strings,
// which is how the remote store compares filter literals).
func Eq(field, value string) Expr {
	return eqExpr{field: field, value: value}
}

// And matches records satisfying every given expression. Nil parts are
// skipped; And with no effective parts matches everything.
func And(parts ...Expr) Expr {
	effective := make([]Expr, 0, len(parts))
	for _, p := range parts {
		if p != nil {
			effective = append(effective, p)
		}
	}
	if len(effective) == 0 {
		return nil
	}
	if len(effective) == 1 {
		return effective[0]
	}
	return andExpr(effective)
}

type eqExpr struct {
	field string
	value string
}

func (e eqExpr) Render() string {
	return fmt.Sprintf("CurrentValue.[%s] = \"%s\"", e.field, escapeLiteral(e.value))
}

func (e eqExpr) Matches(fields map[string]any) bool {
	raw, ok := fields[e.field]
	if !ok {
		return e.value == ""
	}
	return fieldString(raw) == e.value
}

type andExpr []Expr

func (e andExpr) Render() string {
	rendered := make([]string, len(e))
	for i, part := range e {
		rendered[i] = part.Render()
	}
	return strings.Join(rendered, " AND ")
}

func (e andExpr) Matches(fields map[string]any) bool {
	for _, part := range e {
		if !part.Matches(fields) {
			return false
		}
	}
	return true
}

func escapeLiteral(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `"`, `\"`)
}

func fieldString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
