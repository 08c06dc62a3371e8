package content

import "strings"

// predicate accumulates typed filter conditions and their parameters so the
// repository can compose the correct WHERE clause per query shape. Query
// text is assembled from fixed fragments only; user input always travels
// through parameters.
type predicate struct {
	conds  []string
	params map[string]any
}

func newPredicate() *predicate {
	return &predicate{params: map[string]any{}}
}

// add appends one condition referencing a named parameter.
func (p *predicate) add(cond, param string, value any) *predicate {
	p.conds = append(p.conds, cond)
	p.params[param] = value
	return p
}

// addExpr appends a parameterless condition.
func (p *predicate) addExpr(cond string) *predicate {
	p.conds = append(p.conds, cond)
	return p
}

// where renders "WHERE a AND b" or an empty string when no condition is set.
func (p *predicate) where() string {
	if len(p.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(p.conds, " AND ")
}

// mergeInto copies the accumulated parameters into params.
func (p *predicate) mergeInto(params map[string]any) map[string]any {
	for k, v := range p.params {
		params[k] = v
	}
	return params
}
