package odoo

// Condition is one domain term, e.g. ["state", "in", ["done"]].
type Condition [3]any

// Domain is a list of conditions joined with an implicit AND.
type Domain []Condition

// Cond builds a domain condition.
func Cond(field, operator string, value any) Condition {
	return Condition{field, operator, value}
}

// SearchRead describes one search_read query.
type SearchRead struct {
	Model  string
	Order  string
	Domain Domain
	Fields []string
	Limit  int
}
