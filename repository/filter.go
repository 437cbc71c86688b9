package repository

// IDField is the logical id field name. Backends map it to their primary key.
const IDField = "id"

// Operator is a comparison used in a Condition.
type Operator string

const (
	OpEq Operator = "eq"
	OpNe Operator = "ne"
)

// Condition compares a single field against a value.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Sort orders List results by a field.
type Sort struct {
	Field string
	Desc  bool
}

// Filter is a conjunction of conditions plus an optional sort.
//
//	repository.Where("user_name", "alice").Not("id", current.ID)
type Filter struct {
	Conditions []Condition
	Sort       *Sort
}

// All matches every record.
func All() Filter {
	return Filter{}
}

// Where starts a filter with an equality condition.
func Where(field string, value any) Filter {
	return Filter{}.Where(field, value)
}

// Where adds an equality condition.
func (f Filter) Where(field string, value any) Filter {
	f.Conditions = append(cloneConditions(f.Conditions), Condition{Field: field, Op: OpEq, Value: value})
	return f
}

// Not adds an inequality condition.
func (f Filter) Not(field string, value any) Filter {
	f.Conditions = append(cloneConditions(f.Conditions), Condition{Field: field, Op: OpNe, Value: value})
	return f
}

// OrderBy sets the sort used by List.
func (f Filter) OrderBy(field string, desc bool) Filter {
	f.Sort = &Sort{Field: field, Desc: desc}
	return f
}

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool {
	return len(f.Conditions) == 0
}

func cloneConditions(in []Condition) []Condition {
	out := make([]Condition, len(in), len(in)+1)
	copy(out, in)
	return out
}
