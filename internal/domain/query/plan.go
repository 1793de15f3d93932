package query

const (
	OpEqual          = "=="
	OpIn             = "in"
	OpGreaterOrEqual = ">="
	OpLess           = "<"
	OpLessOrEqual    = "<="
)

const (
	FieldDocumentID = "__name__"
	FieldTitle      = "title"
	FieldCategory   = "category"
	FieldCondition  = "condition"
	FieldSellerID   = "sellerId"
	FieldPrice      = "price"
	FieldCreatedAt  = "createdAt"
)

type Predicate struct {
	Field string
	Op    string
	Value interface{}
}

type Order struct {
	Field string
	Desc  bool
}

// Plan is one store query: conjunctive predicates, ordering and an
// optional limit (zero means unbounded).
type Plan struct {
	Predicates []Predicate
	Orders     []Order
	Limit      int
}

// InequalityFields lists the distinct fields carrying range predicates.
func (p Plan) InequalityFields() []string {
	var fields []string
	for _, pr := range p.Predicates {
		switch pr.Op {
		case OpGreaterOrEqual, OpLess, OpLessOrEqual:
			if !contains(fields, pr.Field) {
				fields = append(fields, pr.Field)
			}
		}
	}
	return fields
}

// Query is the builder output. Plans run independently and their results
// are merged, filtered by Residual and optionally re-sorted.
type Query struct {
	Plans           []Plan
	Empty           bool
	Residual        Residual
	SortNewestFirst bool
	Limit           int
	Warnings        []string
}
