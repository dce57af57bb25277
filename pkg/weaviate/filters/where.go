// Package filters builds the where filters accepted by batch deletes,
// object listing and classification requests.
package filters

import (
	"time"

	"github.com/weaviate/weaviate/entities/models"
)

// Operator is a where filter operator.
type Operator string

const (
	And              Operator = "And"
	Or               Operator = "Or"
	Not              Operator = "Not"
	Equal            Operator = "Equal"
	NotEqual         Operator = "NotEqual"
	GreaterThan      Operator = "GreaterThan"
	GreaterThanEqual Operator = "GreaterThanEqual"
	LessThan         Operator = "LessThan"
	LessThanEqual    Operator = "LessThanEqual"
	Like             Operator = "Like"
	WithinGeoRange   Operator = "WithinGeoRange"
	IsNull           Operator = "IsNull"
	ContainsAny      Operator = "ContainsAny"
	ContainsAll      Operator = "ContainsAll"
)

// WhereBuilder accumulates one filter node. Passing a single value to a
// WithValueX setter sets the scalar field, several values set the array field.
type WhereBuilder struct {
	operands []*WhereBuilder
	filter   models.WhereFilter
}

func Where() *WhereBuilder { return &WhereBuilder{} }

func (b *WhereBuilder) WithPath(path ...string) *WhereBuilder {
	b.filter.Path = path
	return b
}

func (b *WhereBuilder) WithOperator(op Operator) *WhereBuilder {
	b.filter.Operator = string(op)
	return b
}

func (b *WhereBuilder) WithOperands(operands ...*WhereBuilder) *WhereBuilder {
	b.operands = operands
	return b
}

func (b *WhereBuilder) WithValueText(values ...string) *WhereBuilder {
	if len(values) == 1 {
		b.filter.ValueText = &values[0]
	} else {
		b.filter.ValueTextArray = values
	}
	return b
}

func (b *WhereBuilder) WithValueInt(values ...int64) *WhereBuilder {
	if len(values) == 1 {
		b.filter.ValueInt = &values[0]
	} else {
		b.filter.ValueIntArray = values
	}
	return b
}

func (b *WhereBuilder) WithValueNumber(values ...float64) *WhereBuilder {
	if len(values) == 1 {
		b.filter.ValueNumber = &values[0]
	} else {
		b.filter.ValueNumberArray = values
	}
	return b
}

func (b *WhereBuilder) WithValueBoolean(values ...bool) *WhereBuilder {
	if len(values) == 1 {
		b.filter.ValueBoolean = &values[0]
	} else {
		b.filter.ValueBooleanArray = values
	}
	return b
}

// WithValueDate sends the dates as RFC 3339 strings.
func (b *WhereBuilder) WithValueDate(values ...time.Time) *WhereBuilder {
	formatted := make([]string, len(values))
	for i, v := range values {
		formatted[i] = v.Format(time.RFC3339Nano)
	}
	if len(formatted) == 1 {
		b.filter.ValueDate = &formatted[0]
	} else {
		b.filter.ValueDateArray = formatted
	}
	return b
}

// Build returns the filter tree. A nil builder builds a nil filter.
func (b *WhereBuilder) Build() *models.WhereFilter {
	if b == nil {
		return nil
	}
	f := b.filter
	if len(b.operands) > 0 {
		f.Operands = make([]*models.WhereFilter, 0, len(b.operands))
		for _, op := range b.operands {
			if built := op.Build(); built != nil {
				f.Operands = append(f.Operands, built)
			}
		}
	}
	return &f
}
