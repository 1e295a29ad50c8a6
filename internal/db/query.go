package db

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
)

type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

type AttributeType string

const (
	AttributeString  AttributeType = "string"
	AttributeNumeric AttributeType = "numeric"
)

// Predicate is a single attribute comparison. Exactly one of StringValue or
// NumericValue is meaningful, selected by Type.
type Predicate struct {
	Key          string
	Op           Operator
	Type         AttributeType
	StringValue  string
	NumericValue uint64
}

func Eq(key, value string) Predicate {
	return Predicate{Key: key, Op: OpEq, Type: AttributeString, StringValue: value}
}

func NumEq(key string, value uint64) Predicate {
	return Predicate{Key: key, Op: OpEq, Type: AttributeNumeric, NumericValue: value}
}

func NumGt(key string, value uint64) Predicate {
	return Predicate{Key: key, Op: OpGt, Type: AttributeNumeric, NumericValue: value}
}

func NumGte(key string, value uint64) Predicate {
	return Predicate{Key: key, Op: OpGte, Type: AttributeNumeric, NumericValue: value}
}

func NumLt(key string, value uint64) Predicate {
	return Predicate{Key: key, Op: OpLt, Type: AttributeNumeric, NumericValue: value}
}

func NumLte(key string, value uint64) Predicate {
	return Predicate{Key: key, Op: OpLte, Type: AttributeNumeric, NumericValue: value}
}

type OrderBy struct {
	Key  string
	Type AttributeType
	Desc bool
}

type Query struct {
	Predicates []Predicate
	OrderBy    *OrderBy
	// Limit caps the total number of entities across pages, 0 means no cap
	Limit     int64
	OwnedBy   string
	PageToken string
}

func (q Query) Validate() error {
	for _, p := range q.Predicates {
		if p.Key == "" {
			return &InvalidQueryError{Message: "predicate key cannot be empty"}
		}
		switch p.Op {
		case OpEq, OpGt, OpGte, OpLt, OpLte:
		default:
			return &InvalidQueryError{Message: fmt.Sprintf("unsupported operator %q", p.Op)}
		}
		switch p.Type {
		case AttributeNumeric:
		case AttributeString:
			if p.Op != OpEq {
				return &InvalidQueryError{Message: fmt.Sprintf("operator %q is not supported on string attribute %s", p.Op, p.Key)}
			}
		default:
			return &InvalidQueryError{Message: fmt.Sprintf("unsupported attribute type %q", p.Type)}
		}
	}
	if q.OrderBy != nil && q.OrderBy.Key == "" {
		return &InvalidQueryError{Message: "order by key cannot be empty"}
	}
	if q.Limit < 0 {
		return &InvalidQueryError{Message: "limit cannot be negative"}
	}
	return nil
}

// Matches reports whether e satisfies the owner filter and every predicate
func (q Query) Matches(e *Entity) bool {
	if q.OwnedBy != "" && !strings.EqualFold(q.OwnedBy, e.Owner) {
		return false
	}
	for _, p := range q.Predicates {
		if !p.matches(e) {
			return false
		}
	}
	return true
}

func (p Predicate) matches(e *Entity) bool {
	if p.Type == AttributeString {
		v, ok := e.StringAttributes[p.Key]
		return ok && v == p.StringValue
	}

	v, ok := e.NumericAttributes[p.Key]
	if !ok {
		return false
	}
	switch p.Op {
	case OpEq:
		return v == p.NumericValue
	case OpGt:
		return v > p.NumericValue
	case OpGte:
		return v >= p.NumericValue
	case OpLt:
		return v < p.NumericValue
	case OpLte:
		return v <= p.NumericValue
	}
	return false
}

// SortEntities orders entities by o, ties broken by creation time then key.
// Entities missing the attribute sort first in ascending order.
func SortEntities(entities []*Entity, o *OrderBy) {
	slices.SortStableFunc(entities, func(a, b *Entity) int {
		if o != nil {
			var c int
			if o.Type == AttributeNumeric {
				c = cmp.Compare(a.NumericAttributes[o.Key], b.NumericAttributes[o.Key])
			} else {
				c = cmp.Compare(a.StringAttributes[o.Key], b.StringAttributes[o.Key])
			}
			if o.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
}

// QueryAll follows page tokens until the query is exhausted or its limit is hit
func QueryAll(ctx context.Context, store DbInterface, q Query) ([]*Entity, error) {
	var result []*Entity
	for {
		page, err := store.QueryEntities(ctx, q)
		if err != nil {
			return nil, err
		}
		result = append(result, page.Entities...)

		if page.NextPageToken == "" {
			break
		}
		if q.Limit > 0 && int64(len(result)) >= q.Limit {
			break
		}
		q.PageToken = page.NextPageToken
	}

	if q.Limit > 0 && int64(len(result)) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}
