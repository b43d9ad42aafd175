/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package smartlist models the filter definition stored on a smart playlist
// and builds it from symbolic tag names.
package smartlist

import "fmt"

// LogicalOperator joins the conditions of a definition.
type LogicalOperator int

const (
	LogicalAll LogicalOperator = 1
	LogicalAny LogicalOperator = 2
)

func (o LogicalOperator) String() string {
	switch o {
	case LogicalAll:
		return "ALL"
	case LogicalAny:
		return "ANY"
	default:
		return fmt.Sprintf("LogicalOperator(%d)", int(o))
	}
}

// Valid reports whether o is ALL or ANY.
func (o LogicalOperator) Valid() bool {
	return o == LogicalAll || o == LogicalAny
}

// Property is the track attribute a condition filters on.
type Property string

const (
	PropertyMyTag       Property = "myTag"
	PropertyRating      Property = "rating"
	PropertyDateCreated Property = "dateCreated"
)

// Operator is the comparison applied by a condition. Values match the
// library's stored codes.
type Operator int

const (
	OperatorInRange     Operator = 5
	OperatorInLast      Operator = 6
	OperatorContains    Operator = 8
	OperatorNotContains Operator = 9
)

func (o Operator) String() string {
	switch o {
	case OperatorInRange:
		return "IN_RANGE"
	case OperatorInLast:
		return "IN_LAST"
	case OperatorContains:
		return "CONTAINS"
	case OperatorNotContains:
		return "NOT_CONTAINS"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// Condition is one filter of a smart playlist. Which fields are meaningful
// depends on Property: tag conditions use TagID, rating conditions use
// Low/High, date conditions use Low as the period and Unit.
type Condition struct {
	Property Property
	Operator Operator
	TagID    int64
	Low      string
	High     string
	Unit     string
}

// TagCondition matches tracks that do (CONTAINS) or do not (NOT_CONTAINS)
// carry the tag.
func TagCondition(op Operator, tagID int64) Condition {
	return Condition{Property: PropertyMyTag, Operator: op, TagID: tagID}
}

// RatingCondition matches ratings in the inclusive range [low, high].
func RatingCondition(low, high string) Condition {
	return Condition{Property: PropertyRating, Operator: OperatorInRange, Low: low, High: high}
}

// DateCreatedCondition matches tracks added within the last period units.
func DateCreatedCondition(period int, unit string) Condition {
	return Condition{Property: PropertyDateCreated, Operator: OperatorInLast, Low: fmt.Sprint(period), Unit: unit}
}

func (c Condition) String() string {
	switch c.Property {
	case PropertyMyTag:
		return fmt.Sprintf("%s(tag %d)", c.Operator, c.TagID)
	case PropertyRating:
		return fmt.Sprintf("%s(rating %s..%s)", c.Operator, c.Low, c.High)
	case PropertyDateCreated:
		return fmt.Sprintf("%s(%s %s)", c.Operator, c.Low, c.Unit)
	default:
		return fmt.Sprintf("%s(%s)", c.Operator, c.Property)
	}
}

// Definition is a compiled smart-list filter.
type Definition struct {
	Logical    LogicalOperator
	Conditions []Condition
}

// Count returns how many conditions use op.
func (d Definition) Count(op Operator) int {
	n := 0
	for _, c := range d.Conditions {
		if c.Operator == op {
			n++
		}
	}
	return n
}

// TagIDs returns the tag ids used with op, in condition order.
func (d Definition) TagIDs(op Operator) []int64 {
	var ids []int64
	for _, c := range d.Conditions {
		if c.Property == PropertyMyTag && c.Operator == op {
			ids = append(ids, c.TagID)
		}
	}
	return ids
}
