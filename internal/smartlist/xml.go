/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartlist

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

type xmlNode struct {
	XMLName         xml.Name       `xml:"NODE"`
	ID              string         `xml:"Id,attr"`
	LogicalOperator int            `xml:"LogicalOperator,attr"`
	AutomaticUpdate int            `xml:"AutomaticUpdate,attr"`
	Conditions      []xmlCondition `xml:"CONDITION"`
}

type xmlCondition struct {
	PropertyName string `xml:"PropertyName,attr"`
	Operator     int    `xml:"Operator,attr"`
	ValueUnit    string `xml:"ValueUnit,attr"`
	ValueLeft    string `xml:"ValueLeft,attr"`
	ValueRight   string `xml:"ValueRight,attr"`
}

// Marshal encodes def as the smart-list payload stored on playlist id.
func Marshal(id int64, def Definition) (string, error) {
	if !def.Logical.Valid() {
		return "", fmt.Errorf("marshal smart list: invalid logical operator %d", int(def.Logical))
	}

	node := xmlNode{
		ID:              strconv.FormatInt(id, 10),
		LogicalOperator: int(def.Logical),
	}
	for _, c := range def.Conditions {
		xc := xmlCondition{PropertyName: string(c.Property), Operator: int(c.Operator)}
		switch c.Property {
		case PropertyMyTag:
			xc.ValueLeft = strconv.FormatInt(encodeTagID(c.TagID), 10)
		case PropertyRating:
			xc.ValueLeft = c.Low
			xc.ValueRight = c.High
		case PropertyDateCreated:
			xc.ValueLeft = c.Low
			xc.ValueUnit = c.Unit
		default:
			return "", fmt.Errorf("marshal smart list: unknown property %q", c.Property)
		}
		node.Conditions = append(node.Conditions, xc)
	}

	out, err := xml.Marshal(node)
	if err != nil {
		return "", fmt.Errorf("marshal smart list: %w", err)
	}
	return string(out), nil
}

// Parse decodes a stored smart-list payload.
func Parse(payload string) (Definition, error) {
	var node xmlNode
	if err := xml.Unmarshal([]byte(payload), &node); err != nil {
		return Definition{}, fmt.Errorf("parse smart list: %w", err)
	}

	def := Definition{Logical: LogicalOperator(node.LogicalOperator)}
	if !def.Logical.Valid() {
		return Definition{}, fmt.Errorf("parse smart list: invalid logical operator %d", node.LogicalOperator)
	}

	for _, xc := range node.Conditions {
		c := Condition{Property: Property(xc.PropertyName), Operator: Operator(xc.Operator)}
		switch c.Property {
		case PropertyMyTag:
			raw, err := strconv.ParseInt(xc.ValueLeft, 10, 64)
			if err != nil {
				return Definition{}, fmt.Errorf("parse smart list: tag value %q: %w", xc.ValueLeft, err)
			}
			c.TagID = decodeTagID(raw)
		case PropertyRating:
			c.Low = xc.ValueLeft
			c.High = xc.ValueRight
		default:
			c.Low = xc.ValueLeft
			c.High = xc.ValueRight
			c.Unit = xc.ValueUnit
		}
		def.Conditions = append(def.Conditions, c)
	}
	return def, nil
}

// The library stores tag ids, which are unsigned 32-bit, as signed 32-bit
// values.
func encodeTagID(id int64) int64 {
	return int64(int32(uint32(id)))
}

func decodeTagID(v int64) int64 {
	if v < 0 {
		v += 1 << 32
	}
	return v
}
