// Package testpb holds message types written in the shape that generated
// code takes. They stand in for protoc output in tests and benchmarks.
//
// The equivalent .proto definitions are:
//
//	syntax = "proto3";
//	package protocodec.test;
//
//	enum Color { COLOR_UNSPECIFIED = 0; RED = 1; GREEN = 2; BLUE = 3; }
//
//	message Scalars { double double = 1; ... Color color = 16; }
//	message Repeated { repeated int32 ints = 1; ... }
//	message Maps { map<string, int32> counts = 1; ... }
//
// Nested uses proto2 syntax so that it can carry groups and explicit
// presence.
package testpb

import (
	"strconv"

	"github.com/anirudhraja/protocodec/wire"
)

// Color is an open enum: unknown numbers are kept as-is.
type Color int32

const (
	ColorUnspecified Color = 0
	ColorRed         Color = 1
	ColorGreen       Color = 2
	ColorBlue        Color = 3
)

var colorNames = map[Color]string{
	ColorUnspecified: "COLOR_UNSPECIFIED",
	ColorRed:         "RED",
	ColorGreen:       "GREEN",
	ColorBlue:        "BLUE",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return "Color(" + strconv.FormatInt(int64(c), 10) + ")"
}

// Priority is a proto2 enum whose first declared value is not zero, so
// its default is PriorityNormal.
type Priority int32

const (
	PriorityNormal Priority = 2
	PriorityLow    Priority = 1
	PriorityHigh   Priority = 3
)

// PriorityDefault is the first declared value.
const PriorityDefault = PriorityNormal

var (
	colorCodec    = wire.NewEnum[Color]("protocodec.test.Color")
	priorityCodec = wire.NewEnum[Priority]("protocodec.test.Priority")
)
