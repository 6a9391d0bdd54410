// Package voxel provides the dense voxel grid and its carving operations.
package voxel

import (
	"fmt"
	"strconv"
	"strings"
)

// Index is an integer grid coordinate.
type Index struct {
	X, Y, Z int
}

// Add returns i + other.
func (i Index) Add(other Index) Index {
	return Index{i.X + other.X, i.Y + other.Y, i.Z + other.Z}
}

// String returns the index as "x_y_z", the same form used for voxel names.
func (i Index) String() string {
	return fmt.Sprintf("%d_%d_%d", i.X, i.Y, i.Z)
}

// ParseIndex parses an index written as "x_y_z" or "x,y,z".
func ParseIndex(s string) (Index, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == ',' })
	if len(parts) != 3 {
		return Index{}, fmt.Errorf("invalid index %q: want x_y_z", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Index{}, fmt.Errorf("invalid index %q: %w", s, err)
		}
		v[i] = n
	}
	return Index{v[0], v[1], v[2]}, nil
}

// Volume returns X*Y*Z.
func (i Index) Volume() int {
	return i.X * i.Y * i.Z
}

// FunctionState is the categorical tag carried by a voxel.
type FunctionState uint8

// Function states. None on an active voxel marks a void cell.
const (
	None FunctionState = iota
	Black
	Red
	Yellow
	Green
	Cyan
	Magenta

	numFunctionStates
)

var functionStateNames = [numFunctionStates]string{
	None:    "None",
	Black:   "Black",
	Red:     "Red",
	Yellow:  "Yellow",
	Green:   "Green",
	Cyan:    "Cyan",
	Magenta: "Magenta",
}

// String returns a human-readable state name.
func (s FunctionState) String() string {
	if s < numFunctionStates {
		return functionStateNames[s]
	}
	return fmt.Sprintf("Unknown(%d)", s)
}

// Valid reports whether s is one of the defined states.
func (s FunctionState) Valid() bool {
	return s < numFunctionStates
}

// FunctionStates returns every defined state in declaration order.
func FunctionStates() []FunctionState {
	states := make([]FunctionState, numFunctionStates)
	for i := range states {
		states[i] = FunctionState(i)
	}
	return states
}

// ParseFunctionState parses a state name, case-insensitively.
func ParseFunctionState(name string) (FunctionState, error) {
	for i, n := range functionStateNames {
		if strings.EqualFold(n, name) {
			return FunctionState(i), nil
		}
	}
	return None, fmt.Errorf("unknown function state %q", name)
}

// Voxel is a single grid cell.
type Voxel struct {
	Index  Index
	Active bool
	State  FunctionState
}

// IsVoid reports whether the voxel is active but untagged.
func (v Voxel) IsVoid() bool {
	return v.Active && v.State == None
}
