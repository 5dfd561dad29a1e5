// Package ansatz builds the parametrized 9-qubit classifier circuit for
// tic-tac-toe: one qubit per board cell, with gate blocks that respect the
// symmetry of the grid (corners, edges and center share their weights).
package ansatz

import (
	"qtictac/internal/board"
	"qtictac/internal/circuit"
)

// NumQubits is the size of the register: one qubit per cell.
const NumQubits = board.Size

// Qubit groups of the 3x3 grid.
var (
	Corners = []int{0, 2, 6, 8}
	Edges   = []int{1, 3, 5, 7}
	Center  = 4
)

// OuterRing are the control->target pairs linking each corner to its two
// neighbouring edges.
var OuterRing = [][2]int{
	{0, 1}, {0, 3}, {2, 1}, {2, 5}, {6, 3}, {6, 7}, {8, 5}, {8, 7},
}

// rotations applies RX(theta1) then RY(theta2) to each qubit.
func rotations(qubits []int, theta1, theta2 circuit.Angle) *circuit.Circuit {
	c := circuit.New(NumQubits)
	for _, q := range qubits {
		c.RX(theta1, q)
		c.RY(theta2, q)
	}
	return c
}

// CornerBlock rotates the corner qubits.
func CornerBlock(theta1, theta2 circuit.Angle) *circuit.Circuit {
	return rotations(Corners, theta1, theta2)
}

// EdgeBlock rotates the edge qubits.
func EdgeBlock(theta1, theta2 circuit.Angle) *circuit.Circuit {
	return rotations(Edges, theta1, theta2)
}

// CenterBlock rotates the center qubit.
func CenterBlock(theta1, theta2 circuit.Angle) *circuit.Circuit {
	return rotations([]int{Center}, theta1, theta2)
}

// OuterRingBlock entangles each corner with its neighbouring edges.
func OuterRingBlock(theta circuit.Angle) *circuit.Circuit {
	c := circuit.New(NumQubits)
	for _, pair := range OuterRing {
		c.CRY(theta, pair[0], pair[1])
	}
	return c
}

// InnerBlock entangles each edge, as control, with the center.
func InnerBlock(theta circuit.Angle) *circuit.Circuit {
	c := circuit.New(NumQubits)
	for _, control := range Edges {
		c.CRY(theta, control, Center)
	}
	return c
}

// CenterToCornersBlock entangles the center, as control, with each corner.
func CenterToCornersBlock(theta circuit.Angle) *circuit.Circuit {
	c := circuit.New(NumQubits)
	for _, target := range Corners {
		c.CRY(theta, Center, target)
	}
	return c
}
