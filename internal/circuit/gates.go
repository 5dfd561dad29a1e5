package circuit

import "slices"

// GateSpec describes one supported gate type.
type GateSpec struct {
	Name       string // human readable name
	Type       string // gate type as stored in Gate.Type
	Symbol     string // short symbol used when drawing
	QASM       string // OpenQASM 2.0 mnemonic
	numParams  int
	controlled bool
}

// NumParams returns the number of angles the gate takes.
func (s GateSpec) NumParams() int { return s.numParams }

// Controlled reports whether the gate has a control qubit.
func (s GateSpec) Controlled() bool { return s.controlled }

// gateCatalog groups the supported gates the same way they are documented.
var gateCatalog = []struct {
	name  string
	gates []GateSpec
}{
	{
		name: "Single Qubit",
		gates: []GateSpec{
			{Name: "Hadamard", Type: "H", Symbol: "H", QASM: "h"},
			{Name: "Pauli-X (NOT)", Type: "X", Symbol: "X", QASM: "x"},
			{Name: "Pauli-Y", Type: "Y", Symbol: "Y", QASM: "y"},
			{Name: "Pauli-Z", Type: "Z", Symbol: "Z", QASM: "z"},
			{Name: "Phase (S)", Type: "S", Symbol: "S", QASM: "s"},
			{Name: "Phase Dagger (S†)", Type: "SDG", Symbol: "S†", QASM: "sdg"},
			{Name: "T Gate", Type: "T", Symbol: "T", QASM: "t"},
		},
	},
	{
		name: "Rotation",
		gates: []GateSpec{
			{Name: "Rotate X", Type: "RX", Symbol: "RX", QASM: "rx", numParams: 1},
			{Name: "Rotate Y", Type: "RY", Symbol: "RY", QASM: "ry", numParams: 1},
			{Name: "Rotate Z", Type: "RZ", Symbol: "RZ", QASM: "rz", numParams: 1},
		},
	},
	{
		name: "Multi Qubit",
		gates: []GateSpec{
			{Name: "CNOT", Type: "CX", Symbol: "⊕", QASM: "cx", controlled: true},
			{Name: "Controlled-Z", Type: "CZ", Symbol: "●", QASM: "cz", controlled: true},
			{Name: "C-Rotate X", Type: "CRX", Symbol: "RX", QASM: "crx", numParams: 1, controlled: true},
			{Name: "C-Rotate Y", Type: "CRY", Symbol: "RY", QASM: "cry", numParams: 1, controlled: true},
			{Name: "C-Rotate Z", Type: "CRZ", Symbol: "RZ", QASM: "crz", numParams: 1, controlled: true},
		},
	},
}

// gateSpecs indexes gateCatalog by gate type.
var gateSpecs = func() map[string]GateSpec {
	specs := make(map[string]GateSpec)
	for _, cat := range gateCatalog {
		for _, s := range cat.gates {
			specs[s.Type] = s
		}
	}
	return specs
}()

// LookupGate returns the spec of a gate type.
func LookupGate(gateType string) (GateSpec, bool) {
	s, ok := gateSpecs[gateType]
	return s, ok
}

// lookupQASM returns the spec for an OpenQASM mnemonic.
func lookupQASM(mnemonic string) (GateSpec, bool) {
	for _, cat := range gateCatalog {
		if i := slices.IndexFunc(cat.gates, func(s GateSpec) bool { return s.QASM == mnemonic }); i >= 0 {
			return cat.gates[i], true
		}
	}
	return GateSpec{}, false
}

// GateTypes lists the supported gate types in catalog order.
func GateTypes() []string {
	var types []string
	for _, cat := range gateCatalog {
		for _, s := range cat.gates {
			types = append(types, s.Type)
		}
	}
	return types
}
