package circuit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Pre-compiled regexps for QASM parsing.
var (
	singleGateRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\];?$`)
	singleGateParamRegex = regexp.MustCompile(`^(\w+)\s*\(\s*(` + anglePattern + `)\s*\)\s+q\[(\d+)\];?$`)
	twoQubitRegex        = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	twoQubitParamRegex   = regexp.MustCompile(`^(\w+)\s*\(\s*(` + anglePattern + `)\s*\)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	qregRegex            = regexp.MustCompile(`^qreg\s+(\w+)\[(\d+)\];?$`)
)

// ToQASM generates OpenQASM 2.0 output from a bound circuit.
func (c *Circuit) ToQASM() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n\n", c.NumQubits)

	for i, gate := range c.Gates {
		spec := gateSpecs[gate.Type]
		var args string
		if len(gate.Params) > 0 {
			values := make([]string, len(gate.Params))
			for j, a := range gate.Params {
				if !a.IsBound() {
					return "", errors.Wrapf(ErrUnbound, "gate #%d (%s) depends on %q", i, gate.Type, a.Param.Name)
				}
				values[j] = FormatAngle(a.Offset)
			}
			args = "(" + strings.Join(values, ", ") + ")"
		}
		if gate.IsControlled() {
			fmt.Fprintf(&sb, "%s%s q[%d], q[%d];\n", spec.QASM, args, gate.Control, gate.Target)
		} else {
			fmt.Fprintf(&sb, "%s%s q[%d];\n", spec.QASM, args, gate.Target)
		}
	}
	return sb.String(), nil
}

// ParseQASM parses the OpenQASM 2.0 subset written by ToQASM. Comments,
// creg, barrier and measure lines are skipped.
func ParseQASM(qasm string) (*Circuit, error) {
	c := &Circuit{}
	for lineNum, line := range strings.Split(qasm, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "OPENQASM") ||
			strings.HasPrefix(line, "include") ||
			strings.HasPrefix(line, "creg") ||
			strings.HasPrefix(line, "barrier") ||
			strings.HasPrefix(line, "measure") {
			continue
		}
		if strings.HasPrefix(line, "qreg") {
			matches := qregRegex.FindStringSubmatch(line)
			if matches == nil {
				return nil, errors.Errorf("line %d: malformed qreg %q", lineNum+1, line)
			}
			if matches[1] != "q" {
				return nil, errors.Errorf("line %d: unsupported register %q, gates must act on q", lineNum+1, matches[1])
			}
			n, _ := strconv.Atoi(matches[2])
			c.NumQubits += n
			continue
		}
		if err := c.parseGateLine(line); err != nil {
			return nil, errors.WithMessagef(err, "line %d", lineNum+1)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// parseGateLine appends the gate described by a single QASM statement.
func (c *Circuit) parseGateLine(line string) error {
	// Two-qubit parameterized gates (CRX, CRY, CRZ)
	if matches := twoQubitParamRegex.FindStringSubmatch(line); matches != nil {
		spec, err := specFor(matches[1], 1, true)
		if err != nil {
			return err
		}
		param, ok := ParseAngle(matches[2])
		if !ok {
			return errors.Errorf("invalid angle %q", matches[2])
		}
		control, _ := strconv.Atoi(matches[3])
		target, _ := strconv.Atoi(matches[4])
		c.AddParameterizedGate(spec.Type, target, []Angle{Const(param)}, control)
		return nil
	}

	// Single-qubit parameterized gates (RX, RY, RZ)
	if matches := singleGateParamRegex.FindStringSubmatch(line); matches != nil {
		spec, err := specFor(matches[1], 1, false)
		if err != nil {
			return err
		}
		param, ok := ParseAngle(matches[2])
		if !ok {
			return errors.Errorf("invalid angle %q", matches[2])
		}
		target, _ := strconv.Atoi(matches[3])
		c.AddParameterizedGate(spec.Type, target, []Angle{Const(param)})
		return nil
	}

	// Two-qubit gates: cx, cz
	if matches := twoQubitRegex.FindStringSubmatch(line); matches != nil {
		spec, err := specFor(matches[1], 0, true)
		if err != nil {
			return err
		}
		control, _ := strconv.Atoi(matches[2])
		target, _ := strconv.Atoi(matches[3])
		c.AddGate(spec.Type, target, control)
		return nil
	}

	// Single-qubit gates
	if matches := singleGateRegex.FindStringSubmatch(line); matches != nil {
		spec, err := specFor(matches[1], 0, false)
		if err != nil {
			return err
		}
		target, _ := strconv.Atoi(matches[2])
		c.AddGate(spec.Type, target)
		return nil
	}

	return errors.Errorf("unsupported statement %q", line)
}

// specFor finds the gate for a QASM mnemonic and checks its shape.
func specFor(mnemonic string, numParams int, controlled bool) (GateSpec, error) {
	spec, ok := lookupQASM(strings.ToLower(mnemonic))
	if !ok {
		return spec, errors.Errorf("unsupported gate %q", mnemonic)
	}
	if spec.numParams != numParams || spec.controlled != controlled {
		return spec, errors.Errorf("gate %q used with the wrong number of arguments", mnemonic)
	}
	return spec, nil
}
