package circuit

// Moments schedules the gates into layers that can run in parallel: each
// gate goes to the layer right after the last layer that used any of its
// qubits. The result lists gate indices per layer, in circuit order.
func (c *Circuit) Moments() [][]int {
	// Track the layer of the last gate on each qubit to establish dependencies
	lastLayerOnQubit := make(map[int]int)
	var moments [][]int
	for i, gate := range c.Gates {
		layer := 0
		for _, q := range gate.Qubits() {
			if last, ok := lastLayerOnQubit[q]; ok {
				layer = max(layer, last+1)
			}
		}
		for layer >= len(moments) {
			moments = append(moments, nil)
		}
		moments[layer] = append(moments[layer], i)
		for _, q := range gate.Qubits() {
			lastLayerOnQubit[q] = layer
		}
	}
	return moments
}

// Depth returns the number of layers found by Moments.
func (c *Circuit) Depth() int {
	return len(c.Moments())
}
