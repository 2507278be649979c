// Package opmodel defines the op model: one legal way to execute a compute
// node on the device grid.
package opmodel

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/twmb/murmur3"
)

// Class is a bitmask of structural tags attached to an op model. The ribbon
// prepass uses them to drop known-suboptimal combinations.
type Class uint32

const (
	// SparseDenseGridPairing marks sparse/dense matmul pairs whose grids do
	// not line up.
	SparseDenseGridPairing Class = 1 << iota
	// DenseMatmulPrologue marks dense matmuls that require a prologue copy of
	// their parameters.
	DenseMatmulPrologue
	// DenseMatmulBetterUkt marks dense matmuls for which a variant with a
	// larger inner block exists.
	DenseMatmulBetterUkt
)

var classNames = map[string]Class{
	"sparse_dense_grid_pairing": SparseDenseGridPairing,
	"dense_matmul_prologue":     DenseMatmulPrologue,
	"dense_matmul_better_ukt":   DenseMatmulBetterUkt,
}

// ParseClass converts a class tag name into its bit.
func ParseClass(name string) (Class, error) {
	c, ok := classNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown op model class %q", name)
	}
	return c, nil
}

// Has reports whether any bit of mask is set on c.
func (c Class) Has(mask Class) bool {
	return c&mask != 0
}

// String renders the set bits as a comma separated list of tag names.
func (c Class) String() string {
	var names []string
	for name, bit := range classNames {
		if c&bit != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// OpModel is a value type; two op models with equal fields are the same
// configuration.
type OpModel struct {
	// NodeID is the compute node this op model belongs to.
	NodeID string
	// GridR and GridC are the rows and columns of cores allocated.
	GridR int
	GridC int
	// T is the pipelining depth factor (t-stream factor).
	T int
	// Cycles is the estimated execution cycle count.
	Cycles int
	// Classes tags the op model for the suboptimal prepass.
	Classes Class
	// OperandTMatch makes this op model legal only when every committed
	// compute operand was scheduled with the same T.
	OperandTMatch bool
}

// Footprint is the number of cores the op model occupies.
func (m OpModel) Footprint() int {
	return m.GridR * m.GridC
}

// ID returns a stable 64-bit identity derived from the node and the
// configuration content.
func (m OpModel) ID() uint64 {
	buf := make([]byte, 0, len(m.NodeID)+1+5*8+1)
	buf = append(buf, m.NodeID...)
	buf = append(buf, 0)
	for _, v := range []int{m.GridR, m.GridC, m.T, m.Cycles, int(m.Classes)} {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(v))
	}
	if m.OperandTMatch {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return murmur3.Sum64(buf)
}

func (m OpModel) String() string {
	return fmt.Sprintf("%s[grid=%dx%d t=%d cycles=%d]", m.NodeID, m.GridR, m.GridC, m.T, m.Cycles)
}

// SortStable orders op models by ID so callers iterating a legal set get a
// reproducible sequence.
func SortStable(models []OpModel) {
	sort.SliceStable(models, func(i, j int) bool {
		return models[i].ID() < models[j].ID()
	})
}
