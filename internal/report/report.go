// Package report renders a balancer solution for people and for tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vk/gridbalancer/internal/balancer"
	"gopkg.in/yaml.v3"
)

// Format names an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatYAML, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown report format %q (want text, yaml or json)", s)
}

// Report is the serializable view of a solution.
type Report struct {
	RunID       string  `json:"run_id" yaml:"run_id"`
	Policy      string  `json:"policy" yaml:"policy"`
	Capacity    int     `json:"capacity" yaml:"capacity"`
	TotalCycles int     `json:"total_cycles" yaml:"total_cycles"`
	Epochs      []Epoch `json:"epochs" yaml:"epochs"`
}

// Epoch is one finalized epoch.
type Epoch struct {
	Index      int  `json:"index" yaml:"index"`
	Footprint  int  `json:"footprint" yaml:"footprint"`
	Cycles     int  `json:"cycles" yaml:"cycles"`
	RibbonSize int  `json:"ribbon_size" yaml:"ribbon_size"`
	Ops        []Op `json:"ops" yaml:"ops"`
}

// Op is one commitment together with its placement.
type Op struct {
	Node      string `json:"node" yaml:"node"`
	GridR     int    `json:"grid_r" yaml:"grid_r"`
	GridC     int    `json:"grid_c" yaml:"grid_c"`
	T         int    `json:"t" yaml:"t"`
	Cycles    int    `json:"cycles" yaml:"cycles"`
	Classes   string `json:"classes,omitempty" yaml:"classes,omitempty"`
	FirstCore int    `json:"first_core" yaml:"first_core"`
	Row       int    `json:"row" yaml:"row"`
	Col       int    `json:"col" yaml:"col"`
}

// New builds the report for sol.
func New(sol *balancer.Solution) *Report {
	r := &Report{
		RunID:       sol.RunID,
		Policy:      sol.Policy,
		Capacity:    sol.Capacity,
		TotalCycles: sol.TotalCycles(),
		Epochs:      make([]Epoch, 0, len(sol.Epochs)),
	}
	for _, e := range sol.Epochs {
		epoch := Epoch{
			Index:      e.Index,
			Footprint:  e.Footprint,
			Cycles:     e.Cycles,
			RibbonSize: e.RibbonSize,
			Ops:        make([]Op, 0, len(e.Commitments)),
		}
		for _, c := range e.Commitments {
			op := Op{
				Node:   c.NodeID,
				GridR:  c.OpModel.GridR,
				GridC:  c.OpModel.GridC,
				T:      c.OpModel.T,
				Cycles: c.OpModel.Cycles,
			}
			if c.OpModel.Classes != 0 {
				op.Classes = c.OpModel.Classes.String()
			}
			if sol.Placement != nil {
				if p, ok := sol.Placement.Placements[c.NodeID]; ok {
					op.FirstCore, op.Row, op.Col = p.FirstCore, p.Row, p.Col
				}
			}
			epoch.Ops = append(epoch.Ops, op)
		}
		r.Epochs = append(r.Epochs, epoch)
	}
	return r
}

// Write encodes r to w in the given format.
func Write(w io.Writer, f Format, r *Report) error {
	switch f {
	case FormatText:
		_, err := io.WriteString(w, renderText(r))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding yaml report: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding json report: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown report format %q", f)
}
