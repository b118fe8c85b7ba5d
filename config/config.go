// Package config loads a structured decomposition from an HCL file.
//
// A file names the whole extent, the per-axis split and the ghost depth.
// Expressions may refer to input variables as var.<name>; values come from
// variable blocks with defaults, overridden by the caller:
//
//	variable "ghost" {
//	  default = 2
//	}
//
//	whole_extent    = [0, 99, 0, 49, 0, 0]
//	ghost_layers    = var.ghost
//	ranks           = 4
//	shared_boundary = true
//	strategy        = "block"
//	block_type      = "image"
//
//	split {
//	  x = 2
//	  y = 2
//	}
package config

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/notargets/GridHalo/ctxlog"
	"github.com/notargets/GridHalo/dataset"
	"github.com/notargets/GridHalo/extent"
	"github.com/notargets/GridHalo/partitions"
	"github.com/zclconf/go-cty/cty"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config is the decoded decomposition file
type Config struct {
	WholeExtent    []int     `hcl:"whole_extent"`
	GhostLayers    int       `hcl:"ghost_layers,optional"`
	Ranks          int       `hcl:"ranks,optional"`
	SharedBoundary bool      `hcl:"shared_boundary,optional"`
	Strategy       string    `hcl:"strategy,optional"`
	BlockType      string    `hcl:"block_type,optional"`
	Origin         []float64 `hcl:"origin,optional"`
	Spacing        []float64 `hcl:"spacing,optional"`
	Split          *Split    `hcl:"split,block"`

	// Source file, not decoded
	Path string
}

// Split is the number of blocks along each axis; unset axes are not split
type Split struct {
	X int `hcl:"x,optional"`
	Y int `hcl:"y,optional"`
	Z int `hcl:"z,optional"`
}

// hclFile separates variable declarations from the settings, which are
// decoded once the variables are known
type hclFile struct {
	Variables []*hclVariable `hcl:"variable,block"`
	Remain    hcl.Body       `hcl:",remain"`
}

type hclVariable struct {
	Name    string    `hcl:"name,label"`
	Default cty.Value `hcl:"default,optional"`
}

// Load parses path and decodes it with vars overriding variable defaults.
// Override values are strings and are converted to the type each expression
// needs.
func Load(ctx context.Context, path string, vars map[string]string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var raw hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	values := make(map[string]cty.Value)
	for _, v := range raw.Variables {
		if _, dup := values[v.Name]; dup {
			return nil, fmt.Errorf("%s: variable %q declared twice", path, v.Name)
		}
		if v.Default.IsNull() {
			values[v.Name] = cty.NullVal(cty.DynamicPseudoType)
		} else {
			values[v.Name] = v.Default
		}
	}
	for name, val := range vars {
		if _, ok := values[name]; !ok {
			logger.Warn("Override for undeclared variable.", "name", name)
		}
		values[name] = cty.StringVal(val)
	}
	for name, val := range values {
		if val.IsNull() {
			return nil, fmt.Errorf("%s: variable %q has no value", path, name)
		}
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": cty.ObjectVal(values)},
	}

	cfg := &Config{Path: path}
	if diags := gohcl.DecodeBody(raw.Remain, evalCtx, cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	logger.Debug("Loaded decomposition file.", "path", path, "variables", len(values))
	return cfg, nil
}

// Builder validates the settings and converts them to a layout builder
func (c *Config) Builder() (*partitions.LayoutBuilder, error) {
	if len(c.WholeExtent) != 6 {
		return nil, fmt.Errorf("%s: whole_extent needs 6 values, got %d", c.Path, len(c.WholeExtent))
	}
	whole := extent.New(c.WholeExtent[0], c.WholeExtent[1], c.WholeExtent[2],
		c.WholeExtent[3], c.WholeExtent[4], c.WholeExtent[5])

	strategy, err := ParseStrategy(c.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Path, err)
	}
	blockType, err := ParseBlockType(c.BlockType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Path, err)
	}
	origin, err := vec(c.Origin, r3.Vec{})
	if err != nil {
		return nil, fmt.Errorf("%s: origin: %w", c.Path, err)
	}
	spacing, err := vec(c.Spacing, r3.Vec{X: 1, Y: 1, Z: 1})
	if err != nil {
		return nil, fmt.Errorf("%s: spacing: %w", c.Path, err)
	}

	splits := [3]int{1, 1, 1}
	if c.Split != nil {
		for i, n := range []int{c.Split.X, c.Split.Y, c.Split.Z} {
			if n != 0 {
				splits[i] = n
			}
		}
	}

	return &partitions.LayoutBuilder{
		Whole:          whole,
		Splits:         splits,
		NumRanks:       max(c.Ranks, 1),
		Strategy:       strategy,
		SharedBoundary: c.SharedBoundary,
		GhostLayers:    c.GhostLayers,
		BlockType:      blockType,
		Origin:         origin,
		Spacing:        spacing,
	}, nil
}

// ParseStrategy maps "block" (or empty) and "round-robin" to strategies
func ParseStrategy(s string) (partitions.PartitionStrategy, error) {
	switch s {
	case "", "block":
		return partitions.BlockPartition, nil
	case "round-robin", "roundrobin":
		return partitions.RoundRobin, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

// ParseBlockType maps block type names to logically Cartesian dataset types
func ParseBlockType(s string) (dataset.Type, error) {
	switch s {
	case "", "image":
		return dataset.TypeImageData, nil
	case "uniform":
		return dataset.TypeUniformGrid, nil
	case "rectilinear":
		return dataset.TypeRectilinearGrid, nil
	case "structured":
		return dataset.TypeStructuredGrid, nil
	}
	return 0, fmt.Errorf("unknown block type %q", s)
}

func vec(v []float64, def r3.Vec) (r3.Vec, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
	}
	return r3.Vec{}, fmt.Errorf("need 3 values, got %d", len(v))
}
