// Package config loads surface build settings from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/soypat/parasurf"
	"github.com/soypat/parasurf/mesh"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

// Config holds everything needed to build a mesh.
type Config struct {
	// Kind names the surface, see parasurf.New.
	Kind       string               `toml:"kind" yaml:"kind"`
	Shape      parasurf.ShapeParams `toml:"shape" yaml:"shape"`
	Resolution mesh.Resolution      `toml:"resolution" yaml:"resolution"`
	// Domain overrides the surface's default parameter domain when set.
	Domain *Domain `toml:"domain,omitempty" yaml:"domain,omitempty"`
	// Tangents is one of "displacement", "unit" or "derivative".
	Tangents string `toml:"tangents" yaml:"tangents"`
	// IndexWidth is 16, 32 or 0 to pick automatically.
	IndexWidth int `toml:"index_width" yaml:"index_width"`
	Concurrent int `toml:"concurrent" yaml:"concurrent"`
}

// Domain is a parameter domain u∈[UMin,UMax], v∈[VMin,VMax].
type Domain struct {
	UMin float64 `toml:"u_min" yaml:"u_min"`
	UMax float64 `toml:"u_max" yaml:"u_max"`
	VMin float64 `toml:"v_min" yaml:"v_min"`
	VMax float64 `toml:"v_max" yaml:"v_max"`
}

func (d Domain) box() r2.Box {
	return r2.Box{Min: r2.Vec{X: d.UMin, Y: d.VMin}, Max: r2.Vec{X: d.UMax, Y: d.VMax}}
}

// Default returns the unit ribbon at a 64x64 resolution.
func Default() Config {
	return Config{
		Kind:       parasurf.KindRibbon,
		Shape:      parasurf.ShapeParams{L: 1, T: 1, B: 1},
		Resolution: mesh.Resolution{USteps: 64, VSteps: 64},
		Tangents:   mesh.TangentDisplacement.String(),
	}
}

// Load reads the file at path over Default. The format is picked by the
// file extension: .toml, .yaml or .yml. Unknown keys are an error.
func Load(path string) (Config, error) {
	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		format = "toml"
	case ".yaml", ".yml":
		format = "yaml"
	default:
		return Config{}, fmt.Errorf("config %s: unsupported extension, want .toml, .yaml or .yml", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Decode(bytes.NewReader(b), format)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads a "toml" or "yaml" document from r over Default.
func Decode(r io.Reader, format string) (Config, error) {
	cfg := Default()
	switch format {
	case "toml":
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, err
		}
	case "yaml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("unknown config format %q", format)
	}
	return cfg, nil
}

// Encode writes c to w in "toml" or "yaml" format.
func (c Config) Encode(w io.Writer, format string) error {
	switch format {
	case "toml":
		return toml.NewEncoder(w).Encode(c)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown config format %q", format)
}

// Surface returns the configured surface.
func (c Config) Surface() (parasurf.Surface, error) {
	s, err := parasurf.New(c.Kind, c.Shape)
	if err != nil || c.Domain == nil {
		return s, err
	}
	switch s := s.(type) {
	case *parasurf.Ribbon:
		return s.WithDomain(c.Domain.box())
	case *parasurf.Folium:
		return s.WithDomain(c.Domain.box())
	}
	return nil, fmt.Errorf("surface %q does not support domain override", c.Kind)
}

// Options returns the configured build options. Concurrency is clamped
// to ConcurrentRange.
func (c Config) Options() (mesh.Options, error) {
	mode, err := mesh.ParseTangentMode(c.Tangents)
	if err != nil {
		return mesh.Options{}, err
	}
	var width mesh.IndexFormat
	switch c.IndexWidth {
	case 0, 16, 32:
		width = mesh.IndexFormat(c.IndexWidth)
	default:
		return mesh.Options{}, fmt.Errorf("index width %d not one of 0, 16 or 32", c.IndexWidth)
	}
	return mesh.Options{
		Tangents:   mode,
		IndexWidth: width,
		Concurrent: int(ConcurrentRange.clamp(float64(c.Concurrent))),
	}, nil
}

// Build builds the configured mesh.
func (c Config) Build() (*mesh.Mesh, error) {
	s, err := c.Surface()
	if err != nil {
		return nil, err
	}
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return mesh.Build(s, c.Resolution, &opts)
}
