package compose

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"scene-engine/internal/asset"
)

// Report is a serializable summary of a frame.
type Report struct {
	Objects  []ObjectReport `yaml:"objects"`
	Effects  int            `yaml:"effects"`
	Pending  int            `yaml:"pending"`
	Errors   []string       `yaml:"errors,omitempty"`
	Warnings []string       `yaml:"warnings,omitempty"`
}

// ObjectReport describes one placed object.
type ObjectReport struct {
	ID        string       `yaml:"id"`
	Source    string       `yaml:"source"`
	Archetype string       `yaml:"archetype,omitempty"`
	Position  [3]float32   `yaml:"position,flow"`
	Nodes     int          `yaml:"nodes"`
	Parts     []asset.Part `yaml:"parts,omitempty"`
}

// Summarize builds the report for f. pending is the number of loads still in flight.
func Summarize(f *Frame, pending int) Report {
	r := Report{Effects: f.Visuals, Pending: pending}
	for _, p := range f.Objects {
		o := ObjectReport{
			ID:       p.ID,
			Source:   p.Source.String(),
			Position: p.Node.Position,
			Nodes:    p.Node.Count(),
			Parts:    f.Parts[p.ID],
		}
		if p.Source == SourceSynth {
			o.Archetype = p.Archetype.String()
		}
		r.Objects = append(r.Objects, o)
	}
	for _, err := range f.Errors {
		r.Errors = append(r.Errors, err.Error())
	}
	for _, w := range f.Warnings {
		r.Warnings = append(r.Warnings, w.String())
	}
	return r
}

// WriteYAML encodes r to w.
func (r Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return enc.Close()
}
