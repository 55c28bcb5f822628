package primitives

// PrimitiveDef is the YAML definition for a default primitive (see catalog.yaml).
// Segments sets tessellation for round shapes; Metalness and Roughness are the
// default surface parameters every primitive of that type is built with.
type PrimitiveDef struct {
	Type      string  `yaml:"type"`
	Segments  int     `yaml:"segments,omitempty"`
	Metalness float32 `yaml:"metalness"`
	Roughness float32 `yaml:"roughness"`
}
