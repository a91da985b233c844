package material

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the label of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithCullMode is an option builder that sets which faces are culled. Defaults to CullBack.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - MaterialBuilderOption: a function that applies the cull mode option to a material
func WithCullMode(mode CullMode) MaterialBuilderOption {
	return func(m *material) {
		m.cullMode = mode
	}
}

// WithWinding is an option builder that sets the front face winding. Defaults to WindingCCW.
//
// Parameters:
//   - winding: the winding order
//
// Returns:
//   - MaterialBuilderOption: a function that applies the winding option to a material
func WithWinding(winding Winding) MaterialBuilderOption {
	return func(m *material) {
		m.winding = winding
	}
}
