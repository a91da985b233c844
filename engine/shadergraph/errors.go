package shadergraph

import "errors"

var (
	// ErrMissingNode is returned when an operand handle does not resolve in the node pool.
	ErrMissingNode = errors.New("shadergraph: missing node")

	// ErrMissingTexture is returned when a texture sample references a texture that does not exist.
	ErrMissingTexture = errors.New("shadergraph: missing texture")

	// ErrMissingSampler is returned when a texture sample references a sampler that does not exist.
	ErrMissingSampler = errors.New("shadergraph: missing sampler")

	// ErrCycle is returned when a node is reachable from itself.
	ErrCycle = errors.New("shadergraph: cycle in shading graph")

	// ErrTypeMismatch is returned when operand value types cannot be combined by an operation.
	ErrTypeMismatch = errors.New("shadergraph: operand type mismatch")

	// ErrInvalidNode is returned for malformed nodes: wrong operand count, bad swizzle, non-finite constants.
	ErrInvalidNode = errors.New("shadergraph: invalid node")
)
