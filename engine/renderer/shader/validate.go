package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
)

// ErrInvalidWGSL is returned by Validate when naga rejects a WGSL module.
var ErrInvalidWGSL = errors.New("shader: invalid WGSL")

// Validate runs WGSL source through naga's front end, validator and SPIR-V backend. Reflection in
// this package stays regex based; naga only answers whether the module is well formed.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - error: ErrInvalidWGSL wrapping naga's diagnostics, or nil
func Validate(source string) error {
	spirv, err := naga.Compile(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWGSL, err)
	}
	if len(spirv) == 0 {
		return fmt.Errorf("%w: empty module", ErrInvalidWGSL)
	}
	return nil
}
