package shadergraph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
)

// Emitter carries the state shared by Node.Emit calls while generating one fragment body.
type Emitter struct {
	pool    *resource.Pool[Node]
	visited map[resource.Handle[Node]]bool
	// nodes whose operands are still being emitted
	pending map[resource.Handle[Node]]bool
	types   map[resource.Handle[Node]]ValueType
}

// NewEmitter creates an Emitter resolving operands against pool.
//
// Parameters:
//   - pool: the node pool
//
// Returns:
//   - *Emitter: an emitter with no nodes emitted yet
func NewEmitter(pool *resource.Pool[Node]) *Emitter {
	return &Emitter{
		pool:    pool,
		visited: make(map[resource.Handle[Node]]bool),
		pending: make(map[resource.Handle[Node]]bool),
		types:   make(map[resource.Handle[Node]]ValueType),
	}
}

// TypeOf returns the inferred value type of an already emitted node.
func (e *Emitter) TypeOf(h resource.Handle[Node]) (ValueType, bool) {
	t, ok := e.types[h]
	return t, ok
}

// Emit returns the WGSL statements computing this node and every operand not yet emitted.
// Each node produces exactly one `let` binding named by OutputName, and a node already emitted
// by e produces nothing.
//
// Parameters:
//   - e: the emitter state
//   - self: the handle of this node
//
// Returns:
//   - string: zero or more WGSL statements, each on its own line
//   - error: ErrMissingNode, ErrCycle, ErrTypeMismatch or ErrInvalidNode
func (n Node) Emit(e *Emitter, self resource.Handle[Node]) (string, error) {
	if e.visited[self] {
		return "", nil
	}
	if e.pending[self] {
		return "", fmt.Errorf("%w: %v", ErrCycle, self)
	}
	e.pending[self] = true
	defer delete(e.pending, self)

	var b strings.Builder
	operands := make([]string, len(n.Operands))
	opTypes := make([]ValueType, len(n.Operands))
	for i, op := range n.Operands {
		child, ok := e.pool.Get(op)
		if !ok {
			return "", fmt.Errorf("%w: %v (operand of %v)", ErrMissingNode, op, self)
		}
		code, err := child.Emit(e, op)
		if err != nil {
			return "", err
		}
		b.WriteString(code)
		operands[i] = child.OutputName(op)
		opTypes[i] = e.types[op]
	}

	expr, t, err := n.expression(self, operands, opTypes)
	if err != nil {
		return "", err
	}
	if pre, ok := n.preamble(self, operands, opTypes); ok {
		b.WriteString(pre)
	}
	fmt.Fprintf(&b, "  let %s = %s;\n", n.OutputName(self), expr)

	e.visited[self] = true
	e.types[self] = t
	return b.String(), nil
}

func (n Node) expectOperands(self resource.Handle[Node], counts ...int) error {
	for _, c := range counts {
		if len(n.Operands) == c {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %v has %d operands", ErrInvalidNode, n.kindName(), self, len(n.Operands))
}

func mismatch(self resource.Handle[Node], op string, types ...ValueType) error {
	return fmt.Errorf("%w: %s %v cannot take %v", ErrTypeMismatch, op, self, types)
}

// expression returns the right-hand side of this node's let binding and its type.
func (n Node) expression(self resource.Handle[Node], ops []string, types []ValueType) (string, ValueType, error) {
	switch n.Kind {
	case KindLeaf:
		return n.leafExpression(self)

	case KindAdd, KindSubtract:
		if err := n.expectOperands(self, 2); err != nil {
			return "", 0, err
		}
		t, ok := arithmeticType(types[0], types[1])
		if !ok {
			return "", 0, mismatch(self, n.kindName(), types...)
		}
		op := "+"
		if n.Kind == KindSubtract {
			op = "-"
		}
		return fmt.Sprintf("(%s %s %s)", ops[0], op, ops[1]), t, nil

	case KindMultiply:
		if err := n.expectOperands(self, 2); err != nil {
			return "", 0, err
		}
		t, ok := multiplyType(types[0], types[1])
		if !ok {
			return "", 0, mismatch(self, n.kindName(), types...)
		}
		return fmt.Sprintf("(%s * %s)", ops[0], ops[1]), t, nil

	case KindTextureSample:
		return fmt.Sprintf("textureSample(%s, %s, in.uv)", TextureVar(n.Texture), SamplerVar(n.Sampler)), TypeVec4, nil

	case KindBRDF:
		if err := n.expectOperands(self, 3, 4); err != nil {
			return "", 0, err
		}
		if types[0] != TypeVec3 || types[1] != TypeFloat || types[2] != TypeFloat || (len(types) == 4 && types[3] != TypeVec3) {
			return "", 0, mismatch(self, n.kindName(), types...)
		}
		normal := brdfNormalName(self)
		return fmt.Sprintf("brdf(view_dir, %s, normalize(light_dir + view_dir), light_dir, %s, %s, %s) * max(dot(%s, light_dir), 0.0) * PI",
			normal, ops[0], ops[1], ops[2], normal), TypeVec3, nil

	case KindColorConvert:
		if err := n.expectOperands(self, 1); err != nil {
			return "", 0, err
		}
		fn := n.kindName()
		switch types[0] {
		case TypeVec3:
			return fmt.Sprintf("%s(%s)", fn, ops[0]), TypeVec3, nil
		case TypeVec4:
			return fmt.Sprintf("vec4<f32>(%s(%s.rgb), %s.a)", fn, ops[0], ops[0]), TypeVec4, nil
		}
		return "", 0, mismatch(self, fn, types...)

	case KindComponentExtract:
		if err := n.expectOperands(self, 1); err != nil {
			return "", 0, err
		}
		t, err := swizzleType(n.Components, types[0])
		if err != nil {
			return "", 0, fmt.Errorf("%w (node %v)", err, self)
		}
		return fmt.Sprintf("%s.%s", ops[0], n.Components), t, nil

	case KindTangentNormal:
		if err := n.expectOperands(self, 1); err != nil {
			return "", 0, err
		}
		if types[0] != TypeVec3 {
			return "", 0, mismatch(self, n.kindName(), types...)
		}
		return fmt.Sprintf("perturb_normal_to_arb(-in.view_position, normalize(in.normal), %s, in.uv)", ops[0]), TypeVec3, nil
	}
	return "", 0, fmt.Errorf("%w: unknown kind %d for %v", ErrInvalidNode, n.Kind, self)
}

// preamble returns statements that must precede the node's own binding.
func (n Node) preamble(self resource.Handle[Node], ops []string, _ []ValueType) (string, bool) {
	if n.Kind != KindBRDF {
		return "", false
	}
	src := "in.normal"
	if len(ops) == 4 {
		src = ops[3]
	}
	return fmt.Sprintf("  let %s = normalize(%s);\n", brdfNormalName(self), src), true
}

func brdfNormalName(self resource.Handle[Node]) string {
	return fmt.Sprintf("brdf_normal_%d", self.Index())
}

func (n Node) leafExpression(self resource.Handle[Node]) (string, ValueType, error) {
	switch n.Leaf {
	case LeafConstFloat:
		lit, err := floatLiteral(n.Float)
		if err != nil {
			return "", 0, fmt.Errorf("%w (node %v)", err, self)
		}
		return lit, TypeFloat, nil
	case LeafConstVec3:
		lit, err := vec3Literal(n.Vec3)
		if err != nil {
			return "", 0, fmt.Errorf("%w (node %v)", err, self)
		}
		return lit, TypeVec3, nil
	case LeafUniformFloat:
		return "unif." + n.FieldName(self), TypeFloat, nil
	case LeafUniformVec3:
		return "unif." + n.FieldName(self), TypeVec3, nil
	case LeafUniformMat4:
		return "unif." + n.FieldName(self), TypeMat4, nil
	case LeafNormalMatrix:
		return "obj.normal_matrix", TypeMat3, nil
	case LeafSurfaceNormal:
		return "normalize(in.normal)", TypeVec3, nil
	}
	return "", 0, fmt.Errorf("%w: unknown leaf %d for %v", ErrInvalidNode, n.Leaf, self)
}

// swizzleType validates a swizzle against the source type and returns the result type.
func swizzleType(components string, src ValueType) (ValueType, error) {
	dims := 3
	switch src {
	case TypeVec3:
	case TypeVec4:
		dims = 4
	default:
		return 0, fmt.Errorf("%w: cannot swizzle %v", ErrTypeMismatch, src)
	}

	xyzw := strings.ContainsAny(components, "xyzw")
	rgba := strings.ContainsAny(components, "rgba")
	if xyzw && rgba {
		return 0, fmt.Errorf("%w: mixed swizzle sets in %q", ErrInvalidNode, components)
	}
	for _, c := range components {
		i := strings.IndexRune("xyzw", c)
		if i < 0 {
			i = strings.IndexRune("rgba", c)
		}
		if i < 0 || i >= dims {
			return 0, fmt.Errorf("%w: component %q out of range for %v", ErrInvalidNode, c, src)
		}
	}

	switch len(components) {
	case 1:
		return TypeFloat, nil
	case 3:
		return TypeVec3, nil
	case 4:
		return TypeVec4, nil
	}
	return 0, fmt.Errorf("%w: unsupported swizzle width %q", ErrInvalidNode, components)
}

// floatLiteral formats v so WGSL reads it as an f32, never an integer.
func floatLiteral(v float32) (string, error) {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return "", fmt.Errorf("%w: non-finite constant %v", ErrInvalidNode, v)
	}
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}

func vec3Literal(v common.Vec3) (string, error) {
	parts := make([]string, 3)
	for i := range v {
		lit, err := floatLiteral(v[i])
		if err != nil {
			return "", err
		}
		parts[i] = lit
	}
	return "vec3<f32>(" + strings.Join(parts, ", ") + ")", nil
}
