package shadergraph

// brdfChunk holds the split-sum free Cook-Torrance pieces used by KindBRDF.
const brdfChunk = `const PI: f32 = 3.141592653589793;

fn d_ggx(n_dot_h: f32, roughness: f32) -> f32 {
  let a = n_dot_h * roughness;
  let k = roughness / (1.0 - n_dot_h * n_dot_h + a * a);
  return k * k * (1.0 / PI);
}

fn v_smith_ggx_correlated_fast(n_dot_v: f32, n_dot_l: f32, roughness: f32) -> f32 {
  let a = roughness;
  let ggxv = n_dot_l * (n_dot_v * (1.0 - a) + a);
  let ggxl = n_dot_v * (n_dot_l * (1.0 - a) + a);
  return 0.5 / (ggxv + ggxl);
}

fn f_schlick(u: f32, f0: vec3<f32>) -> vec3<f32> {
  let f = pow(1.0 - u, 5.0);
  return f + f0 * (1.0 - f);
}

fn brdf(v: vec3<f32>, n: vec3<f32>, h: vec3<f32>, l: vec3<f32>, base_color: vec3<f32>, metallic: f32, roughness: f32) -> vec3<f32> {
  let perceptual = clamp(roughness, 0.045, 1.0);
  let alpha = perceptual * perceptual;
  let n_dot_v = abs(dot(n, v)) + 1e-5;
  let n_dot_l = clamp(dot(n, l), 0.0, 1.0);
  let n_dot_h = clamp(dot(n, h), 0.0, 1.0);
  let l_dot_h = clamp(dot(l, h), 0.0, 1.0);
  let f0 = mix(vec3<f32>(0.04), base_color, metallic);
  let specular = d_ggx(n_dot_h, alpha) * v_smith_ggx_correlated_fast(n_dot_v, n_dot_l, alpha) * f_schlick(l_dot_h, f0);
  let diffuse = (1.0 - metallic) * base_color / PI;
  return diffuse + specular;
}
`

// perturbNormalChunk builds a tangent frame from screen-space derivatives.
const perturbNormalChunk = `fn perturb_normal_to_arb(eye_pos: vec3<f32>, surf_norm: vec3<f32>, map_n: vec3<f32>, uv: vec2<f32>) -> vec3<f32> {
  let q0 = dpdx(eye_pos);
  let q1 = dpdy(eye_pos);
  let st0 = dpdx(uv);
  let st1 = dpdy(uv);
  let n = surf_norm;
  let q1perp = cross(q1, n);
  let q0perp = cross(n, q0);
  let t = q1perp * st0.x + q0perp * st1.x;
  let b = q1perp * st0.y + q0perp * st1.y;
  let det = max(dot(t, t), dot(b, b));
  var scale = 0.0;
  if (det != 0.0) {
    scale = inverseSqrt(det);
  }
  return normalize(t * (map_n.x * scale) + b * (map_n.y * scale) + n * map_n.z);
}
`

const colorChunk = `fn srgb_to_linear(c: vec3<f32>) -> vec3<f32> {
  let lo = c / 12.92;
  let hi = pow((c + vec3<f32>(0.055)) / 1.055, vec3<f32>(2.4));
  return select(hi, lo, c <= vec3<f32>(0.04045));
}

fn linear_to_srgb(c: vec3<f32>) -> vec3<f32> {
  let lo = c * 12.92;
  let hi = 1.055 * pow(c, vec3<f32>(1.0 / 2.4)) - vec3<f32>(0.055);
  return select(hi, lo, c <= vec3<f32>(0.0031308));
}
`

// Functions returns the helper function chunk this node needs at module scope, or "".
// Identical chunks from different nodes are emitted once.
func (n Node) Functions() string {
	switch n.Kind {
	case KindBRDF:
		return brdfChunk
	case KindTangentNormal:
		return perturbNormalChunk
	case KindColorConvert:
		return colorChunk
	default:
		return ""
	}
}
