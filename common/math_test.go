package common

import (
	"math/rand/v2"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func assertMatInDelta(t *testing.T, want, got []float32, delta float64) {
	t.Helper()
	require.Equal(t, len(want), len(got))
	for i := range want {
		assert.InDeltaf(t, want[i], got[i], delta, "element %d", i)
	}
}

func TestMul4Identity(t *testing.T) {
	var m Mat4
	Compose(m[:], Vec3{1, 2, 3}, QuatFromEuler(Vec3{0.3, -0.2, 1.1}), Vec3{2, 2, 2})
	id := IdentityMat4()

	var out Mat4
	Mul4(out[:], id[:], m[:])
	assertMatInDelta(t, m[:], out[:], eps)

	Mul4(out[:], m[:], id[:])
	assertMatInDelta(t, m[:], out[:], eps)
}

func TestMul4Aliasing(t *testing.T) {
	var a, b Mat4
	Compose(a[:], Vec3{1, 0, 0}, IdentityQuat(), Vec3{1, 1, 1})
	Compose(b[:], Vec3{0, 2, 0}, IdentityQuat(), Vec3{1, 1, 1})

	Mul4(a[:], a[:], b[:])
	assert.Equal(t, Vec3{1, 2, 0}, Vec3{a[12], a[13], a[14]})
}

func TestInvert4(t *testing.T) {
	var m, inv, prod Mat4
	Compose(m[:], Vec3{4, -1, 2}, QuatFromEuler(Vec3{0.5, 0.25, -0.75}), Vec3{1, 3, 0.5})

	require.True(t, Invert4(inv[:], m[:]))
	Mul4(prod[:], m[:], inv[:])
	id := IdentityMat4()
	assertMatInDelta(t, id[:], prod[:], eps)
}

func TestInvert4SingularKeepsPrevious(t *testing.T) {
	var singular Mat4 // all zeros
	prev := IdentityMat4()
	prev[12] = 7

	out := prev
	assert.False(t, Invert4(out[:], singular[:]))
	assert.Equal(t, prev, out)
}

func TestNormalMatrix(t *testing.T) {
	t.Run("rotation only equals rotation block", func(t *testing.T) {
		var m Mat4
		Compose(m[:], Vec3{3, 3, 3}, QuatFromEuler(Vec3{0.2, 0.4, 0.6}), Vec3{1, 1, 1})

		var n Mat3
		require.True(t, NormalMatrix(n[:], m[:]))
		want := []float32{m[0], m[1], m[2], m[4], m[5], m[6], m[8], m[9], m[10]}
		assertMatInDelta(t, want, n[:], eps)
	})

	t.Run("non-uniform scale inverts", func(t *testing.T) {
		var m Mat4
		Compose(m[:], Vec3{}, IdentityQuat(), Vec3{2, 4, 0.5})

		var n Mat3
		require.True(t, NormalMatrix(n[:], m[:]))
		assertMatInDelta(t, []float32{0.5, 0, 0, 0, 0.25, 0, 0, 0, 2}, n[:], eps)
	})

	t.Run("singular keeps previous", func(t *testing.T) {
		var m Mat4
		Compose(m[:], Vec3{1, 2, 3}, IdentityQuat(), Vec3{1, 0, 1})

		n := IdentityMat3()
		assert.False(t, NormalMatrix(n[:], m[:]))
		assert.Equal(t, IdentityMat3(), n)
	})
}

func TestMat3ToGPU(t *testing.T) {
	got := Mat3ToGPU([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9})
	assert.Equal(t, Mat3GPU{1, 2, 3, 0, 4, 5, 6, 0, 7, 8, 9, 0}, got)
}

func TestComposeTranslationAppliedLast(t *testing.T) {
	var m Mat4
	Compose(m[:], Vec3{10, 0, 0}, QuatFromEuler(Vec3{0, 0, math32.Pi / 2}), Vec3{2, 2, 2})

	// (1,0,0) scaled to (2,0,0), rotated 90° about Z to (0,2,0), then translated
	p := TransformPoint(m[:], Vec3{1, 0, 0})
	assert.InDelta(t, 10, p[0], eps)
	assert.InDelta(t, 2, p[1], eps)
	assert.InDelta(t, 0, p[2], eps)
}

func TestEulerRoundTrip(t *testing.T) {
	cases := []Vec3{
		{0, 0, 0},
		{0.1, 0.2, 0.3},
		{-1.2, 0.7, 2.5},
		{math32.Pi / 3, -math32.Pi / 5, math32.Pi / 7},
	}
	for _, e := range cases {
		got := EulerFromQuat(QuatFromEuler(e))
		for i := range e {
			assert.InDelta(t, e[i], got[i], 1e-3)
		}
	}
}

func randomUnitQuat(r *rand.Rand) Quat {
	for {
		q := Quat{r.Float32()*2 - 1, r.Float32()*2 - 1, r.Float32()*2 - 1, r.Float32()*2 - 1}
		l := math32.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
		if l < 0.1 {
			continue
		}
		return Quat{q[0] / l, q[1] / l, q[2] / l, q[3] / l}
	}
}

func TestDecomposeInvertsCompose(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 500; i++ {
		p := Vec3{r.Float32()*20 - 10, r.Float32()*20 - 10, r.Float32()*20 - 10}
		q := randomUnitQuat(r)
		sign := float32(1)
		if r.IntN(2) == 0 {
			sign = -1
		}
		s := Vec3{sign * (0.5 + r.Float32()*2.5), sign * (0.5 + r.Float32()*2.5), sign * (0.5 + r.Float32()*2.5)}

		var m Mat4
		Compose(m[:], p, q, s)
		gotP, gotQ, gotS := Decompose(m[:])

		for k := 0; k < 3; k++ {
			assert.InDelta(t, p[k], gotP[k], 1e-3, "position")
			assert.InDelta(t, s[k], gotS[k], 1e-3, "scale")
		}
		// q and -q encode the same rotation
		dot := q[0]*gotQ[0] + q[1]*gotQ[1] + q[2]*gotQ[2] + q[3]*gotQ[3]
		assert.InDelta(t, 1, math32.Abs(dot), 1e-3, "rotation")
	}
}

func TestDecomposeZeroScaleFallsBackToIdentity(t *testing.T) {
	var m Mat4
	Compose(m[:], Vec3{1, 2, 3}, QuatFromEuler(Vec3{0.4, 0, 0}), Vec3{1, 0, 1})

	p, q, s := Decompose(m[:])
	assert.Equal(t, Vec3{1, 2, 3}, p)
	assert.Equal(t, IdentityQuat(), q)
	assert.InDelta(t, 0, s[1], eps)
	for _, v := range q {
		assert.False(t, math32.IsNaN(v))
	}
}

func TestPerspective(t *testing.T) {
	var m Mat4
	Perspective(m[:], math32.Pi/2, 2, 1, 100)

	assert.InDelta(t, 0.5, m[0], eps)
	assert.InDelta(t, 1, m[5], eps)
	assert.Equal(t, float32(-1), m[11])
	assert.Equal(t, float32(0), m[15])
}
