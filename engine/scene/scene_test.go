package scene

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/camera"
	"github.com/Carmen-Shannon/oxy-core/engine/mesh"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
)

const eps = 1e-4

func nodeAt(p common.Vec3) Node {
	n := NewNode()
	n.SetPosition(p)
	return n
}

func worldPosition(t *testing.T, nodes *resource.Pool[Node], h resource.Handle[Node]) common.Vec3 {
	t.Helper()
	n, ok := nodes.Borrow(h)
	require.True(t, ok)
	w := n.WorldMatrix()
	return common.Vec3{w[12], w[13], w[14]}
}

func assertVec3InDelta(t *testing.T, want, got common.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDeltaf(t, want[i], got[i], eps, "component %d of %v", i, got)
	}
}

func TestUpdateMatricesChain(t *testing.T) {
	nodes := resource.NewPool[Node](4)
	s := NewScene()

	root := s.AddNode(nodes, nodeAt(common.Vec3{0, 0, 0}))
	a, err := s.AddChild(nodes, root, nodeAt(common.Vec3{1, 0, 0}))
	require.NoError(t, err)
	b, err := s.AddChild(nodes, a, nodeAt(common.Vec3{0, 1, 0}))
	require.NoError(t, err)

	s.UpdateMatrices(nodes)
	assertVec3InDelta(t, common.Vec3{1, 1, 0}, worldPosition(t, nodes, b))

	r, _ := nodes.Borrow(root)
	r.SetPosition(common.Vec3{5, 0, 0})
	s.UpdateMatrices(nodes)
	assertVec3InDelta(t, common.Vec3{6, 1, 0}, worldPosition(t, nodes, b))
	assertVec3InDelta(t, common.Vec3{6, 0, 0}, worldPosition(t, nodes, a))
}

func TestUpdateMatricesPropagatesRotationAndScale(t *testing.T) {
	nodes := resource.NewPool[Node](2)
	s := NewScene()

	parent := NewNode()
	parent.SetRotation(common.Vec3{0, 0, math32.Pi / 2})
	parent.SetScale(common.Vec3{2, 2, 2})
	root := s.AddNode(nodes, parent)
	child, err := s.AddChild(nodes, root, nodeAt(common.Vec3{1, 0, 0}))
	require.NoError(t, err)

	s.UpdateMatrices(nodes)
	// (1,0,0) scaled by the parent to (2,0,0), then rotated onto +Y
	assertVec3InDelta(t, common.Vec3{0, 2, 0}, worldPosition(t, nodes, child))
}

func TestCollectNodesEachOnce(t *testing.T) {
	nodes := resource.NewPool[Node](4)
	s := NewScene()

	root := s.AddNode(nodes, NewNode())
	a, _ := s.AddChild(nodes, root, NewNode())
	b, _ := s.AddChild(nodes, root, NewNode())

	got := s.CollectNodes(nodes)
	assert.ElementsMatch(t, []resource.Handle[Node]{root, a, b}, got)
	assert.Len(t, got, 3)
	assert.Equal(t, root, got[0])
}

func TestCollectNodesPreOrder(t *testing.T) {
	nodes := resource.NewPool[Node](8)
	s := NewScene()

	root := s.AddNode(nodes, NewNode())
	a, _ := s.AddChild(nodes, root, NewNode())
	b, _ := s.AddChild(nodes, root, NewNode())
	a1, _ := s.AddChild(nodes, a, NewNode())
	other := s.AddNode(nodes, NewNode())

	assert.Equal(t, []resource.Handle[Node]{root, a, a1, b, other}, s.CollectNodes(nodes))
}

func TestMalformedGraphVisitsEachNodeOnce(t *testing.T) {
	nodes := resource.NewPool[Node](4)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewScene(WithLogger(logger))

	root := s.AddNode(nodes, nodeAt(common.Vec3{1, 0, 0}))
	a, _ := s.AddChild(nodes, root, nodeAt(common.Vec3{1, 0, 0}))

	// a is listed twice under root and points back at root.
	r, _ := nodes.Borrow(root)
	r.children = append(r.children, a)
	n, _ := nodes.Borrow(a)
	n.children = append(n.children, root)

	assert.Equal(t, []resource.Handle[Node]{root, a}, s.CollectNodes(nodes))
	s.UpdateMatrices(nodes)
	assertVec3InDelta(t, common.Vec3{2, 0, 0}, worldPosition(t, nodes, a))
	assert.Contains(t, logs.String(), "reached more than once")
}

func TestAddChildUnknownParent(t *testing.T) {
	nodes := resource.NewPool[Node](1)
	s := NewScene()

	_, err := s.AddChild(nodes, resource.HandleAt[Node](3), NewNode())
	assert.ErrorIs(t, err, ErrUnknownNode)
	assert.Equal(t, 0, nodes.Len())
}

func TestAddChildLinksParent(t *testing.T) {
	nodes := resource.NewPool[Node](1)
	s := NewScene()

	root := s.AddNode(nodes, NewNode())
	child, err := s.AddChild(nodes, root, NewNode())
	require.NoError(t, err)

	c, _ := nodes.Borrow(child)
	parent, ok := c.Parent()
	require.True(t, ok)
	assert.Equal(t, root, parent)

	r, _ := nodes.Borrow(root)
	_, ok = r.Parent()
	assert.False(t, ok)
	assert.Equal(t, []resource.Handle[Node]{child}, r.Children())
	assert.Equal(t, []resource.Handle[Node]{root}, s.Roots())
}

func TestAttachMeshFirstWins(t *testing.T) {
	s := NewScene()
	n1, n2 := resource.HandleAt[Node](1), resource.HandleAt[Node](2)
	m0, m1 := resource.HandleAt[mesh.Mesh](0), resource.HandleAt[mesh.Mesh](1)

	assert.True(t, s.AttachMesh(n1, m0))
	assert.False(t, s.AttachMesh(n1, m1))
	assert.False(t, s.AttachMesh(n2, m0))

	got, ok := s.MeshOf(n1)
	require.True(t, ok)
	assert.Equal(t, m0, got)

	back, ok := s.NodeOfMesh(m0)
	require.True(t, ok)
	assert.Equal(t, n1, back)

	_, ok = s.NodeOfMesh(m1)
	assert.False(t, ok)
	_, ok = s.MeshOf(n2)
	assert.False(t, ok)
}

func TestAttachCameraAndActiveCamera(t *testing.T) {
	s := NewScene(WithName("main"), WithBackground(common.Vec4{0.1, 0.2, 0.3, 1}))
	n := resource.HandleAt[Node](0)
	cam := resource.HandleAt[camera.Camera](0)

	_, ok := s.ActiveCamera()
	assert.False(t, ok)

	assert.True(t, s.AttachCamera(n, cam))
	assert.False(t, s.AttachCamera(n, resource.HandleAt[camera.Camera](1)))
	s.SetActiveCamera(cam)

	active, ok := s.ActiveCamera()
	require.True(t, ok)
	assert.Equal(t, cam, active)
	owner, ok := s.NodeOfCamera(cam)
	require.True(t, ok)
	assert.Equal(t, n, owner)
	got, ok := s.CameraOf(n)
	require.True(t, ok)
	assert.Equal(t, cam, got)

	assert.Equal(t, "main", s.Name())
	assert.Equal(t, common.Vec4{0.1, 0.2, 0.3, 1}, s.Background())
}

func TestNodeSetMatrixRoundTrip(t *testing.T) {
	var m common.Mat4
	common.Compose(m[:], common.Vec3{3, -2, 1}, common.QuatFromEuler(common.Vec3{0.3, 0.5, -0.2}), common.Vec3{1, 2, 3})

	n := NewNode()
	n.SetMatrix(m)
	assertVec3InDelta(t, common.Vec3{3, -2, 1}, n.Position())
	assertVec3InDelta(t, common.Vec3{1, 2, 3}, n.Scale())
	assertVec3InDelta(t, common.Vec3{0.3, 0.5, -0.2}, n.Rotation())

	n.UpdateMatrix()
	got := n.LocalMatrix()
	for i := range m {
		assert.InDelta(t, m[i], got[i], 1e-3)
	}
}

func TestUpdateMatricesZeroScaleStaysFinite(t *testing.T) {
	nodes := resource.NewPool[Node](2)
	s := NewScene()

	flat := nodeAt(common.Vec3{0, 1, 0})
	flat.SetScale(common.Vec3{1, 0, 1})
	root := s.AddNode(nodes, flat)
	child, _ := s.AddChild(nodes, root, nodeAt(common.Vec3{0, 5, 0}))

	s.UpdateMatrices(nodes)
	c, _ := nodes.Borrow(child)
	for _, v := range c.WorldMatrix() {
		assert.False(t, math32.IsNaN(v) || math32.IsInf(v, 0))
	}
	assertVec3InDelta(t, common.Vec3{0, 1, 0}, worldPosition(t, nodes, child))
}
