package scene

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/camera"
	"github.com/Carmen-Shannon/oxy-core/engine/mesh"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
)

// ErrUnknownNode is returned when a parent handle does not resolve in the node pool.
var ErrUnknownNode = errors.New("scene: unknown node")

type scene struct {
	name       string
	background common.Vec4
	logger     *slog.Logger

	roots []resource.Handle[Node]

	nodeToMesh   *resource.Links[Node, mesh.Mesh]
	meshToNode   *resource.Links[mesh.Mesh, Node]
	nodeToCamera *resource.Links[Node, camera.Camera]
	cameraToNode *resource.Links[camera.Camera, Node]

	activeCamera    resource.Handle[camera.Camera]
	hasActiveCamera bool
}

// Scene is a forest of transform nodes plus the attachments that give nodes something to draw or
// look through. Nodes themselves live in a resource.Pool[Node] owned by the caller; the scene keeps
// the root handles and the node ↔ mesh and node ↔ camera link tables.
//
// A Scene is not safe for concurrent use. All mutation happens in the update phase.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Background returns the clear color used when rendering the scene.
	//
	// Returns:
	//   - common.Vec4: RGBA color
	Background() common.Vec4

	// SetBackground sets the clear color.
	//
	// Parameters:
	//   - color: RGBA color
	SetBackground(color common.Vec4)

	// Roots returns a copy of the root node handles in insertion order.
	//
	// Returns:
	//   - []resource.Handle[Node]: the roots
	Roots() []resource.Handle[Node]

	// AddNode stores n in nodes as a new root of the scene.
	//
	// Parameters:
	//   - nodes: the node pool
	//   - n: the node to add
	//
	// Returns:
	//   - resource.Handle[Node]: the handle of the new node
	AddNode(nodes *resource.Pool[Node], n Node) resource.Handle[Node]

	// AddChild stores n in nodes as the last child of parent.
	//
	// Parameters:
	//   - nodes: the node pool
	//   - parent: the parent node
	//   - n: the node to add
	//
	// Returns:
	//   - resource.Handle[Node]: the handle of the new node
	//   - error: ErrUnknownNode if parent does not resolve; nothing is added in that case
	AddChild(nodes *resource.Pool[Node], parent resource.Handle[Node], n Node) (resource.Handle[Node], error)

	// CollectNodes returns every node reachable from the roots exactly once, in depth-first
	// pre-order, so parents precede their children.
	//
	// Parameters:
	//   - nodes: the node pool
	//
	// Returns:
	//   - []resource.Handle[Node]: the reachable nodes
	CollectNodes(nodes *resource.Pool[Node]) []resource.Handle[Node]

	// UpdateMatrices recomputes every reachable node's local matrix from its TRS and then its world
	// matrix as parent.world × local. A node's world matrix is always written after its parent's.
	//
	// Parameters:
	//   - nodes: the node pool
	UpdateMatrices(nodes *resource.Pool[Node])

	// AttachMesh links a node and a mesh in both directions. If either side already has a link
	// nothing changes.
	//
	// Parameters:
	//   - node: the node
	//   - m: the mesh
	//
	// Returns:
	//   - bool: true if the link was created
	AttachMesh(node resource.Handle[Node], m resource.Handle[mesh.Mesh]) bool

	// AttachCamera links a node and a camera in both directions. If either side already has a
	// link nothing changes.
	//
	// Parameters:
	//   - node: the node
	//   - cam: the camera
	//
	// Returns:
	//   - bool: true if the link was created
	AttachCamera(node resource.Handle[Node], cam resource.Handle[camera.Camera]) bool

	// MeshOf returns the mesh attached to node.
	MeshOf(node resource.Handle[Node]) (resource.Handle[mesh.Mesh], bool)

	// CameraOf returns the camera attached to node.
	CameraOf(node resource.Handle[Node]) (resource.Handle[camera.Camera], bool)

	// NodeOfMesh returns the node a mesh is attached to.
	NodeOfMesh(m resource.Handle[mesh.Mesh]) (resource.Handle[Node], bool)

	// NodeOfCamera returns the node a camera is attached to.
	NodeOfCamera(cam resource.Handle[camera.Camera]) (resource.Handle[Node], bool)

	// ActiveCamera returns the camera the scene is rendered through.
	//
	// Returns:
	//   - resource.Handle[camera.Camera]: the active camera
	//   - bool: false if no camera has been made active
	ActiveCamera() (resource.Handle[camera.Camera], bool)

	// SetActiveCamera selects the camera the scene is rendered through. The camera should be
	// attached to a node; its view matrix is that node's inverse world matrix.
	//
	// Parameters:
	//   - cam: the camera
	SetActiveCamera(cam resource.Handle[camera.Camera])
}

var _ Scene = &scene{}

// NewScene creates an empty Scene configured with the provided options.
//
// Parameters:
//   - options: variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: the scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		background:   common.Vec4{0, 0, 0, 1},
		logger:       slog.Default(),
		nodeToMesh:   resource.NewLinks[Node, mesh.Mesh](),
		meshToNode:   resource.NewLinks[mesh.Mesh, Node](),
		nodeToCamera: resource.NewLinks[Node, camera.Camera](),
		cameraToNode: resource.NewLinks[camera.Camera, Node](),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Background() common.Vec4 {
	return s.background
}

func (s *scene) SetBackground(color common.Vec4) {
	s.background = color
}

func (s *scene) Roots() []resource.Handle[Node] {
	return append([]resource.Handle[Node](nil), s.roots...)
}

func (s *scene) AddNode(nodes *resource.Pool[Node], n Node) resource.Handle[Node] {
	n.hasParent = false
	h := nodes.Add(n)
	s.roots = append(s.roots, h)
	return h
}

func (s *scene) AddChild(nodes *resource.Pool[Node], parent resource.Handle[Node], n Node) (resource.Handle[Node], error) {
	if _, ok := nodes.Borrow(parent); !ok {
		return resource.Handle[Node]{}, fmt.Errorf("%w: parent %v", ErrUnknownNode, parent)
	}
	n.parent = parent
	n.hasParent = true
	h := nodes.Add(n)

	// Add may have moved the backing storage; borrow the parent again.
	p, _ := nodes.Borrow(parent)
	p.children = append(p.children, h)
	return h, nil
}

// walkItem is one pending entry of the traversal worklist. parentWorld is a copy, so no pointer
// into the pool is held across iterations.
type walkItem struct {
	node        resource.Handle[Node]
	parentWorld common.Mat4
}

// walk visits every reachable node once in depth-first pre-order. visit receives a pointer that is
// only valid for the duration of the call and returns the world matrix handed to the node's children.
func (s *scene) walk(nodes *resource.Pool[Node], visit func(h resource.Handle[Node], n *Node, parentWorld common.Mat4) common.Mat4) {
	identity := common.IdentityMat4()
	stack := make([]walkItem, 0, len(s.roots))
	for i := len(s.roots) - 1; i >= 0; i-- {
		stack = append(stack, walkItem{node: s.roots[i], parentWorld: identity})
	}

	visited := make(map[resource.Handle[Node]]bool, nodes.Len())
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[item.node] {
			s.logger.Debug("scene: node reached more than once, skipping", "scene", s.name, "node", item.node.String())
			continue
		}
		n, ok := nodes.Borrow(item.node)
		if !ok {
			s.logger.Debug("scene: node does not resolve, skipping", "scene", s.name, "node", item.node.String())
			continue
		}
		visited[item.node] = true

		world := visit(item.node, n, item.parentWorld)
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, walkItem{node: n.children[i], parentWorld: world})
		}
	}
}

func (s *scene) CollectNodes(nodes *resource.Pool[Node]) []resource.Handle[Node] {
	out := make([]resource.Handle[Node], 0, nodes.Len())
	s.walk(nodes, func(h resource.Handle[Node], n *Node, _ common.Mat4) common.Mat4 {
		out = append(out, h)
		return n.world
	})
	return out
}

func (s *scene) UpdateMatrices(nodes *resource.Pool[Node]) {
	s.walk(nodes, func(_ resource.Handle[Node], n *Node, parentWorld common.Mat4) common.Mat4 {
		n.UpdateMatrix()
		common.Mul4(n.world[:], parentWorld[:], n.local[:])
		return n.world
	})
}

func (s *scene) AttachMesh(node resource.Handle[Node], m resource.Handle[mesh.Mesh]) bool {
	if s.nodeToMesh.Has(node) || s.meshToNode.Has(m) {
		s.logger.Debug("scene: mesh attachment ignored, already linked", "node", node.String(), "mesh", m.String())
		return false
	}
	s.nodeToMesh.Add(node, m)
	s.meshToNode.Add(m, node)
	return true
}

func (s *scene) AttachCamera(node resource.Handle[Node], cam resource.Handle[camera.Camera]) bool {
	if s.nodeToCamera.Has(node) || s.cameraToNode.Has(cam) {
		s.logger.Debug("scene: camera attachment ignored, already linked", "node", node.String(), "camera", cam.String())
		return false
	}
	s.nodeToCamera.Add(node, cam)
	s.cameraToNode.Add(cam, node)
	return true
}

func (s *scene) MeshOf(node resource.Handle[Node]) (resource.Handle[mesh.Mesh], bool) {
	return s.nodeToMesh.Borrow(node)
}

func (s *scene) CameraOf(node resource.Handle[Node]) (resource.Handle[camera.Camera], bool) {
	return s.nodeToCamera.Borrow(node)
}

func (s *scene) NodeOfMesh(m resource.Handle[mesh.Mesh]) (resource.Handle[Node], bool) {
	return s.meshToNode.Borrow(m)
}

func (s *scene) NodeOfCamera(cam resource.Handle[camera.Camera]) (resource.Handle[Node], bool) {
	return s.cameraToNode.Borrow(cam)
}

func (s *scene) ActiveCamera() (resource.Handle[camera.Camera], bool) {
	return s.activeCamera, s.hasActiveCamera
}

func (s *scene) SetActiveCamera(cam resource.Handle[camera.Camera]) {
	s.activeCamera = cam
	s.hasActiveCamera = true
}
