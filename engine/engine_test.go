package engine

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-core/common"
	"github.com/Carmen-Shannon/oxy-core/engine/camera"
	"github.com/Carmen-Shannon/oxy-core/engine/config"
	"github.com/Carmen-Shannon/oxy-core/engine/geometry"
	"github.com/Carmen-Shannon/oxy-core/engine/mesh"
	"github.com/Carmen-Shannon/oxy-core/engine/profiler"
	"github.com/Carmen-Shannon/oxy-core/engine/registry"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-core/engine/scene"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// populate fills s with a camera at z=5 and count boxes sharing one material.
func populate(pools *registry.Pools, s scene.Scene, color common.Vec3, count int) {
	camNode := s.AddNode(pools.Nodes, scene.NewNode())
	n, _ := pools.Nodes.Borrow(camNode)
	n.SetPosition(common.Vec3{0, 0, 5})
	cam := registry.Add(pools, camera.NewCamera())
	s.AttachCamera(camNode, cam)
	s.SetActiveCamera(cam)

	mat := registry.Add(pools, material.NewBasicMaterial(pools.ShadingNodes, color))
	g := registry.Add(pools, geometry.CreateBox(pools.Attributes, pools.Indices, 1, 1, 1))
	for i := range count {
		node := scene.NewNode()
		node.SetPosition(common.Vec3{float32(i), 0, 0})
		s.AttachMesh(s.AddNode(pools.Nodes, node), registry.Add(pools, mesh.NewMesh(g, mat)))
	}
}

func TestUpdateOrdersScenesByKey(t *testing.T) {
	pools := registry.NewPools()
	front := scene.NewScene(scene.WithName("front"))
	back := scene.NewScene(scene.WithName("back"))
	populate(pools, front, common.Vec3{1, 0, 0}, 1)
	populate(pools, back, common.Vec3{0, 0, 1}, 3)

	e := NewEngine(WithPools(pools), WithLogger(quietLogger()), WithScene(10, front), WithScene(-1, back))

	var ticks []float32
	e.SetTickCallback(func(dt float32) { ticks = append(ticks, dt) })

	lists := e.Update(0.016)
	require.Len(t, lists, 2)
	assert.Len(t, lists[0].Items, 3)
	assert.Len(t, lists[1].Items, 1)
	assert.Equal(t, []float32{0.016}, ticks)

	e.RemoveScene(-1)
	lists = e.Update(0.016)
	require.Len(t, lists, 1)
	assert.Len(t, lists[0].Items, 1)
	assert.Nil(t, e.Scene(-1))
	assert.Equal(t, "front", e.Scene(10).Name())
	assert.Len(t, e.Scenes(), 1)
}

func TestUpdateAppliesWorldMatrices(t *testing.T) {
	e := NewEngine(WithLogger(quietLogger()))
	s := scene.NewScene()
	populate(e.Pools(), s, common.Vec3{1, 1, 1}, 2)
	e.AddScene(0, s)

	lists := e.Update(0)
	require.Len(t, lists, 1)
	require.Len(t, lists[0].Items, 2)
	mv := lists[0].Items[1].Object.ModelViewMatrix
	assert.InDeltaSlice(t, []float32{1, 0, -5}, mv[12:15], 1e-5)
}

func TestUpdateProfilesPhases(t *testing.T) {
	p := profiler.NewProfiler(profiler.WithInterval(0), profiler.WithLogger(quietLogger()))
	pools := registry.NewPools()
	a, b := scene.NewScene(), scene.NewScene()
	populate(pools, a, common.Vec3{1, 0, 0}, 1)
	populate(pools, b, common.Vec3{0, 1, 0}, 1)

	e := NewEngine(WithPools(pools), WithLogger(quietLogger()), WithProfiler(p), WithProfiling(true),
		WithScene(0, a), WithScene(1, b))
	e.Update(0.01)

	phases := e.Profiler().Last().Phases
	assert.Equal(t, 2, phases[PhaseUpdateMatrices].Count)
	assert.Equal(t, 2, phases[PhaseRenderList].Count)

	e.DisableProfiler()
	e.Update(0.01)
	assert.Equal(t, 2, e.Profiler().Last().Phases[PhaseUpdateMatrices].Count)
}

func TestWarmupPreparesEveryMaterial(t *testing.T) {
	e := NewEngine(WithLogger(quietLogger()))
	s := scene.NewScene()
	populate(e.Pools(), s, common.Vec3{1, 0, 0}, 1)
	populate(e.Pools(), s, common.Vec3{0, 1, 0}, 1)
	e.AddScene(0, s)

	require.NoError(t, e.Warmup())
	assert.Equal(t, 2, e.Renderer().Programs().Len())

	keys := make([]string, 0)
	for k := range e.Renderer().Pipelines() {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"material_0", "material_1"}, keys)
}

func TestProgramCacheRoundTripThroughConfigPath(t *testing.T) {
	cfg := config.Default()
	cfg.Renderer.ProgramCachePath = filepath.Join(t.TempDir(), "programs.lz4")

	e := NewEngine(WithConfig(cfg), WithLogger(quietLogger()))
	populate(e.Pools(), scene.NewScene(), common.Vec3{1, 0, 0}, 1)

	n, err := e.LoadProgramCache()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, e.Warmup())
	require.NoError(t, e.SaveProgramCache())

	restored := NewEngine(WithConfig(cfg), WithLogger(quietLogger()))
	n, err = restored.LoadProgramCache()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProgramCacheWithoutPath(t *testing.T) {
	e := NewEngine(WithLogger(quietLogger()))
	assert.ErrorIs(t, e.SaveProgramCache(), ErrNoProgramCachePath)
	_, err := e.LoadProgramCache()
	assert.ErrorIs(t, err, ErrNoProgramCachePath)
}

func TestInvalidConfigFallsBackToDefault(t *testing.T) {
	cfg := config.Default()
	cfg.Renderer.MSAA = 3
	e := NewEngine(WithConfig(cfg), WithLogger(quietLogger()))
	if diff := cmp.Diff(config.Default(), e.Config()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, renderer.MSAA4x, e.Renderer().SampleCount())
}

func TestConfigDrivesRenderer(t *testing.T) {
	cfg := config.Default()
	cfg.Renderer.MSAA = 1
	e := NewEngine(WithConfig(cfg), WithLogger(quietLogger()))
	assert.Equal(t, renderer.MSAAOff, e.Renderer().SampleCount())
}

func TestResize(t *testing.T) {
	e := NewEngine(WithLogger(quietLogger()))
	a := registry.Add(e.Pools(), camera.NewCamera())
	b := registry.Add(e.Pools(), camera.NewCamera())

	e.Resize(1920, 1080)
	e.Resize(640, 0)
	ca, _ := e.Pools().Cameras.Get(a)
	cb, _ := e.Pools().Cameras.Get(b)
	assert.InDelta(t, 1920.0/1080.0, ca.Aspect(), 1e-6)
	assert.InDelta(t, 1920.0/1080.0, cb.Aspect(), 1e-6)
}

func TestRunStopsWithContext(t *testing.T) {
	e := NewEngine(WithLogger(quietLogger()), WithTickRate(500))
	s := scene.NewScene()
	populate(e.Pools(), s, common.Vec3{1, 0, 0}, 1)
	e.AddScene(0, s)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	frames := 0
	err := e.Run(ctx, func(_ float32, lists []renderer.RenderList) {
		frames++
		if frames == 1 {
			e.SetTickRate(1000)
		}
		assert.Len(t, lists, 1)
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, frames)
}
