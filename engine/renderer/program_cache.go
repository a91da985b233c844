package renderer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/oxy-core/engine/registry"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/Carmen-Shannon/oxy-core/engine/shadergraph"
)

// ErrUnknownMaterial is returned when a material handle does not resolve.
var ErrUnknownMaterial = errors.New("renderer: unknown material")

// programCache is the implementation of the ProgramCache interface.
type programCache struct {
	mu *sync.RWMutex

	programs map[resource.Handle[material.Material]]cachedProgram
	// snapshot holds sources restored by Load, keyed by material handle.
	snapshot map[resource.Handle[material.Material]]snapshotEntry

	workers   int
	queueSize int
	logger    *slog.Logger
}

// cachedProgram is a compiled program together with the graph root it was compiled from.
type cachedProgram struct {
	root    resource.Handle[shadergraph.Node]
	program *shadergraph.Program
}

// snapshotEntry is the persisted form of one compiled program.
type snapshotEntry struct {
	Material    int    `yaml:"material"`
	UniformSize uint32 `yaml:"uniform_size"`
	Bindings    int    `yaml:"bindings"`
	Source      string `yaml:"source"`
}

type snapshotFile struct {
	Version  int             `yaml:"version"`
	Programs []snapshotEntry `yaml:"programs"`
}

const snapshotVersion = 1

// ProgramCache memoizes compiled material programs per material and graph root: a material whose
// root was replaced with SetRoot is recompiled by the next Compile. Reads are safe from any
// goroutine; Warmup compiles many materials in parallel and requires the pools not to change while
// it runs.
type ProgramCache interface {
	// Get returns the cached program of a material without checking it against the material's
	// current root.
	//
	// Parameters:
	//   - h: the material handle
	//
	// Returns:
	//   - *shadergraph.Program: the cached program, or nil
	//   - bool: false if the material has not been compiled
	Get(h resource.Handle[material.Material]) (*shadergraph.Program, bool)

	// Compile returns the cached program of a material, compiling and caching it on a miss or when
	// the cached program was compiled from a different root.
	//
	// Parameters:
	//   - pools: the resource pools the material and its graph live in
	//   - h: the material handle
	//
	// Returns:
	//   - *shadergraph.Program: the program
	//   - error: ErrUnknownMaterial or a wrapped compile error
	Compile(pools *registry.Pools, h resource.Handle[material.Material]) (*shadergraph.Program, error)

	// Invalidate drops the cached program of a material, for example after its graph changed shape.
	//
	// Parameters:
	//   - h: the material handle
	Invalidate(h resource.Handle[material.Material])

	// Warmup runs Compile for every given material on a worker pool and waits for all of them.
	// Materials whose cached program is current are not recompiled.
	//
	// Parameters:
	//   - pools: the resource pools, read-only for the duration of the call
	//   - handles: the materials to compile
	//
	// Returns:
	//   - error: every compile failure joined, or nil
	Warmup(pools *registry.Pools, handles []resource.Handle[material.Material]) error

	// Len returns the number of cached programs.
	Len() int

	// Source returns the WGSL source of a material from the cache, or from a loaded snapshot when
	// the material has not been compiled in this process.
	//
	// Parameters:
	//   - h: the material handle
	//
	// Returns:
	//   - string: the WGSL source
	//   - bool: false if neither the cache nor the snapshot knows the material
	Source(h resource.Handle[material.Material]) (string, bool)

	// Save writes an lz4-compressed YAML snapshot of every cached program.
	//
	// Parameters:
	//   - w: the destination
	//
	// Returns:
	//   - error: if encoding or writing fails
	Save(w io.Writer) error

	// Load reads a snapshot written by Save and makes its sources available through Source.
	//
	// Parameters:
	//   - r: the source
	//
	// Returns:
	//   - int: the number of programs restored
	//   - error: if decompressing or decoding fails
	Load(r io.Reader) (int, error)
}

var _ ProgramCache = &programCache{}

// NewProgramCache creates an empty ProgramCache.
//
// Parameters:
//   - options: variadic list of ProgramCacheBuilderOption functions
//
// Returns:
//   - ProgramCache: the cache
func NewProgramCache(options ...ProgramCacheBuilderOption) ProgramCache {
	c := &programCache{
		mu:        &sync.RWMutex{},
		programs:  make(map[resource.Handle[material.Material]]cachedProgram),
		snapshot:  make(map[resource.Handle[material.Material]]snapshotEntry),
		workers:   4,
		queueSize: 256,
		logger:    slog.Default(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *programCache) Get(h resource.Handle[material.Material]) (*shadergraph.Program, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.programs[h]
	return e.program, ok
}

func (c *programCache) Compile(pools *registry.Pools, h resource.Handle[material.Material]) (*shadergraph.Program, error) {
	m, ok := pools.Materials.Get(h)
	if !ok || m == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownMaterial, h)
	}
	root := m.Root()

	c.mu.RLock()
	e, ok := c.programs[h]
	c.mu.RUnlock()
	if ok && e.root == root {
		return e.program, nil
	}

	compiler := shadergraph.NewCompiler(pools.ShadingNodes, pools.Textures, pools.Samplers)
	p, err := m.BuildShaderCode(compiler)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// another goroutine may have won the race; keep its program so callers share one pointer
	if existing, ok := c.programs[h]; ok && existing.root == root {
		return existing.program, nil
	}
	c.programs[h] = cachedProgram{root: root, program: p}
	return p, nil
}

func (c *programCache) Invalidate(h resource.Handle[material.Material]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.programs, h)
}

func (c *programCache) Warmup(pools *registry.Pools, handles []resource.Handle[material.Material]) error {
	start := time.Now()
	pool := worker.NewDynamicWorkerPool(c.workers, c.queueSize, 1*time.Second)
	defer pool.Stop()

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)
	for i, h := range handles {
		wg.Add(1)
		hCap := h
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				_, err := c.Compile(pools, hCap)
				if err != nil {
					errMu.Lock()
					errs = append(errs, err)
					errMu.Unlock()
				}
				return nil, err
			},
		})
	}
	wg.Wait()

	c.logger.Debug("renderer: program warmup finished",
		"requested", len(handles),
		"ready", len(handles)-len(errs),
		"failed", len(errs),
		"elapsed", time.Since(start))
	return errors.Join(errs...)
}

func (c *programCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

func (c *programCache) Source(h resource.Handle[material.Material]) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.programs[h]; ok {
		return e.program.Source, true
	}
	e, ok := c.snapshot[h]
	return e.Source, ok
}

func (c *programCache) Save(w io.Writer) error {
	c.mu.RLock()
	file := snapshotFile{Version: snapshotVersion, Programs: make([]snapshotEntry, 0, len(c.programs))}
	for h, e := range c.programs {
		file.Programs = append(file.Programs, snapshotEntry{
			Material:    h.Index(),
			UniformSize: e.program.Layout.BufferSize(),
			Bindings:    len(e.program.Bindings),
			Source:      e.program.Source,
		})
	}
	c.mu.RUnlock()
	sort.Slice(file.Programs, func(i, j int) bool { return file.Programs[i].Material < file.Programs[j].Material })

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("renderer: encode program snapshot: %w", err)
	}
	zw := lz4.NewWriter(w)
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("renderer: write program snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("renderer: write program snapshot: %w", err)
	}
	return nil
}

func (c *programCache) Load(r io.Reader) (int, error) {
	data, err := io.ReadAll(lz4.NewReader(r))
	if err != nil {
		return 0, fmt.Errorf("renderer: read program snapshot: %w", err)
	}
	var file snapshotFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("renderer: decode program snapshot: %w", err)
	}
	if file.Version != snapshotVersion {
		return 0, fmt.Errorf("renderer: program snapshot version %d, want %d", file.Version, snapshotVersion)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range file.Programs {
		c.snapshot[resource.HandleAt[material.Material](e.Material)] = e
	}
	c.logger.Debug("renderer: program snapshot loaded", "programs", len(file.Programs))
	return len(file.Programs), nil
}
