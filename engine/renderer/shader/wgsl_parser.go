package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslVertexFormatMap maps WGSL vertex input types to their wgpu vertex format and byte size.
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"i32":       {wgpu.VertexFormatSint32, 4},
}

var (
	// structBlockRegex matches struct declarations and captures the name and body.
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex  = regexp.MustCompile(`@builtin\(\w+\)`)
	alignRegex    = regexp.MustCompile(`@align\((\d+)\)`)

	// fieldRegex matches a struct member: optional attributes, name, colon, type.
	fieldRegex = regexp.MustCompile(`(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name and type
	// from declarations such as `@group(0) @binding(2) var<uniform> unif: Uniforms;` or
	// `@group(0) @binding(3) var texture_0: texture_2d<f32>;`.
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseStructBlocks finds every struct block in comment-free WGSL source.
//
// Parameters:
//   - source: WGSL source with comments stripped
//
// Returns:
//   - []parsedStruct: the structs in source order
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, m := range matches {
		structs = append(structs, parsedStruct{name: m[1], fields: parseStructFields(m[2])})
	}
	return structs
}

// parseStructFields splits a struct body into members and reads their attributes.
func parseStructFields(body string) []parsedField {
	parts := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}

		field := parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(part),
		}
		if m := locationRegex.FindStringSubmatch(part); m != nil {
			field.location, _ = strconv.Atoi(m[1])
		}
		if m := alignRegex.FindStringSubmatch(part); m != nil {
			field.align, _ = strconv.ParseUint(m[1], 10, 64)
		}
		fields = append(fields, field)
	}
	return fields
}

// parseVertexLayouts builds one vertex buffer layout per @location of the vertex input struct,
// ordered by location. Every attribute lives in its own buffer at offset 0, matching geometry
// that stores each attribute as a separate array.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - []wgpu.VertexBufferLayout: the layouts, or nil if no vertex input struct parses
func parseVertexLayouts(source string) []wgpu.VertexBufferLayout {
	for _, ps := range parseStructBlocks(stripComments(source)) {
		if !isVertexInputStruct(ps) {
			continue
		}
		if layouts, ok := buildVertexBufferLayouts(ps); ok {
			return layouts
		}
	}
	return nil
}

// isVertexInputStruct reports whether every member has a @location and none is a @builtin.
// Vertex output structs carry @builtin(position) and are skipped.
func isVertexInputStruct(ps parsedStruct) bool {
	if len(ps.fields) == 0 {
		return false
	}
	for _, f := range ps.fields {
		if f.isBuiltin || f.location < 0 {
			return false
		}
	}
	return true
}

func buildVertexBufferLayouts(ps parsedStruct) ([]wgpu.VertexBufferLayout, bool) {
	fields := append([]parsedField(nil), ps.fields...)
	sort.Slice(fields, func(i, j int) bool { return fields[i].location < fields[j].location })

	layouts := make([]wgpu.VertexBufferLayout, 0, len(fields))
	for _, f := range fields {
		info, ok := wgslVertexFormatMap[f.typeName]
		if !ok {
			return nil, false
		}
		layouts = append(layouts, wgpu.VertexBufferLayout{
			ArrayStride: info.size,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{{
				Format:         info.format,
				Offset:         0,
				ShaderLocation: uint32(f.location),
			}},
		})
	}
	return layouts, true
}

// parseEntryPoints returns the names of the first @vertex and @fragment functions.
func parseEntryPoints(source string) (vertex, fragment string) {
	cleaned := stripComments(source)
	if m := vertexEntryRegex.FindStringSubmatch(cleaned); m != nil {
		vertex = m[1]
	}
	if m := fragmentEntryRegex.FindStringSubmatch(cleaned); m != nil {
		fragment = m[1]
	}
	return vertex, fragment
}

// functionBody returns the text between the braces of function name, or "" if it is not found.
func functionBody(source, name string) string {
	re := regexp.MustCompile(`\bfn\s+` + regexp.QuoteMeta(name) + `\s*\(`)
	loc := re.FindStringIndex(source)
	if loc == nil {
		return ""
	}
	open := strings.IndexByte(source[loc[1]:], '{')
	if open < 0 {
		return ""
	}
	start := loc[1] + open + 1
	depth := 1
	for i := start; i < len(source); i++ {
		switch source[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return source[start:i]
			}
		}
	}
	return ""
}

// parseBindGroupLayouts turns every @group/@binding declaration into a bind group layout entry.
// Visibility is the set of entry points whose body names the variable; a variable named by
// neither, for example one only read inside a helper, is visible to both stages.
//
// Parameters:
//   - source: the WGSL source
//   - vertexEntry: the vertex entry point name
//   - fragmentEntry: the fragment entry point name
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group, entries sorted by binding
//   - map[int]map[int]string: variable names keyed by group and binding
//   - map[string]wgslTypeLayout: the computed layout of every struct
func parseBindGroupLayouts(source, vertexEntry, fragmentEntry string) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string, map[string]wgslTypeLayout) {
	cleaned := stripComments(source)
	structSizes := computeStructSizes(parseStructBlocks(cleaned))
	vertexBody := functionBody(cleaned, vertexEntry)
	fragmentBody := functionBody(cleaned, fragmentEntry)

	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	varNames := make(map[int]map[int]string)
	for _, m := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		addressSpace := strings.TrimSpace(m[3])
		varName := strings.TrimSpace(m[4])
		typeName := strings.TrimSpace(m[5])

		visibility := stageVisibility(varName, vertexBody, fragmentBody)
		entry := classifyResource(uint32(binding), visibility, addressSpace, typeName)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if layout, ok := resolveTypeLayout(typeName, structSizes); ok && layout.size > 0 {
				entry.Buffer.MinBindingSize = layout.size
			}
		}
		groups[group] = append(groups[group], entry)

		if varNames[group] == nil {
			varNames[group] = make(map[int]string)
		}
		varNames[group][binding] = varName
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return result, varNames, structSizes
}

func stageVisibility(varName, vertexBody, fragmentBody string) wgpu.ShaderStage {
	word := regexp.MustCompile(`\b` + regexp.QuoteMeta(varName) + `\b`)
	var stage wgpu.ShaderStage
	if word.MatchString(vertexBody) {
		stage |= wgpu.ShaderStageVertex
	}
	if word.MatchString(fragmentBody) {
		stage |= wgpu.ShaderStageFragment
	}
	if stage == wgpu.ShaderStageNone {
		stage = wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	}
	return stage
}

// splitAtTopLevelCommas splits s at commas outside angle brackets, so `array<T, 4>` stays whole.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
