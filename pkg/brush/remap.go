package brush

// Remap maps every index of a mesh before a mutation to its index after it.
// Removed elements map to -1.
type Remap struct {
	Vertices []int `json:"vertices"`
	Edges    []int `json:"edges"`
	Polygons []int `json:"polygons"`
}

// Selection is an externally held set of mesh element indices.
type Selection struct {
	Vertices []int
	Edges    []int
	Polygons []int
}

// IdentityRemap returns a remap that keeps every index in place.
func IdentityRemap(vertices, edges, polygons int) Remap {
	return Remap{
		Vertices: identity(vertices),
		Edges:    identity(edges),
		Polygons: identity(polygons),
	}
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func filled(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// IsZero reports whether the remap carries no tables, which is what failed
// mutations return.
func (r Remap) IsZero() bool {
	return r.Vertices == nil && r.Edges == nil && r.Polygons == nil
}

// Vertex returns the new index of old vertex i, or -1.
func (r Remap) Vertex(i int) int { return lookup(r.Vertices, i) }

// Edge returns the new index of old half-edge i, or -1.
func (r Remap) Edge(i int) int { return lookup(r.Edges, i) }

// Polygon returns the new index of old polygon i, or -1.
func (r Remap) Polygon(i int) int { return lookup(r.Polygons, i) }

func lookup(table []int, i int) int {
	if i < 0 || i >= len(table) {
		return -1
	}
	return table[i]
}

// Then composes r with a remap produced by a later mutation, yielding a
// table from r's old indices to next's new ones.
func (r Remap) Then(next Remap) Remap {
	return Remap{
		Vertices: compose(r.Vertices, next.Vertices),
		Edges:    compose(r.Edges, next.Edges),
		Polygons: compose(r.Polygons, next.Polygons),
	}
}

func compose(first, second []int) []int {
	out := make([]int, len(first))
	for i, mid := range first {
		out[i] = lookup(second, mid)
	}
	return out
}

// Apply rewrites a selection through the remap, dropping removed elements.
func (r Remap) Apply(sel Selection) Selection {
	return Selection{
		Vertices: remapIndices(r.Vertices, sel.Vertices),
		Edges:    remapIndices(r.Edges, sel.Edges),
		Polygons: remapIndices(r.Polygons, sel.Polygons),
	}
}

func remapIndices(table, indices []int) []int {
	var out []int
	for _, i := range indices {
		if n := lookup(table, i); n >= 0 {
			out = append(out, n)
		}
	}
	return out
}
