// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.19
//

package atmdelay

import (
	"fmt"
	"math"

	"github.com/fogleman/delaunay"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Interpolation of values given on scattered 2-D nodes (lon, lat).
// Every method gives the result as a weighted sum of node values, so the
// stencil of a query point is computed once and applied to several fields.
type ScatteredInterpolator struct {
	method InterpMethod
	xs, ys []float64
	index  map[[2]float64]int
	tree   *kdtree.Tree
	tri    *triangulation // Linear and Cubic only
	grad   *mat.Dense     // Cubic only, see nodeGradients
}

// Node indices and weights giving the value at a query point.
// An empty stencil means the point is outside the convex hull of the nodes.
type Stencil struct {
	Index  []int
	Weight []float64
}

// Weighted sum of v, NaN for an empty stencil
func (s Stencil) Apply(v []float64) float64 {
	if len(s.Index) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i, k := range s.Index {
		sum += s.Weight[i] * v[k]
	}
	return sum
}

func NewScatteredInterpolator(method InterpMethod, xs, ys []float64) (*ScatteredInterpolator, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%d x, %d y: %w", len(xs), len(ys), ErrInputShape)
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("no node: %w", ErrOutOfGrid)
	}
	if !method.Valid() {
		return nil, fmt.Errorf("interpolation method %d: %w", method, ErrInvalidOption)
	}
	p := &ScatteredInterpolator{
		method: method,
		xs:     xs,
		ys:     ys,
		index:  make(map[[2]float64]int, len(xs)),
	}
	pts := make(kdtree.Points, 0, len(xs))
	for i := range xs {
		k := [2]float64{xs[i], ys[i]}
		if _, ok := p.index[k]; ok {
			continue
		}
		p.index[k] = i
		pts = append(pts, kdtree.Point{xs[i], ys[i]})
	}
	p.tree = kdtree.New(pts, false)
	if method == Nearest {
		return p, nil
	}

	tri, err := triangulate(xs, ys)
	if err != nil {
		return nil, err
	}
	p.tri = tri
	if method == Cubic {
		if p.grad, err = tri.nodeGradients(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *ScatteredInterpolator) nodeOf(c kdtree.Comparable) int {
	q := c.(kdtree.Point)
	return p.index[[2]float64{q[0], q[1]}]
}

// Stencil at (x, y)
func (p *ScatteredInterpolator) Stencil(x, y float64) Stencil {
	if p.method == Nearest {
		c, _ := p.tree.Nearest(kdtree.Point{x, y})
		return Stencil{Index: []int{p.nodeOf(c)}, Weight: []float64{1}}
	}
	t, b, ok := p.tri.locate(x, y)
	if !ok {
		return Stencil{}
	}
	if p.method == Linear {
		v := p.tri.tris[t]
		return Stencil{Index: v[:], Weight: b[:]}
	}
	return p.cubicStencil(t, b)
}

// Value of field v (one value per node) at (x, y)
func (p *ScatteredInterpolator) Interpolate(v []float64, x, y float64) float64 {
	return p.Stencil(x, y).Apply(v)
}

// Clough-Tocher cubic of triangle t at barycentric b. The patch depends on
// the vertex values and gradients only, and each gradient is a fixed linear
// combination of all node values, so the weights are found by evaluating the
// patch once per vertex value and gradient component.
func (p *ScatteredInterpolator) cubicStencil(t int, b [3]float64) Stencil {
	ct := p.tri.cloughTocher(t)
	n := len(p.xs)
	w := make([]float64, n)
	for k, v := range p.tri.tris[t] {
		var f [3]float64
		var df [3][2]float64
		f[k] = 1
		w[v] += ct.eval(f, df, b)
		f[k] = 0
		for c := 0; c < 2; c++ {
			df[k][c] = 1
			floats.AddScaled(w, ct.eval(f, df, b), p.grad.RawRowView(2*v+c))
			df[k][c] = 0
		}
	}
	s := Stencil{}
	for i, wi := range w {
		if wi != 0 {
			s.Index = append(s.Index, i)
			s.Weight = append(s.Weight, wi)
		}
	}
	return s
}

// ------------------------------------
// Delaunay triangulation
// ------------------------------------

type triangulation struct {
	xs, ys []float64
	tris   [][3]int
	nbr    [][3]int // Triangle across the edge opposite each vertex, -1 on the hull
}

func triangulate(xs, ys []float64) (*triangulation, error) {
	n := len(xs)
	if n < 3 {
		return nil, fmt.Errorf("%d nodes, at least 3 needed for triangulation: %w", n, ErrOutOfGrid)
	}
	pts := make([]delaunay.Point, n)
	for i := range xs {
		pts[i] = delaunay.Point{X: xs[i], Y: ys[i]}
	}
	d, err := delaunay.Triangulate(pts)
	if err != nil {
		return nil, fmt.Errorf("nodes are collinear (%v): %w", err, ErrOutOfGrid)
	}
	nt := len(d.Triangles) / 3
	if nt == 0 {
		return nil, fmt.Errorf("nodes are collinear: %w", ErrOutOfGrid)
	}
	t := &triangulation{xs: xs, ys: ys, tris: make([][3]int, nt), nbr: make([][3]int, nt)}
	for i := 0; i < nt; i++ {
		for k := 0; k < 3; k++ {
			t.tris[i][k] = d.Triangles[3*i+k]
			// Half edge 3i+k runs from vertex k to vertex k+1
			if h := d.Halfedges[3*i+(k+1)%3]; h >= 0 {
				t.nbr[i][k] = h / 3
			} else {
				t.nbr[i][k] = -1
			}
		}
	}
	return t, nil
}

// Barycentric coordinates of (x, y) in triangle i
func (d *triangulation) barycentric(i int, x, y float64) [3]float64 {
	v := d.tris[i]
	xa, ya := d.xs[v[0]], d.ys[v[0]]
	xb, yb := d.xs[v[1]], d.ys[v[1]]
	xc, yc := d.xs[v[2]], d.ys[v[2]]
	det := (yb-yc)*(xa-xc) + (xc-xb)*(ya-yc)
	l1 := ((yb-yc)*(x-xc) + (xc-xb)*(y-yc)) / det
	l2 := ((yc-ya)*(x-xc) + (xa-xc)*(y-yc)) / det
	return [3]float64{l1, l2, 1 - l1 - l2}
}

// Triangle containing (x, y) and barycentric coordinates
func (d *triangulation) locate(x, y float64) (int, [3]float64, bool) {
	const eps = 1e-12
	for i := range d.tris {
		b := d.barycentric(i, x, y)
		if b[0] >= -eps && b[1] >= -eps && b[2] >= -eps {
			return i, b, true
		}
	}
	return -1, [3]float64{}, false
}

// Undirected edges, each listed once
func (d *triangulation) edges() [][2]int {
	seen := make(map[[2]int]bool, 3*len(d.tris))
	var es [][2]int
	for _, v := range d.tris {
		for k := 0; k < 3; k++ {
			a, b := v[k], v[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			if !seen[[2]int{a, b}] {
				seen[[2]int{a, b}] = true
				es = append(es, [2]int{a, b})
			}
		}
	}
	return es
}

// Gradient at every node as a linear function of the node values: row 2i
// gives df/dx and row 2i+1 df/dy at node i.
// The gradients minimize the curvature of the cubic along every edge
// (Nielson 1983), which is the linear system
//
//	sum_j (4 g_i + 2 g_j).e_ij e_ij / L_ij^3 = 6 sum_j (f_j - f_i) e_ij / L_ij^3
//
// over the neighbours j of each node i. Linear fields are reproduced.
func (d *triangulation) nodeGradients() (*mat.Dense, error) {
	n := len(d.xs)
	A := mat.NewSymDense(2*n, nil)
	B := mat.NewDense(2*n, n, nil)
	add := func(r, c int, v float64) { A.SetSym(r, c, A.At(r, c)+v) }
	used := make([]bool, n)
	for _, e := range d.edges() {
		i, j := e[0], e[1]
		used[i], used[j] = true, true
		ex, ey := d.xs[j]-d.xs[i], d.ys[j]-d.ys[i]
		l3 := math.Pow(math.Hypot(ex, ey), 3)
		mxx, mxy, myy := ex*ex/l3, ex*ey/l3, ey*ey/l3
		for _, k := range [2]int{i, j} {
			add(2*k, 2*k, 4*mxx)
			add(2*k, 2*k+1, 4*mxy)
			add(2*k+1, 2*k+1, 4*myy)
			B.Set(2*k, i, B.At(2*k, i)-6*ex/l3)
			B.Set(2*k, j, B.At(2*k, j)+6*ex/l3)
			B.Set(2*k+1, i, B.At(2*k+1, i)-6*ey/l3)
			B.Set(2*k+1, j, B.At(2*k+1, j)+6*ey/l3)
		}
		add(2*i, 2*j, 2*mxx)
		add(2*i, 2*j+1, 2*mxy)
		add(2*i+1, 2*j, 2*mxy)
		add(2*i+1, 2*j+1, 2*myy)
	}
	// Duplicated nodes are not in the triangulation, their gradient is zero
	for k := 0; k < n; k++ {
		if !used[k] {
			A.SetSym(2*k, 2*k, 1)
			A.SetSym(2*k+1, 2*k+1, 1)
		}
	}

	var G mat.Dense
	var chol mat.Cholesky
	if chol.Factorize(A) {
		if err := chol.SolveTo(&G, B); err != nil {
			return nil, fmt.Errorf("node gradients: %w", err)
		}
		return &G, nil
	}
	if err := G.Solve(A, B); err != nil {
		return nil, fmt.Errorf("node gradients: %w", err)
	}
	return &G, nil
}

// Clough-Tocher split of one triangle
type ctPatch struct {
	e [3][2]float64 // Edges v1-v0, v2-v1, v0-v2
	g [3]float64    // Continuity weight of the edge opposite each vertex
}

func (d *triangulation) cloughTocher(t int) ctPatch {
	v := d.tris[t]
	var ct ctPatch
	for k := 0; k < 3; k++ {
		a, b := v[k], v[(k+1)%3]
		ct.e[k] = [2]float64{d.xs[b] - d.xs[a], d.ys[b] - d.ys[a]}
	}
	for k := 0; k < 3; k++ {
		o := d.nbr[t][k]
		if o < 0 {
			ct.g[k] = -0.5
			continue
		}
		// Centroid of the neighbour in this triangle's coordinates
		w := d.tris[o]
		cx := (d.xs[w[0]] + d.xs[w[1]] + d.xs[w[2]]) / 3
		cy := (d.ys[w[0]] + d.ys[w[1]] + d.ys[w[2]]) / 3
		c := d.barycentric(t, cx, cy)
		p, q := c[(k+2)%3], c[(k+1)%3]
		ct.g[k] = (2*p + q - 1) / (2 - 3*p - 3*q)
	}
	return ct
}

func dot2(a, b [2]float64) float64 { return a[0]*b[0] + a[1]*b[1] }

// Value at barycentric b for vertex values f and gradients df
func (ct ctPatch) eval(f [3]float64, df [3][2]float64, b [3]float64) float64 {
	e12, e23, e31 := ct.e[0], ct.e[1], ct.e[2]

	// Bezier ordinates of the three sub-triangles
	c3000 := f[0]
	c2100 := (dot2(df[0], e12) + 3*c3000) / 3
	c2010 := (-dot2(df[0], e31) + 3*c3000) / 3
	c0300 := f[1]
	c1200 := (-dot2(df[1], e12) + 3*c0300) / 3
	c0210 := (dot2(df[1], e23) + 3*c0300) / 3
	c0030 := f[2]
	c1020 := (dot2(df[2], e31) + 3*c0030) / 3
	c0120 := (-dot2(df[2], e23) + 3*c0030) / 3

	c2001 := (c2100 + c2010 + c3000) / 3
	c0201 := (c1200 + c0300 + c0210) / 3
	c0021 := (c1020 + c0120 + c0030) / 3

	// C1 across the outer edges
	g := ct.g
	c0111 := (g[0]*(-c0300+3*c0210-3*c0120+c0030) + (-c0300 + 2*c0210 - c0120 + c0021 + c0201)) / 2
	c1011 := (g[1]*(-c0030+3*c1020-3*c2010+c3000) + (-c0030 + 2*c1020 - c2010 + c2001 + c0021)) / 2
	c1101 := (g[2]*(-c3000+3*c2100-3*c1200+c0300) + (-c3000 + 2*c2100 - c1200 + c2001 + c0201)) / 2

	c1002 := (c1101 + c1011 + c2001) / 3
	c0102 := (c1101 + c0111 + c0201) / 3
	c0012 := (c1011 + c0111 + c0021) / 3
	c0003 := (c1002 + c0102 + c0012) / 3

	m := math.Min(b[0], math.Min(b[1], b[2]))
	b1, b2, b3, b4 := b[0]-m, b[1]-m, b[2]-m, 3*m

	switch {
	case b1 == 0:
		return b2*b2*b2*c0300 + 3*b2*b2*b3*c0210 + 3*b2*b3*b3*c0120 + b3*b3*b3*c0030 +
			3*b2*b2*b4*c0201 + 6*b2*b3*b4*c0111 + 3*b3*b3*b4*c0021 +
			3*b2*b4*b4*c0102 + 3*b3*b4*b4*c0012 + b4*b4*b4*c0003
	case b2 == 0:
		return b1*b1*b1*c3000 + 3*b1*b1*b3*c2010 + 3*b1*b3*b3*c1020 + b3*b3*b3*c0030 +
			3*b1*b1*b4*c2001 + 6*b1*b3*b4*c1011 + 3*b3*b3*b4*c0021 +
			3*b1*b4*b4*c1002 + 3*b3*b4*b4*c0012 + b4*b4*b4*c0003
	default:
		return b1*b1*b1*c3000 + 3*b1*b1*b2*c2100 + 3*b1*b2*b2*c1200 + b2*b2*b2*c0300 +
			3*b1*b1*b4*c2001 + 6*b1*b2*b4*c1101 + 3*b2*b2*b4*c0201 +
			3*b1*b4*b4*c1002 + 3*b2*b4*b4*c0102 + b4*b4*b4*c0003
	}
}
