package quantize

import (
	"fmt"
	"sort"

	"github.com/ironsheep/image-reduce-mcp/internal/imaging"
)

// maxDepth is the depth of a full octree: one level per bit of an 8-bit
// channel.
const maxDepth = 8

// handle indexes a node in the tree's arena. The root is always handle 0,
// and since the root is never anyone's child, 0 in a child slot means empty.
type handle int32

const root handle = 0

type node struct {
	children [8]handle

	// Channel sums and pixel count of a leaf. count > 0 marks a leaf.
	sumR, sumG, sumB uint64
	count            uint64

	// total counts every insertion that passed through this node, including
	// those now absorbed by merges. It orders merge candidates.
	total uint64

	// index is the palette index, valid once the palette is built.
	index int
}

func (n *node) leaf() bool {
	return n.count > 0
}

// Octree indexes colors by successive bits of their channels and reduces
// them to an adaptive palette.
//
// All nodes live in a single arena; children and the per-level registries
// refer to them by handle. The registries list every node ever created at
// levels 0..7 and drive the bulk merge in BuildPalette.
//
// An Octree is not safe for concurrent mutation. After BuildPalette it is
// read-only and Lookup may be called from any number of goroutines.
type Octree struct {
	nodes   []node
	levels  [maxDepth][]handle
	leaves  int
	palette []imaging.RGBColor
	built   bool
}

// NewOctree returns an empty tree holding only its root.
func NewOctree() *Octree {
	t := &Octree{
		nodes: make([]node, 1, 1024),
	}
	t.levels[0] = append(t.levels[0], root)
	return t
}

// childIndex forms a 3-bit child slot from bit (7 - level) of each channel.
func childIndex(c imaging.RGBColor, level int) int {
	shift := uint(7 - level)
	return int((c.R>>shift)&1)<<2 | int((c.G>>shift)&1)<<1 | int((c.B>>shift)&1)
}

// newNode appends a node at the given depth and registers it.
func (t *Octree) newNode(depth int) handle {
	h := handle(len(t.nodes))
	t.nodes = append(t.nodes, node{})
	if depth < maxDepth {
		t.levels[depth] = append(t.levels[depth], h)
	}
	return h
}

// Insert adds one pixel of color c.
//
// The descent creates missing children and bumps the running total of every
// node on the path. The pixel is accumulated into the node at depth 8, or
// into a shallower node if a merge has already turned it into a leaf.
func (t *Octree) Insert(c imaging.RGBColor) {
	t.built = false
	cur := root
	for depth := 0; ; depth++ {
		n := &t.nodes[cur]
		n.total++
		if depth == maxDepth || n.leaf() {
			if !n.leaf() {
				t.leaves++
			}
			n.sumR += uint64(c.R)
			n.sumG += uint64(c.G)
			n.sumB += uint64(c.B)
			n.count++
			return
		}

		slot := childIndex(c, depth)
		next := n.children[slot]
		if next == 0 {
			// newNode may grow the arena; n must not be used after it.
			next = t.newNode(depth + 1)
			t.nodes[cur].children[slot] = next
		}
		cur = next
	}
}

// Leaves returns the current number of leaves.
func (t *Octree) Leaves() int {
	return t.leaves
}

// merge folds the children of h into it, turning h into a leaf. It returns
// the number of children absorbed.
func (t *Octree) merge(h handle) int {
	n := &t.nodes[h]
	merged := 0
	for slot, ch := range n.children {
		if ch == 0 {
			continue
		}
		child := &t.nodes[ch]
		n.sumR += child.sumR
		n.sumG += child.sumG
		n.sumB += child.sumB
		n.count += child.count
		n.children[slot] = 0
		merged++
	}
	return merged
}

// BuildPalette reduces the tree to at most maxColors leaves and returns the
// palette. maxColors below 1 is treated as 1.
//
// Levels are reduced deepest first. A level is sorted by ascending running
// total before merging only when the remaining excess could plausibly be
// absorbed there (excess <= 7 * nodes at that level); otherwise it is merged
// in creation order. Merging stops as soon as the leaf count fits.
//
// Palette indices follow a depth-first walk in child-slot order, and each
// color is the rounded mean of its leaf.
func (t *Octree) BuildPalette(maxColors int) []imaging.RGBColor {
	if maxColors < 1 {
		maxColors = 1
	}

	for level := maxDepth - 1; level >= 0 && t.leaves > maxColors; level-- {
		nodes := t.levels[level]
		if excess := t.leaves - maxColors; excess <= 7*len(nodes) {
			sort.SliceStable(nodes, func(i, j int) bool {
				return t.nodes[nodes[i]].total < t.nodes[nodes[j]].total
			})
		}
		for _, h := range nodes {
			if t.leaves <= maxColors {
				break
			}
			if merged := t.merge(h); merged > 0 {
				t.leaves -= merged - 1
			}
		}
	}

	t.palette = t.palette[:0]
	if t.nodes[root].total > 0 {
		t.assign(root)
	}
	t.built = true
	return append([]imaging.RGBColor(nil), t.palette...)
}

// assign walks the tree depth-first, numbering leaves.
func (t *Octree) assign(h handle) {
	n := &t.nodes[h]
	if n.leaf() {
		n.index = len(t.palette)
		t.palette = append(t.palette, imaging.RGBColor{
			R: roundedMean(n.sumR, n.count),
			G: roundedMean(n.sumG, n.count),
			B: roundedMean(n.sumB, n.count),
		})
		return
	}
	for _, ch := range n.children {
		if ch != 0 {
			t.assign(ch)
		}
	}
}

func roundedMean(sum, count uint64) uint8 {
	return uint8((sum + count/2) / count)
}

// Palette returns the palette built by the last BuildPalette call.
func (t *Octree) Palette() []imaging.RGBColor {
	return append([]imaging.RGBColor(nil), t.palette...)
}

// Lookup returns the palette index for c by following the same bit path as
// Insert until a leaf is reached.
//
// It panics if the palette has not been built since the last Insert, or if
// the path ends without a leaf. Either means c was never inserted or the
// tree is corrupt, and substituting a default would hide the defect.
func (t *Octree) Lookup(c imaging.RGBColor) int {
	if !t.built {
		panic("quantize: Lookup called before BuildPalette")
	}
	cur := root
	for depth := 0; depth <= maxDepth; depth++ {
		n := &t.nodes[cur]
		if n.leaf() {
			return n.index
		}
		if depth == maxDepth {
			break
		}
		next := n.children[childIndex(c, depth)]
		if next == 0 {
			panic(fmt.Sprintf("quantize: color %v has no path at depth %d", c, depth))
		}
		cur = next
	}
	panic(fmt.Sprintf("quantize: color %v reached depth %d without a leaf", c, maxDepth))
}
