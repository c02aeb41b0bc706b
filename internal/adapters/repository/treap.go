package repository

import (
	"math/rand/v2"

	"github.com/okian/heataoi/internal/domain/aoi"
)

// hotspot is one AOI of a completed run as held by the ranking index.
type hotspot struct {
	jobID  string
	result aoi.Result
}

// before reports whether a ranks ahead of b: score DESC, then job ID ASC,
// then the AOI's rank within its run ASC.
func before(a, b *hotspot) bool {
	if a.result.Score != b.result.Score {
		return a.result.Score > b.result.Score
	}
	if a.jobID != b.jobID {
		return a.jobID < b.jobID
	}
	return a.result.Rank < b.result.Rank
}

// node of a treap ordered by before with random heap priorities.
type node struct {
	h     *hotspot
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, h *hotspot) *node {
	if n == nil {
		return &node{h: h, prio: rand.Uint64(), size: 1}
	}
	if before(h, n.h) {
		n.left = insert(n.left, h)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, h)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func remove(n *node, h *hotspot) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.h == h:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = remove(n.right, h)
		} else {
			n = rotateLeft(n)
			n.left = remove(n.left, h)
		}
	case before(h, n.h):
		n.left = remove(n.left, h)
	default:
		n.right = remove(n.right, h)
	}
	fix(n)
	return n
}

// collect appends up to limit hotspots in rank order.
func collect(n *node, limit int, out *[]*hotspot) {
	if n == nil || len(*out) >= limit {
		return
	}
	collect(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.h)
	}
	collect(n.right, limit, out)
}
