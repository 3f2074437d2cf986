package scanner

import (
	"context"
	"path/filepath"
)

// DefaultDepthLimit is how far below a vendor folder junk roots are searched.
const DefaultDepthLimit = 3

// Traverser finds junk roots beneath a vendor folder. The vendor folder is
// depth 0; directories deeper than DepthLimit are never examined.
type Traverser struct {
	DepthLimit int
	IsJunk     func(name string) bool
}

// Walk calls visit for every junk root under vendorDir, in pre-order and
// enumeration order. Nothing beneath a junk root is examined.
func (t Traverser) Walk(ctx context.Context, vendorDir string, visit func(path string)) {
	limit := t.DepthLimit
	if limit <= 0 {
		limit = DefaultDepthLimit
	}

	type frame struct {
		path  string
		depth int
	}
	stack := []frame{{path: vendorDir, depth: 0}}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if t.IsJunk(filepath.Base(f.path)) {
			visit(f.path)
			continue
		}
		if f.depth >= limit {
			continue
		}

		children := subdirs(f.path)
		// Push in reverse so children pop in enumeration order.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{path: children[i], depth: f.depth + 1})
		}
	}
}

// FindJunkRoots collects the junk roots beneath vendorDir.
func FindJunkRoots(ctx context.Context, vendorDir string, depthLimit int, isJunk func(string) bool) []string {
	var roots []string
	Traverser{DepthLimit: depthLimit, IsJunk: isJunk}.Walk(ctx, vendorDir, func(path string) {
		roots = append(roots, path)
	})
	return roots
}
