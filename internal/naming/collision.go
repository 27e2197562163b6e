package naming

import (
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// CollisionResolver tracks names claimed within one plan and resolves
// repeats by appending "-N" suffixes (N starting at 2). Keys are compared
// case-insensitively so the plan stays distinct on case-folding
// filesystems. All methods are goroutine-safe.
type CollisionResolver struct {
	mu     sync.Mutex
	labels map[string]int      // folded title label → occurrences so far
	paths  map[string]struct{} // folded destination path → claimed
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		labels: make(map[string]int),
		paths:  make(map[string]struct{}),
	}
}

// Label returns label unchanged on its first occurrence and label-N for the
// Nth repeat.
func (cr *CollisionResolver) Label(label string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	key := strings.ToLower(label)
	cr.labels[key]++
	if n := cr.labels[key]; n > 1 {
		return label + "-" + strconv.Itoa(n)
	}
	return label
}

// Claim reserves path and returns it, or the first "<stem>-N<ext>" variant
// that is still unclaimed.
func (cr *CollisionResolver) Claim(path string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.take(path) {
		return path
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for n := 2; ; n++ {
		candidate := filepath.Join(dir, stem+"-"+strconv.Itoa(n)+ext)
		if cr.take(candidate) {
			return candidate
		}
	}
}

func (cr *CollisionResolver) take(path string) bool {
	key := strings.ToLower(path)
	if _, claimed := cr.paths[key]; claimed {
		return false
	}
	cr.paths[key] = struct{}{}
	return true
}
