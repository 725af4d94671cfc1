// Package preview computes and memoises the previews shown next to notes.
package preview

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Paintersrp/mds/internal/note"
)

type View int

const (
	Details View = iota
	LinkTree
	TaskTree
)

func (v View) String() string {
	switch v {
	case LinkTree:
		return "links"
	case TaskTree:
		return "tasks"
	default:
		return "details"
	}
}

// ParseView accepts the names printed by View.String.
func ParseView(s string) (View, error) {
	for _, v := range []View{Details, LinkTree, TaskTree} {
		if v.String() == s {
			return v, nil
		}
	}
	return Details, fmt.Errorf("unknown preview view %q", s)
}

// Next cycles Details, LinkTree and TaskTree.
func (v View) Next() View {
	return (v + 1) % 3
}

// Kind identifies one preview of a note.
type Kind struct {
	View      View
	Direction note.Direction
}

func (k Kind) String() string {
	if k.View == Details {
		return k.View.String()
	}
	return k.View.String() + " " + k.Direction.String()
}

// ComputeFunc renders one preview.
type ComputeFunc func(ctx context.Context, n note.Note, kind Kind) (string, error)

type key struct {
	name string
	kind Kind
}

// Cache memoises previews for one navigation session. Entries are never
// invalidated; concurrent requests for the same entry compute it once.
type Cache struct {
	mu      sync.RWMutex
	entries map[key]string
	group   singleflight.Group
	compute ComputeFunc
}

func NewCache(compute ComputeFunc) *Cache {
	return &Cache{
		entries: make(map[key]string),
		compute: compute,
	}
}

// Get returns the cached preview or computes it. A failed computation is
// returned as text and not cached.
func (c *Cache) Get(ctx context.Context, n note.Note, kind Kind) string {
	k := key{name: n.Name, kind: kind}

	c.mu.RLock()
	out, ok := c.entries[k]
	c.mu.RUnlock()
	if ok {
		return out
	}

	v, _, _ := c.group.Do(n.Name+"\x00"+kind.String(), func() (interface{}, error) {
		c.mu.RLock()
		out, ok := c.entries[k]
		c.mu.RUnlock()
		if ok {
			return out, nil
		}

		out, err := c.compute(ctx, n, kind)
		if err != nil {
			return fmt.Sprintf("preview unavailable: %v", err), nil
		}

		c.mu.Lock()
		c.entries[k] = out
		c.mu.Unlock()
		return out, nil
	})
	return v.(string)
}

// Len is the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
