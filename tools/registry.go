package tools

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/amd/gaia", "tools")

// ErrUnknownTool is returned on a registry miss during dispatch.
var ErrUnknownTool = errors.New("unknown tool")

// Registry is the process-wide mapping from tool name to ToolSpec.
// All access goes through the Registry; components never hold a reference
// to the backing map. Safe for concurrent use: a Manager teardown may race
// a lookup during dispatch.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]ToolSpec
}

func NewRegistry() *Registry {
	return &Registry{
		specs: make(map[string]ToolSpec),
	}
}

// Register inserts the spec, overwriting any existing tool with the same name.
func (r *Registry) Register(spec ToolSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.specs[spec.Name]; ok {
		logger.KV(xlog.DEBUG,
			"status", "tool_overwritten",
			"tool", spec.Name,
		)
	}
	r.specs[spec.Name] = spec
}

// Unregister removes the tool if present; absent names are not an error.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.specs, name)
}

// Get returns the spec for the name.
func (r *Registry) Get(name string) (ToolSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

// List returns a snapshot of all specs, sorted by name.
func (r *Registry) List() []ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]ToolSpec, 0, len(r.specs))
	for _, spec := range r.specs {
		list = append(list, spec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
