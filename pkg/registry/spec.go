// Package registry implements the node specification catalog: the single
// source of truth for which (type, subtype) pairs exist, what config they
// accept, and how their output gets reshaped before it is handed to
// downstream nodes.
package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/smilemakc/mbflow/pkg/models"
)

// ParamKind enumerates the primitive shapes a node parameter can take.
type ParamKind string

const (
	ParamKindString  ParamKind = "string"
	ParamKindNumber  ParamKind = "number"
	ParamKindBool    ParamKind = "bool"
	ParamKindObject  ParamKind = "object"
	ParamKindArray   ParamKind = "array"
	ParamKindExpr    ParamKind = "expression"
)

// ParamSchema describes a single configuration field of a node subtype.
type ParamSchema struct {
	Name        string
	Kind        ParamKind
	Required    bool
	Default     interface{}
	Description string
	OneOf       []string // non-empty restricts a string param to an enum
}

// OutputPort describes one named output a node subtype can produce.
// Ports named "iteration" and "error" are reserved (models.OutputKeyIteration,
// models.OutputKeyError) and carry fan-out/error-routing semantics
// respectively rather than ordinary data.
type OutputPort struct {
	Name        string
	Description string
}

// NodeSpec is the full specification for one (Type, Subtype) pair.
type NodeSpec struct {
	Type        string
	Subtype     string
	Params      []ParamSchema
	Outputs     []OutputPort
	Attachable  bool // true for TOOL/MEMORY specs that only ever appear as AttachedNodes
	Description string
}

// Key returns the composite registry key for this spec.
func (s *NodeSpec) Key() string { return key(s.Type, s.Subtype) }

func key(nodeType, subtype string) string {
	return strings.ToUpper(strings.TrimSuffix(nodeType, "_NODE")) + "/" + strings.ToUpper(subtype)
}

// Registry is the thread-safe (type, subtype) -> NodeSpec catalog.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*NodeSpec
}

// New creates an empty registry. Use NewBuiltin to get one pre-populated
// with the specs this repository ships.
func New() *Registry {
	return &Registry{specs: make(map[string]*NodeSpec)}
}

// Register adds or replaces a spec.
func (r *Registry) Register(spec *NodeSpec) error {
	if spec.Type == "" {
		return fmt.Errorf("registry: spec type is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[spec.Key()] = spec
	return nil
}

// Lookup finds the spec for a (type, subtype) pair. The "_NODE" suffix on
// nodeType is stripped before matching, so callers can pass either the
// editor-facing "ACTION_NODE" form or the bare "ACTION" form.
func (r *Registry) Lookup(nodeType, subtype string) (*NodeSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[key(nodeType, subtype)]
	return spec, ok
}

// List returns every registered spec, sorted by key for deterministic output.
func (r *Registry) List() []*NodeSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*NodeSpec, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s)
	}
	return out
}

// Validate checks a node's config against its spec: required params present,
// kinds plausible, OneOf enums respected. It does not evaluate expressions.
func (r *Registry) Validate(node *models.Node) error {
	spec, ok := r.Lookup(node.Type, node.Subtype)
	if !ok {
		return fmt.Errorf("registry: no spec registered for %s/%s", node.Type, node.Subtype)
	}
	for _, p := range spec.Params {
		v, present := node.Config[p.Name]
		if !present {
			if p.Required {
				return fmt.Errorf("registry: node %s missing required param %q", node.ID, p.Name)
			}
			continue
		}
		if len(p.OneOf) > 0 {
			s, ok := v.(string)
			if !ok || !contains(p.OneOf, s) {
				return fmt.Errorf("registry: node %s param %q must be one of %v", node.ID, p.Name, p.OneOf)
			}
		}
	}
	return nil
}

// Normalize fills in defaults for any params the node's config omitted.
// It mutates node.Config in place and also returns it for convenience.
func (r *Registry) Normalize(node *models.Node) map[string]interface{} {
	spec, ok := r.Lookup(node.Type, node.Subtype)
	if !ok {
		return node.Config
	}
	if node.Config == nil {
		node.Config = make(map[string]interface{})
	}
	for _, p := range spec.Params {
		if _, present := node.Config[p.Name]; !present && p.Default != nil {
			node.Config[p.Name] = p.Default
		}
	}
	return node.Config
}

// ShapeOutput trims a raw runner output down to the ports declared by the
// node's spec, dropping anything the spec doesn't name. It is a pure
// function of (spec, raw) and is idempotent: ShapeOutput(ShapeOutput(x)) ==
// ShapeOutput(x), because re-filtering an already-filtered map against the
// same port list is a no-op.
func (r *Registry) ShapeOutput(node *models.Node, raw map[string]interface{}) map[string]interface{} {
	spec, ok := r.Lookup(node.Type, node.Subtype)
	if !ok || len(spec.Outputs) == 0 {
		return raw
	}
	shaped := make(map[string]interface{}, len(spec.Outputs))
	for _, port := range spec.Outputs {
		if v, present := raw[port.Name]; present {
			shaped[port.Name] = v
		}
	}
	// reserved ports always pass through untouched if the runner set them
	if v, present := raw[models.OutputKeyIteration]; present {
		shaped[models.OutputKeyIteration] = v
	}
	if v, present := raw[models.OutputKeyError]; present {
		shaped[models.OutputKeyError] = v
	}
	return shaped
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
