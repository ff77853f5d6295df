// Package graph provides generic, in-memory graph data structures modeled
// after a mature network-analysis toolkit: a simple undirected Graph, a
// DiGraph, and multi-edge variants MultiGraph and MultiDiGraph, plus a
// relabeling subsystem for renaming nodes.
//
// # Nodes and attributes
//
// A node is any comparable value — an int, a string, or a hand-written
// comparable struct. Arbitrary data about a node, an edge, or the graph as a
// whole lives in an AttrMap, a free-form string-keyed map, not in the node
// value itself. For structural records that aren't naturally comparable,
// project them down to a comparable key first with StructHash or
// IdentityHash and keep the original value in the node's AttrMap:
//
//	g := graph.New[string]()
//	g.AddNode("A", graph.AttrMap{"color": "red"})
//	g.AddEdge("A", "B", nil)
//
// # Variants
//
// The four graph flavors (directed?, multi?) share this package but are
// distinct types, following the teacher's approach of small per-variant
// structs with shared helper functions rather than deep inheritance.
package graph

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// AttrMap is a free-form, string-keyed attribute record attached to a
// graph, a node, or an edge. A nil AttrMap is treated the same as an empty
// one everywhere in this package.
type AttrMap map[string]any

// cloneAttrs returns an independent map with the same entries as a. Values
// are copied by reference: AttrMap only owns the map itself, not whatever
// its values point to, matching spec's "callers who need an independent
// copy must deep-copy explicitly" for anything below the top level.
func cloneAttrs(a AttrMap) AttrMap {
	out := make(AttrMap, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// mergeAttrs copies every entry of src into dst, creating dst if it is nil,
// and returns the (possibly newly allocated) result. This is the "merge
// attr into the existing record" behavior AddNode/AddEdge use when a node
// or edge already exists.
func mergeAttrs(dst, src AttrMap) AttrMap {
	if dst == nil {
		dst = make(AttrMap, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// NameAttr is the well-known graph-attribute key spec.md §3 reserves for a
// graph's optional name.
const NameAttr = "name"

// OriginalLabelsAttr is the well-known graph-attribute key
// ConvertNodeLabelsToIntegers attaches the original node->integer mapping
// under, when discardOld is false.
const OriginalLabelsAttr = "original_labels"

// Edge2 is a two-element edge specification: an edge between U and V with
// no attributes of its own, the Go rendering of spec.md §4.2's "2-tuple
// (u,v)" AddEdgesFrom element.
type Edge2[K comparable] struct {
	U, V K
}

// Edge3 is a three-element edge specification: an edge between U and V
// carrying its own attribute record, the Go rendering of spec.md §4.2's
// "3-tuple (u,v,d)" AddEdgesFrom element.
type Edge3[K comparable] struct {
	U, V K
	Attr AttrMap
}

// WeightedEdge3 is a (u, v, weight) triple, the element type
// AddWeightedEdgesFrom consumes.
type WeightedEdge3[K comparable] struct {
	U, V   K
	Weight float64
}

// parseEdgeElements normalizes a heterogeneous slice of Edge2[K]/Edge3[K]
// values into Edge3[K], synthesizing an empty Attr for 2-tuples. Any
// element that is neither is a structural error: spec.md §4.2 requires
// "elements of other arities fail with a structural error," which a Go
// implementation can only observe when the caller passes a loosely typed
// []any, exactly the case this function exists for.
func parseEdgeElements[K comparable](elements []any) ([]Edge3[K], error) {
	out := make([]Edge3[K], 0, len(elements))
	for i, el := range elements {
		switch e := el.(type) {
		case Edge2[K]:
			out = append(out, Edge3[K]{U: e.U, V: e.V})
		case Edge3[K]:
			out = append(out, e)
		default:
			return nil, &MalformedInputError{
				Reason: fmt.Sprintf("element %d is neither a 2-tuple nor a 3-tuple edge", i),
			}
		}
	}
	return out, nil
}

// SimpleEdge is the variant-agnostic edge shape used by GraphLike, the
// "convert to graph" collaborator spec.md §6 describes. Graph and DiGraph
// return it from Edges; MultiGraph and MultiDiGraph return it only from
// SimpleEdges.
type SimpleEdge[K comparable] struct {
	U, V K
	Attr AttrMap
}

// GraphLike is the minimal read surface spec.md §6 requires of "another
// graph of any variant" passed as a constructor initializer: the caller's
// own node and edge data, consumed only through Nodes/NodeAttr/Edges so
// that copy-construction never depends on a collaborator's internal
// representation. Graph and DiGraph satisfy it; MultiGraph and MultiDiGraph
// do not, since their Edges methods return MultiSimpleEdge values.
type GraphLike[K comparable] interface {
	Nodes() []K
	NodeAttr(n K) (AttrMap, bool)
	Edges() []SimpleEdge[K]
}

// GraphOption configures a graph at construction time, following the
// teacher's functional-option style (Directed(), Weighted(), ...) rather
// than a parameter struct.
type GraphOption func(*graphConfig)

type graphConfig struct {
	attr   AttrMap
	logger hclog.Logger
}

func newGraphConfig(opts []GraphOption) *graphConfig {
	cfg := &graphConfig{logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.attr == nil {
		cfg.attr = AttrMap{}
	}
	return cfg
}

// WithGraphAttr sets the graph-level attribute record at construction time.
func WithGraphAttr(attr AttrMap) GraphOption {
	return func(c *graphConfig) {
		c.attr = cloneAttrs(attr)
	}
}

// WithName is a shorthand for WithGraphAttr(AttrMap{NameAttr: name}) merged
// over any attributes already set.
func WithName(name string) GraphOption {
	return func(c *graphConfig) {
		if c.attr == nil {
			c.attr = AttrMap{}
		}
		c.attr[NameAttr] = name
	}
}

// WithLogger attaches an hclog.Logger that receives a Trace-level entry for
// each AddNode, AddEdge, RemoveNode and RemoveEdge call (other mutations,
// such as Clear, in-place Reverse and relabeling, are not logged), following the
// logger-as-construction-option pattern go-argmapper uses for its own
// graph traversal. The default is a no-op logger, so tracing carries no
// cost unless a caller opts in.
func WithLogger(logger hclog.Logger) GraphOption {
	return func(c *graphConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// graphName returns the graph's name attribute, or "" if unset or not a string.
func graphName(attr AttrMap) string {
	if v, ok := attr[NameAttr]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
