package mdtree

import "fmt"

// Override replaces the default rendering of one node type. Build one with
// Use, UseProps or UseFunc.
type Override interface {
	override()
}

// Overrides maps node types to their override.
type Overrides map[NodeType]Override

type useOverride struct {
	component Component
}

type propsOverride struct {
	component Component
	props     Props
}

type funcOverride struct {
	fn func(*Node) (Override, error)
}

func (useOverride) override()   {}
func (propsOverride) override() {}
func (funcOverride) override()  {}

// Use renders nodes of the type with c instead of the default tag.
func Use(c Component) Override {
	return useOverride{component: c}
}

// UseProps renders nodes of the type with c and adds props, which win over
// every other property source. A nil c keeps the default tag and only adds
// props.
func UseProps(c Component, props Props) Override {
	return propsOverride{component: c, props: props}
}

// UseFunc decides the override per node. fn runs once for every node of the
// type and may return nil to keep the default rendering. Returning another
// UseFunc override is an error.
func UseFunc(fn func(*Node) (Override, error)) Override {
	return funcOverride{fn: fn}
}

// resolved is the normalized form of an override for one node.
type resolved struct {
	component Component
	props     Props
}

func (r resolved) active() bool {
	return r.component != nil
}

func resolve(o Override, n *Node) (resolved, error) {
	switch v := o.(type) {
	case nil:
		return resolved{}, nil
	case useOverride:
		return resolved{component: v.component}, nil
	case propsOverride:
		return resolved{component: v.component, props: v.props}, nil
	case funcOverride:
		if v.fn == nil {
			return resolved{}, nil
		}
		out, err := callOverride(v.fn, n)
		if err != nil {
			return resolved{}, err
		}
		if _, nested := out.(funcOverride); nested {
			return resolved{}, ErrOverrideFunc
		}
		return resolve(out, n)
	default:
		return resolved{}, fmt.Errorf("unsupported override %T", o)
	}
}

func callOverride(fn func(*Node) (Override, error), n *Node) (o Override, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("override panicked: %v", r)
		}
	}()
	return fn(n)
}
