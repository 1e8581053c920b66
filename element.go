package mdtree

// ElementKind discriminates element descriptors.
type ElementKind uint8

const (
	// KindElement is a tag or component with properties and content.
	KindElement ElementKind = iota
	// KindText is a text leaf; Text holds the value.
	KindText
	// KindComment is an inert, non-visible node; Text holds the comment body.
	KindComment
	// KindRaw is markup injected without escaping; Text holds the markup.
	KindRaw
)

func (k ElementKind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k ElementKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// DefaultSlot is the slot overridden components receive their children in.
const DefaultSlot = "default"

// Props maps element property names to values.
type Props map[string]any

// Clone returns a shallow copy of p.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// mergeProps layers maps left to right; later keys win.
func mergeProps(layers ...Props) Props {
	size := 0
	for _, l := range layers {
		size += len(l)
	}
	if size == 0 {
		return nil
	}
	out := make(Props, size)
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}

// Component identifies a UI component substituted for a default tag.
type Component interface {
	ComponentName() string
}

// Named is a Component identified by name only.
type Named string

// ComponentName implements Component.
func (n Named) ComponentName() string { return string(n) }

// Element is a UI element descriptor.
//
// Default rules fill Children. When a Component replaced the default tag,
// container content is attached to Slots[DefaultSlot] and Children stays
// empty.
type Element struct {
	Kind      ElementKind           `json:"kind"`
	Tag       string                `json:"tag,omitempty"`
	Component Component             `json:"component,omitempty"`
	Props     Props                 `json:"props,omitempty"`
	Children  []*Element            `json:"children,omitempty"`
	Slots     map[string][]*Element `json:"slots,omitempty"`
	Text      string                `json:"text,omitempty"`
}

// Content returns the children of e regardless of where they are attached.
func (e *Element) Content() []*Element {
	if e == nil {
		return nil
	}
	if e.Component != nil {
		return e.Slots[DefaultSlot]
	}
	return e.Children
}

// Prop returns the property stored under key.
func (e *Element) Prop(key string) (any, bool) {
	if e == nil || e.Props == nil {
		return nil, false
	}
	v, ok := e.Props[key]
	return v, ok
}

var voidTags = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "source": {}, "track": {}, "wbr": {},
}

// IsVoid reports whether e is an intrinsic element that cannot have content.
func (e *Element) IsVoid() bool {
	if e == nil || e.Kind != KindElement || e.Component != nil {
		return false
	}
	_, ok := voidTags[e.Tag]
	return ok
}
