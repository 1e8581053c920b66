package mdtree

import "sort"

// Walk visits el and its descendants in pre-order, children before named
// slots (slots in name order). Returning false from fn skips the content of
// the visited element.
func Walk(el *Element, fn func(*Element) bool) {
	if el == nil {
		return
	}
	stack := []*Element{el}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e == nil || !fn(e) {
			continue
		}
		content := contentOf(e)
		for i := len(content) - 1; i >= 0; i-- {
			stack = append(stack, content[i])
		}
	}
}

// Count returns the number of elements in the tree rooted at el.
func Count(el *Element) int {
	n := 0
	Walk(el, func(*Element) bool {
		n++
		return true
	})
	return n
}

// SlotNames returns the names of the slots of el in sorted order.
func SlotNames(el *Element) []string {
	if el == nil || len(el.Slots) == 0 {
		return nil
	}
	names := make([]string, 0, len(el.Slots))
	for name := range el.Slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contentOf(e *Element) []*Element {
	if len(e.Slots) == 0 {
		return e.Children
	}
	out := make([]*Element, 0, len(e.Children))
	out = append(out, e.Children...)
	for _, name := range SlotNames(e) {
		out = append(out, e.Slots[name]...)
	}
	return out
}
