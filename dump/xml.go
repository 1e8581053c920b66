package dump

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/beevik/etree"

	"pkt.systems/mdtree"
	"pkt.systems/mdtree/dom"
)

// XMLDocument converts el into an XML document. Components are marked with
// component="true" and each of their slots is wrapped in a <slot name="...">
// element. Text becomes character data, placeholders become comments and raw
// markup becomes CDATA.
func XMLDocument(el *mdtree.Element) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	if el != nil {
		appendXML(&doc.Element, el)
	}
	return doc
}

func appendXML(parent *etree.Element, el *mdtree.Element) {
	if el == nil {
		return
	}
	switch el.Kind {
	case mdtree.KindText:
		parent.CreateText(el.Text)
		return
	case mdtree.KindComment:
		parent.CreateComment(strings.ReplaceAll(el.Text, "--", "- -"))
		return
	case mdtree.KindRaw:
		parent.CreateCData(el.Text)
		return
	}
	x := parent.CreateElement(xmlName(el.Tag))
	if el.Component != nil {
		x.CreateAttr("component", "true")
	}
	for _, a := range dom.Attributes(el.Props) {
		x.CreateAttr(xmlName(a.Key), a.Val)
	}
	for _, c := range el.Children {
		appendXML(x, c)
	}
	for _, name := range mdtree.SlotNames(el) {
		slot := x.CreateElement("slot")
		slot.CreateAttr("name", name)
		for _, c := range el.Slots[name] {
			appendXML(slot, c)
		}
	}
}

// XML writes el as indented XML to w.
func XML(w io.Writer, el *mdtree.Element, indent int) error {
	doc := XMLDocument(el)
	doc.Indent(indent)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write xml: %w", err)
	}
	return nil
}

// XMLString returns el as indented XML.
func XMLString(el *mdtree.Element, indent int) (string, error) {
	doc := XMLDocument(el)
	doc.Indent(indent)
	s, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("write xml: %w", err)
	}
	return s, nil
}

// xmlName replaces characters that cannot appear in an XML name.
func xmlName(s string) string {
	if s == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range s {
		ok := unicode.IsLetter(r) || r == '_' || r == ':'
		if i > 0 {
			ok = ok || unicode.IsDigit(r) || r == '-' || r == '.'
		}
		if !ok {
			r = '_'
		}
		b.WriteRune(r)
	}
	return b.String()
}
