package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Attr is an attribute with its qualified name as written in the part
type Attr struct {
	Name  string
	Value string
}

// Node is an element or a character data node of a part's XML.
//
// Names keep the prefix they were written with ("a:r", "p:sp"), so a part is
// written back with the namespace declarations and prefixes it was read with.
// A node with an empty Name is character data.
type Node struct {
	Name     string
	Attrs    []Attr
	Children []*Node
	Text     string
	parent   *Node
}

// newElement creates an element with attributes given as name, value pairs
func newElement(name string, attrs ...string) *Node {
	n := &Node{Name: name}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attrs = append(n.Attrs, Attr{Name: attrs[i], Value: attrs[i+1]})
	}
	return n
}

func newText(text string) *Node {
	return &Node{Text: text}
}

// IsElement reports whether n is an element rather than character data
func (n *Node) IsElement() bool { return n.Name != "" }

// Parent returns the element holding n
func (n *Node) Parent() *Node { return n.parent }

// Attr returns the value of an attribute
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, adding it when absent
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// RemoveAttr removes an attribute if present
func (n *Node) RemoveAttr(name string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

// Elements returns the element children of n
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.IsElement() {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first element child with the given name
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns the element children with the given name
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Find follows a path of element names from n
func (n *Node) Find(path ...string) *Node {
	cur := n
	for _, name := range path {
		if cur = cur.Child(name); cur == nil {
			return nil
		}
	}
	return cur
}

// Walk calls fn for n and every descendant element, depth first
func (n *Node) Walk(fn func(*Node)) {
	if !n.IsElement() {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// TextContent concatenates the character data below n
func (n *Node) TextContent() string {
	if !n.IsElement() {
		return n.Text
	}
	var sb strings.Builder
	for _, c := range n.Children {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// SetTextContent replaces the children of n with a single character data node
func (n *Node) SetTextContent(text string) {
	for _, c := range n.Children {
		c.parent = nil
	}
	n.Children = nil
	if text != "" {
		n.AppendChild(newText(text))
	}
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// AppendChild attaches child as the last child of n
func (n *Node) AppendChild(child *Node) {
	child.detach()
	child.parent = n
	n.Children = append(n.Children, child)
}

// InsertBefore attaches child directly before ref. A nil ref appends.
func (n *Node) InsertBefore(child, ref *Node) error {
	if ref == nil {
		n.AppendChild(child)
		return nil
	}
	i := n.indexOf(ref)
	if i < 0 {
		return fmt.Errorf("%s is not a child of %s", ref.Name, n.Name)
	}
	child.detach()
	// ref may have moved if child was a sibling before it
	i = n.indexOf(ref)
	child.parent = n
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
	return nil
}

// InsertAt attaches child at position i among all children
func (n *Node) InsertAt(child *Node, i int) {
	child.detach()
	if i < 0 || i > len(n.Children) {
		i = len(n.Children)
	}
	child.parent = n
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
}

// RemoveChild detaches child from n
func (n *Node) RemoveChild(child *Node) error {
	i := n.indexOf(child)
	if i < 0 {
		return fmt.Errorf("%s is not a child of %s", child.Name, n.Name)
	}
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
	child.parent = nil
	return nil
}

func (n *Node) detach() {
	if n.parent != nil {
		_ = n.parent.RemoveChild(n)
	}
}

// Clone returns a deep, detached copy of n
func (n *Node) Clone() *Node {
	c := &Node{Name: n.Name, Text: n.Text}
	if len(n.Attrs) > 0 {
		c.Attrs = make([]Attr, len(n.Attrs))
		copy(c.Attrs, n.Attrs)
	}
	for _, child := range n.Children {
		cc := child.Clone()
		cc.parent = c
		c.Children = append(c.Children, cc)
	}
	return c
}

// parseXML reads a part into a node tree. Prefixes are kept as written;
// comments, processing instructions and directives are dropped.
func parseXML(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	var root *Node
	var stack []*Node

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: qualified(t.Name)}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: qualified(a.Name), Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("failed to parse XML: multiple root elements")
				}
				root = n
			} else {
				stack[len(stack)-1].AppendChild(n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 || stack[len(stack)-1].Name != qualified(t.Name) {
				return nil, fmt.Errorf("failed to parse XML: unexpected end element %s", qualified(t.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].AppendChild(newText(string(t)))
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("failed to parse XML: no root element")
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("failed to parse XML: unclosed element %s", stack[len(stack)-1].Name)
	}
	return root, nil
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

// marshalXML writes n as a standalone part with an XML declaration
func marshalXML(n *Node) []byte {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	writeNode(&buf, n)
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, n *Node) {
	if !n.IsElement() {
		buf.WriteString(textEscaper.Replace(validXMLText(n.Text)))
		return
	}
	buf.WriteByte('<')
	buf.WriteString(n.Name)
	for _, a := range n.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		escapeAttr(buf, a.Value)
		buf.WriteByte('"')
	}
	if len(n.Children) == 0 {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	for _, c := range n.Children {
		writeNode(buf, c)
	}
	buf.WriteString("</")
	buf.WriteString(n.Name)
	buf.WriteByte('>')
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\r", "&#xD;",
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\t", "&#x9;",
	"\n", "&#xA;",
	"\r", "&#xD;",
)

func escapeAttr(buf *bytes.Buffer, s string) {
	buf.WriteString(attrEscaper.Replace(validXMLText(s)))
}

// validXMLText drops invalid UTF-8 and every character an XML 1.0 document
// cannot hold, such as C0 controls other than tab, newline and carriage return.
func validXMLText(s string) string {
	if isValidXMLText(s) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, strings.ToValidUTF8(s, ""))
}

func isValidXMLText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if !isXMLChar(r) {
			return false
		}
	}
	return true
}

// isXMLChar reports whether r matches the Char production of XML 1.0
func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}
