package tailor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Namespace URIs used by word-processing documents.
const (
	nsWordprocessing = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsDrawing        = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPicture        = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	nsRelationships  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// namespaces is the closed set of prefixes this package works with.
// Every element and attribute lookup resolves through it; matching on local
// names alone silently under-matches.
var namespaces = map[string]string{
	"w":   nsWordprocessing,
	"a":   nsDrawing,
	"pic": nsPicture,
	"r":   nsRelationships,
}

// qualify resolves a "prefix:local" reference to a namespace-qualified name.
// References without a known prefix resolve to an unqualified name.
func qualify(ref string) xml.Name {
	if idx := strings.IndexByte(ref, ':'); idx > 0 {
		if uri, ok := namespaces[ref[:idx]]; ok {
			return xml.Name{Space: uri, Local: ref[idx+1:]}
		}
	}
	return xml.Name{Local: ref}
}

// Node is one node of a parsed XML part: either an element (namespace-qualified
// name, attributes, ordered children) or a text node. Trees are exclusively
// owned by one in-flight operation and mutated in place.
type Node struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*Node
	Text     string
	IsText   bool
}

// NewElement creates an element node from a qualified reference like "w:p".
func NewElement(ref string) *Node {
	return &Node{Name: qualify(ref)}
}

// newTextNode creates a text node.
func newTextNode(text string) *Node {
	return &Node{IsText: true, Text: text}
}

// ParseXML parses one part's bytes into a node tree. The part name is only
// used for error context. Malformed input is a fatal XMLError.
func ParseXML(part string, data []byte) (*Node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var stack []*Node
	var root *Node

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewXMLError(part, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			node := &Node{
				Name:  t.Name,
				Attrs: append([]xml.Attr(nil), t.Attr...),
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, NewXMLError(part, errors.New("multiple root elements"))
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			text := string(t)
			if text == "" {
				continue
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, newTextNode(text))
		}
	}

	if root == nil {
		return nil, NewXMLError(part, errors.New("no root element"))
	}
	return root, nil
}

// FindAll returns every element in the subtree matching the qualified path,
// in document order. Each path segment is matched anywhere beneath the
// previous match, so "w:tc/w:p" finds paragraphs at any depth inside cells,
// like an ElementTree ".//" search. The receiver itself never matches.
func (n *Node) FindAll(path string) []*Node {
	current := []*Node{n}
	for _, segment := range strings.Split(path, "/") {
		name := qualify(segment)
		var next []*Node
		for _, scope := range current {
			scope.walk(func(d *Node) bool {
				if d != scope && !d.IsText && d.Name == name {
					next = append(next, d)
				}
				return true
			})
		}
		current = next
	}
	return current
}

// Find returns the first element matching the qualified path, or nil.
func (n *Node) Find(path string) *Node {
	matches := n.FindAll(path)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// Attr returns the value of a qualified attribute like "w:styleId".
func (n *Node) Attr(ref string) (string, bool) {
	name := qualify(ref)
	for _, attr := range n.Attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// SetAttr sets a qualified attribute, replacing any existing value.
func (n *Node) SetAttr(ref, value string) {
	name := qualify(ref)
	for i, attr := range n.Attrs {
		if attr.Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, xml.Attr{Name: name, Value: value})
}

// AppendChild appends a child node.
func (n *Node) AppendChild(child *Node) {
	n.Children = append(n.Children, child)
}

// RemoveChild removes a direct child, matched by identity. It reports whether
// the child was found.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}

// Clone produces a structurally independent deep copy sharing no mutable
// state with the source. Later edits to the clone never affect the original.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := &Node{
		Name:   n.Name,
		Attrs:  append([]xml.Attr(nil), n.Attrs...),
		Text:   n.Text,
		IsText: n.IsText,
	}
	if len(n.Children) > 0 {
		clone.Children = make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			clone.Children = append(clone.Children, child.Clone())
		}
	}
	return clone
}

// TextContent returns the concatenated text of the node's direct text
// children.
func (n *Node) TextContent() string {
	if n.IsText {
		return n.Text
	}
	var b strings.Builder
	for _, child := range n.Children {
		if child.IsText {
			b.WriteString(child.Text)
		}
	}
	return b.String()
}

// SetText replaces the node's children with a single text node.
func (n *Node) SetText(text string) {
	n.Children = n.Children[:0]
	if text != "" {
		n.Children = append(n.Children, newTextNode(text))
	}
}

// walk visits the node and its subtree in document order. The visitor returns
// false to stop the traversal.
func (n *Node) walk(visit func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.walk(visit) {
			return false
		}
	}
	return true
}

// Serialize emits the tree as part bytes: a UTF-8 declaration followed by
// namespace-prefixed markup that remains valid for the host format. The
// prefixes come from the root's own xmlns declarations, falling back to the
// package's known prefix set for nodes synthesized during rewriting.
func (n *Node) Serialize() ([]byte, error) {
	clone := n.Clone()
	normalizeXMLNSAttrs(clone)
	applyPrefixes(clone, prefixesByURI(n))

	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	encoder := xml.NewEncoder(&buf)
	if err := encodeNode(encoder, clone); err != nil {
		return nil, err
	}
	if err := encoder.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// prefixesByURI builds the URI-to-prefix map for serialization from the
// root's xmlns declarations, with the known prefix set as fallback.
func prefixesByURI(root *Node) map[string]string {
	prefixes := make(map[string]string, len(namespaces))
	for prefix, uri := range namespaces {
		prefixes[uri] = prefix
	}
	for _, attr := range root.Attrs {
		switch {
		case attr.Name.Space == "xmlns":
			prefixes[attr.Value] = attr.Name.Local
		case attr.Name.Space == "" && strings.HasPrefix(attr.Name.Local, "xmlns:"):
			prefixes[attr.Value] = strings.TrimPrefix(attr.Name.Local, "xmlns:")
		}
	}
	return prefixes
}

// normalizeXMLNSAttrs rewrites decoder-style xmlns attributes back into their
// literal "xmlns:prefix" form so the encoder emits them verbatim.
func normalizeXMLNSAttrs(node *Node) {
	if node == nil {
		return
	}
	if !node.IsText {
		for i, attr := range node.Attrs {
			if attr.Name.Space != "xmlns" {
				continue
			}
			attr.Name.Space = ""
			if attr.Name.Local == "" {
				attr.Name.Local = "xmlns"
			} else {
				attr.Name.Local = "xmlns:" + attr.Name.Local
			}
			node.Attrs[i] = attr
		}
	}
	for _, child := range node.Children {
		normalizeXMLNSAttrs(child)
	}
}

// applyPrefixes folds namespace URIs back into prefixed local names so the
// encoder produces "w:tbl" style tags instead of namespace-repeating ones.
func applyPrefixes(node *Node, prefixes map[string]string) {
	if node == nil {
		return
	}
	if !node.IsText {
		if prefix, ok := prefixes[node.Name.Space]; ok && prefix != "" {
			node.Name.Local = prefix + ":" + node.Name.Local
			node.Name.Space = ""
		}
		for i, attr := range node.Attrs {
			if attr.Name.Space == "" {
				continue
			}
			// The decoder leaves the predeclared "xml" prefix unresolved.
			if attr.Name.Space == "xml" || attr.Name.Space == "http://www.w3.org/XML/1998/namespace" {
				attr.Name.Local = "xml:" + attr.Name.Local
				attr.Name.Space = ""
				node.Attrs[i] = attr
				continue
			}
			if prefix, ok := prefixes[attr.Name.Space]; ok && prefix != "" {
				attr.Name.Local = prefix + ":" + attr.Name.Local
				attr.Name.Space = ""
				node.Attrs[i] = attr
			}
		}
	}
	for _, child := range node.Children {
		applyPrefixes(child, prefixes)
	}
}

// encodeNode writes a node and its subtree through the encoder.
func encodeNode(encoder *xml.Encoder, node *Node) error {
	if node.IsText {
		return encoder.EncodeToken(xml.CharData(node.Text))
	}
	start := xml.StartElement{Name: node.Name, Attr: node.Attrs}
	if err := encoder.EncodeToken(start); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := encodeNode(encoder, child); err != nil {
			return err
		}
	}
	return encoder.EncodeToken(start.End())
}
