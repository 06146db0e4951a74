package shiplog

import (
	"encoding/xml"
	"io"
	"strings"
)

// xmlNode is one element of a parsed ship-log document. Start and End are
// byte offsets covering the element from '<' through its closing tag, the
// anchor for diagnostics.
type xmlNode struct {
	Name     string
	Text     string // concatenated direct character data
	Children []*xmlNode
	Start    int
	End      int
}

// parseXMLTree parses a document into an element tree with byte offsets.
// Content after the root element is ignored, matching lenient readers.
func parseXMLTree(content string) (*xmlNode, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var root *xmlNode
	var stack []*xmlNode

	for {
		// InputOffset points just past the previous token, which is the
		// start of the next one.
		offset := int(dec.InputOffset())

		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{Name: t.Name.Local, Start: offset}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)

		case xml.EndElement:
			if len(stack) > 0 {
				n := stack[len(stack)-1]
				n.End = int(dec.InputOffset())
				stack = stack[:len(stack)-1]
			}

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	return root, nil
}

// find returns the first element named name in a depth-first walk of the
// tree rooted at n, including n itself.
func (n *xmlNode) find(name string) *xmlNode {
	if n == nil {
		return nil
	}
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.find(name); found != nil {
			return found
		}
	}
	return nil
}

// child returns the first direct child named name, or nil.
func (n *xmlNode) child(name string) *xmlNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}
