package shiplog

import (
	"strings"

	"github.com/nhmods/horizon-ls/internal/lsp"
	"github.com/nhmods/horizon-ls/internal/project"
)

// parseShipLog walks one ship-log document, recording every identifier
// declaration and reference into the registries and folding the entries
// into the index.
func (c *Context) parseShipLog(p *project.Store, file *project.TrackedFile) error {
	tree, err := parseXMLTree(file.Content)
	if err != nil {
		return err
	}

	// The AstroObjectEntry element is usually the document root, but it
	// is accepted anywhere in the tree.
	root := tree.find("AstroObjectEntry")
	if root == nil {
		return nil
	}

	conv := lsp.NewPositionConverter(file.Content)
	w := &docWalk{ctx: c, id: file.ID(), conv: conv}

	astroID := ""
	if idNode := root.child("ID"); idNode != nil {
		astroID = strings.TrimSpace(idNode.Text)
		c.astroObjectIDs = append(c.astroObjectIDs, w.record(astroID, idNode))
		c.pathToAstro[p.RelPath(file)] = astroID
	}

	for _, node := range root.Children {
		if node.Name == "Entry" {
			w.entry(node, astroID, "")
		}
	}
	return nil
}

// docWalk carries the per-document state of one ship-log traversal.
type docWalk struct {
	ctx  *Context
	id   lsp.VersionedTextDocumentIdentifier
	conv *lsp.PositionConverter
}

func (w *docWalk) record(value string, node *xmlNode) IDRecord {
	return IDRecord{
		Value: value,
		File:  w.id,
		Range: w.conv.RangeFor(node.Start, node.End),
	}
}

// entry walks one Entry element and its nested children. An entry with no
// ID child still has its facts and references collected, it just cannot
// be indexed or targeted.
func (w *docWalk) entry(node *xmlNode, astroID, parent string) {
	c := w.ctx

	id := ""
	if idNode := node.child("ID"); idNode != nil {
		id = strings.TrimSpace(idNode.Text)
		c.entryIDs = append(c.entryIDs, w.record(id, idNode))
	}

	e := &Entry{
		ID:          id,
		AstroObject: astroID,
		Name:        NamePlaceholder,
		Parent:      parent,
		Position:    c.positions[id],
	}

	for _, child := range node.Children {
		switch child.Name {
		case "Name":
			if name := strings.TrimSpace(child.Text); name != "" {
				e.Name = name
			}
		case "Curiosity":
			ref := strings.TrimSpace(child.Text)
			c.curiosityRefs = append(c.curiosityRefs, w.record(ref, child))
			e.Curiosity = ref
		case "IsCuriosity":
			e.Curiosity = id
		case "ExploreFact", "RumorFact":
			w.fact(child, e)
		case "Entry":
			w.entry(child, astroID, id)
		}
	}

	// Duplicate ids surface through the duplicate check; the index just
	// keeps the latest occurrence.
	if id != "" {
		c.entries[id] = e
	}
}

// fact records the fact's own ID and, for rumor facts, the entry it
// points at.
func (w *docWalk) fact(node *xmlNode, e *Entry) {
	c := w.ctx

	if idNode := node.child("ID"); idNode != nil {
		fid := strings.TrimSpace(idNode.Text)
		c.factIDs = append(c.factIDs, w.record(fid, idNode))
		e.Facts = append(e.Facts, fid)
	}

	if src := node.child("SourceID"); src != nil {
		ref := strings.TrimSpace(src.Text)
		c.sourceIDRefs = append(c.sourceIDRefs, w.record(ref, src))
	}
}
