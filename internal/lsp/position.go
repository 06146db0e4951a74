package lsp

// PositionConverter translates byte offsets in a document into LSP positions.
// LSP positions are zero-based lines with character offsets counted in UTF-16
// code units; parsers hand back byte offsets into the raw content.
type PositionConverter struct {
	content string
	lines   []lineInfo
}

// lineInfo stores the extent of a single line for fast lookup.
type lineInfo struct {
	byteOffset int // byte offset of line start
	byteLen    int // length in bytes, excluding the newline
}

// NewPositionConverter creates a converter for the given content.
func NewPositionConverter(content string) *PositionConverter {
	pc := &PositionConverter{content: content}
	pc.buildLineIndex()
	return pc
}

// buildLineIndex records the byte extent of every line.
func (pc *PositionConverter) buildLineIndex() {
	pc.lines = nil

	lineStart := 0
	for i := 0; i < len(pc.content); i++ {
		if pc.content[i] == '\n' {
			pc.lines = append(pc.lines, lineInfo{
				byteOffset: lineStart,
				byteLen:    i - lineStart,
			})
			lineStart = i + 1
		}
	}

	// Last line may not end with a newline.
	pc.lines = append(pc.lines, lineInfo{
		byteOffset: lineStart,
		byteLen:    len(pc.content) - lineStart,
	})
}

// PositionFor converts a byte offset to an LSP Position.
// Offsets outside the content are clamped to the nearest valid position.
func (pc *PositionConverter) PositionFor(byteOffset int) Position {
	if byteOffset < 0 {
		return Position{Line: 0, Character: 0}
	}
	if byteOffset > len(pc.content) {
		byteOffset = len(pc.content)
	}

	// Binary search for the line containing the offset.
	lo, hi := 0, len(pc.lines)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if pc.lines[mid].byteOffset <= byteOffset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	line := pc.lines[lo]
	charOffset := byteOffset - line.byteOffset
	if charOffset > line.byteLen {
		charOffset = line.byteLen
	}

	lineContent := pc.content[line.byteOffset : line.byteOffset+line.byteLen]
	return Position{
		Line:      lo,
		Character: byteToUTF16Offset(lineContent, charOffset),
	}
}

// RangeFor converts a byte offset pair to an LSP Range.
func (pc *PositionConverter) RangeFor(start, end int) Range {
	return Range{Start: pc.PositionFor(start), End: pc.PositionFor(end)}
}

// LineCount returns the number of lines in the content.
func (pc *PositionConverter) LineCount() int {
	return len(pc.lines)
}

// byteToUTF16Offset converts a byte offset within a line to a UTF-16 offset.
func byteToUTF16Offset(line string, byteOff int) int {
	if byteOff > len(line) {
		byteOff = len(line)
	}

	utf16Off := 0
	for i, r := range line {
		if i >= byteOff {
			break
		}
		if r >= 0x10000 {
			utf16Off += 2
		} else {
			utf16Off++
		}
	}
	return utf16Off
}
