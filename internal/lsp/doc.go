// Package lsp implements the subset of the Language Server Protocol the
// Horizon language server speaks: document synchronization, diagnostics
// publishing, and the initialize handshake.
//
// Positions follow the LSP convention of zero-based lines with character
// offsets counted in UTF-16 code units. PositionConverter translates the
// byte offsets produced by parsers into protocol positions.
//
// Transport implements the base protocol framing (Content-Length headers)
// over an arbitrary reader/writer pair, typically stdin/stdout.
package lsp
