// Package highlight supplies in-process lexers the Enrichment Proxy falls
// back to when a language server has no semantic tokens provider: a
// regex/keyword-table SimpleHighlighter per language, registered by file
// extension, producing line.Token spans against the shared TokenType
// legend so the renderer never needs to know whether a token came from a
// real language server or a local lexer.
package highlight
