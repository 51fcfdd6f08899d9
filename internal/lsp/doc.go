// Package lsp provides Language Server Protocol client integration for the
// editor.
//
// The LSP layer enables intelligent code features by communicating with
// external language servers (gopls, rust-analyzer, typescript-language-server,
// etc.). It abstracts the complexity of JSON-RPC communication, server
// lifecycle management, and protocol negotiation while exposing a small
// surface to the rest of the editor.
//
// # Architecture
//
// The package is organized around these core components:
//
//   - Manager: starts and looks up the language server for a file's detected
//     language, lazily and by extension
//   - Server: a single server connection — request/response correlation,
//     capability negotiation, and the document/completion/navigation/code
//     action/format/rename/signature-help operations
//   - Transport: JSON-RPC 2.0 framing and encoding over the server's stdio
//   - Supervisor: restarts a crashed server with backoff and re-syncs its
//     open documents
//   - EnrichmentProxy: sits between the editor and a Server, answering
//     tokens/completion/sync requests from a ShadowDocument mirror whenever
//     the underlying server lacks the matching capability, so the editor
//     never has to branch on what the server supports
//
// # Quick Start
//
//	mgr := lsp.NewManager()
//	mgr.RegisterServer("go", lsp.ServerConfig{Command: "gopls", Args: []string{"serve"}})
//	server, err := mgr.ServerForFile(ctx, "/path/to/file.go")
//	proxy := lsp.NewEnrichmentProxy(server, highlight.Default())
//	proxy.DidOpen(uri, "/path/to/file.go", text)
//
// # Crash Recovery
//
// Servers are monitored by a Supervisor and restarted on crash with
// exponential backoff; open documents are re-synced to the new instance.
//
// # Thread Safety
//
// Manager and Server are safe for concurrent use.
package lsp
