package lsp

import "github.com/tidwall/gjson"

// Observe classifies a raw outbound message and routes it through the
// proxy: didOpen/didClose manage the shadow document's lifecycle directly
// (Dispatch's FullSync/Direct cases assume an already-open shadow), every
// other intercepted method goes through Dispatch. ok is false when data
// didn't match a method this proxy cares about, in which case the caller
// forwards data to the server unchanged.
func (p *EnrichmentProxy) Observe(data []byte, path string) (Outcome, bool, error) {
	payload, ok := ClassifyOutbound(data)
	if !ok {
		return Outcome{}, false, nil
	}
	payload.Path = path
	payload.Bytes = data

	if payload.Kind == PayloadFullSync && p.shadows.Get(payload.URI) == nil {
		p.DidOpen(payload.URI, path, payload.Text)
		return Outcome{Forward: &payload}, true, nil
	}
	if payload.Kind == PayloadDirect {
		p.DidClose(payload.URI)
		return Outcome{Forward: &payload}, true, nil
	}

	outcome, err := p.Dispatch(payload)
	return outcome, true, err
}

// ClassifyOutbound inspects a raw outbound JSON-RPC message with gjson and
// reports whether Dispatch needs to intervene at all. Most messages
// crossing the wire (hover, definition, formatting, ...) never touch the
// shadow document or a fallback path, so this avoids a full
// encoding/json unmarshal of every passthrough message — only the method
// name and, for the handful of methods the enrichment proxy cares about,
// a few field paths are pulled out of the raw bytes.
func ClassifyOutbound(data []byte) (Payload, bool) {
	method := gjson.GetBytes(data, "method").String()
	switch method {
	case "textDocument/didOpen":
		params := gjson.GetBytes(data, "params")
		return Payload{
			Kind: PayloadFullSync,
			URI:  DocumentURI(params.Get("textDocument.uri").String()),
			Text: params.Get("textDocument.text").String(),
		}, true

	case "textDocument/didChange":
		params := gjson.GetBytes(data, "params")
		return Payload{
			Kind:    PayloadSync,
			URI:     DocumentURI(params.Get("textDocument.uri").String()),
			Version: int(params.Get("textDocument.version").Int()),
			Changes: parseContentChanges(params.Get("contentChanges")),
		}, true

	case "textDocument/didClose":
		return Payload{
			Kind: PayloadDirect,
			URI:  DocumentURI(gjson.GetBytes(data, "params.textDocument.uri").String()),
		}, true

	case "textDocument/semanticTokens/full":
		return Payload{
			Kind: PayloadTokens,
			URI:  DocumentURI(gjson.GetBytes(data, "params.textDocument.uri").String()),
		}, true

	case "textDocument/semanticTokens/range":
		params := gjson.GetBytes(data, "params")
		rng := parseRange(params.Get("range"))
		return Payload{
			Kind:  PayloadPartialTokens,
			URI:   DocumentURI(params.Get("textDocument.uri").String()),
			Range: rng,
		}, true

	case "textDocument/completion":
		params := gjson.GetBytes(data, "params")
		return Payload{
			Kind: PayloadCompletion,
			URI:  DocumentURI(params.Get("textDocument.uri").String()),
			Pos: Position{
				Line:      int(params.Get("position.line").Int()),
				Character: int(params.Get("position.character").Int()),
			},
		}, true

	default:
		return Payload{}, false
	}
}

func parseContentChanges(arr gjson.Result) []TextDocumentContentChangeEvent {
	results := arr.Array()
	changes := make([]TextDocumentContentChangeEvent, 0, len(results))
	for _, c := range results {
		ev := TextDocumentContentChangeEvent{Text: c.Get("text").String()}
		if rangeResult := c.Get("range"); rangeResult.Exists() {
			ev.Range = parseRange(rangeResult)
		}
		changes = append(changes, ev)
	}
	return changes
}

func parseRange(r gjson.Result) *Range {
	if !r.Exists() {
		return nil
	}
	return &Range{
		Start: Position{Line: int(r.Get("start.line").Int()), Character: int(r.Get("start.character").Int())},
		End:   Position{Line: int(r.Get("end.line").Int()), Character: int(r.Get("end.character").Int())},
	}
}
