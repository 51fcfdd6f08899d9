package lsp

import "testing"

func TestClassifyOutboundDidOpen(t *testing.T) {
	data := []byte(`{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"file:///a.go","text":"package main\n"}}}`)
	payload, ok := ClassifyOutbound(data)
	if !ok {
		t.Fatal("expected didOpen to classify")
	}
	if payload.Kind != PayloadFullSync || payload.URI != "file:///a.go" || payload.Text != "package main\n" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestClassifyOutboundDidChange(t *testing.T) {
	data := []byte(`{"jsonrpc":"2.0","method":"textDocument/didChange","params":{
		"textDocument":{"uri":"file:///a.go","version":3},
		"contentChanges":[{"range":{"start":{"line":0,"character":1},"end":{"line":0,"character":2}},"text":"X"}]
	}}`)
	payload, ok := ClassifyOutbound(data)
	if !ok {
		t.Fatal("expected didChange to classify")
	}
	if payload.Kind != PayloadSync || payload.Version != 3 || len(payload.Changes) != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	c := payload.Changes[0]
	if c.Range == nil || c.Range.Start.Character != 1 || c.Range.End.Character != 2 || c.Text != "X" {
		t.Fatalf("unexpected change: %+v", c)
	}
}

func TestClassifyOutboundUnknownMethod(t *testing.T) {
	data := []byte(`{"jsonrpc":"2.0","method":"textDocument/hover","params":{}}`)
	if _, ok := ClassifyOutbound(data); ok {
		t.Fatal("expected hover to be left unclassified")
	}
}

func TestEnrichmentProxyObserveDidOpenThenDidChange(t *testing.T) {
	s := newTestServer()
	p := NewEnrichmentProxy(s, nil)

	openMsg := []byte(`{"method":"textDocument/didOpen","params":{"textDocument":{"uri":"file:///a.go","text":"package main\n"}}}`)
	if _, ok, err := p.Observe(openMsg, "a.go"); err != nil || !ok {
		t.Fatalf("Observe(didOpen) ok=%v err=%v", ok, err)
	}
	if p.shadows.Get("file:///a.go") == nil {
		t.Fatal("expected shadow opened")
	}

	changeMsg := []byte(`{"method":"textDocument/didChange","params":{
		"textDocument":{"uri":"file:///a.go","version":2},
		"contentChanges":[{"range":{"start":{"line":0,"character":8},"end":{"line":0,"character":12}},"text":"pkg"}]
	}}`)
	outcome, ok, err := p.Observe(changeMsg, "a.go")
	if err != nil || !ok {
		t.Fatalf("Observe(didChange) ok=%v err=%v", ok, err)
	}
	if outcome.Forward == nil {
		t.Fatal("expected a forwarded (downgraded) payload without incremental sync")
	}

	closeMsg := []byte(`{"method":"textDocument/didClose","params":{"textDocument":{"uri":"file:///a.go"}}}`)
	if _, ok, err := p.Observe(closeMsg, "a.go"); err != nil || !ok {
		t.Fatalf("Observe(didClose) ok=%v err=%v", ok, err)
	}
	if p.shadows.Get("file:///a.go") != nil {
		t.Fatal("expected shadow dropped after didClose")
	}
}

func TestEnrichmentProxyObserveUnknownMethodPassesThrough(t *testing.T) {
	s := newTestServer()
	p := NewEnrichmentProxy(s, nil)
	_, ok, err := p.Observe([]byte(`{"method":"textDocument/hover","params":{}}`), "a.go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected an unrecognized method to report ok=false")
	}
}
