package lsp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/thistle-tpl/thistle/pkg/compile"
	"github.com/thistle-tpl/thistle/pkg/must"
	"github.com/thistle-tpl/thistle/pkg/thistle"
)

func testEngine(t *testing.T) *thistle.Engine {
	t.Helper()
	card := must.OK1(compile.NewComponent(compile.ComponentDef{
		Common:   compile.Common{Selector: "x-card"},
		Template: `<div>{{$attrs.title}}</div>`,
	}))
	return must.OK1(thistle.New(thistle.DefaultConfig(), thistle.WithDirectives(card)))
}

func TestDiagnostics(t *testing.T) {
	e := testEngine(t)
	if got := diagnostics(e, "file:///ok.html", "<p>{{a | upper}}</p>"); len(got) != 0 {
		t.Errorf("got diagnostics %v for valid template", got)
	}

	content := "<p>\n<b thi-repeat=\"oops\"></b></p>"
	got := diagnostics(e, "file:///bad.html", content)
	if len(got) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(got))
	}
	wantRange := lsp.Range{
		Start: lsp.Position{Line: 1, Character: 0},
		End:   lsp.Position{Line: 1, Character: 25},
	}
	if diff := cmp.Diff(wantRange, got[0].Range); diff != "" {
		t.Errorf("range (-want +got):\n%s", diff)
	}
	if got[0].Severity != lsp.Error || got[0].Source != "thistle" {
		t.Errorf("got severity %v and source %q", got[0].Severity, got[0].Source)
	}
	if !strings.Contains(got[0].Message, `thi-repeat expects a definition like "item in collection"`) {
		t.Errorf("got message %q", got[0].Message)
	}
}

var completeTests = []struct {
	name    string
	content string
	want    []string
	kind    lsp.CompletionItemKind
}{
	{"attribute", `<p thi-`, []string{"thi-else", "thi-if", "thi-repeat", "thi-switch", "thi-when"}, lsp.CIKProperty},
	{"attribute with prefix", `<p class="a" thi-r`, []string{"thi-repeat"}, lsp.CIKProperty},
	{"attribute after quoted >", `<p title="a>b" thi-i`, []string{"thi-if"}, lsp.CIKProperty},
	{"element", `<x-`, []string{"x-card"}, lsp.CIKClass},
	{"filter", `{{name | up`, []string{"upper"}, lsp.CIKFunction},
	{"filter without space", `<p thi-if="a|le`, []string{"length"}, lsp.CIKFunction},
}

func TestComplete(t *testing.T) {
	e := testEngine(t)
	for _, test := range completeTests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := complete(e, test.content, len(test.content))
			if !ok {
				t.Fatalf("no completion")
			}
			if diff := cmp.Diff(test.want, got.items); diff != "" {
				t.Errorf("items (-want +got):\n%s", diff)
			}
			if got.kind != test.kind {
				t.Errorf("got kind %v, want %v", got.kind, test.kind)
			}
			start := len(test.content) - len(lastName(test.content))
			if got.replace.From != start || got.replace.To != len(test.content) {
				t.Errorf("got replace %v, want [%d, %d)", got.replace, start, len(test.content))
			}
		})
	}
}

func TestComplete_NoCompletion(t *testing.T) {
	e := testEngine(t)
	for _, content := range []string{
		`plain text`,
		`<p title="thi-`,
		`{{a || thi`,
		`</x-`,
	} {
		if got, ok := complete(e, content, len(content)); ok && len(got.items) > 0 {
			t.Errorf("%q: got completion %v", content, got.items)
		}
	}
}

func lastName(s string) string {
	i := len(s)
	for i > 0 && isNameByte(s[i-1]) {
		i--
	}
	return s[i:]
}

var describeTests = []struct {
	content string
	dot     int
	want    string
}{
	{`<p thi-if="x">`, 5, "template directive [thi-if], priority 600, terminal"},
	{`<div thi-switch="x">`, 7, "decorator directive [thi-switch], priority 1200"},
	{`<x-card></x-card>`, 2, "component directive x-card, priority 0"},
	{`<x-card></x-card>`, 12, "component directive x-card, priority 0"},
	{`{{a | upper}}`, 8, "filter upper"},
}

func TestDescribeAt(t *testing.T) {
	e := testEngine(t)
	for _, test := range describeTests {
		got, r, ok := describeAt(e, test.content, test.dot)
		if !ok {
			t.Errorf("%q at %d: no description", test.content, test.dot)
			continue
		}
		if got != test.want {
			t.Errorf("%q at %d: got %q, want %q", test.content, test.dot, got, test.want)
		}
		if r.From > test.dot || r.To < test.dot {
			t.Errorf("%q at %d: range %v does not cover dot", test.content, test.dot, r)
		}
	}

	for _, content := range []string{`<p title="x">`, `{{a | nope}}`, `text thi-if`} {
		if got, _, ok := describeAt(e, content, len(content)-2); ok {
			t.Errorf("%q: got description %q", content, got)
		}
	}
}

func TestServer(t *testing.T) {
	s := newServer(testEngine(t))
	conn := &fakeConn{notifications: make(chan notification, 10)}
	ctx := context.Background()
	uri := lsp.DocumentURI("file:///a.html")

	call(t, s.didOpen, conn, lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uri, Text: `<p thi-if="a +">`}})
	n := <-conn.notifications
	if n.method != "textDocument/publishDiagnostics" {
		t.Errorf("got notification %q", n.method)
	}
	if params := n.params.(lsp.PublishDiagnosticsParams); params.URI != uri || len(params.Diagnostics) != 1 {
		t.Errorf("got params %v, want one diagnostic for %v", params, uri)
	}

	call(t, s.didChange, conn, lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: uri}},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "<p>\n{{x | tr}}"}}})
	n = <-conn.notifications
	if params := n.params.(lsp.PublishDiagnosticsParams); len(params.Diagnostics) != 1 {
		t.Errorf("got %d diagnostics, want 1", len(params.Diagnostics))
	}

	result := call(t, s.completion, conn, lsp.CompletionParams{
		TextDocumentPositionParams: lsp.TextDocumentPositionParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: uri},
			Position:     lsp.Position{Line: 1, Character: 8}}})
	wantItems := []lsp.CompletionItem{{
		Label: "trim",
		Kind:  lsp.CIKFunction,
		TextEdit: &lsp.TextEdit{
			Range: lsp.Range{
				Start: lsp.Position{Line: 1, Character: 6},
				End:   lsp.Position{Line: 1, Character: 8}},
			NewText: "trim",
		},
	}}
	if diff := cmp.Diff(wantItems, result); diff != "" {
		t.Errorf("completion (-want +got):\n%s", diff)
	}

	result = call(t, s.hover, conn, lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
		Position:     lsp.Position{Line: 1, Character: 7}})
	if hover := result.(lsp.Hover); hover.Range != nil {
		t.Errorf("got hover %v for unknown filter prefix", hover)
	}

	call(t, s.didClose, conn, lsp.DidCloseTextDocumentParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri}})
	if _, ok := s.content[uri]; ok {
		t.Errorf("content not removed after didClose")
	}

	if _, err := s.hover(ctx, conn, json.RawMessage(`[`)); err != errInvalidParams {
		t.Errorf("got error %v for invalid params, want errInvalidParams", err)
	}
}

func call(t *testing.T, m method, conn jsonrpc2.JSONRPC2, params any) any {
	t.Helper()
	raw := must.OK1(json.Marshal(params))
	result, err := m(context.Background(), conn, raw)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

type notification struct {
	method string
	params any
}

type fakeConn struct {
	notifications chan notification
}

func (c *fakeConn) Call(context.Context, string, any, any, ...jsonrpc2.CallOption) error {
	return nil
}

func (c *fakeConn) Notify(_ context.Context, method string, params any, _ ...jsonrpc2.CallOption) error {
	c.notifications <- notification{method, params}
	return nil
}

func (c *fakeConn) Close() error { return nil }
