package decl

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/GregoryLand/openscad-LSP/internal/syntax/syntaxtest"
)

func moduleDecl(name string, bodyFirstStmt string, params ...*syntaxtest.Node) *syntaxtest.Node {
	nameNode := syntaxtest.Leaf("identifier", name)
	list := paramList(params...)
	body := syntaxtest.Parent("block", "", nil,
		syntaxtest.Token("{"),
		syntaxtest.Leaf("expression_statement", bodyFirstStmt),
		syntaxtest.Token("}"))
	n := syntaxtest.Parent("module_declaration", "",
		map[string]*syntaxtest.Node{"name": nameNode, "parameters": list, "body": body},
		syntaxtest.Token("module"), nameNode, list, body)
	n.Span = span(3, 0, 40)
	return n
}

func functionDecl(name string, value string, params ...*syntaxtest.Node) *syntaxtest.Node {
	nameNode := syntaxtest.Leaf("identifier", name)
	list := paramList(params...)
	valueNode := syntaxtest.Leaf("expression", value)
	return syntaxtest.Parent("function_declaration", "",
		map[string]*syntaxtest.Node{"name": nameNode, "parameters": list},
		syntaxtest.Token("function"), nameNode, list, syntaxtest.Token("="), valueNode)
}

func TestParseItem_Module(t *testing.T) {
	node := moduleDecl("translate", "builtin_flags(0000000000000011);",
		syntaxtest.Leaf("identifier", "v"))

	item := ParseItem(node)
	if item == nil {
		t.Fatal("ParseItem returned nil")
	}
	if item.Name != "translate" {
		t.Errorf("name = %q", item.Name)
	}
	mod, ok := item.Kind.(Module)
	if !ok {
		t.Fatalf("kind = %T, want Module", item.Kind)
	}
	if !mod.Flags.IsOperator() || !mod.Flags.IgnoresParamName() {
		t.Errorf("flags = %v, want operator|ignore-name", mod.Flags)
	}
	if len(mod.Params) != 1 || mod.Params[0].Name != "v" {
		t.Errorf("params = %+v", mod.Params)
	}
	if item.Range != span(3, 0, 40) {
		t.Errorf("range = %+v, want the whole declaration", item.Range)
	}
	if item.IsBuiltin || item.URL != "" || item.Doc != "" {
		t.Errorf("classifier should not set collaborator fields: %+v", item)
	}
}

func TestParseItem_ModuleWithoutMarker(t *testing.T) {
	node := moduleDecl("thing", "cube(1);")
	item := ParseItem(node)
	if item == nil {
		t.Fatal("ParseItem returned nil")
	}
	if flags := item.Kind.(Module).Flags; flags != 0 {
		t.Errorf("flags = %v, want 0", flags)
	}
}

func TestParseItem_Function(t *testing.T) {
	node := functionDecl("clamp", "builtin_flags(0000000000000010)",
		syntaxtest.Leaf("identifier", "x"),
		assignParam("lo", "0"))

	item := ParseItem(node)
	if item == nil {
		t.Fatal("ParseItem returned nil")
	}
	fn, ok := item.Kind.(Function)
	if !ok {
		t.Fatalf("kind = %T, want Function", item.Kind)
	}
	// Function flags come from the declaration's last child.
	if fn.Flags != FlagIgnoreParamName {
		t.Errorf("flags = %v, want ignore-name", fn.Flags)
	}
	if len(fn.Params) != 2 {
		t.Errorf("params = %+v", fn.Params)
	}
}

func TestParseItem_FunctionMarkerMustBeLast(t *testing.T) {
	node := functionDecl("f", "x")
	// A trailing token hides the marker from the last-child probe.
	node.Children = append(node.Children[:len(node.Children)-1],
		syntaxtest.Leaf("expression", "builtin_flags(0000000000000001)"),
		syntaxtest.Token(";"))

	item := ParseItem(node)
	if item == nil {
		t.Fatal("ParseItem returned nil")
	}
	if flags := item.Kind.(Function).Flags; flags != 0 {
		t.Errorf("flags = %v, want 0 when the marker is not in the last child", flags)
	}
}

func TestParseItem_Assignment(t *testing.T) {
	left := syntaxtest.Leaf("identifier", "width")
	node := syntaxtest.Parent("assignment", "width = 10",
		map[string]*syntaxtest.Node{"left": left, "right": syntaxtest.Leaf("literal", "10")},
		left, syntaxtest.Token("="), syntaxtest.Leaf("literal", "10"))

	item := ParseItem(node)
	if item == nil {
		t.Fatal("ParseItem returned nil")
	}
	if _, ok := item.Kind.(Variable); !ok {
		t.Fatalf("kind = %T, want Variable", item.Kind)
	}
	if item.Name != "width" {
		t.Errorf("name = %q", item.Name)
	}
}

func TestParseItem_Rejects(t *testing.T) {
	if item := ParseItem(nil); item != nil {
		t.Error("ParseItem(nil) should be nil")
	}

	noName := syntaxtest.Parent("module_declaration", "", nil, syntaxtest.Token("module"))
	noLeft := syntaxtest.Parent("assignment", "= 10", nil, syntaxtest.Token("="))

	for _, node := range []*syntaxtest.Node{
		syntaxtest.Leaf("comment", "// nothing"),
		syntaxtest.Leaf("include_statement", "include <lib.scad>"),
		noName,
		noLeft,
	} {
		if item := ParseItem(node); item != nil {
			t.Errorf("ParseItem(%s) = %+v, want nil", node.NodeKind, item)
		}
	}
}

func TestSnippet_Function(t *testing.T) {
	zero := &Item{Name: "version", Kind: Function{}}
	if got := zero.Snippet(false); got != "version();$0" {
		t.Errorf("zero-param function snippet = %q, want %q", got, "version();$0")
	}

	fn := &Item{Name: "clamp", Kind: Function{Params: []Param{{Name: "x"}}}}
	if got := fn.Snippet(false); got != "clamp(x = ${1:x});$0" {
		t.Errorf("snippet = %q", got)
	}
}

func TestSnippet_OperatorModule(t *testing.T) {
	item := &Item{Name: "rot", Kind: Module{
		Flags:  FlagOperator | FlagIgnoreParamName,
		Params: []Param{{Name: "a"}},
	}}
	if got := item.Snippet(false); got != "rot(${1:a}) $0" {
		t.Errorf("operator snippet = %q, want %q", got, "rot(${1:a}) $0")
	}

	plain := &Item{Name: "rot", Kind: Module{Flags: FlagIgnoreParamName, Params: []Param{{Name: "a"}}}}
	if got := plain.Snippet(false); got != "rot(${1:a});$0" {
		t.Errorf("non-operator snippet = %q, want %q", got, "rot(${1:a});$0")
	}
}

func TestSnippet_DefaultHandling(t *testing.T) {
	params := []Param{{Name: "a"}, {Name: "b", Default: "5"}}

	dropped := &Item{Name: "f", Kind: Function{Flags: FlagIgnoreParamName, Params: params}}
	if got := dropped.Snippet(true); got != "f(${1:a});$0" {
		t.Errorf("ignore-default snippet = %q, want %q", got, "f(${1:a});$0")
	}

	kept := &Item{Name: "f", Kind: Function{Flags: FlagIgnoreParamName, Params: params}}
	if got := kept.Snippet(false); got != "f(${1:a}, b = 5);$0" {
		t.Errorf("keep-default snippet = %q, want %q", got, "f(${1:a}, b = 5);$0")
	}
}

func TestSnippet_VariableAndKeyword(t *testing.T) {
	v := &Item{Name: "width", Kind: Variable{}}
	if got := v.Snippet(false); got != "width" {
		t.Errorf("variable snippet = %q", got)
	}

	k := &Item{Name: "for", Kind: Keyword{Text: "for (${1:i} = [${2:start}:${3:end}]) $0"}}
	if got := k.Snippet(false); got != "for (${1:i} = [${2:start}:${3:end}]) $0" {
		t.Errorf("keyword snippet = %q, want the fixed text verbatim", got)
	}
	if got := k.Label(); got != "for" {
		t.Errorf("keyword label = %q, want the name", got)
	}
}

func TestSnippet_MemoKeyedByOption(t *testing.T) {
	item := &Item{Name: "f", Kind: Function{Params: []Param{{Name: "a"}, {Name: "b", Default: "1"}}}}

	first := item.Snippet(false)
	if again := item.Snippet(false); again != first {
		t.Errorf("repeated call changed: %q then %q", first, again)
	}
	flipped := item.Snippet(true)
	if flipped == first {
		t.Error("flipping the option should re-render the snippet")
	}
	if got := item.Snippet(false); got != first {
		t.Errorf("flip back = %q, want %q", got, first)
	}
}

func TestLabel(t *testing.T) {
	item := &Item{Name: "f", Kind: Function{
		Flags:  FlagIgnoreParamName,
		Params: []Param{{Name: "a"}, {Name: "b", Default: "5"}},
	}}
	got := item.Label()
	if got != "f(a, b=5)" {
		t.Errorf("label = %q, want %q", got, "f(a, b=5)")
	}
	if strings.Contains(got, "${") || strings.Contains(got, "$0") {
		t.Errorf("label %q contains snippet markup", got)
	}
	if again := item.Label(); again != got {
		t.Errorf("label not stable: %q then %q", got, again)
	}
}

func TestHover(t *testing.T) {
	fn := &Item{Name: "f", Kind: Function{Params: []Param{{Name: "x"}}}}
	if got := fn.Hover(); got != "```scad\nfunction f(x)\n```" {
		t.Errorf("undocumented function hover = %q", got)
	}

	mod := &Item{Name: "m", Kind: Module{}, Doc: "does things", IsBuiltin: true}
	want := "```scad\nmodule m()\n```\n---\n\ndoes things\n"
	if got := mod.Hover(); got != want {
		t.Errorf("builtin hover = %q, want %q", got, want)
	}

	user := &Item{Name: "m", Kind: Module{}, Doc: "user doc"}
	wantUser := "```scad\nmodule m()\n```\n---\n\n<pre>\nuser doc\n</pre>\n"
	if got := user.Hover(); got != wantUser {
		t.Errorf("user hover = %q, want %q", got, wantUser)
	}

	v := &Item{Name: "width", Kind: Variable{}}
	if got := v.Hover(); got != "```scad\nwidth\n```" {
		t.Errorf("variable hover = %q, want no function/module prefix", got)
	}
}

func TestMaterialize(t *testing.T) {
	item := &Item{Name: "f", Kind: Function{Params: []Param{{Name: "a", Default: "2"}}}}
	item.Materialize(true)
	if item.snippet == nil || item.label == nil || item.hover == nil {
		t.Fatal("Materialize should fill every view cell")
	}
	if got := item.Snippet(true); got != "f();$0" {
		t.Errorf("snippet after materialize = %q", got)
	}
}

func TestKinds(t *testing.T) {
	tests := []struct {
		kind           ItemKind
		wantCompletion protocol.CompletionItemKind
		wantSymbol     protocol.SymbolKind
	}{
		{Variable{}, protocol.CompletionItemKindVariable, protocol.SymbolKindVariable},
		{Function{}, protocol.CompletionItemKindFunction, protocol.SymbolKindFunction},
		{Keyword{Text: "if"}, protocol.CompletionItemKindKeyword, protocol.SymbolKindKey},
		{Module{}, protocol.CompletionItemKindModule, protocol.SymbolKindModule},
	}
	for _, tt := range tests {
		item := &Item{Name: "x", Kind: tt.kind}
		if got := item.CompletionKind(); got != tt.wantCompletion {
			t.Errorf("%T completion kind = %v, want %v", tt.kind, got, tt.wantCompletion)
		}
		if got := item.SymbolKind(); got != tt.wantSymbol {
			t.Errorf("%T symbol kind = %v, want %v", tt.kind, got, tt.wantSymbol)
		}
	}
}
