package vdf

// Tests for the KeyValues parser: nesting, duplicate keys, escapes,
// comments, and malformed input.

import (
	"strings"
	"testing"
)

func parseString(t *testing.T, input string) *Node {
	t.Helper()
	root, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return root
}

func TestParse_SimplePairs(t *testing.T) {
	root := parseString(t, `
"AppState"
{
	"appid"		"570"
	"name"		"Dota 2"
}
`)

	state := root.Child("AppState")
	if state == nil {
		t.Fatal("AppState block not found")
	}
	if got := state.String("appid"); got != "570" {
		t.Errorf("appid = %q, want 570", got)
	}
	if got := state.String("name"); got != "Dota 2" {
		t.Errorf("name = %q, want Dota 2", got)
	}
}

func TestParse_NestedBlocks(t *testing.T) {
	root := parseString(t, `
"a"
{
	"b"
	{
		"c"
		{
			"key" "value"
		}
	}
}
`)

	if got := root.Child("a", "b", "c").String("key"); got != "value" {
		t.Errorf("deep lookup = %q, want value", got)
	}
}

func TestParse_DuplicateKeysLastWins(t *testing.T) {
	root := parseString(t, `
"root"
{
	"key" "first"
	"key" "second"
}
`)

	block := root.Child("root")
	if got := block.String("key"); got != "second" {
		t.Errorf("duplicate key lookup = %q, want second", got)
	}
	if len(block.Children) != 2 {
		t.Errorf("duplicate keys should be preserved in order, got %d children", len(block.Children))
	}
}

func TestParse_CaseInsensitiveLookup(t *testing.T) {
	root := parseString(t, `
"AppState"
{
	"Name" "Elden Ring"
}
`)

	if got := root.Child("appstate").String("name"); got != "Elden Ring" {
		t.Errorf("case-insensitive lookup = %q, want Elden Ring", got)
	}
}

func TestParse_Escapes(t *testing.T) {
	root := parseString(t, `
"root"
{
	"path" "C:\\Games\\Steam"
	"text" "line1\nline2\twide \"quoted\""
}
`)

	block := root.Child("root")
	if got := block.String("path"); got != `C:\Games\Steam` {
		t.Errorf("path = %q", got)
	}
	if got := block.String("text"); got != "line1\nline2\twide \"quoted\"" {
		t.Errorf("text = %q", got)
	}
}

func TestParse_LineComments(t *testing.T) {
	root := parseString(t, `
// header comment
"root"
{
	// nested comment
	"key" "value" // trailing comment
}
`)

	if got := root.Child("root").String("key"); got != "value" {
		t.Errorf("key = %q, want value", got)
	}
}

func TestParse_BareTokens(t *testing.T) {
	root := parseString(t, `
root
{
	key value
}
`)

	if got := root.Child("root").String("key"); got != "value" {
		t.Errorf("bare token key = %q, want value", got)
	}
}

func mustFail(t *testing.T, input string) {
	t.Helper()
	if node, err := Parse(strings.NewReader(input)); err == nil {
		t.Fatalf("expected parse error for %q, got %#v", input, node)
	}
}

func TestParse_MissingValue(t *testing.T) {
	mustFail(t, `"root" { "key" }`)
}

func TestParse_UnterminatedBlock(t *testing.T) {
	mustFail(t, `"root" { "key" "value"`)
}

func TestParse_StrayClosingBrace(t *testing.T) {
	mustFail(t, `}`)
}

func TestParse_UnterminatedString(t *testing.T) {
	mustFail(t, `"root" { "key" "value`)
}

func TestString_BlockChildYieldsEmpty(t *testing.T) {
	node := parseString(t, `"root" { "sub" { "k" "v" } }`)
	if got := node.Child("root").String("sub"); got != "" {
		t.Errorf("String on block child = %q, want empty", got)
	}
}

func TestChild_Missing(t *testing.T) {
	node := parseString(t, `"root" { "k" "v" }`)
	if node.Child("nope") != nil {
		t.Error("missing child should be nil")
	}
	if node.Child("root", "nope", "deeper") != nil {
		t.Error("missing deep child should be nil")
	}
}
