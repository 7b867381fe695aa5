package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func plain(s string) Inline { return Inline{{Text: s}} }

func TestRender_Empty(t *testing.T) {
	require.Empty(t, Render(""))
	require.Empty(t, Render("\n\n  \n"))
}

func TestRender_BoldAndItalic(t *testing.T) {
	got := Render("**Bold** and *italic*")
	require.Equal(t, []Block{
		Paragraph{Lines: []Inline{{
			{Text: "Bold", Style: Bold},
			{Text: " and "},
			{Text: "italic", Style: Italic},
		}}},
	}, got)
}

func TestRender_HeadingThenParagraph(t *testing.T) {
	got := Render("# Title\n\nBody text")
	require.Equal(t, []Block{
		Heading{Level: 1, Text: plain("Title")},
		Paragraph{Lines: []Inline{plain("Body text")}},
	}, got)
}

func TestRender_UnterminatedBoldIsLiteral(t *testing.T) {
	got := Render("**unterminated bold")
	require.Equal(t, []Block{
		Paragraph{Lines: []Inline{plain("**unterminated bold")}},
	}, got)
}

func TestRender_LineRules(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Block
	}{
		{"h2", "## Section", []Block{Heading{Level: 2, Text: plain("Section")}}},
		{"h3", "### Small", []Block{Heading{Level: 3, Text: plain("Small")}}},
		{"h4 is text", "#### Tiny", []Block{Paragraph{Lines: []Inline{plain("#### Tiny")}}}},
		{"no space is text", "#tag", []Block{Paragraph{Lines: []Inline{plain("#tag")}}}},
		{"dash bullet", "- item", []Block{BulletItem{Text: plain("item")}}},
		{"dot bullet", "• item", []Block{BulletItem{Text: plain("item")}}},
		{"numbered renders as bullet", "12. item", []Block{BulletItem{Text: plain("item")}}},
		{"unchecked", "- [ ] todo", []Block{CheckItem{Text: plain("todo")}}},
		{"checked", "- [x] done", []Block{CheckItem{Checked: true, Text: plain("done")}}},
		{"checked upper", "- [X] done", []Block{CheckItem{Checked: true, Text: plain("done")}}},
		{"checked without text", "- [x]", []Block{CheckItem{Checked: true}}},
		{"unchecked without text", "- [ ]", []Block{CheckItem{}}},
		{"quote", "> wise words", []Block{Quote{Text: plain("wise words")}}},
		{"rule", "---", []Block{Rule{}}},
		{"long rule", "----------", []Block{Rule{}}},
		{"table row", "| a | b |", []Block{TableRow{Cells: []Inline{plain("a"), plain("b")}}}},
		{"table separator", "|---|:---:|", nil},
		{"empty cells skipped", "| a || b |", []Block{TableRow{Cells: []Inline{plain("a"), plain("b")}}}},
		{"link", "see [docs](https://example.com) now", []Block{Paragraph{Lines: []Inline{plain("see docs now")}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Render(tt.in))
		})
	}
}

func TestRender_InlineStyles(t *testing.T) {
	got := Render("~~old~~ `code` **[b](u)**")
	require.Equal(t, []Block{
		Paragraph{Lines: []Inline{{
			{Text: "old", Style: Strike},
			{Text: " "},
			{Text: "code", Style: Code},
			{Text: " "},
			{Text: "b", Style: Bold},
		}}},
	}, got)

	// code spans keep link syntax
	got = Render("`[a](b)`")
	require.Equal(t, []Block{Paragraph{Lines: []Inline{{{Text: "[a](b)", Style: Code}}}}}, got)

	// empty markers are literal
	require.Equal(t, []Block{Paragraph{Lines: []Inline{plain("****")}}}, Render("****"))
}

func TestRender_ParagraphHardBreaks(t *testing.T) {
	got := Render("line one\nline two\n\nnext paragraph")
	require.Equal(t, []Block{
		Paragraph{Lines: []Inline{plain("line one"), plain("line two")}},
		Paragraph{Lines: []Inline{plain("next paragraph")}},
	}, got)
	require.Equal(t, "line one\nline two", got[0].(Paragraph).String())
}

func TestRender_BlockEndsParagraph(t *testing.T) {
	got := Render("intro\n- a\n- b\noutro")
	require.Equal(t, []Block{
		Paragraph{Lines: []Inline{plain("intro")}},
		BulletItem{Text: plain("a")},
		BulletItem{Text: plain("b")},
		Paragraph{Lines: []Inline{plain("outro")}},
	}, got)
}

func TestRender_CodeFences(t *testing.T) {
	t.Run("multi-line drops info string", func(t *testing.T) {
		got := Render("```python\ndef hello():\n\n    print(\"hi\")\n```")
		require.Equal(t, []Block{CodeBlock{Text: "def hello():\n\n    print(\"hi\")"}}, got)
	})

	t.Run("single line", func(t *testing.T) {
		require.Equal(t, []Block{CodeBlock{Text: "x := 1"}}, Render("```x := 1```"))
	})

	t.Run("markers inside code are literal", func(t *testing.T) {
		got := Render("```\n# not a heading\n**x**\n```")
		require.Equal(t, []Block{CodeBlock{Text: "# not a heading\n**x**"}}, got)
	})

	t.Run("truncated at 100 runes", func(t *testing.T) {
		code := strings.Repeat("é", 150)
		got := Render("```\n" + code + "\n```")
		require.Len(t, got, 1)
		cb := got[0].(CodeBlock)
		require.True(t, cb.Truncated)
		require.Equal(t, strings.Repeat("é", 100)+"...", cb.Text)
	})

	t.Run("exactly 100 runes kept", func(t *testing.T) {
		code := strings.Repeat("a", 100)
		require.Equal(t, []Block{CodeBlock{Text: code}}, Render("```\n"+code+"\n```"))
	})

	t.Run("empty single line fence is literal", func(t *testing.T) {
		require.Equal(t, []Block{Paragraph{Lines: []Inline{plain("``````")}}}, Render("``````"))
		require.Equal(t, []Block{Paragraph{Lines: []Inline{plain("```  ```")}}}, Render("```  ```"))
	})

	t.Run("unterminated fence is literal", func(t *testing.T) {
		got := Render("```go\nfmt.Println()")
		require.Equal(t, []Block{
			Paragraph{Lines: []Inline{plain("```go"), plain("fmt.Println()")}},
		}, got)
	})
}

func TestRenderUnits_SplitOnBlankLines(t *testing.T) {
	units := RenderUnits("# A\ntext\n\n- one\n- two\n\n\n```\nx\n\ny\n```")
	require.Len(t, units, 3)
	require.Equal(t, []Block{Heading{Level: 1, Text: plain("A")}, Paragraph{Lines: []Inline{plain("text")}}}, units[0])
	require.Len(t, units[1], 2)
	require.Equal(t, []Block{CodeBlock{Text: "x\n\ny"}}, units[2])
}

func TestRender_CRLF(t *testing.T) {
	require.Equal(t, Render("# T\n\nbody"), Render("# T\r\n\r\nbody"))
}

func TestRender_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.StringMatching(`[a-z #*~\x60>|\[\]()\-\n.0-9x]{0,120}`).Draw(t, "input")
		first := Render(in)
		second := Render(in)
		if len(first) != len(second) {
			t.Fatalf("render is not deterministic for %q", in)
		}
		for i := range first {
			require.Equal(t, first[i], second[i])
		}
	})
}

func TestRender_NeverLosesPlainText(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,8}`), 1, 10).Draw(t, "words")
		in := strings.Join(words, " ")
		require.Equal(t, []Block{Paragraph{Lines: []Inline{plain(in)}}}, Render(in))
	})
}
