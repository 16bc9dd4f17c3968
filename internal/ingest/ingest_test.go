package ingest

import (
	"strings"
	"testing"

	"github.com/mfeng-dev/thesisfmt/internal/classify"
)

func TestMarkdownHeadings(t *testing.T) {
	src := `# 问答系统研究

## 第一部分

正文段落一。
接上一行。

### 细节

正文段落二。

# 另一个顶级标题
`
	draft, err := (&MarkdownParser{}).Parse(strings.NewReader(src), "paper.md")
	if err != nil {
		t.Fatal(err)
	}

	if draft.Title != "问答系统研究" {
		t.Errorf("title = %q", draft.Title)
	}

	want := []struct {
		text  string
		level classify.Level
		known bool
	}{
		{"问答系统研究", classify.MainTitle, true},
		{"第一部分", classify.Heading2, true},
		{"正文段落一。 接上一行。", classify.Body, false},
		{"细节", classify.Heading3, true},
		{"正文段落二。", classify.Body, false},
		{"另一个顶级标题", classify.Heading1, true},
	}
	if len(draft.Paragraphs) != len(want) {
		t.Fatalf("got %d paragraphs, want %d: %+v", len(draft.Paragraphs), len(want), draft.Paragraphs)
	}
	for i, w := range want {
		p := draft.Paragraphs[i]
		if p.Text != w.text {
			t.Errorf("para %d text = %q, want %q", i, p.Text, w.text)
		}
		if p.Known != w.known {
			t.Errorf("para %d known = %v, want %v", i, p.Known, w.known)
		}
		if p.Known && p.Level != w.level {
			t.Errorf("para %d level = %v, want %v", i, p.Level, w.level)
		}
	}
}

func TestTextParagraphSplit(t *testing.T) {
	src := "第一章 绪论\n\n这是第一段，\n折行继续。\n\n\n第二段。\n"
	draft, err := (&TextParser{}).Parse(strings.NewReader(src), "notes.txt")
	if err != nil {
		t.Fatal(err)
	}

	if draft.Title != "notes" {
		t.Errorf("title = %q", draft.Title)
	}
	want := []string{"第一章 绪论", "这是第一段， 折行继续。", "第二段。"}
	if len(draft.Paragraphs) != len(want) {
		t.Fatalf("got %d paragraphs: %+v", len(draft.Paragraphs), draft.Paragraphs)
	}
	for i, w := range want {
		if draft.Paragraphs[i].Text != w {
			t.Errorf("para %d = %q, want %q", i, draft.Paragraphs[i].Text, w)
		}
		if draft.Paragraphs[i].Known {
			t.Errorf("para %d should be unclassified", i)
		}
	}
}

func TestHTMLHeadingsAndBody(t *testing.T) {
	src := `<html><head><title>页面标题</title><style>p{color:red}</style></head>
<body><h1>论文标题</h1><p>第一段内容。</p><h2>背景</h2><p>第二段<br>换行。</p></body></html>`

	draft, err := (&HTMLParser{}).Parse(strings.NewReader(src), "page.html")
	if err != nil {
		t.Fatal(err)
	}

	if draft.Title != "页面标题" {
		t.Errorf("title = %q", draft.Title)
	}

	want := []struct {
		text  string
		level classify.Level
		known bool
	}{
		{"论文标题", classify.MainTitle, true},
		{"第一段内容。", classify.Body, false},
		{"背景", classify.Heading2, true},
		{"第二段 换行。", classify.Body, false},
	}
	if len(draft.Paragraphs) != len(want) {
		t.Fatalf("got %d paragraphs: %+v", len(draft.Paragraphs), draft.Paragraphs)
	}
	for i, w := range want {
		p := draft.Paragraphs[i]
		if p.Text != w.text {
			t.Errorf("para %d text = %q, want %q", i, p.Text, w.text)
		}
		if p.Known != w.known || (p.Known && p.Level != w.level) {
			t.Errorf("para %d = %+v, want level %v known %v", i, p, w.level, w.known)
		}
	}
}

func TestResolveClassifiesUnknown(t *testing.T) {
	draft := &Draft{Paragraphs: []Paragraph{
		{Text: "导言", Level: classify.MainTitle, Known: true},
		{Text: "1.1 方法"},
		{Text: "这是一段足够普通的正文内容，用来验证分类。"},
	}}

	levels := Resolve(draft)
	want := []classify.Level{classify.MainTitle, classify.Heading2, classify.Body}
	for i, w := range want {
		if levels[i] != w {
			t.Errorf("level %d = %v, want %v", i, levels[i], w)
		}
	}
}

func TestForFile(t *testing.T) {
	for _, name := range []string{"a.txt", "b.MD", "c.html", "d.pdf"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("ForFile(%q) failed: %v", name, err)
		}
	}
	if _, err := ForFile("x.csv"); err == nil {
		t.Error("csv must be rejected")
	}
	if IsSupportedExtension("x.docx") {
		t.Error("docx goes through the converter, not the importer")
	}
}

func TestHeadingLevelMapping(t *testing.T) {
	if got := headingLevel(1, false); got != classify.MainTitle {
		t.Errorf("first h1 = %v", got)
	}
	if got := headingLevel(1, true); got != classify.Heading1 {
		t.Errorf("later h1 = %v", got)
	}
	if got := headingLevel(2, true); got != classify.Heading2 {
		t.Errorf("h2 = %v", got)
	}
	if got := headingLevel(5, true); got != classify.Heading3 {
		t.Errorf("h5 = %v", got)
	}
}
