package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// fallbackKeywords mark lines worth quoting in a fallback summary.
var fallbackKeywords = []string{"概要", "要約", "目的", "結果", "影響", "売上", "利益", "業績"}

const (
	fallbackScanLines   = 50
	fallbackMaxSections = 5
	fallbackMaxOverview = 3
)

// Fallback builds a summary from the document's own lines: up to five lines
// carrying a business keyword, else the first few substantial lines. It never
// fails and needs no API key.
type Fallback struct {
	// Location is used for the extraction timestamp. Nil means UTC.
	Location *time.Location
	// Now is overridable in tests.
	Now func() time.Time
}

// NewFallback creates a Fallback stamping times in Asia/Tokyo.
func NewFallback() *Fallback {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.UTC
	}
	return &Fallback{Location: loc, Now: time.Now}
}

// Engine identifies summaries built without a model.
func (f *Fallback) Engine() string {
	return "テキスト抽出"
}

// Summarize builds the keyword summary for title/text.
func (f *Fallback) Summarize(_ context.Context, title, text string) (string, error) {
	lines := meaningfulLines(text)

	var b strings.Builder
	fmt.Fprintf(&b, "【%s】\n\n", title)

	if sections := keywordLines(lines); len(sections) > 0 {
		b.WriteString("■ 主な内容:\n")
		writeNumbered(&b, sections)
	} else if overview := overviewLines(lines); len(overview) > 0 {
		b.WriteString("■ 文書の概要:\n")
		writeNumbered(&b, overview)
	} else {
		b.WriteString("■ この文書の詳細な要約を生成できませんでした。\n")
		b.WriteString("PDFの内容が複雑であるか、構造化されていない可能性があります。\n")
		b.WriteString("直接PDFをご確認ください。\n")
	}

	cleaned := strings.Join(strings.Fields(text), " ")
	b.WriteString("\n■ 文書情報:\n")
	fmt.Fprintf(&b, "- 文字数: %s文字\n", formatCount(utf8.RuneCountInString(cleaned)))
	fmt.Fprintf(&b, "- 抽出日時: %s\n", formatTime(f.now(), f.Location))
	return b.String(), nil
}

func (f *Fallback) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// meaningfulLines collapses whitespace inside each line and keeps lines
// longer than ten characters.
func meaningfulLines(text string) []string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.Join(strings.Fields(raw), " ")
		if utf8.RuneCountInString(line) > 10 {
			out = append(out, line)
		}
	}
	return out
}

func keywordLines(lines []string) []string {
	var out []string
	for i, line := range lines {
		if i >= fallbackScanLines || len(out) == fallbackMaxSections {
			break
		}
		n := utf8.RuneCountInString(line)
		if n <= 20 || n >= 200 {
			continue
		}
		for _, kw := range fallbackKeywords {
			if strings.Contains(line, kw) {
				out = append(out, line)
				break
			}
		}
	}
	return out
}

func overviewLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		if len(out) == fallbackMaxOverview {
			break
		}
		if n := utf8.RuneCountInString(line); n > 30 && n < 300 {
			out = append(out, line)
		}
	}
	return out
}

func writeNumbered(b *strings.Builder, lines []string) {
	for i, line := range lines {
		fmt.Fprintf(b, "%d. %s\n", i+1, line)
	}
}

var countPrinter = message.NewPrinter(language.Japanese)

// formatCount renders n with digit grouping, e.g. 12,345.
func formatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}

// formatTime renders t in loc as 2025/6/11 14:30:00. Nil loc means UTC.
func formatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006/1/2 15:04:05")
}
