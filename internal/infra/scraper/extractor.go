package scraper

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"disclosure-feed/internal/domain/entity"
	"disclosure-feed/internal/observability/metrics"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	tableSelector = "table#main-list-table"

	// rowCells is the column count of a disclosure row.
	rowCells = 7

	maxTimeLength = 10

	headerTime = "時刻"
	headerCode = "コード"
)

// Column positions in a disclosure row.
const (
	colTime = iota
	colCode
	colCompany
	colTitle
	colXBRL
	colPlace
	colExchange
)

var (
	// bannerPattern matches date announcement rows such as "2025年06月11日に開示された情報".
	bannerPattern = regexp.MustCompile(`^\d{4}年\d{1,2}月\d{1,2}日`)

	// clockPattern matches a listing time such as "9:30" or "15:00".
	clockPattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

// Row skip reasons, used as metric labels.
const (
	skipCellCount = "cell_count"
	skipEmptyTime = "empty_time"
	skipHeader    = "header"
	skipBanner    = "banner"
	skipLongTime  = "time_too_long"
)

// TableExtractor implements disclosure.RowExtractor for TDnet listing pages.
type TableExtractor struct {
	// docBase is "<base_url>/inbs/", the directory relative document links live in.
	docBase *url.URL
}

// NewTableExtractor creates a TableExtractor resolving relative links against baseURL.
func NewTableExtractor(baseURL string) (*TableExtractor, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/inbs/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &TableExtractor{docBase: base}, nil
}

// Extract parses body and returns one record per qualifying row, in table order.
// A page without the list table yields ErrTableNotFound.
func (e *TableExtractor) Extract(body []byte) ([]entity.Disclosure, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	table := doc.Find(tableSelector).First()
	if table.Length() == 0 {
		return nil, ErrTableNotFound
	}

	rows := table.Find("tr")
	if tbody := table.Find("tbody").First(); tbody.Length() > 0 {
		rows = tbody.Find("tr")
	}

	var records []entity.Disclosure
	rows.Each(func(_ int, row *goquery.Selection) {
		rec, reason := e.parseRow(row)
		if reason != "" {
			metrics.RecordRowSkipped(reason)
			return
		}
		records = append(records, rec)
	})

	return records, nil
}

// parseRow maps one table row to a record, or returns the reason it was rejected.
func (e *TableExtractor) parseRow(row *goquery.Selection) (entity.Disclosure, string) {
	cells := row.Find("td, th")
	if cells.Length() != rowCells {
		return entity.Disclosure{}, skipCellCount
	}

	texts := make([]string, rowCells)
	cells.Each(func(i int, cell *goquery.Selection) {
		texts[i] = cellText(cell)
	})

	if reason := rejectReason(texts); reason != "" {
		return entity.Disclosure{}, reason
	}

	rec := entity.Disclosure{
		Time:        texts[colTime],
		Code:        texts[colCode],
		CompanyName: texts[colCompany],
		Title:       texts[colTitle],
		Place:       texts[colPlace],
		Exchange:    texts[colExchange],
	}

	titleCell := cells.Eq(colTitle)
	if link := titleCell.Find("a").First(); link.Length() > 0 {
		rec.Title = cellText(link)
		if href, ok := link.Attr("href"); ok {
			rec.DocumentURL = e.resolve(href)
		}
	}

	if link := cells.Eq(colXBRL).Find("a").First(); link.Length() > 0 {
		if href, ok := link.Attr("href"); ok {
			rec.XBRLURL = e.resolve(href)
		}
	}

	return rec, ""
}

// rejectReason applies the sentinel filter to a row's cell texts.
func rejectReason(texts []string) string {
	t := texts[colTime]
	switch {
	case t == "":
		return skipEmptyTime
	case t == headerTime || texts[colCode] == headerCode:
		return skipHeader
	case isBanner(texts):
		return skipBanner
	case utf8.RuneCountInString(t) > maxTimeLength:
		return skipLongTime
	}
	return ""
}

// isBanner reports whether a row is a date announcement rather than a disclosure.
// Banners either read like a date heading or carry text in a single cell only.
// A row whose only text is a clock time is a sparse disclosure, not a banner.
func isBanner(texts []string) bool {
	t := texts[colTime]
	if bannerPattern.MatchString(t) || strings.Contains(t, "開示された情報") {
		return true
	}
	if clockPattern.MatchString(t) {
		return false
	}

	filled := 0
	for _, s := range texts {
		if s != "" {
			filled++
		}
	}
	return filled == 1
}

// resolve turns a link target into an absolute URL. Absolute targets pass through unchanged.
func (e *TableExtractor) resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return e.docBase.String() + href
	}
	if ref.IsAbs() {
		return href
	}
	return e.docBase.ResolveReference(ref).String()
}

// cellText concatenates every text node under sel, each trimmed of surrounding whitespace.
func cellText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		appendText(&b, n)
	}
	return b.String()
}

func appendText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(strings.TrimSpace(n.Data))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(b, c)
	}
}
