package parser

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/mt-inside/url-screener/pkg/state"
)

// Element is one node matched in a Document. *goquery.Selection satisfies it.
type Element interface {
	Text() string
	Attr(name string) (string, bool)
}

// Document is the little bit of an HTML DOM that Content needs.
type Document interface {
	FindFirst(selector string) (Element, bool)
	FindAll(selector string) []Element
}

type goqueryDocument struct {
	doc *goquery.Document
}

func (d goqueryDocument) FindFirst(selector string) (Element, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return sel, true
}

func (d goqueryDocument) FindAll(selector string) []Element {
	var es []Element
	d.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		es = append(es, sel)
	})
	return es
}

// emptyDocument stands in for a body we couldn't parse at all.
type emptyDocument struct{}

func (emptyDocument) FindFirst(string) (Element, bool) { return nil, false }
func (emptyDocument) FindAll(string) []Element         { return nil }

// HTML parses body as HTML, whatever it claims to be. contentType is only used to find the charset, and may be empty.
// This never fails; an unparseable body gives a Document with nothing in it.
func HTML(body []byte, contentType string) Document {
	var r io.Reader = bytes.NewReader(body)

	// charset's sniffing only looks at the first 1KiB, so a UTF-8 body whose first non-ASCII byte is later gets taken for windows-1252
	if declaredCharset(contentType) != "" || !utf8.Valid(body) {
		decoded, err := charset.NewReader(bytes.NewReader(body), contentType)
		if err != nil {
			log.Debug("Can't decode body charset, parsing raw bytes", "content-type", contentType, "error", err)
		} else {
			r = decoded
		}
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		log.Debug("Can't parse body as HTML", "error", err)
		return emptyDocument{}
	}

	return goqueryDocument{doc}
}

func Content(doc Document) *state.ContentSummary {
	cs := &state.ContentSummary{
		LinkCount:  len(doc.FindAll("a")),
		ImageCount: len(doc.FindAll("img")),
	}

	if e, ok := doc.FindFirst("title"); ok {
		cs.Title = trimmed(e.Text())
	}
	if e, ok := doc.FindFirst(`meta[name="description"]`); ok {
		if content, ok := e.Attr("content"); ok {
			cs.Description = trimmed(content)
		}
	}
	if e, ok := doc.FindFirst("h1"); ok {
		cs.Heading = trimmed(e.Text())
	}

	return cs
}

func declaredCharset(contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

func trimmed(s string) *string {
	s = strings.TrimSpace(s)
	return &s
}
