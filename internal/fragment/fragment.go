// Package fragment renders the small HTML pieces that fill loop-like template regions.
//
// Every function is pure and escapes the text it is given, so the result can be
// substituted under a safe template key.
package fragment

import (
	"html"
	"strings"
)

// HTML is markup that is already escaped and safe to embed verbatim.
type HTML string

// String returns the markup.
func (h HTML) String() string { return string(h) }

// Item is one entry of an index list.
type Item struct {
	Title string
	URL   string
	// Date is the display form; DateISO feeds the datetime attribute.
	Date    string
	DateISO string
	Summary string
	Tags    []string
	Draft   bool
}

// ListOptions controls list rendering.
type ListOptions struct {
	// ShowDrafts adds the draft badge to draft items.
	ShowDrafts bool
	// ShowTags renders tag chips after the title.
	ShowTags bool
	// ShowSummary appends the item summary in a paragraph.
	ShowSummary bool
}

// DraftBadge marks a draft entry in a list.
func DraftBadge() HTML {
	return `<span class="badge badge-draft">Draft</span>`
}

// DraftBanner is placed at the top of a draft page.
func DraftBanner() HTML {
	return `<div class="draft-banner" role="note"><strong>Draft</strong> This page is excluded from production builds.</div>`
}

// TagChips renders tags as a list of chips, or nothing for no tags.
func TagChips(tags []string) HTML {
	if len(tags) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<ul class="tags">`)
	for _, t := range tags {
		b.WriteString(`<li class="tag">`)
		b.WriteString(html.EscapeString(t))
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul>`)
	return HTML(b.String())
}

// DateLabel renders a date as a <time> element, or nothing when display is empty.
func DateLabel(display, iso string) HTML {
	if display == "" {
		return ""
	}
	if iso == "" {
		return HTML(`<small>` + html.EscapeString(display) + `</small>`)
	}
	return HTML(`<small><time datetime="` + html.EscapeString(iso) + `">` + html.EscapeString(display) + `</time></small>`)
}

// Link renders an anchor.
func Link(url, text string) HTML {
	return HTML(`<a href="` + html.EscapeString(url) + `">` + html.EscapeString(text) + `</a>`)
}

// ListItem renders one index entry.
func ListItem(item Item, opts ListOptions) HTML {
	var b strings.Builder
	b.WriteString("<li>")
	b.WriteString(string(Link(item.URL, item.Title)))
	if label := DateLabel(item.Date, item.DateISO); label != "" {
		b.WriteString(" ")
		b.WriteString(string(label))
	}
	if opts.ShowDrafts && item.Draft {
		b.WriteString(" ")
		b.WriteString(string(DraftBadge()))
	}
	if opts.ShowTags {
		b.WriteString(string(TagChips(item.Tags)))
	}
	if opts.ShowSummary && item.Summary != "" {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(item.Summary))
		b.WriteString("</p>")
	}
	b.WriteString("</li>")
	return HTML(b.String())
}

// List renders items one per line. An empty list renders nothing.
func List(items []Item, opts ListOptions) HTML {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, string(ListItem(item, opts)))
	}
	return HTML(strings.Join(lines, "\n"))
}

// LatestPosts renders the home page teaser list.
func LatestPosts(items []Item, showDrafts bool) HTML {
	return List(items, ListOptions{ShowDrafts: showDrafts, ShowSummary: true})
}
