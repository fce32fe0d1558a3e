package html

import (
	"net/url"
	"strconv"
)

// Option is one choice of a select field.
type Option struct {
	Value string
	Label string
}

// Input renders a labelled input. typ defaults to text.
func Input(b *Writer, label, name, typ, value string, required bool) {
	if typ == "" {
		typ = "text"
	}
	req := ""
	if required {
		req = " required"
	}
	b.Printf(`<label>%s <input type="%s" name="%s" value="%s"`, label, typ, name, value)
	b.Raw(req)
	if typ == "number" {
		b.Raw(` step="any"`)
	}
	b.Raw(`></label>`)
}

func TextArea(b *Writer, label, name, value string) {
	b.Printf(`<label>%s <textarea name="%s" rows="3">%s</textarea></label>`, label, name, value)
}

func Checkbox(b *Writer, label, name string, checked bool) {
	b.Printf(`<label class="check"><input type="checkbox" name="%s" value="1"`, name)
	if checked {
		b.Raw(` checked`)
	}
	b.Printf(`> %s</label>`, label)
}

// Select renders a labelled select. An empty blank label omits the empty choice.
func Select(b *Writer, label, name, blank string, opts []Option, selected string) {
	b.Printf(`<label>%s <select name="%s">`, label, name)
	if blank != "" {
		b.Printf(`<option value="">%s</option>`, blank)
	}
	for _, o := range opts {
		b.Printf(`<option value="%s"`, o.Value)
		if o.Value == selected {
			b.Raw(` selected`)
		}
		b.Printf(`>%s</option>`, o.Label)
	}
	b.Raw(`</select></label>`)
}

// PostButton renders a single-button form. A non-empty confirm prompts first.
func PostButton(b *Writer, action, label, class, confirm string) {
	b.Printf(`<form method="post" action="%s" class="inline"`, action)
	if confirm != "" {
		b.Printf(` onsubmit="return confirm('%s')"`, confirm)
	}
	b.Printf(`><button type="submit" class="%s">%s</button></form>`, class, label)
}

// Pager renders previous and next links keeping the other query parameters.
func Pager(b *Writer, path string, query url.Values, page, pages int) {
	if pages <= 1 {
		return
	}
	link := func(p int) string {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(p))
		return path + "?" + q.Encode()
	}
	b.Raw(`<nav class="pager">`)
	if page > 1 {
		b.Printf(`<a href="%s">&laquo; previous</a> `, link(page-1))
	}
	b.Printf(`<span>page %d of %d</span>`, page, pages)
	if page < pages {
		b.Printf(` <a href="%s">next &raquo;</a>`, link(page+1))
	}
	b.Raw(`</nav>`)
}

// Badge renders a status label styled by its value.
func Badge(b *Writer, value, label string) {
	b.Printf(`<span class="badge badge-%s">%s</span>`, value, label)
}
