package html

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Writer accumulates the first write error so views can emit markup without
// checking every call.
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup.
func (b *Writer) Raw(s string) {
	if b.err != nil {
		return
	}
	_, b.err = io.WriteString(b.w, s)
}

// Printf formats trusted markup. String arguments are escaped.
func (b *Writer) Printf(format string, args ...any) {
	if b.err != nil {
		return
	}
	for i, a := range args {
		if s, ok := a.(string); ok {
			args[i] = templ.EscapeString(s)
		}
	}
	_, b.err = fmt.Fprintf(b.w, format, args...)
}

// Text writes escaped text.
func (b *Writer) Text(s string) {
	b.Raw(templ.EscapeString(s))
}

func (b *Writer) Component(ctx context.Context, c templ.Component) {
	if b.err != nil || c == nil {
		return
	}
	b.err = c.Render(ctx, b.w)
}

func (b *Writer) Err() error {
	return b.err
}

// View adapts a markup function to a templ component.
func View(fn func(ctx context.Context, b *Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := NewWriter(w)
		fn(ctx, b)
		return b.Err()
	})
}
