package html

// CSRFMeta publishes the request token for app.js, which copies it into the
// _csrf field of POST forms. Forms rendered with CSRFInput need no script.
func CSRFMeta(b *Writer, token string) {
	if token == "" {
		return
	}
	b.Printf(`<meta name="csrf-token" content="%s">`, token)
}

// CSRFInput renders the hidden token field for a server-built form.
func CSRFInput(b *Writer, token string) {
	if token == "" {
		return
	}
	b.Printf(`<input type="hidden" name="_csrf" value="%s">`, token)
}
