package web

import (
	"net/http"
	"strings"

	"estada-feliz/internal/theme"
)

// document is the server-side host of the theme applier. Its jar is the
// request's Cookie headers and its root container is the <body> class.
type document struct {
	jar   string
	class string
	ready theme.ReadyOnce
}

func newDocument(r *http.Request) *document {
	return &document{jar: strings.Join(r.Header.Values("Cookie"), "; ")}
}

func (d *document) CookieJar() string { return d.jar }

func (d *document) SetRootClass(class string) { d.class = class }
