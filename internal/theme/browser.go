package theme

// DOM is the slice of a browser document the page host touches.
type DOM interface {
	// Cookie returns document.cookie, or "" when it is unavailable.
	Cookie() string
	// ReadyState returns document.readyState.
	ReadyState() string
	// SetBodyClass overwrites document.body.className and reports whether a
	// body existed.
	SetBodyClass(class string) bool
	// OnContentLoaded registers fn for a single DOMContentLoaded event.
	OnContentLoaded(fn func())
}

// Page adapts a DOM to the applier capabilities.
type Page struct {
	DOM DOM
}

func (p Page) CookieJar() string { return p.DOM.Cookie() }

func (p Page) SetRootClass(class string) { p.DOM.SetBodyClass(class) }

// OnReady runs fn on DOMContentLoaded, or right away once the document is
// past the "loading" state.
func (p Page) OnReady(fn func()) {
	if p.DOM.ReadyState() != "loading" {
		fn()
		return
	}
	p.DOM.OnContentLoaded(fn)
}
