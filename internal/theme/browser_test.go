package theme

import "testing"

type fakeDOM struct {
	cookie    string
	state     string
	hasBody   bool
	class     string
	listeners []func()
}

func (f *fakeDOM) Cookie() string     { return f.cookie }
func (f *fakeDOM) ReadyState() string { return f.state }

func (f *fakeDOM) SetBodyClass(class string) bool {
	if !f.hasBody {
		return false
	}
	f.class = class
	return true
}

func (f *fakeDOM) OnContentLoaded(fn func()) { f.listeners = append(f.listeners, fn) }

func (f *fakeDOM) contentLoaded() {
	listeners := f.listeners
	f.listeners = nil
	for _, fn := range listeners {
		fn()
	}
}

func TestPageWaitsForContentLoaded(t *testing.T) {
	t.Parallel()

	dom := &fakeDOM{cookie: "foo=bar; theme=dark; baz=qux", state: "loading", hasBody: true, class: "stale other"}
	page := Page{DOM: dom}
	NewApplier(page, page).Bind(page)

	if dom.class != "stale other" {
		t.Fatalf("class changed before DOMContentLoaded: %q", dom.class)
	}
	if len(dom.listeners) != 1 {
		t.Fatalf("listeners = %d, want 1", len(dom.listeners))
	}
	dom.contentLoaded()
	if dom.class != "dark" {
		t.Fatalf("class = %q, want dark", dom.class)
	}
}

func TestPageAppliesImmediatelyAfterLoading(t *testing.T) {
	t.Parallel()

	for _, state := range []string{"interactive", "complete"} {
		dom := &fakeDOM{state: state, hasBody: true}
		page := Page{DOM: dom}
		NewApplier(page, page).Bind(page)

		if dom.class != DefaultValue {
			t.Fatalf("%s: class = %q, want %q", state, dom.class, DefaultValue)
		}
		if len(dom.listeners) != 0 {
			t.Fatalf("%s: unexpected listener", state)
		}
	}
}

func TestPageWithoutBodyStillNotifies(t *testing.T) {
	t.Parallel()

	dom := &fakeDOM{cookie: "theme=contrast", state: "complete"}
	page := Page{DOM: dom}
	var applied string
	NewApplier(page, page, WithObserver(func(v string) { applied = v })).Bind(page)

	if applied != "contrast" {
		t.Fatalf("observer saw %q, want contrast", applied)
	}
	if dom.class != "" {
		t.Fatalf("class = %q, want untouched", dom.class)
	}
}
