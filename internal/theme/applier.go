package theme

import "sync"

// JarReader exposes the host's client-persisted key/value state.
type JarReader interface {
	CookieJar() string
}

// ClassWriter replaces the class attribute of the document root container.
type ClassWriter interface {
	SetRootClass(class string)
}

// ReadySource delivers a one-shot notification once the document structure
// exists and can be manipulated.
type ReadySource interface {
	OnReady(fn func())
}

// JarFunc adapts a plain function to JarReader.
type JarFunc func() string

func (f JarFunc) CookieJar() string { return f() }

// ClassFunc adapts a plain function to ClassWriter.
type ClassFunc func(class string)

func (f ClassFunc) SetRootClass(class string) { f(class) }

// Observer is notified with every applied value. It must not block.
type Observer func(value string)

// Applier resolves the theme from a jar and writes it to the root container.
type Applier struct {
	jar      JarReader
	root     ClassWriter
	observer Observer
	once     sync.Once
}

// Option customises an Applier.
type Option func(*Applier)

// WithObserver registers a callback invoked after each application.
func WithObserver(fn Observer) Option {
	return func(a *Applier) { a.observer = fn }
}

// NewApplier builds an Applier over host-provided capabilities.
func NewApplier(jar JarReader, root ClassWriter, opts ...Option) *Applier {
	a := &Applier{jar: jar, root: root}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ResolveAndApply reads the jar, resolves the theme and overwrites the root
// class with it. The applied value is returned for callers that render it.
func (a *Applier) ResolveAndApply() string {
	jar := ""
	if a.jar != nil {
		jar = a.jar.CookieJar()
	}
	value := FromJar(jar)
	if a.root != nil {
		a.root.SetRootClass(value)
	}
	if a.observer != nil {
		a.observer(value)
	}
	return value
}

// Bind registers the applier against src. The registered callback applies the
// theme at most once regardless of how often src fires.
func (a *Applier) Bind(src ReadySource) {
	src.OnReady(func() {
		a.once.Do(func() { a.ResolveAndApply() })
	})
}

// ReadyOnce is an in-process ReadySource. Callbacks registered before Fire run
// when it fires; callbacks registered afterwards run immediately.
type ReadyOnce struct {
	mu      sync.Mutex
	fired   bool
	pending []func()
}

// OnReady implements ReadySource.
func (r *ReadyOnce) OnReady(fn func()) {
	r.mu.Lock()
	if !r.fired {
		r.pending = append(r.pending, fn)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	fn()
}

// Fire signals readiness. Later calls are no-ops.
func (r *ReadyOnce) Fire() {
	r.mu.Lock()
	if r.fired {
		r.mu.Unlock()
		return
	}
	r.fired = true
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}
