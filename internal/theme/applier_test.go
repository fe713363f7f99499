package theme

import "testing"

type fakeRoot struct {
	class  string
	writes int
}

func (f *fakeRoot) SetRootClass(class string) {
	f.class = class
	f.writes++
}

type manualReady struct {
	callbacks []func()
}

func (m *manualReady) OnReady(fn func()) { m.callbacks = append(m.callbacks, fn) }

func (m *manualReady) fire() {
	for _, fn := range m.callbacks {
		fn()
	}
}

func TestApplierEndToEnd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		jar  string
		want string
	}{
		{jar: "foo=bar; theme=dark; baz=qux", want: "dark"},
		{jar: "", want: "light"},
		{jar: "theme=light; theme=dark", want: "light"},
	}

	for _, tt := range tests {
		root := &fakeRoot{class: "stale previous classes"}
		ready := &manualReady{}
		jar := tt.jar

		NewApplier(JarFunc(func() string { return jar }), root).Bind(ready)
		if root.writes != 0 {
			t.Fatalf("applier wrote before ready for jar %q", tt.jar)
		}

		ready.fire()
		if root.class != tt.want {
			t.Fatalf("root class for jar %q = %q, want %q", tt.jar, root.class, tt.want)
		}
	}
}

func TestApplierRunsOnceEvenIfReadyFiresTwice(t *testing.T) {
	t.Parallel()

	jar := "theme=dark"
	root := &fakeRoot{}
	ready := &manualReady{}

	NewApplier(JarFunc(func() string { return jar }), root).Bind(ready)
	ready.fire()
	jar = "theme=light"
	ready.fire()

	if root.writes != 1 {
		t.Fatalf("writes = %d, want 1", root.writes)
	}
	if root.class != "dark" {
		t.Fatalf("class = %q, want value resolved at first ready", root.class)
	}
}

func TestResolveAndApplyOverwritesAndObserves(t *testing.T) {
	t.Parallel()

	var observed []string
	root := &fakeRoot{class: "a b c"}
	applier := NewApplier(JarFunc(func() string { return "theme=contrast" }), root, WithObserver(func(v string) {
		observed = append(observed, v)
	}))

	if got := applier.ResolveAndApply(); got != "contrast" {
		t.Fatalf("ResolveAndApply() = %q, want contrast", got)
	}
	if root.class != "contrast" {
		t.Fatalf("root class = %q, want full replacement", root.class)
	}
	if len(observed) != 1 || observed[0] != "contrast" {
		t.Fatalf("observed = %#v", observed)
	}
}

func TestResolveAndApplyNilJarUsesDefault(t *testing.T) {
	t.Parallel()

	var class string
	NewApplier(nil, ClassFunc(func(c string) { class = c })).ResolveAndApply()
	if class != DefaultValue {
		t.Fatalf("class = %q, want %q", class, DefaultValue)
	}
}

func TestReadyOnce(t *testing.T) {
	t.Parallel()

	var ready ReadyOnce
	calls := 0
	ready.OnReady(func() { calls++ })
	if calls != 0 {
		t.Fatalf("callback ran before Fire")
	}

	ready.Fire()
	ready.Fire()
	if calls != 1 {
		t.Fatalf("calls after double Fire = %d, want 1", calls)
	}

	late := false
	ready.OnReady(func() { late = true })
	if !late {
		t.Fatalf("late registration should run immediately")
	}
}
