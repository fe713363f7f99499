//go:build js && wasm

// Command themeapplier is the browser host of the theme applier. It reads
// document.cookie and sets document.body's class once the DOM is ready.
//
// Pages rendered by cmd/server already carry the resolved class on <body>.
// This build is for copies of those pages served from a cache or CDN, where
// the class baked in at render time may not match the visitor's cookie:
//
//	GOOS=js GOARCH=wasm go build -o themeapplier.wasm ./cmd/themeapplier
//	cp "$(go env GOROOT)/lib/wasm/wasm_exec.js" .
//
// and in the page head:
//
//	<script src="/wasm_exec.js"></script>
//	<script>
//	  const go = new Go();
//	  WebAssembly.instantiateStreaming(fetch("/themeapplier.wasm"), go.importObject)
//	    .then((r) => go.run(r.instance));
//	</script>
package main

import (
	"syscall/js"

	"estada-feliz/internal/theme"
)

// jsDocument implements theme.DOM over the global document object.
type jsDocument struct {
	doc js.Value
}

func (d jsDocument) Cookie() string {
	v := d.doc.Get("cookie")
	if v.Type() != js.TypeString {
		return ""
	}
	return v.String()
}

func (d jsDocument) ReadyState() string {
	return d.doc.Get("readyState").String()
}

func (d jsDocument) SetBodyClass(class string) bool {
	body := d.doc.Get("body")
	if body.IsNull() || body.IsUndefined() {
		return false
	}
	body.Set("className", class)
	return true
}

func (d jsDocument) OnContentLoaded(fn func()) {
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		cb.Release()
		fn()
		return nil
	})
	d.doc.Call("addEventListener", "DOMContentLoaded", cb, map[string]any{"once": true})
}

func main() {
	page := theme.Page{DOM: jsDocument{doc: js.Global().Get("document")}}
	done := make(chan struct{})
	applier := theme.NewApplier(page, page, theme.WithObserver(func(string) { close(done) }))
	applier.Bind(page)
	<-done
}
