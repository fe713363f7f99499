// Package theme resolves the presentation theme of a rendered document from
// the host's cookie jar and applies it as the class of the document root.
//
// The host owns both the jar and the root container, so an Applier never
// reaches for globals. Callers inject a JarReader, a ClassWriter and a
// one-shot ReadySource:
//
//	applier := theme.NewApplier(theme.JarFunc(readCookies), theme.ClassFunc(setBodyClass))
//	applier.Bind(readySignal)
//
// Resolution is deliberately forgiving. Malformed or missing jars fall back to
// DefaultValue and any token found in the jar is applied verbatim.
//
// The package also carries the palettes behind the known theme names, used to
// generate the web stylesheet and to style the housekeeping terminal board.
package theme
