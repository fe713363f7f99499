package theme

import (
	"errors"
	"fmt"
	"strings"
)

// Variant identifies a known palette family.
type Variant string

const (
	VariantLight    Variant = "light"
	VariantDark     Variant = "dark"
	VariantContrast Variant = "contrast"
)

// SemanticRoles defines stable semantic color slots used across the UI.
//
// Components should generally depend on these semantic roles rather than
// variant-specific color literals.
type SemanticRoles struct {
	Primary string
	Accent  string
	Muted   string
	Danger  string
	Success string
	Border  string
}

// Style describes presentational attributes for a UI element.
type Style struct {
	Foreground string
	Background string
	Bold       bool
}

// StyleSet provides strongly-typed styles for the desk's surfaces.
type StyleSet struct {
	Page     Style
	Header   Style
	Card     Style
	Selected Style
	Warning  Style
}

// Bundle contains all display styles for one variant.
type Bundle struct {
	StyleSet
	Roles SemanticRoles
}

// ErrUnknownVariant is returned when a requested variant is not known.
var ErrUnknownVariant = errors.New("unknown theme variant")

var palettes = map[Variant]Bundle{
	VariantLight: {
		StyleSet: StyleSet{
			Page:     Style{Foreground: "#1F2933", Background: "#F7F9FC"},
			Header:   Style{Foreground: "#FFFFFF", Background: "#2F5D8A", Bold: true},
			Card:     Style{Foreground: "#1F2933", Background: "#FFFFFF"},
			Selected: Style{Foreground: "#FFFFFF", Background: "#4C7FB0", Bold: true},
			Warning:  Style{Foreground: "#5B1F2A", Background: "#FDE2E4", Bold: true},
		},
		Roles: SemanticRoles{Primary: "#2F5D8A", Accent: "#E0A526", Muted: "#7B8794", Danger: "#C23B3B", Success: "#2F855A", Border: "#D9E2EC"},
	},
	VariantDark: {
		StyleSet: StyleSet{
			Page:     Style{Foreground: "#D7E3F4", Background: "#0B1F3A"},
			Header:   Style{Foreground: "#FFFFFF", Background: "#122A4A", Bold: true},
			Card:     Style{Foreground: "#EAF1FB", Background: "#163A63"},
			Selected: Style{Foreground: "#0B1F3A", Background: "#D4AF37", Bold: true},
			Warning:  Style{Foreground: "#FFDDE0", Background: "#5B1F2A", Bold: true},
		},
		Roles: SemanticRoles{Primary: "#0F345E", Accent: "#D4AF37", Muted: "#8FA3BF", Danger: "#F28A94", Success: "#65A989", Border: "#2A4C74"},
	},
	VariantContrast: grayscaleBundle(),
}

var variants = [...]Variant{VariantLight, VariantDark, VariantContrast}

// Variants lists the known variants in stable order.
func Variants() []Variant {
	out := make([]Variant, len(variants))
	copy(out, variants[:])
	return out
}

// Lookup returns the bundle for a theme name. Names are matched after trimming
// and lower-casing.
func Lookup(name string) (Bundle, error) {
	variant := Variant(strings.ToLower(strings.TrimSpace(name)))
	bundle, ok := palettes[variant]
	if !ok {
		return Bundle{}, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return bundle, nil
}

// ForClass returns the bundle for a theme token, falling back to the default
// palette for tokens that carry no palette of their own.
func ForClass(name string) (Variant, Bundle) {
	if bundle, err := Lookup(name); err == nil {
		return Variant(strings.ToLower(strings.TrimSpace(name))), bundle
	}
	return Variant(DefaultValue), palettes[Variant(DefaultValue)]
}

// Known reports whether name selects a palette.
func Known(name string) bool {
	_, err := Lookup(name)
	return err == nil
}

// Stylesheet renders one rule group per known variant, keyed by the body
// class the Applier writes.
func Stylesheet() string {
	var b strings.Builder
	for _, v := range variants {
		p := palettes[v]
		writeRule(&b, fmt.Sprintf("body.%s", v), p.Page)
		writeRule(&b, fmt.Sprintf("body.%s header", v), p.Header)
		writeRule(&b, fmt.Sprintf("body.%s .card", v), p.Card)
		writeRule(&b, fmt.Sprintf("body.%s .selected", v), p.Selected)
		writeRule(&b, fmt.Sprintf("body.%s .flash-danger", v), p.Warning)
		fmt.Fprintf(&b, "body.%s a{color:%s}\n", v, p.Roles.Accent)
		fmt.Fprintf(&b, "body.%s table,body.%s td,body.%s th{border-color:%s}\n", v, v, v, p.Roles.Border)
		fmt.Fprintf(&b, "body.%s .flash-success{color:%s}\n", v, p.Roles.Success)
		fmt.Fprintf(&b, "body.%s .flash-warning,body.%s .flash-info{color:%s}\n", v, v, p.Roles.Muted)
	}
	return b.String()
}

func writeRule(b *strings.Builder, selector string, s Style) {
	weight := "normal"
	if s.Bold {
		weight = "bold"
	}
	fmt.Fprintf(b, "%s{color:%s;background:%s;font-weight:%s}\n", selector, s.Foreground, s.Background, weight)
}

func grayscaleBundle() Bundle {
	return Bundle{
		StyleSet: StyleSet{
			Page:     Style{Foreground: "#FFFFFF", Background: "#000000"},
			Header:   Style{Foreground: "#000000", Background: "#FFFFFF", Bold: true},
			Card:     Style{Foreground: "#FFFFFF", Background: "#111111"},
			Selected: Style{Foreground: "#000000", Background: "#FFFF00", Bold: true},
			Warning:  Style{Foreground: "#000000", Background: "#E6E6E6", Bold: true},
		},
		Roles: SemanticRoles{Primary: "#FFFFFF", Accent: "#FFFF00", Muted: "#CFCFCF", Danger: "#FFFFFF", Success: "#FFFFFF", Border: "#FFFFFF"},
	}
}
