// Package scope maps the public search scopes onto the platform's category names.
package scope

// Scope is a public search scope name
type Scope string

const (
	Application Scope = "application"
	Report      Scope = "report"
	Locus       Scope = "locus"
	Survey      Scope = "survey"
)

// Mapping ties a public scope to its platform category
type Mapping struct {
	Public   Scope
	Platform string
	Default  bool
}

// Locus searches must not be combined with other scopes in one call. The
// platform does not reject such calls, so this is not enforced here.
var mappings = []Mapping{
	{Public: Application, Platform: "app", Default: true},
	{Public: Report, Platform: "report", Default: true},
	{Public: Locus, Platform: "gene", Default: false},
	{Public: Survey, Platform: "survey", Default: true},
}

// Mappings returns a copy of the scope table in table order
func Mappings() []Mapping {
	out := make([]Mapping, len(mappings))
	copy(out, mappings)
	return out
}

// Defaults returns the scopes searched when a caller names none
func Defaults() []Scope {
	var out []Scope
	for _, m := range mappings {
		if m.Default {
			out = append(out, m.Public)
		}
	}
	return out
}

// ToPlatform translates public scope names, preserving order. Unknown names
// are passed through unchanged.
func ToPlatform(public []string) []string {
	out := make([]string, len(public))
	for i, name := range public {
		out[i] = name
		if m, ok := lookupPublic(name); ok {
			out[i] = m.Platform
		}
	}
	return out
}

// FromPlatform resolves a scope tag found on a platform record. Both platform
// and public names are accepted.
func FromPlatform(name string) (Scope, bool) {
	for _, m := range mappings {
		if m.Platform == name {
			return m.Public, true
		}
	}
	if m, ok := lookupPublic(name); ok {
		return m.Public, true
	}
	return "", false
}

// IsKnown reports whether name is a public scope
func IsKnown(name string) bool {
	_, ok := lookupPublic(name)
	return ok
}

// MixesLocus reports whether the locus scope is requested together with
// at least one other scope. Repeating locus alone does not count.
func MixesLocus(public []string) bool {
	var locus, other bool
	for _, name := range public {
		if Scope(name) == Locus {
			locus = true
		} else {
			other = true
		}
	}
	return locus && other
}

// Strings converts scopes to plain names
func Strings(scopes []Scope) []string {
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = string(s)
	}
	return out
}

func lookupPublic(name string) (Mapping, bool) {
	for _, m := range mappings {
		if string(m.Public) == name {
			return m, true
		}
	}
	return Mapping{}, false
}
