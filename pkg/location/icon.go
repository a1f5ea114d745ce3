package location

import "strings"

const symbolicSuffix = "-symbolic"

// Icon is a themed icon descriptor: a name looked up in the icon theme by
// whoever renders it.
type Icon struct {
	Name string `json:"name"`
}

// Themed wraps an icon name.
func Themed(name string) Icon {
	return Icon{Name: name}
}

// IsZero reports whether no icon name is set.
func (i Icon) IsZero() bool {
	return i.Name == ""
}

// Symbolic returns the monochrome variant of the icon.
func (i Icon) Symbolic() Icon {
	if i.IsZero() || strings.HasSuffix(i.Name, symbolicSuffix) {
		return i
	}
	return Icon{Name: i.Name + symbolicSuffix}
}

// String implements fmt.Stringer.
func (i Icon) String() string {
	return i.Name
}
