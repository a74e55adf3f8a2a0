package deck

// Toggle is a tri-state boolean font attribute. Inherit means the attribute
// is not set on the run and comes from the paragraph, shape or theme.
type Toggle int8

const (
	Inherit Toggle = iota
	On
	Off
)

// ToggleOf converts a bool into an explicit On/Off toggle.
func ToggleOf(b bool) Toggle {
	if b {
		return On
	}
	return Off
}

func (t Toggle) String() string {
	switch t {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return "inherit"
	}
}

// Color is a run colour. At most one of RGB and Theme is set.
type Color struct {
	// RGB is a six digit hex value such as "FF0000".
	RGB string
	// Theme is a scheme colour name such as "accent1".
	Theme string
}

// IsZero reports whether no colour is set
func (c Color) IsZero() bool {
	return c.RGB == "" && c.Theme == ""
}

// Font holds the character formatting of a run
type Font struct {
	Name string
	// Size is in hundredths of a point. Zero means inherited.
	Size   int
	Bold   Toggle
	Italic Toggle
	// Underline is the DrawingML underline style ("sng", "dbl", "none", ...).
	// Empty means inherited.
	Underline string
	Color     Color
}

// Fingerprint is the subset of font attributes two runs must share to be merged
type Fingerprint struct {
	Size      int
	Bold      Toggle
	Italic    Toggle
	Underline string
	Name      string
}

// Fingerprint returns the merge fingerprint of f. Colour is not compared.
func (f Font) Fingerprint() Fingerprint {
	return Fingerprint{
		Size:      f.Size,
		Bold:      f.Bold,
		Italic:    f.Italic,
		Underline: f.Underline,
		Name:      f.Name,
	}
}
