package deck

import "fmt"

// Geometry is the position and size of a shape in EMU (914400 per inch)
type Geometry struct {
	Left   int64
	Top    int64
	Width  int64
	Height int64
}

func (g Geometry) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", g.Left, g.Top, g.Width, g.Height)
}

// Image is the payload inserted in place of a picture placeholder
type Image struct {
	// Data holds the encoded image bytes.
	Data []byte
	// ContentType is the MIME type, e.g. "image/png".
	ContentType string
	// Name is a file name hint, used for the description of the new picture.
	Name string
}

// Extension returns the file extension (with leading dot) for the image content type
func (img Image) Extension() string {
	switch img.ContentType {
	case "image/jpeg":
		return ".jpeg"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	case "image/tiff":
		return ".tiff"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".png"
	}
}
