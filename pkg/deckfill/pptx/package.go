package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

const (
	contentTypesPart    = "[Content_Types].xml"
	rootRelsPart        = "_rels/.rels"
	defaultPresentation = "ppt/presentation.xml"
)

// ErrNotPresentation is returned when a package has no presentation part
var ErrNotPresentation = errors.New("not a valid PPTX file")

// Presentation is a PPTX package loaded for editing. It implements deck.Deck.
//
// Slides may be edited concurrently as long as each slide is edited by one
// goroutine at a time; package-wide state is guarded internally.
type Presentation struct {
	files []*zip.File
	parts map[string]*zip.File

	presentationPart string
	slides           []*Slide

	mu           sync.Mutex
	contentTypes *Node
	added        map[string][]byte
	addedOrder   []string
}

// Open reads a PPTX package
func Open(r io.ReaderAt, size int64) (*Presentation, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read zip file: %v", ErrNotPresentation, err)
	}

	p := &Presentation{
		files: zr.File,
		parts: make(map[string]*zip.File, len(zr.File)),
		added: make(map[string][]byte),
	}
	for _, f := range zr.File {
		p.parts[f.Name] = f
	}

	ct, err := p.readXMLPart(contentTypesPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPresentation, err)
	}
	p.contentTypes = ct

	p.presentationPart = p.findPresentationPart()
	if _, ok := p.parts[p.presentationPart]; !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrNotPresentation, p.presentationPart)
	}
	if err := p.loadSlides(); err != nil {
		return nil, err
	}
	return p, nil
}

// OpenBytes reads a PPTX package held in memory
func OpenBytes(data []byte) (*Presentation, error) {
	return Open(bytes.NewReader(data), int64(len(data)))
}

// OpenFile reads a PPTX file
func OpenFile(path string) (*Presentation, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return OpenBytes(content)
}

// findPresentationPart follows the package relationships to the main part
func (p *Presentation) findPresentationPart() string {
	data, err := p.readPart(rootRelsPart)
	if err != nil {
		return defaultPresentation
	}
	rels, err := parseRelationships("", data)
	if err != nil {
		return defaultPresentation
	}
	for _, rel := range rels.All() {
		if rel.Type == officeDocumentType {
			return strings.TrimPrefix(rel.Target, "/")
		}
	}
	return defaultPresentation
}

// loadSlides reads the slides in presentation order
func (p *Presentation) loadSlides() error {
	pres, err := p.readXMLPart(p.presentationPart)
	if err != nil {
		return err
	}
	rels, err := p.readRelationships(p.presentationPart)
	if err != nil {
		return err
	}

	list := pres.Find("p:sldIdLst")
	if list == nil {
		return nil
	}
	for _, sldID := range list.ChildrenNamed("p:sldId") {
		rID, _ := sldID.Attr("r:id")
		rel, ok := rels.Get(rID)
		if !ok || rel.Type != slideRelationshipType {
			return fmt.Errorf("slide relationship %q not found in %s", rID, relsPath(p.presentationPart))
		}
		partName := rels.Resolve(rel)
		root, err := p.readXMLPart(partName)
		if err != nil {
			return err
		}
		slideRels, err := p.readRelationships(partName)
		if err != nil {
			return err
		}
		s, err := newSlide(p, len(p.slides), partName, root, slideRels)
		if err != nil {
			return err
		}
		p.slides = append(p.slides, s)
	}
	return nil
}

func (p *Presentation) readPart(name string) ([]byte, error) {
	f, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", name, err)
	}
	return content, nil
}

func (p *Presentation) readXMLPart(name string) (*Node, error) {
	data, err := p.readPart(name)
	if err != nil {
		return nil, err
	}
	root, err := parseXML(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("part %s: %w", name, err)
	}
	return root, nil
}

// readRelationships loads the relationships of a part. A missing
// relationships part is not an error.
func (p *Presentation) readRelationships(partName string) (*Relationships, error) {
	name := relsPath(partName)
	if _, ok := p.parts[name]; !ok {
		return newRelationships(partName), nil
	}
	data, err := p.readPart(name)
	if err != nil {
		return nil, err
	}
	return parseRelationships(partName, data)
}

// Slides implements deck.Deck
func (p *Presentation) Slides() []deck.Slide {
	out := make([]deck.Slide, len(p.slides))
	for i, s := range p.slides {
		out[i] = s
	}
	return out
}

// Slide returns the slide at index i
func (p *Presentation) Slide(i int) *Slide {
	return p.slides[i]
}

// addMedia stores image data as a new media part and returns its name
func (p *Presentation) addMedia(img deck.Image) (string, error) {
	if len(img.Data) == 0 {
		return "", errors.New("image has no data")
	}
	ext := img.Extension()

	p.mu.Lock()
	defer p.mu.Unlock()

	var name string
	for i := 1; ; i++ {
		name = fmt.Sprintf("ppt/media/image%d%s", i, ext)
		if _, ok := p.parts[name]; ok {
			continue
		}
		if _, ok := p.added[name]; ok {
			continue
		}
		break
	}
	p.added[name] = img.Data
	p.addedOrder = append(p.addedOrder, name)
	p.ensureDefaultContentType(strings.TrimPrefix(ext, "."), img.ContentType)
	return name, nil
}

// ensureDefaultContentType registers a content type for an extension. Callers hold p.mu.
func (p *Presentation) ensureDefaultContentType(ext, contentType string) {
	for _, d := range p.contentTypes.ChildrenNamed("Default") {
		if e, _ := d.Attr("Extension"); strings.EqualFold(e, ext) {
			return
		}
	}
	def := newElement("Default", "Extension", ext, "ContentType", contentType)
	_ = p.contentTypes.InsertBefore(def, p.contentTypes.Child("Override"))
}

// Save writes the package. Unchanged parts are copied without recompression.
func (p *Presentation) Save(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rewritten := map[string][]byte{
		contentTypesPart: marshalXML(p.contentTypes),
	}
	for _, s := range p.slides {
		rewritten[s.part] = marshalXML(s.root)
		if s.rels != nil && (len(s.rels.All()) > 0 || p.parts[relsPath(s.part)] != nil) {
			rewritten[relsPath(s.part)] = s.rels.marshal()
		}
	}

	zw := zip.NewWriter(w)
	written := make(map[string]bool)
	for _, f := range p.files {
		if data, ok := rewritten[f.Name]; ok {
			if err := writePart(zw, f.Name, data); err != nil {
				return err
			}
		} else if err := zw.Copy(f); err != nil {
			return fmt.Errorf("failed to copy part %s: %w", f.Name, err)
		}
		written[f.Name] = true
	}

	// Relationship parts created during the fill
	for _, s := range p.slides {
		name := relsPath(s.part)
		if data, ok := rewritten[name]; ok && !written[name] {
			if err := writePart(zw, name, data); err != nil {
				return err
			}
			written[name] = true
		}
	}
	for _, name := range p.addedOrder {
		if err := writePart(zw, name, p.added[name]); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish zip file: %w", err)
	}
	return nil
}

// SaveFile writes the package to a file
func (p *Presentation) SaveFile(name string) error {
	var buf bytes.Buffer
	if err := p.Save(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func writePart(zw *zip.Writer, name string, data []byte) error {
	method := zip.Deflate
	if strings.HasPrefix(path.Dir(name), "ppt/media") {
		method = zip.Store
	}
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
	if err != nil {
		return fmt.Errorf("failed to create part %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("failed to write part %s: %w", name, err)
	}
	return nil
}
