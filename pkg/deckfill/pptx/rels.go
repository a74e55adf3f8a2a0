package pptx

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

const (
	relsNamespace         = "http://schemas.openxmlformats.org/package/2006/relationships"
	imageRelationshipType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	slideRelationshipType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	officeDocumentType    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
)

// Relationship is one entry of a .rels part
type Relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

// Relationships is the relationship part belonging to a source part
type Relationships struct {
	// Source is the part the relationships belong to, e.g. ppt/slides/slide1.xml.
	Source string
	root   *Node
}

// relsPath returns the name of the relationships part for a part, e.g.
// "ppt/slides/slide1.xml" -> "ppt/slides/_rels/slide1.xml.rels"
func relsPath(partName string) string {
	dir, base := path.Split(partName)
	return dir + "_rels/" + base + ".rels"
}

func newRelationships(source string) *Relationships {
	return &Relationships{
		Source: source,
		root:   newElement("Relationships", "xmlns", relsNamespace),
	}
}

func parseRelationships(source string, data []byte) (*Relationships, error) {
	root, err := parseXML(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse relationships of %s: %w", source, err)
	}
	return &Relationships{Source: source, root: root}, nil
}

// All returns every relationship in document order
func (r *Relationships) All() []Relationship {
	var out []Relationship
	for _, n := range r.root.ChildrenNamed("Relationship") {
		rel := Relationship{}
		rel.ID, _ = n.Attr("Id")
		rel.Type, _ = n.Attr("Type")
		rel.Target, _ = n.Attr("Target")
		rel.TargetMode, _ = n.Attr("TargetMode")
		out = append(out, rel)
	}
	return out
}

// Get returns the relationship with the given id
func (r *Relationships) Get(id string) (Relationship, bool) {
	for _, rel := range r.All() {
		if rel.ID == id {
			return rel, true
		}
	}
	return Relationship{}, false
}

// Resolve returns the part name a relationship points to
func (r *Relationships) Resolve(rel Relationship) string {
	if strings.HasPrefix(rel.Target, "/") {
		return strings.TrimPrefix(rel.Target, "/")
	}
	return path.Join(path.Dir(r.Source), rel.Target)
}

// Add appends a relationship and returns its new id
func (r *Relationships) Add(relType, target string) string {
	id := r.nextID()
	r.root.AppendChild(newElement("Relationship", "Id", id, "Type", relType, "Target", target))
	return id
}

// nextID generates the next available relationship ID
func (r *Relationships) nextID() string {
	maxID := 0
	for _, rel := range r.All() {
		if strings.HasPrefix(rel.ID, "rId") {
			if id, err := strconv.Atoi(rel.ID[3:]); err == nil && id > maxID {
				maxID = id
			}
		}
	}
	return fmt.Sprintf("rId%d", maxID+1)
}

func (r *Relationships) marshal() []byte {
	return marshalXML(r.root)
}

// relativeTarget returns the target of part as seen from source, e.g.
// source ppt/slides/slide1.xml and part ppt/media/image1.png give ../media/image1.png
func relativeTarget(source, part string) string {
	from := strings.Split(path.Dir(source), "/")
	to := strings.Split(part, "/")
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	var sb strings.Builder
	for j := i; j < len(from); j++ {
		if from[j] != "" && from[j] != "." {
			sb.WriteString("../")
		}
	}
	sb.WriteString(strings.Join(to[i:], "/"))
	return sb.String()
}
