package epub // import "github.com/Xunop/e-editor/internal/util/parsers/epub"

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Book is the main struct that holds all the information about the epub file
type Book struct {
	Ncx       Ncx       `json:"ncx"`
	Opf       Opf       `json:"opf"`
	Container Container `json:"container"`
	Mimetype  string    `json:"mimetype"`

	fd      *zip.ReadCloser
	ncxPath string
}

// Entry is one node of the navigation tree. Src is the path of the section
// inside the archive, Fragment the anchor after '#', if any.
type Entry struct {
	Label    string
	Src      string
	Fragment string
	Children []*Entry
}

// Files returns a list of all the files in the epub
func (p *Book) Files() []string {
	var files []string
	for _, f := range p.fd.File {
		files = append(files, f.Name)
	}
	return files
}

// Close closes the epub file
func (p *Book) Close() error {
	return p.fd.Close()
}

// readXML reads the xml file with the given name and unmarshals it into the given interface
func (p *Book) readXML(n string, v interface{}) error {
	rc, err := p.open(n)
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

// readBytes reads the file with the given name and returns its content as a byte slice
func (p *Book) readBytes(n string) ([]byte, error) {
	rc, err := p.open(n)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// filename returns the full path of a file referenced by the package document
func (p *Book) filename(n string) string {
	return path.Join(path.Dir(p.Container.Rootfile.Fullpath), n)
}

// open opens the file with the given name
func (p *Book) open(n string) (io.ReadCloser, error) {
	for _, f := range p.fd.File {
		if f.Name == n {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("file not found: %s", n)
}

func (p *Book) GetTitle() string {
	if p.Opf.Metadata.Title != nil {
		return strings.TrimSpace(p.Opf.Metadata.Title[0])
	}
	return ""
}

func (p *Book) GetAuthor() string {
	for _, author := range p.Opf.Metadata.Creator {
		if author.Role == "aut" || author.Role == "" {
			return strings.TrimSpace(author.Data)
		}
	}
	return ""
}

func (p *Book) GetLanguage() string {
	if p.Opf.Metadata.Language != nil {
		return p.Opf.Metadata.Language[0]
	}
	return ""
}

func (p *Book) GetDescription() string {
	if p.Opf.Metadata.Description != nil {
		return strings.TrimSpace(p.Opf.Metadata.Description[0])
	}
	return ""
}

// Toc returns the navigation tree. Books without an ncx fall back to the
// spine, one entry per section.
func (p *Book) Toc() []*Entry {
	if len(p.Ncx.Points) > 0 {
		return p.pointsToEntries(p.Ncx.Points)
	}

	manifest := make(map[string]Manifest, len(p.Opf.Manifest))
	for _, m := range p.Opf.Manifest {
		manifest[m.ID] = m
	}

	entries := make([]*Entry, 0, len(p.Opf.Spine.Itemrefs))
	for _, ref := range p.Opf.Spine.Itemrefs {
		m, ok := manifest[ref.IDref]
		if !ok {
			continue
		}
		base := path.Base(m.Href)
		entries = append(entries, &Entry{
			Label: strings.TrimSuffix(base, path.Ext(base)),
			Src:   p.filename(m.Href),
		})
	}
	return entries
}

func (p *Book) pointsToEntries(points []Point) []*Entry {
	entries := make([]*Entry, 0, len(points))
	for _, point := range points {
		src, fragment, _ := strings.Cut(point.Content.Src, "#")
		entries = append(entries, &Entry{
			Label:    strings.TrimSpace(point.Text),
			Src:      path.Join(path.Dir(p.ncxPath), src),
			Fragment: fragment,
			Children: p.pointsToEntries(point.Points),
		})
	}
	return entries
}

// ReadBody returns the inner HTML of the body element of a section.
func (p *Book) ReadBody(name string) (string, error) {
	rc, err := p.open(name)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return BodyHTML(rc)
}

// BodyHTML parses an (X)HTML document and renders the children of its body.
func BodyHTML(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	body := findElement(doc, atom.Body)
	if body == nil {
		return "", nil
	}

	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
