package epub

import (
	"fmt"
	"io"

	goepub "github.com/go-shiori/go-epub"
)

// Section is one chapter of a book being written. Children become
// subsections of the chapter in the navigation.
type Section struct {
	Title    string
	Body     string
	Children []*Section
}

// Writer builds an epub from a book and its sections.
type Writer struct {
	e     *goepub.Epub
	count int
}

// NewWriter creates a writer with the book metadata set.
func NewWriter(title, author, description, identifier string) (*Writer, error) {
	e, err := goepub.NewEpub(title)
	if err != nil {
		return nil, err
	}
	e.SetAuthor(author)
	e.SetDescription(description)
	if identifier != "" {
		e.SetIdentifier("urn:uuid:" + identifier)
	}
	return &Writer{e: e}, nil
}

// Add appends a top level section and its children.
func (w *Writer) Add(s *Section) error {
	return w.add("", s)
}

func (w *Writer) add(parent string, s *Section) error {
	w.count++
	name := fmt.Sprintf("chapter-%d.xhtml", w.count)

	var (
		filename string
		err      error
	)
	if parent == "" {
		filename, err = w.e.AddSection(s.Body, s.Title, name, "")
	} else {
		filename, err = w.e.AddSubSection(parent, s.Body, s.Title, name, "")
	}
	if err != nil {
		return err
	}

	for _, child := range s.Children {
		if err := w.add(filename, child); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of sections added so far.
func (w *Writer) Len() int {
	return w.count
}

// WriteTo writes the epub archive to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	return w.e.WriteTo(dst)
}

// Write writes the epub archive to a file.
func (w *Writer) Write(path string) error {
	return w.e.Write(path)
}
