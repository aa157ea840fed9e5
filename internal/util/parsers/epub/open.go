package epub

import (
	"archive/zip"
	"fmt"
)

const (
	mimetype     = "application/epub+zip"
	ncxMediaType = "application/x-dtbncx+xml"
)

// Open reads the container, package document and ncx of an epub file.
func Open(f string) (*Book, error) {
	fd, err := zip.OpenReader(f)
	if err != nil {
		return nil, err
	}

	b := &Book{fd: fd}
	if err := b.load(); err != nil {
		fd.Close()
		return nil, err
	}
	return b, nil
}

func (b *Book) load() error {
	m, err := b.readBytes("mimetype")
	if err != nil {
		return err
	}
	b.Mimetype = string(m)
	if b.Mimetype != mimetype {
		return fmt.Errorf("epub: invalid mimetype: %s", b.Mimetype)
	}

	if err := b.readXML("META-INF/container.xml", &b.Container); err != nil {
		return err
	}

	if err := b.readXML(b.Container.Rootfile.Fullpath, &b.Opf); err != nil {
		return err
	}

	for _, mf := range b.Opf.Manifest {
		if mf.MediaType == ncxMediaType {
			b.ncxPath = b.filename(mf.Href)
			if err := b.readXML(b.ncxPath, &b.Ncx); err != nil {
				return err
			}
			break
		}
	}
	return nil
}
