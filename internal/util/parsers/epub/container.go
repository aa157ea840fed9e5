package epub

// Container is META-INF/container.xml, it points at the package document.
type Container struct {
	Rootfile Rootfile `xml:"rootfiles>rootfile" json:"rootfile"`
}

type Rootfile struct {
	Fullpath string `xml:"full-path,attr" json:"fullpath"`
	Type     string `xml:"media-type,attr" json:"type"`
}
