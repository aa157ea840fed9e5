package epub

// Opf is the package document.
type Opf struct {
	Metadata Metadata   `xml:"metadata" json:"metadata"`
	Manifest []Manifest `xml:"manifest>item" json:"manifest"`
	Spine    Spine      `xml:"spine" json:"spine"`
}

type Metadata struct {
	Title       []string     `xml:"title" json:"title"`
	Language    []string     `xml:"language" json:"language"`
	Identifier  []Identifier `xml:"identifier" json:"identifier"`
	Creator     []Author     `xml:"creator" json:"creator"`
	Publisher   []string     `xml:"publisher" json:"publisher"`
	Description []string     `xml:"description" json:"description"`
	Date        []Date       `xml:"date" json:"date"`
	Meta        []Metafield  `xml:"meta" json:"meta"`
}

type Identifier struct {
	Data   string `xml:",chardata" json:"data"`
	ID     string `xml:"id,attr" json:"id"`
	Scheme string `xml:"scheme,attr" json:"scheme"`
}

type Author struct {
	Data   string `xml:",chardata" json:"author"`
	FileAs string `xml:"file-as,attr" json:"file_as"`
	Role   string `xml:"role,attr" json:"role"`
}

type Date struct {
	Data  string `xml:",chardata" json:"data"`
	Event string `xml:"event,attr" json:"event"`
}

type Metafield struct {
	Name    string `xml:"name,attr" json:"name"`
	Content string `xml:"content,attr" json:"content"`
}

type Manifest struct {
	ID        string `xml:"id,attr" json:"id"`
	Href      string `xml:"href,attr" json:"href"`
	MediaType string `xml:"media-type,attr" json:"type"`
}

type Spine struct {
	Toc      string    `xml:"toc,attr" json:"toc"`
	Itemrefs []Itemref `xml:"itemref" json:"itemrefs"`
}

type Itemref struct {
	IDref  string `xml:"idref,attr" json:"id_ref"`
	Linear string `xml:"linear,attr" json:"linear"`
}
