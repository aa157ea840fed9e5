package model // import "github.com/Xunop/e-editor/internal/model"

import (
	"encoding/json"
	"strconv"
)

type Book struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	// Toc is the serialized outline, see TocItem.
	Toc       string `json:"toc"`
	IsDeleted bool   `json:"isDeleted"`
	// CreatedAt and UpdatedAt are unix seconds rendered as text.
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type FindBook struct {
	ID     *int64  `json:"id"`
	Title  *string `json:"title"`
	Author *string `json:"author"`

	// IncludeDeleted also returns soft deleted books.
	IncludeDeleted bool `json:"include_deleted"`
	// The maximum number of books to return.
	Limit *int `json:"limit"`
}

// UpdateBook patches the non-nil fields of the book with ID.
type UpdateBook struct {
	ID          int64   `json:"id"`
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
	Toc         *string `json:"toc"`
}

// IsEmpty reports whether the patch changes no field.
func (u *UpdateBook) IsEmpty() bool {
	return u.Title == nil && u.Author == nil && u.Description == nil && u.Toc == nil
}

type Chapter struct {
	ID     int64  `json:"id"`
	BookID int64  `json:"bookId"`
	Label  string `json:"label"`
	// Href is how the front end addresses the chapter.
	Href      string `json:"href"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type FindChapter struct {
	ID     *int64  `json:"id"`
	BookID *int64  `json:"bookId"`
	Href   *string `json:"href"`
	Label  *string `json:"label"`
	Limit  *int    `json:"limit"`
}

// TocItem is one node of a book outline. Href holds the id of the chapter
// the node points at.
type TocItem struct {
	Label    string     `json:"label"`
	Href     string     `json:"href"`
	Subitems []*TocItem `json:"subitems"`
}

// ChapterID returns the chapter id the item points at.
func (t *TocItem) ChapterID() (int64, bool) {
	id, err := strconv.ParseInt(t.Href, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func MarshalToc(items []*TocItem) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalToc decodes a stored outline, an empty string is an empty outline.
func UnmarshalToc(toc string) ([]*TocItem, error) {
	if toc == "" {
		return nil, nil
	}
	var items []*TocItem
	if err := json.Unmarshal([]byte(toc), &items); err != nil {
		return nil, err
	}
	return items, nil
}
