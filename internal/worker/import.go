package worker // import "github.com/Xunop/e-editor/internal/worker"

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-editor/internal/log"
	"github.com/Xunop/e-editor/internal/model"
	"github.com/Xunop/e-editor/internal/store"
	"github.com/Xunop/e-editor/internal/util/parsers/epub"
)

const (
	defaultTitle       = "Untitled"
	defaultAuthor      = "Anonymous"
	defaultDescription = "No description"
)

// ImportEpub adds the epub at path to the library. Every navigation point
// becomes a chapter, depth first, and the book outline is stored with chapter
// ids as hrefs. It returns the new book and its first chapter, which is nil
// for a book without sections.
func ImportEpub(ctx context.Context, s *store.Store, path string) (*model.Book, *model.Chapter, error) {
	b, err := epub.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open epub")
	}
	defer b.Close()

	book, err := s.AddBook(ctx, &model.Book{
		Title:       valueOr(b.GetTitle(), defaultTitle),
		Author:      valueOr(b.GetAuthor(), defaultAuthor),
		Description: valueOr(b.GetDescription(), defaultDescription),
	})
	if err != nil {
		return nil, nil, err
	}
	log.Debug("Book added", zap.Int64("book_id", book.ID), zap.String("title", book.Title))

	imp := &importer{store: s, book: b, bookID: book.ID, bodies: map[string]string{}}
	toc, err := imp.insert(ctx, b.Toc())
	if err != nil {
		return book, nil, err
	}

	if len(toc) > 0 {
		encoded, err := model.MarshalToc(toc)
		if err != nil {
			return book, nil, errors.Wrap(err, "failed to encode outline")
		}
		if _, err := s.UpdateTableOfContents(ctx, book.ID, encoded); err != nil {
			return book, nil, err
		}
		book.Toc = encoded
	}

	first, err := s.GetFirstChapter(ctx, book.ID)
	if err != nil {
		return book, nil, err
	}
	log.Info("Book imported",
		zap.Int64("book_id", book.ID),
		zap.Int("chapters", imp.count),
		zap.String("path", path))
	if len(first) == 0 {
		return book, nil, nil
	}
	return book, first[0], nil
}

type importer struct {
	store  *store.Store
	book   *epub.Book
	bookID int64
	// section bodies by archive path, several points may share a file
	bodies map[string]string
	count  int
}

func (imp *importer) insert(ctx context.Context, entries []*epub.Entry) ([]*model.TocItem, error) {
	items := make([]*model.TocItem, 0, len(entries))
	for _, entry := range entries {
		content, err := imp.body(entry.Src)
		if err != nil {
			return nil, err
		}

		href := entry.Src
		if entry.Fragment != "" {
			href += "#" + entry.Fragment
		}
		id, err := imp.store.AddChapter(ctx, &model.Chapter{
			BookID:  imp.bookID,
			Label:   entry.Label,
			Href:    href,
			Content: content,
		})
		if err != nil {
			return nil, err
		}
		imp.count++

		children, err := imp.insert(ctx, entry.Children)
		if err != nil {
			return nil, err
		}
		items = append(items, &model.TocItem{
			Label:    entry.Label,
			Href:     strconv.FormatInt(id, 10),
			Subitems: children,
		})
	}
	return items, nil
}

func (imp *importer) body(src string) (string, error) {
	if body, ok := imp.bodies[src]; ok {
		return body, nil
	}
	body, err := imp.book.ReadBody(src)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read section %s", src)
	}
	imp.bodies[src] = body
	return body, nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
