package worker

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-editor/internal/log"
	"github.com/Xunop/e-editor/internal/model"
	"github.com/Xunop/e-editor/internal/store"
	"github.com/Xunop/e-editor/internal/util/parsers/epub"
)

var ErrBookNotFound = errors.New("book not found")

// ExportEpub writes an active book as an epub to w, following its stored
// outline. Books without a usable outline are written with every chapter in
// id order. It returns the number of sections written.
func ExportEpub(ctx context.Context, s *store.Store, bookID int64, w io.Writer) (int, error) {
	book, err := s.GetBook(ctx, &model.FindBook{ID: &bookID})
	if err != nil {
		return 0, err
	}
	if book == nil {
		return 0, ErrBookNotFound
	}

	chapters, err := s.ListChapters(ctx, bookID)
	if err != nil {
		return 0, err
	}

	writer, err := epub.NewWriter(book.Title, book.Author, book.Description, bookUUID(bookID))
	if err != nil {
		return 0, errors.Wrap(err, "failed to create epub")
	}

	toc, err := model.UnmarshalToc(book.Toc)
	if err != nil {
		log.Warn("Stored outline is not readable, exporting chapters in order",
			zap.Int64("book_id", bookID), zap.Error(err))
		toc = nil
	}

	sections := sectionsFromToc(toc, chapters)
	if len(sections) == 0 {
		sections = sectionsFromChapters(chapters)
	}
	for _, section := range sections {
		if err := writer.Add(section); err != nil {
			return 0, errors.Wrap(err, "failed to add section")
		}
	}

	if _, err := writer.WriteTo(w); err != nil {
		return 0, errors.Wrap(err, "failed to write epub")
	}
	log.Info("Book exported", zap.Int64("book_id", bookID), zap.Int("sections", writer.Len()))
	return writer.Len(), nil
}

func sectionsFromToc(items []*model.TocItem, chapters []*model.Chapter) []*epub.Section {
	byID := make(map[int64]*model.Chapter, len(chapters))
	for _, c := range chapters {
		byID[c.ID] = c
	}

	var walk func(items []*model.TocItem) []*epub.Section
	walk = func(items []*model.TocItem) []*epub.Section {
		sections := make([]*epub.Section, 0, len(items))
		for _, item := range items {
			children := walk(item.Subitems)
			var chapter *model.Chapter
			if id, ok := item.ChapterID(); ok {
				chapter = byID[id]
			}
			if chapter == nil && len(children) == 0 {
				continue
			}

			section := &epub.Section{Title: item.Label, Children: children}
			if chapter != nil {
				section.Title = valueOr(chapter.Label, item.Label)
				section.Body = chapter.Content
			}
			sections = append(sections, section)
		}
		return sections
	}
	return walk(items)
}

func sectionsFromChapters(chapters []*model.Chapter) []*epub.Section {
	sections := make([]*epub.Section, 0, len(chapters))
	for _, c := range chapters {
		sections = append(sections, &epub.Section{Title: c.Label, Body: c.Content})
	}
	return sections
}

func bookUUID(bookID int64) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("e-editor:book:%d", bookID))).String()
}
