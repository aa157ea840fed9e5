package v1 // import "github.com/Xunop/e-editor/internal/api/v1"

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/Xunop/e-editor/internal/http/response"
	"github.com/Xunop/e-editor/internal/model"
	"github.com/Xunop/e-editor/internal/store"
	"github.com/Xunop/e-editor/internal/worker"
)

var ErrJobNotFound = errors.New("job not found")

// Commands is the operation surface of the library. Every command returns
// an envelope; the error return is reserved for failures to reach the
// database at all.
type Commands struct {
	store *store.Store
	pool  *worker.ImportPool
}

// NewCommands creates the command set. pool may be nil, asynchronous imports
// are then refused.
func NewCommands(s *store.Store, pool *worker.ImportPool) *Commands {
	return &Commands{store: s, pool: pool}
}

// envelope is the only place where repository errors become envelope
// messages. Lock errors are passed through.
func envelope[T any](data T, err error) (response.Envelope[T], error) {
	if err != nil {
		if store.IsLockError(err) {
			return response.Envelope[T]{}, err
		}
		return response.Failure[T](err.Error()), nil
	}
	return response.Success(data), nil
}

func (c *Commands) AddBook(ctx context.Context, title, author, description, toc string) (response.Envelope[*model.Book], error) {
	return envelope(c.store.AddBook(ctx, &model.Book{
		Title:       title,
		Author:      author,
		Description: description,
		Toc:         toc,
	}))
}

func (c *Commands) GetBooks(ctx context.Context) (response.Envelope[[]*model.Book], error) {
	return envelope(c.store.ListActiveBooks(ctx))
}

func (c *Commands) UpdateBookToc(ctx context.Context, id int64, toc string) (response.Envelope[int64], error) {
	return envelope(c.store.UpdateTableOfContents(ctx, id, toc))
}

func (c *Commands) UpdateBook(ctx context.Context, update *model.UpdateBook) (response.Envelope[int64], error) {
	return envelope(c.store.UpdateBook(ctx, update))
}

func (c *Commands) DeleteBook(ctx context.Context, id int64) (response.Envelope[int64], error) {
	return envelope(c.store.DeleteBook(ctx, id))
}

func (c *Commands) AddChapter(ctx context.Context, label, href, content string, bookID int64) (response.Envelope[int64], error) {
	return envelope(c.store.AddChapter(ctx, &model.Chapter{
		BookID:  bookID,
		Label:   label,
		Href:    href,
		Content: content,
	}))
}

func (c *Commands) GetChapter(ctx context.Context, bookID, id int64) (response.Envelope[[]*model.Chapter], error) {
	return envelope(c.store.GetChapter(ctx, bookID, id))
}

func (c *Commands) GetChapterWhere(ctx context.Context, find *model.FindChapter) (response.Envelope[[]*model.Chapter], error) {
	return envelope(c.store.GetChapterWhere(ctx, find))
}

func (c *Commands) GetFirstChapter(ctx context.Context, bookID int64) (response.Envelope[[]*model.Chapter], error) {
	return envelope(c.store.GetFirstChapter(ctx, bookID))
}

func (c *Commands) UpdateChapter(ctx context.Context, id int64, label, content string) (response.Envelope[int64], error) {
	return envelope(c.store.UpdateChapter(ctx, id, label, content))
}

// ImportBook imports an epub and returns its first chapter as a one element
// list, empty when the book has no sections.
func (c *Commands) ImportBook(ctx context.Context, path string) (response.Envelope[[]*model.Chapter], error) {
	_, first, err := worker.ImportEpub(ctx, c.store, path)
	chapters := make([]*model.Chapter, 0, 1)
	if first != nil {
		chapters = append(chapters, first)
	}
	return envelope(chapters, err)
}

// QueueImport hands the epub at path to the import pool.
func (c *Commands) QueueImport(path string, removeAfter bool) (response.Envelope[model.Job], error) {
	if c.pool == nil {
		return envelope(model.Job{}, worker.ErrPoolStopped)
	}
	return envelope(c.pool.Submit(path, removeAfter))
}

func (c *Commands) GetJob(id string) (response.Envelope[model.Job], error) {
	if c.pool == nil {
		return envelope(model.Job{}, ErrJobNotFound)
	}
	job, ok := c.pool.Get(id)
	if !ok {
		return envelope(job, ErrJobNotFound)
	}
	return envelope(job, nil)
}

// ExportBook writes the book as an epub to w and reports the number of
// sections written.
func (c *Commands) ExportBook(ctx context.Context, bookID int64, w io.Writer) (response.Envelope[int], error) {
	return envelope(worker.ExportEpub(ctx, c.store, bookID, w))
}

// CloseDatabase closes the library. Later commands fail with a lock error.
func (c *Commands) CloseDatabase() (response.Envelope[bool], error) {
	if err := c.store.Close(); err != nil {
		return envelope(false, err)
	}
	return envelope(true, nil)
}
