package worker

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xunop/e-editor/internal/model"
	"github.com/Xunop/e-editor/internal/store"
	"github.com/Xunop/e-editor/internal/util/parsers/epub"
)

const (
	fixtureContainer = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`

	fixtureOpf = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">%s</metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="a" href="a.xhtml" media-type="application/xhtml+xml"/>
    <item id="b" href="b.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx"><itemref idref="a"/><itemref idref="b"/></spine>
</package>`

	fixtureNcx = `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="p1">
      <navLabel><text>Part One</text></navLabel>
      <content src="a.xhtml"/>
      <navPoint id="p1-1">
        <navLabel><text>Chapter 1</text></navLabel>
        <content src="a.xhtml#c1"/>
      </navPoint>
    </navPoint>
    <navPoint id="p2">
      <navLabel><text>Part Two</text></navLabel>
      <content src="b.xhtml"/>
    </navPoint>
  </navMap>
</ncx>`
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeFixture(t *testing.T, metadata string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "fixture.epub")
	f, err := os.Create(name)
	require.NoError(t, err)
	defer f.Close()

	files := [][2]string{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", fixtureContainer},
		{"OEBPS/content.opf", fmt.Sprintf(fixtureOpf, metadata)},
		{"OEBPS/toc.ncx", fixtureNcx},
		{"OEBPS/a.xhtml", `<html><body><h1 id="c1">One</h1><p>first</p></body></html>`},
		{"OEBPS/b.xhtml", `<html><body><p>second</p></body></html>`},
	}
	zw := zip.NewWriter(f)
	for _, file := range files {
		w, err := zw.Create(file[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(file[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return name
}

func TestImportEpub(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	path := writeFixture(t, `<dc:title>Fixture</dc:title><dc:creator>Writer</dc:creator><dc:description>About</dc:description>`)

	book, first, err := ImportEpub(ctx, s, path)
	require.NoError(t, err)
	require.NotNil(t, book)
	assert.Equal(t, "Fixture", book.Title)
	assert.Equal(t, "Writer", book.Author)
	assert.Equal(t, "About", book.Description)

	chapters, err := s.ListChapters(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, chapters, 3)
	assert.Equal(t, "Part One", chapters[0].Label)
	assert.Equal(t, "Chapter 1", chapters[1].Label)
	assert.Equal(t, "OEBPS/a.xhtml#c1", chapters[1].Href)
	assert.Equal(t, "Part Two", chapters[2].Label)
	assert.Equal(t, "<p>second</p>", chapters[2].Content)
	assert.Equal(t, chapters[0].Content, chapters[1].Content)

	require.NotNil(t, first)
	assert.Equal(t, chapters[0].ID, first.ID)

	stored, err := s.GetBook(ctx, &model.FindBook{ID: &book.ID})
	require.NoError(t, err)
	toc, err := model.UnmarshalToc(stored.Toc)
	require.NoError(t, err)
	require.Len(t, toc, 2)
	assert.Equal(t, strconv.FormatInt(chapters[0].ID, 10), toc[0].Href)
	require.Len(t, toc[0].Subitems, 1)
	assert.Equal(t, strconv.FormatInt(chapters[1].ID, 10), toc[0].Subitems[0].Href)
	assert.Equal(t, strconv.FormatInt(chapters[2].ID, 10), toc[1].Href)
}

func TestImportEpubDefaults(t *testing.T) {
	s := newTestStore(t)
	path := writeFixture(t, "")

	book, _, err := ImportEpub(context.Background(), s, path)
	require.NoError(t, err)
	assert.Equal(t, "Untitled", book.Title)
	assert.Equal(t, "Anonymous", book.Author)
	assert.Equal(t, "No description", book.Description)
}

func TestImportEpubNotAnEpub(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(t.TempDir(), "plain.epub")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	book, first, err := ImportEpub(context.Background(), s, path)
	assert.Error(t, err)
	assert.Nil(t, book)
	assert.Nil(t, first)

	books, err := s.ListActiveBooks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}

func exportAndOpen(t *testing.T, s *store.Store, bookID int64) (*epub.Book, int) {
	t.Helper()
	var buf bytes.Buffer
	n, err := ExportEpub(context.Background(), s, bookID, &buf)
	require.NoError(t, err)

	name := filepath.Join(t.TempDir(), "export.epub")
	require.NoError(t, os.WriteFile(name, buf.Bytes(), 0o644))
	b, err := epub.Open(name)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b, n
}

func TestExportEpubWithoutOutline(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book, err := s.AddBook(ctx, &model.Book{Title: "Plain", Author: "A", Description: "D"})
	require.NoError(t, err)
	for _, label := range []string{"One", "Two"} {
		_, err := s.AddChapter(ctx, &model.Chapter{BookID: book.ID, Label: label, Content: "<p>" + label + "</p>"})
		require.NoError(t, err)
	}

	b, n := exportAndOpen(t, s, book.ID)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Plain", b.GetTitle())
	assert.Equal(t, "A", b.GetAuthor())

	toc := b.Toc()
	require.Len(t, toc, 2)
	assert.Equal(t, "One", toc[0].Label)
	assert.Equal(t, "Two", toc[1].Label)

	body, err := b.ReadBody(toc[1].Src)
	require.NoError(t, err)
	assert.Contains(t, body, "<p>Two</p>")
}

func TestExportEpubFollowsOutline(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book, err := s.AddBook(ctx, &model.Book{Title: "Ordered"})
	require.NoError(t, err)
	first, err := s.AddChapter(ctx, &model.Chapter{BookID: book.ID, Label: "First", Content: "<p>1</p>"})
	require.NoError(t, err)
	second, err := s.AddChapter(ctx, &model.Chapter{BookID: book.ID, Label: "Second", Content: "<p>2</p>"})
	require.NoError(t, err)
	_, err = s.AddChapter(ctx, &model.Chapter{BookID: book.ID, Label: "Unlisted", Content: "<p>3</p>"})
	require.NoError(t, err)

	toc, err := model.MarshalToc([]*model.TocItem{
		{Label: "Second", Href: strconv.FormatInt(second, 10)},
		{Label: "Gone", Href: "999"},
		{Label: "First", Href: strconv.FormatInt(first, 10)},
	})
	require.NoError(t, err)
	_, err = s.UpdateTableOfContents(ctx, book.ID, toc)
	require.NoError(t, err)

	// Edited labels win over the outline.
	_, err = s.UpdateChapter(ctx, first, "First edited", "<p>1 edited</p>")
	require.NoError(t, err)

	b, n := exportAndOpen(t, s, book.ID)
	assert.Equal(t, 2, n)
	entries := b.Toc()
	require.Len(t, entries, 2)
	assert.Equal(t, "Second", entries[0].Label)
	assert.Equal(t, "First edited", entries[1].Label)
}

func TestExportEpubMissingBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := ExportEpub(ctx, s, 42, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrBookNotFound)

	book, err := s.AddBook(ctx, &model.Book{Title: "Deleted"})
	require.NoError(t, err)
	_, err = s.DeleteBook(ctx, book.ID)
	require.NoError(t, err)
	_, err = ExportEpub(ctx, s, book.ID, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestImportPool(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewImportPool(ctx, s, 2)
	t.Cleanup(func() {
		cancel()
		pool.Wait()
	})

	path := writeFixture(t, `<dc:title>Queued</dc:title>`)
	job, err := pool.Submit(path, true)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.NotEmpty(t, job.ID)

	var done model.Job
	require.Eventually(t, func() bool {
		j, ok := pool.Get(job.ID)
		done = j
		return ok && (j.Status == model.JobStatusDone || j.Status == model.JobStatusFailed)
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, model.JobStatusDone, done.Status)
	assert.Empty(t, done.Error)
	assert.NotZero(t, done.BookID)
	require.NotNil(t, done.FirstChapter)
	assert.Equal(t, "Part One", done.FirstChapter.Label)

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond)
}

func TestImportPoolFailedJob(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewImportPool(ctx, s, 1)
	t.Cleanup(func() {
		cancel()
		pool.Wait()
	})

	job, err := pool.Submit(filepath.Join(t.TempDir(), "missing.epub"), false)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		j, _ := pool.Get(job.ID)
		return j.Status == model.JobStatusFailed
	}, 5*time.Second, 10*time.Millisecond)

	j, _ := pool.Get(job.ID)
	assert.NotEmpty(t, j.Error)
	_, ok := pool.Get("unknown")
	assert.False(t, ok)
}

func TestImportPoolStopped(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewImportPool(ctx, s, 1)
	cancel()
	pool.Wait()

	job, err := pool.Submit("whatever.epub", false)
	assert.ErrorIs(t, err, ErrPoolStopped)
	j, ok := pool.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, model.JobStatusFailed, j.Status)
}

func TestImportWorkerFailsQueuedJobsOnStop(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	pool := &ImportPool{ctx: ctx, queue: make(chan model.Job, 2)}

	upload := filepath.Join(t.TempDir(), "queued.epub")
	require.NoError(t, os.WriteFile(upload, []byte("PK"), 0644))

	kept, err := pool.Submit(filepath.Join(t.TempDir(), "kept.epub"), false)
	require.NoError(t, err)
	removed, err := pool.Submit(upload, true)
	require.NoError(t, err)

	cancel()
	w := &ImportWorker{id: 1, store: s, pool: pool}
	w.Run(ctx, pool.queue)

	for _, id := range []string{kept.ID, removed.ID} {
		j, ok := pool.Get(id)
		require.True(t, ok)
		assert.Equal(t, model.JobStatusFailed, j.Status)
		assert.Equal(t, ErrPoolStopped.Error(), j.Error)
	}
	_, err = os.Stat(upload)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, pool.queue)
}
