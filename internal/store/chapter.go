package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Xunop/e-editor/internal/log"
	"github.com/Xunop/e-editor/internal/model"
)

const chapterColumns = `
	id,
	COALESCE(bookId, 0),
	COALESCE(label, ''),
	COALESCE(href, ''),
	COALESCE(content, ''),
	COALESCE(createTime, ''),
	COALESCE(updateTime, '')`

// AddChapter inserts a chapter and returns its id. The owning book is not
// checked.
func (s *Store) AddChapter(ctx context.Context, create *model.Chapter) (int64, error) {
	stmt := `
		INSERT INTO ee_chapter (
			bookId,
			label,
			href,
			content,
			createTime,
			updateTime
		) VALUES (?, ?, ?, ?, ?, ?)`
	now := s.timestamp()
	args := []any{create.BookID, create.Label, create.Href, create.Content, now, now}

	return WithConnection(s.guard, func(conn *sql.DB) (int64, error) {
		logQuery(stmt, args)

		result, err := conn.ExecContext(stmtContext(ctx), stmt, args...)
		if err != nil {
			log.Error("Failed to add chapter", zap.Int64("book_id", create.BookID), zap.Error(err))
			return 0, wrapDBError("add chapter", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return 0, wrapDBError("add chapter", err)
		}
		return id, nil
	})
}

// GetChapter looks a chapter up by book and id. The result has at most one
// element and is empty when nothing matches.
func (s *Store) GetChapter(ctx context.Context, bookID, id int64) ([]*model.Chapter, error) {
	return s.GetChapterWhere(ctx, &model.FindChapter{BookID: &bookID, ID: &id})
}

// GetFirstChapter returns the chapter of the book with the smallest id.
func (s *Store) GetFirstChapter(ctx context.Context, bookID int64) ([]*model.Chapter, error) {
	limit := 1
	return s.GetChapterWhere(ctx, &model.FindChapter{BookID: &bookID, Limit: &limit})
}

// ListChapters returns every chapter of the book in creation order.
func (s *Store) ListChapters(ctx context.Context, bookID int64) ([]*model.Chapter, error) {
	return s.GetChapterWhere(ctx, &model.FindChapter{BookID: &bookID})
}

func (s *Store) GetChapterWhere(ctx context.Context, find *model.FindChapter) ([]*model.Chapter, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.BookID; v != nil {
		where, args = append(where, "bookId = ?"), append(args, *v)
	}
	if v := find.Href; v != nil {
		where, args = append(where, "href = ?"), append(args, *v)
	}
	if v := find.Label; v != nil {
		where, args = append(where, "label = ?"), append(args, *v)
	}

	query := `SELECT` + chapterColumns + `
		FROM ee_chapter
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY id ASC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	return WithConnection(s.guard, func(conn *sql.DB) ([]*model.Chapter, error) {
		logQuery(query, args)

		rows, err := conn.QueryContext(stmtContext(ctx), query, args...)
		if err != nil {
			log.Error("Failed to query chapters", zap.Error(err))
			return nil, wrapDBError("get chapter", err)
		}
		defer rows.Close()

		list := make([]*model.Chapter, 0)
		for rows.Next() {
			var chapter model.Chapter
			if err := rows.Scan(
				&chapter.ID,
				&chapter.BookID,
				&chapter.Label,
				&chapter.Href,
				&chapter.Content,
				&chapter.CreatedAt,
				&chapter.UpdatedAt,
			); err != nil {
				log.Error("Failed to scan chapter", zap.Error(err))
				return nil, wrapDBError("get chapter", err)
			}
			list = append(list, &chapter)
		}
		if err := rows.Err(); err != nil {
			return nil, wrapDBError("get chapter", err)
		}
		return list, nil
	})
}

// UpdateChapter replaces the label and content of a chapter. It returns the
// number of rows changed, 0 when no chapter has that id.
func (s *Store) UpdateChapter(ctx context.Context, id int64, label, content string) (int64, error) {
	stmt := `UPDATE ee_chapter SET label = ?, content = ?, updateTime = ? WHERE id = ?`
	return s.exec(ctx, "update chapter", stmt, []any{label, content, s.timestamp(), id})
}
