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

const bookColumns = `
	id,
	COALESCE(title, ''),
	COALESCE(author, ''),
	COALESCE(description, ''),
	COALESCE(toc, ''),
	COALESCE(isDel, 0),
	COALESCE(createTime, ''),
	COALESCE(updateTime, '')`

// AddBook inserts a live book and returns the stored row.
func (s *Store) AddBook(ctx context.Context, create *model.Book) (*model.Book, error) {
	stmt := `
		INSERT INTO ee_book (
			title,
			author,
			description,
			toc,
			isDel,
			createTime,
			updateTime
		) VALUES (?, ?, ?, ?, 0, ?, ?)
		RETURNING` + bookColumns
	now := s.timestamp()
	args := []any{create.Title, create.Author, create.Description, create.Toc, now, now}

	return WithConnection(s.guard, func(conn *sql.DB) (*model.Book, error) {
		logQuery(stmt, args)

		book, err := scanBook(conn.QueryRowContext(stmtContext(ctx), stmt, args...))
		if err != nil {
			log.Error("Failed to add book", zap.Error(err))
			return nil, wrapDBError("add book", err)
		}
		return book, nil
	})
}

// ListActiveBooks returns the books that are not soft deleted, in insertion order.
func (s *Store) ListActiveBooks(ctx context.Context) ([]*model.Book, error) {
	return s.ListBooks(ctx, &model.FindBook{})
}

func (s *Store) ListBooks(ctx context.Context, find *model.FindBook) ([]*model.Book, error) {
	where, args := []string{"1 = 1"}, []any{}

	if !find.IncludeDeleted {
		where = append(where, "COALESCE(isDel, 0) = 0")
	}
	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Title; v != nil {
		where, args = append(where, "title = ?"), append(args, *v)
	}
	if v := find.Author; v != nil {
		where, args = append(where, "author = ?"), append(args, *v)
	}

	query := `SELECT` + bookColumns + `
		FROM ee_book
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY id ASC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	return WithConnection(s.guard, func(conn *sql.DB) ([]*model.Book, error) {
		logQuery(query, args)

		rows, err := conn.QueryContext(stmtContext(ctx), query, args...)
		if err != nil {
			log.Error("Failed to query books", zap.Error(err))
			return nil, wrapDBError("list books", err)
		}
		defer rows.Close()

		list := make([]*model.Book, 0)
		for rows.Next() {
			book, err := scanBook(rows)
			if err != nil {
				log.Error("Failed to scan book", zap.Error(err))
				return nil, wrapDBError("list books", err)
			}
			list = append(list, book)
		}
		if err := rows.Err(); err != nil {
			return nil, wrapDBError("list books", err)
		}
		return list, nil
	})
}

// GetBook returns the first match of find, or nil.
func (s *Store) GetBook(ctx context.Context, find *model.FindBook) (*model.Book, error) {
	limit := 1
	f := *find
	f.Limit = &limit

	list, err := s.ListBooks(ctx, &f)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateTableOfContents replaces the outline of a book. It returns the
// number of rows changed, 0 when no book has that id.
func (s *Store) UpdateTableOfContents(ctx context.Context, id int64, toc string) (int64, error) {
	return s.UpdateBook(ctx, &model.UpdateBook{ID: id, Toc: &toc})
}

// UpdateBook patches the given fields of a book, soft deleted books included.
func (s *Store) UpdateBook(ctx context.Context, update *model.UpdateBook) (int64, error) {
	set, args := []string{"updateTime = ?"}, []any{s.timestamp()}

	if v := update.Title; v != nil {
		set, args = append(set, "title = ?"), append(args, *v)
	}
	if v := update.Author; v != nil {
		set, args = append(set, "author = ?"), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = ?"), append(args, *v)
	}
	if v := update.Toc; v != nil {
		set, args = append(set, "toc = ?"), append(args, *v)
	}
	args = append(args, update.ID)

	stmt := `UPDATE ee_book SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	return s.exec(ctx, "update book", stmt, args)
}

// DeleteBook marks a book as deleted. The row and its chapters stay on disk.
func (s *Store) DeleteBook(ctx context.Context, id int64) (int64, error) {
	stmt := `UPDATE ee_book SET isDel = 1, updateTime = ? WHERE id = ?`
	return s.exec(ctx, "delete book", stmt, []any{s.timestamp(), id})
}

// exec runs a single write statement and returns the number of rows it changed.
func (s *Store) exec(ctx context.Context, op, stmt string, args []any) (int64, error) {
	return WithConnection(s.guard, func(conn *sql.DB) (int64, error) {
		logQuery(stmt, args)

		result, err := conn.ExecContext(stmtContext(ctx), stmt, args...)
		if err != nil {
			log.Error("Failed to "+op, zap.Error(err))
			return 0, wrapDBError(op, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return 0, wrapDBError(op, err)
		}
		return affected, nil
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (*model.Book, error) {
	var book model.Book
	if err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Description,
		&book.Toc,
		&book.IsDeleted,
		&book.CreatedAt,
		&book.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &book, nil
}
