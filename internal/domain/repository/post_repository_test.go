package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"miniblog/internal/common"
	"miniblog/internal/domain/model"
)

func newPostRepoWithMock(t *testing.T) (PostRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPgPostRepository(db), mock, db
}

var postRows = []string{"id", "title", "slug", "content", "author_id", "username", "created_at", "updated_at"}

func TestPostCreate_Success(t *testing.T) {
	repo, mock, db := newPostRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs("p-1", "Hello", "hello-p1", "body", "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	post := &model.Post{ID: "p-1", Title: "Hello", Slug: "hello-p1", Content: "body", AuthorID: "u-1"}
	if err := repo.Create(context.Background(), post); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !post.CreatedAt.Equal(now) {
		t.Fatalf("created_at not populated: %v", post.CreatedAt)
	}
}

func TestPostCreate_MissingAuthor(t *testing.T) {
	repo, mock, db := newPostRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO posts`).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	post := &model.Post{ID: "p-1", Title: "Hello", Slug: "hello-p1", Content: "body", AuthorID: "ghost"}
	if err := repo.Create(context.Background(), post); !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("got %v, want ErrBadRequest", err)
	}
}

func TestPostList_NewestFirst(t *testing.T) {
	repo, mock, db := newPostRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(postRows).
		AddRow("p-2", "newer", "newer-p2", "b", "u-1", "alice", now, now).
		AddRow("p-1", "older", "older-p1", "a", "u-1", "alice", now.Add(-time.Hour), now.Add(-time.Hour))
	mock.ExpectQuery(`(?s)FROM posts p.+ORDER BY p\.created_at DESC`).
		WillReturnRows(rows)

	posts, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != "p-2" || posts[0].AuthorUsername != "alice" {
		t.Fatalf("unexpected posts: %+v", posts)
	}
}

func TestPostFindByID_NotFound(t *testing.T) {
	repo, mock, db := newPostRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM posts p`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPostUpdate_NotFound(t *testing.T) {
	repo, mock, db := newPostRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE posts`).
		WithArgs("title", "content", "missing").
		WillReturnError(sql.ErrNoRows)

	post := &model.Post{ID: "missing", Title: "title", Content: "content"}
	if err := repo.Update(context.Background(), post); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPostDelete(t *testing.T) {
	repo, mock, db := newPostRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM posts`).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "p-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	mock.ExpectExec(`DELETE FROM posts`).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "p-1"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
