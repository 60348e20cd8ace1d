package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"miniblog/internal/common"
	"miniblog/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	List(ctx context.Context) ([]model.Post, error)
	FindByID(ctx context.Context, id string) (*model.Post, error)
	FindBySlug(ctx context.Context, slug string) (*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
}

type pgPostRepository struct {
	db *sql.DB
}

func NewPgPostRepository(db *sql.DB) PostRepository {
	return &pgPostRepository{db: db}
}

func (r *pgPostRepository) Create(ctx context.Context, post *model.Post) error {
	query := `INSERT INTO posts (id, title, slug, content, author_id)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, post.ID, post.Title, post.Slug, post.Content, post.AuthorID).
		Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique constraint for slug
				return fmt.Errorf("post with this slug already exists: %w", common.ErrConflict)
			}
			if pgErr.Code == "23503" { // Author FK must resolve to an existing account
				return fmt.Errorf("post author does not exist: %w", common.ErrBadRequest)
			}
		}
		return fmt.Errorf("pgPostRepository.Create: %w", err)
	}
	return nil
}

func (r *pgPostRepository) List(ctx context.Context) ([]model.Post, error) {
	query := `SELECT p.id, p.title, p.slug, p.content, p.author_id, u.username,
	                 p.created_at, p.updated_at
	          FROM posts p
	          JOIN users u ON p.author_id = u.id
	          ORDER BY p.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgPostRepository.List: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.AuthorID, &p.AuthorUsername,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgPostRepository.List scan: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgPostRepository.List rows: %w", err)
	}
	return posts, nil
}

func (r *pgPostRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	query := `SELECT p.id, p.title, p.slug, p.content, p.author_id, u.username,
	                 p.created_at, p.updated_at
	          FROM posts p
	          JOIN users u ON p.author_id = u.id
	          WHERE p.id = $1`
	return r.scanPost(r.db.QueryRowContext(ctx, query, id), "FindByID")
}

func (r *pgPostRepository) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	query := `SELECT p.id, p.title, p.slug, p.content, p.author_id, u.username,
	                 p.created_at, p.updated_at
	          FROM posts p
	          JOIN users u ON p.author_id = u.id
	          WHERE p.slug = $1`
	return r.scanPost(r.db.QueryRowContext(ctx, query, slug), "FindBySlug")
}

func (r *pgPostRepository) scanPost(row *sql.Row, op string) (*model.Post, error) {
	p := &model.Post{}
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.AuthorID, &p.AuthorUsername,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgPostRepository.%s: %w", op, err)
	}
	return p, nil
}

func (r *pgPostRepository) Update(ctx context.Context, post *model.Post) error {
	query := `UPDATE posts SET title = $1, content = $2, updated_at = NOW()
	          WHERE id = $3
	          RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, post.Title, post.Content, post.ID).Scan(&post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgPostRepository.Update: %w", err)
	}
	return nil
}

func (r *pgPostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgPostRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgPostRepository.Delete affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
