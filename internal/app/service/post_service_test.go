package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"miniblog/internal/common"
	"miniblog/internal/domain/model"
)

type fakePostRepo struct {
	posts map[string]*model.Post
	now   time.Time
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[string]*model.Post{}, now: time.Now()}
}

func (f *fakePostRepo) Create(ctx context.Context, post *model.Post) error {
	cp := *post
	f.now = f.now.Add(time.Second) // distinct creation times, insertion order
	cp.CreatedAt = f.now
	cp.UpdatedAt = f.now
	f.posts[cp.ID] = &cp
	post.CreatedAt = cp.CreatedAt
	post.UpdatedAt = cp.UpdatedAt
	return nil
}

func (f *fakePostRepo) List(ctx context.Context) ([]model.Post, error) {
	out := []model.Post{}
	for _, p := range f.posts {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakePostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	if p, ok := f.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakePostRepo) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakePostRepo) Update(ctx context.Context, post *model.Post) error {
	stored, ok := f.posts[post.ID]
	if !ok {
		return common.ErrNotFound
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.UpdatedAt = time.Now()
	post.UpdatedAt = stored.UpdatedAt
	return nil
}

func (f *fakePostRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.posts[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

var (
	alice = &model.User{ID: "user-alice", Username: "alice"}
	bob   = &model.User{ID: "user-bob", Username: "bob"}
	admin = &model.User{ID: "user-admin", Username: "root", IsAdmin: true}
)

func TestCanModifyPost(t *testing.T) {
	t.Parallel()

	post := &model.Post{ID: "p1", AuthorID: alice.ID}
	if !CanModifyPost(alice, post) {
		t.Errorf("author denied")
	}
	if !CanModifyPost(admin, post) {
		t.Errorf("admin denied")
	}
	if CanModifyPost(bob, post) {
		t.Errorf("unrelated account permitted")
	}
}

func TestCreatePost(t *testing.T) {
	repo := newFakePostRepo()
	s := NewPostService(repo, nil)

	post, err := s.CreatePost(context.Background(), alice, CreatePostRequest{
		Title:   "Hello World",
		Content: "first post",
	})
	if err != nil {
		t.Fatalf("CreatePost error: %v", err)
	}
	if post.AuthorID != alice.ID || post.AuthorUsername != "alice" {
		t.Fatalf("author not attached: %+v", post)
	}
	if !strings.HasPrefix(post.Slug, "hello-world-") {
		t.Fatalf("unexpected slug: %q", post.Slug)
	}
	if _, ok := repo.posts[post.ID]; !ok {
		t.Fatalf("post not persisted")
	}
}

func TestCreatePost_Validation(t *testing.T) {
	s := NewPostService(newFakePostRepo(), nil)

	cases := []CreatePostRequest{
		{Title: "", Content: "body"},
		{Title: "title", Content: "   "},
	}
	for i, req := range cases {
		if _, err := s.CreatePost(context.Background(), alice, req); !errors.Is(err, common.ErrValidation) {
			t.Errorf("case %d: got %v, want validation error", i, err)
		}
	}
}

func TestListPosts_NewestFirst(t *testing.T) {
	repo := newFakePostRepo()
	s := NewPostService(repo, nil)

	first, _ := s.CreatePost(context.Background(), alice, CreatePostRequest{Title: "older", Content: "a"})
	second, _ := s.CreatePost(context.Background(), alice, CreatePostRequest{Title: "newer", Content: "b"})

	posts, err := s.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts error: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].ID != second.ID || posts[1].ID != first.ID {
		t.Fatalf("wrong order: %q then %q", posts[0].Title, posts[1].Title)
	}
}

func TestGetPostBySlug(t *testing.T) {
	repo := newFakePostRepo()
	s := NewPostService(repo, nil)

	created, _ := s.CreatePost(context.Background(), alice, CreatePostRequest{Title: "Findable", Content: "x"})

	got, err := s.GetPostBySlug(context.Background(), created.Slug)
	if err != nil {
		t.Fatalf("GetPostBySlug error: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("got %q, want %q", got.ID, created.ID)
	}

	if _, err := s.GetPostBySlug(context.Background(), "missing"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestUpdatePost_Authorization(t *testing.T) {
	repo := newFakePostRepo()
	s := NewPostService(repo, nil)
	created, _ := s.CreatePost(context.Background(), alice, CreatePostRequest{Title: "mine", Content: "x"})

	newTitle := "edited"

	if _, err := s.UpdatePost(context.Background(), bob, created.ID, UpdatePostRequest{Title: &newTitle}); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("non-author edit: got %v, want ErrForbidden", err)
	}

	updated, err := s.UpdatePost(context.Background(), alice, created.ID, UpdatePostRequest{Title: &newTitle})
	if err != nil {
		t.Fatalf("author edit error: %v", err)
	}
	if updated.Title != "edited" || updated.Content != "x" {
		t.Fatalf("partial update wrong: %+v", updated)
	}
	if updated.Slug != created.Slug {
		t.Fatalf("slug changed on update: %q -> %q", created.Slug, updated.Slug)
	}

	if _, err := s.UpdatePost(context.Background(), admin, created.ID, UpdatePostRequest{Title: &newTitle}); err != nil {
		t.Fatalf("admin edit error: %v", err)
	}
}

func TestUpdatePost_Validation(t *testing.T) {
	repo := newFakePostRepo()
	s := NewPostService(repo, nil)
	created, _ := s.CreatePost(context.Background(), alice, CreatePostRequest{Title: "mine", Content: "x"})

	empty := "  "
	if _, err := s.UpdatePost(context.Background(), alice, created.ID, UpdatePostRequest{Title: &empty}); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestUpdatePost_NotFound(t *testing.T) {
	s := NewPostService(newFakePostRepo(), nil)

	title := "x"
	if _, err := s.UpdatePost(context.Background(), alice, "missing", UpdatePostRequest{Title: &title}); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDeletePost(t *testing.T) {
	repo := newFakePostRepo()
	s := NewPostService(repo, nil)
	created, _ := s.CreatePost(context.Background(), alice, CreatePostRequest{Title: "mine", Content: "x"})

	if err := s.DeletePost(context.Background(), bob, created.ID); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("non-author delete: got %v, want ErrForbidden", err)
	}
	if err := s.DeletePost(context.Background(), admin, created.ID); err != nil {
		t.Fatalf("admin delete error: %v", err)
	}
	if err := s.DeletePost(context.Background(), alice, created.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}
