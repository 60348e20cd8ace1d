package handler

import (
	"encoding/json"
	"net/http"

	"miniblog/internal/api/middleware"
	"miniblog/internal/app/service"
	"miniblog/internal/common"

	"github.com/go-chi/chi/v5"
)

type PostHandler struct {
	postService  *service.PostService
	authenticate func(http.Handler) http.Handler
	verbose      bool
}

func NewPostHandler(postService *service.PostService, authService *service.AuthService, verbose bool) *PostHandler {
	return &PostHandler{
		postService:  postService,
		authenticate: middleware.Authenticator(authService),
		verbose:      verbose,
	}
}

func (h *PostHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listPosts)                 // GET /api/posts
	r.Get("/{postID}", h.getPost)           // GET /api/posts/{id}
	r.Get("/slug/{postSlug}", h.getBySlug)  // GET /api/posts/slug/{slug}

	r.Group(func(protected chi.Router) {
		protected.Use(h.authenticate)
		protected.Post("/", h.createPost)
		protected.Patch("/{postID}", h.updatePost)
		protected.Delete("/{postID}", h.deletePost)
	})
}

func (h *PostHandler) createPost(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, common.ErrUnauthorized.Error())
		return
	}

	var req service.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	post, err := h.postService.CreatePost(r.Context(), user, req)
	if err != nil {
		common.RespondWithDomainError(w, err, h.verbose)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListPosts(r.Context())
	if err != nil {
		common.RespondWithDomainError(w, err, h.verbose)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		common.RespondWithDomainError(w, err, h.verbose)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post)
}

func (h *PostHandler) getBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.GetPostBySlug(r.Context(), chi.URLParam(r, "postSlug"))
	if err != nil {
		common.RespondWithDomainError(w, err, h.verbose)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post)
}

func (h *PostHandler) updatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, common.ErrUnauthorized.Error())
		return
	}

	var req service.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	post, err := h.postService.UpdatePost(r.Context(), user, chi.URLParam(r, "postID"), req)
	if err != nil {
		common.RespondWithDomainError(w, err, h.verbose)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post)
}

func (h *PostHandler) deletePost(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, common.ErrUnauthorized.Error())
		return
	}

	if err := h.postService.DeletePost(r.Context(), user, chi.URLParam(r, "postID")); err != nil {
		common.RespondWithDomainError(w, err, h.verbose)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}
