package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-blog-server/blog"
)

func (s *Server) CreatePostHandler() http.HandlerFunc {
	type request struct {
		Title   string   `json:"title"`
		Slug    string   `json:"slug"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Title == "" || req.Content == "" {
			writeError(w, http.StatusBadRequest, "title and content are required")
			return
		}

		post, err := s.blog.Create(r.Context(), blog.CreateParams{
			Title:   req.Title,
			Slug:    req.Slug,
			Content: req.Content,
			Tags:    req.Tags,
		}, authenticatedUserID(r.Context()))
		switch {
		case errors.Is(err, blog.DuplicateSlugErr):
			writeError(w, http.StatusBadRequest, err.Error())
		case err != nil:
			s.log.Error().Err(err).Msg("create post failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
		default:
			writeJSON(w, http.StatusCreated, post)
		}
	}
}

func (s *Server) ListPostsHandler() http.HandlerFunc {
	type response struct {
		Posts      []*blog.Post `json:"posts"`
		NextCursor string       `json:"nextCursor,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		posts, nextCursor, err := s.blog.List(r.Context(), r.URL.Query().Get("cursor"), limit)
		if err != nil {
			s.log.Error().Err(err).Msg("list posts failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if posts == nil {
			posts = []*blog.Post{}
		}
		writeJSON(w, http.StatusOK, response{Posts: posts, NextCursor: nextCursor})
	}
}

func (s *Server) GetPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := s.blog.GetBySlug(r.Context(), r.PathValue("slug"))
		switch {
		case errors.Is(err, blog.PostNotFoundErr):
			writeError(w, http.StatusNotFound, err.Error())
		case err != nil:
			s.log.Error().Err(err).Msg("get post failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
		default:
			writeJSON(w, http.StatusOK, post)
		}
	}
}

func (s *Server) UpdatePostHandler() http.HandlerFunc {
	type request struct {
		Title   *string  `json:"title"`
		Content *string  `json:"content"`
		Tags    []string `json:"tags"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		post, err := s.blog.Update(r.Context(), r.PathValue("id"), blog.UpdateParams{
			Title:   req.Title,
			Content: req.Content,
			Tags:    req.Tags,
		}, authenticatedUserID(r.Context()))
		switch {
		case errors.Is(err, blog.PostNotFoundErr):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, blog.NotPostAuthorErr):
			writeError(w, http.StatusForbidden, err.Error())
		case err != nil:
			s.log.Error().Err(err).Msg("update post failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
		default:
			writeJSON(w, http.StatusOK, post)
		}
	}
}

func (s *Server) DeletePostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.blog.Delete(r.Context(), r.PathValue("id"), authenticatedUserID(r.Context()))
		switch {
		case errors.Is(err, blog.PostNotFoundErr):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, blog.NotPostAuthorErr):
			writeError(w, http.StatusForbidden, err.Error())
		case err != nil:
			s.log.Error().Err(err).Msg("delete post failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
		default:
			writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
		}
	}
}

func (s *Server) SearchPostsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			writeError(w, http.StatusBadRequest, "query parameter q is required")
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		docs, err := s.blog.Search(r.Context(), query, limit)
		if err != nil {
			s.log.Error().Err(err).Msg("search failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": docs})
	}
}
