package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"example.com/feedapp/internal/httperr"
	"example.com/feedapp/internal/images"
	"example.com/feedapp/internal/middleware"
	"example.com/feedapp/internal/models"
)

// postsPerPage is the fixed feed page size.
const postsPerPage = 2

// maxUploadSize bounds the multipart form held in memory per request.
const maxUploadSize = 10 << 20

// --- Feed pipeline handlers ---

// getPostsHandler handles GET /feed/posts?page=N. Public: no identity
// required to read the feed.
func (s *Server) getPostsHandler(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			page = n
		}
	}

	posts, total, err := s.store.ListPosts(page, postsPerPage)
	if err != nil {
		logg.Error("http/feed", "Failed to list posts", err)
		httperr.Write(w, err)
		return
	}

	creators := make(map[string]*models.Creator)
	for i := range posts {
		posts[i].Creator = s.creatorSummary(posts[i].CreatorID, creators)
	}
	if posts == nil {
		posts = []models.Post{}
	}

	logg.Info("http/feed", "Feed page "+strconv.Itoa(page)+" retrieved")
	respond(w, http.StatusOK, map[string]any{
		"message":    "Fetch posts successfully",
		"posts":      posts,
		"totalItems": total,
	})
}

// createPostHandler handles POST /feed/post. Sequence: validate input,
// persist the post, link it to its creator, then broadcast. The
// broadcast always follows successful persistence.
func (s *Server) createPostHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httperr.Write(w, httperr.Unauthenticated("Not authenticated."))
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		logg.Error("http/feed", "Invalid multipart request body", err)
		httperr.Write(w, httperr.Validation("Validation failed, entered data is incorrect.", nil))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	content := strings.TrimSpace(r.FormValue("content"))
	if fields := validatePostInput(title, content); len(fields) > 0 {
		logg.Info("http/feed", "Post validation failed for user_id="+userID)
		httperr.Write(w, httperr.Validation("Validation failed, entered data is incorrect.", fields))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httperr.Write(w, httperr.Validation("No image provided.", nil))
		return
	}
	defer file.Close()

	imageURL, err := s.images.Save(file, header)
	if err != nil {
		if err == images.ErrUnsupportedType {
			// a non-image upload is treated exactly like a missing one
			httperr.Write(w, httperr.Validation("No image provided.", nil))
			return
		}
		logg.Error("http/feed", "Failed to store image", err)
		httperr.Write(w, err)
		return
	}

	now := time.Now()
	post := models.Post{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		ImageURL:  imageURL,
		CreatorID: userID,
		Created:   now,
		Updated:   now,
	}

	if err := s.store.CreatePost(post); err != nil {
		logg.Error("http/feed", "Failed to save post", err)
		httperr.Write(w, err)
		return
	}

	user, err := s.store.GetUserByID(userID)
	if err != nil {
		logg.Error("http/feed", "Failed to load post creator", err)
		httperr.Write(w, err)
		return
	}
	if user == nil {
		httperr.Write(w, httperr.NotFound("User not found"))
		return
	}

	if err := s.store.AddPostToUser(userID, post.ID); err != nil {
		logg.Error("http/feed", "Failed to link post to user", err)
		httperr.Write(w, err)
		return
	}

	creator := &models.Creator{ID: user.ID, Name: user.Name}
	post.Creator = creator

	s.events.Emit(models.ActionCreate, post)

	logg.Info("http/feed", "Post created successfully by user_id="+userID)
	respond(w, http.StatusCreated, map[string]any{
		"message": "Post created successfully!",
		"post":    post,
		"creator": creator,
	})
}

// getPostHandler handles GET /feed/post/{postID}. Public.
func (s *Server) getPostHandler(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["postID"]

	post, err := s.store.GetPost(postID)
	if err != nil {
		logg.Error("http/feed", "Failed to fetch post", err)
		httperr.Write(w, err)
		return
	}
	if post == nil {
		httperr.Write(w, httperr.NotFound("Post not found!"))
		return
	}

	post.Creator = &models.Creator{ID: post.CreatorID}
	respond(w, http.StatusOK, map[string]any{
		"message": "Post fetched successfully!",
		"post":    post,
	})
}

// updatePostHandler handles PUT /feed/post/{postID}. Failure order is
// fixed: validation (422), then existence (404), then ownership (403) -
// a caller always learns "does not exist" before "not yours". A
// superseded image is removed fire-and-forget after the reference swap
// is decided.
func (s *Server) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httperr.Write(w, httperr.Unauthenticated("Not authenticated."))
		return
	}
	postID := mux.Vars(r)["postID"]

	title, content, imageURL, uploaded, err := s.parsePostUpdate(r)
	if err != nil {
		logg.Error("http/feed", "Failed to parse update request", err)
		httperr.Write(w, err)
		return
	}
	if fields := validatePostInput(title, content); len(fields) > 0 {
		httperr.Write(w, httperr.Validation("Validation failed! Invalid input!", fields))
		return
	}
	if uploaded != "" {
		imageURL = uploaded
	}

	post, err := s.store.GetPost(postID)
	if err != nil {
		logg.Error("http/feed", "Failed to resolve post for update", err)
		httperr.Write(w, err)
		return
	}
	if post == nil {
		httperr.Write(w, httperr.NotFound("Post not found"))
		return
	}

	if !canMutate(post, userID) {
		httperr.Write(w, httperr.Forbidden("Not authorized"))
		return
	}

	if imageURL != "" && imageURL != post.ImageURL {
		s.images.Remove(post.ImageURL)
		post.ImageURL = imageURL
	}
	post.Title = title
	post.Content = content
	post.Updated = time.Now()

	if err := s.store.UpdatePost(*post); err != nil {
		logg.Error("http/feed", "Failed to update post", err)
		httperr.Write(w, err)
		return
	}

	post.Creator = s.creatorSummary(post.CreatorID, nil)

	s.events.Emit(models.ActionUpdate, *post)

	logg.Info("http/feed", "Post updated by user_id="+userID)
	respond(w, http.StatusOK, map[string]any{
		"message": "Post updated successfully!",
		"post":    post,
	})
}

// deletePostHandler handles DELETE /feed/post/{postID}. Deletion is
// owner-only, decided by the same primitive creator-id comparison the
// update path uses.
func (s *Server) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httperr.Write(w, httperr.Unauthenticated("Not authenticated."))
		return
	}
	postID := mux.Vars(r)["postID"]

	post, err := s.store.GetPost(postID)
	if err != nil {
		logg.Error("http/feed", "Failed to resolve post for delete", err)
		httperr.Write(w, err)
		return
	}
	if post == nil {
		httperr.Write(w, httperr.NotFound("Could not find post"))
		return
	}

	if !canMutate(post, userID) {
		httperr.Write(w, httperr.Forbidden("Not authorized"))
		return
	}

	// best-effort cleanup of the side file; never blocks the delete
	s.images.Remove(post.ImageURL)

	if err := s.store.DeletePost(*post); err != nil {
		logg.Error("http/feed", "Failed to delete post", err)
		httperr.Write(w, err)
		return
	}

	if err := s.store.RemovePostFromUser(userID, postID); err != nil {
		logg.Error("http/feed", "Failed to unlink post from user", err)
		httperr.Write(w, err)
		return
	}

	updatedUser, err := s.store.GetUserByID(userID)
	if err != nil {
		logg.Error("http/feed", "Failed to load user after delete", err)
		httperr.Write(w, err)
		return
	}

	s.events.Emit(models.ActionDelete, postID)

	logg.Info("http/feed", "Post deleted by user_id="+userID)
	respond(w, http.StatusOK, map[string]any{
		"message": "Post deleted successfully",
		"post":    updatedUser,
	})
}

// --- Pipeline helpers ---

// canMutate is the ownership decision for update and delete: only the
// post's creator may mutate it. Both paths compare primitive
// identifiers so the two checks can never diverge.
func canMutate(post *models.Post, callerID string) bool {
	return post.CreatorID == callerID
}

func validatePostInput(title, content string) []httperr.FieldError {
	var fields []httperr.FieldError
	if title == "" {
		fields = append(fields, httperr.FieldError{Field: "title", Message: "Title cannot be empty"})
	}
	if content == "" {
		fields = append(fields, httperr.FieldError{Field: "content", Message: "Content cannot be empty"})
	}
	return fields
}

// parsePostUpdate reads an update request in either of its two forms: a
// multipart form carrying a replacement file, or JSON carrying an
// explicit image reference. uploaded is the stored path of a newly
// uploaded file, empty when none arrived (a non-image upload is
// silently ignored, like a filtered-out file).
func (s *Server) parsePostUpdate(r *http.Request) (title, content, imageURL, uploaded string, err error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if perr := r.ParseMultipartForm(maxUploadSize); perr != nil {
			return "", "", "", "", httperr.Validation("Validation failed! Invalid input!", nil)
		}
		title = strings.TrimSpace(r.FormValue("title"))
		content = strings.TrimSpace(r.FormValue("content"))
		imageURL = strings.TrimSpace(r.FormValue("image"))

		file, header, ferr := r.FormFile("image")
		if ferr == nil {
			defer file.Close()
			path, serr := s.images.Save(file, header)
			if serr == nil {
				uploaded = path
			} else if serr != images.ErrUnsupportedType {
				return "", "", "", "", serr
			}
		}
		return title, content, imageURL, uploaded, nil
	}

	type req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Image   string `json:"image"`
	}
	var body req
	if derr := json.NewDecoder(r.Body).Decode(&body); derr != nil {
		return "", "", "", "", httperr.Validation("Validation failed! Invalid input!", nil)
	}
	defer r.Body.Close()
	return strings.TrimSpace(body.Title), strings.TrimSpace(body.Content), strings.TrimSpace(body.Image), "", nil
}

// creatorSummary resolves a creator id to its {_id, name} summary,
// falling back to an id-only summary when the record cannot be read.
// cache may be nil.
func (s *Server) creatorSummary(creatorID string, cache map[string]*models.Creator) *models.Creator {
	if c, ok := cache[creatorID]; ok {
		return c
	}
	summary := &models.Creator{ID: creatorID}
	if user, err := s.store.GetUserByID(creatorID); err == nil && user != nil {
		summary.Name = user.Name
	}
	if cache != nil {
		cache[creatorID] = summary
	}
	return summary
}
