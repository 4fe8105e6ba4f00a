package handler

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/yudopr11/yupi/internal/blog"
	"github.com/yudopr11/yupi/internal/llm"
	"github.com/yudopr11/yupi/internal/middleware"
	"github.com/yudopr11/yupi/internal/models"
	"github.com/yudopr11/yupi/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostHandler serves blog post CRUD, listing and semantic search. The LLM
// client may be nil when no API key is configured; content generation and
// embeddings are then skipped.
type PostHandler struct {
	DB  *gorm.DB
	LLM *llm.Client
}

func NewPostHandler(db *gorm.DB, llmClient *llm.Client) *PostHandler {
	return &PostHandler{DB: db, LLM: llmClient}
}

type postReq struct {
	Title     string   `json:"title" binding:"required,max=256"`
	Excerpt   string   `json:"excerpt"`
	Content   string   `json:"content" binding:"required"`
	Tags      []string `json:"tags"`
	Published bool     `json:"published"`
}

func postResp(p *models.Post) gin.H {
	resp := gin.H{
		"id":           p.ID,
		"uuid":         p.UUID,
		"title":        p.Title,
		"excerpt":      p.Excerpt,
		"content":      p.Content,
		"slug":         p.Slug,
		"tags":         blog.DecodeTags(p.Tags),
		"reading_time": p.ReadingTime,
		"published":    p.Published,
		"author_id":    p.AuthorID,
		"created_at":   p.CreatedAt,
		"updated_at":   p.UpdatedAt,
	}
	if p.Author.ID != 0 {
		resp["author"] = gin.H{
			"id":       p.Author.ID,
			"username": p.Author.Username,
			"email":    p.Author.Email,
		}
	}
	return resp
}

// existingTags collects the distinct tags already used across all posts so
// the generator can reuse them.
func (h *PostHandler) existingTags() []string {
	var encoded []string
	if err := h.DB.Model(&models.Post{}).Where("tags != ''").Pluck("tags", &encoded).Error; err != nil {
		return nil
	}

	seen := map[string]bool{}
	var tags []string
	for _, e := range encoded {
		for _, tag := range blog.DecodeTags(e) {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// enrichPost fills missing excerpt/tags via the LLM and refreshes the
// embedding. Generation failures degrade silently; the post still saves.
func (h *PostHandler) enrichPost(c *gin.Context, post *models.Post, req *postReq) {
	needExcerpt := req.Excerpt == ""
	needTags := len(req.Tags) == 0

	if h.LLM != nil && (needExcerpt || needTags) {
		generated := h.LLM.GeneratePostContent(c.Request.Context(), llm.ContentRequest{
			Title:        req.Title,
			Content:      req.Content,
			ExistingTags: h.existingTags(),
			NeedExcerpt:  needExcerpt,
			NeedTags:     needTags,
		})
		if needExcerpt {
			post.Excerpt = generated.Excerpt
		}
		if needTags {
			req.Tags = generated.Tags
		}
	}

	if encoded, err := blog.EncodeTags(req.Tags); err == nil {
		post.Tags = encoded
	}

	if h.LLM != nil {
		vector, err := h.LLM.Embed(c.Request.Context(), blog.EmbeddingText(post.Title, post.Excerpt))
		if err == nil {
			if encoded, encErr := blog.EncodeVector(vector); encErr == nil {
				post.Embedding = encoded
			}
		}
	}
}

// CreatePost creates a blog post. Slug and reading time derive from the
// title and content; excerpt and tags are generated when absent.
func (h *PostHandler) CreatePost(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	post := models.Post{
		UUID:        uuid.NewString(),
		Title:       req.Title,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		Slug:        blog.GenerateSlug(req.Title),
		Published:   req.Published,
		ReadingTime: blog.CalculateReadingTime(req.Content),
		AuthorID:    user.ID,
	}
	h.enrichPost(c, &post, &req)

	if err := h.DB.Create(&post).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create post")
		return
	}
	post.Author = *user

	util.Created(c, util.Response{
		"post":    postResp(&post),
		"message": "Post created successfully",
	})
}

// ListPosts returns published posts with optional keyword search over title,
// excerpt and content.
func (h *PostHandler) ListPosts(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if skip < 0 {
		skip = 0
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "3"))
	if limit <= 0 || limit > 100 {
		limit = 3
	}

	query := h.DB.Model(&models.Post{}).Preload("Author").Where("published = ?", true)
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR excerpt LIKE ? OR content LIKE ?", like, like, like)
	}

	var posts []models.Post
	if err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&posts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list posts")
		return
	}

	items := make([]gin.H, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		items = append(items, gin.H{
			"id":           p.ID,
			"uuid":         p.UUID,
			"title":        p.Title,
			"excerpt":      p.Excerpt,
			"slug":         p.Slug,
			"tags":         blog.DecodeTags(p.Tags),
			"reading_time": p.ReadingTime,
			"created_at":   p.CreatedAt,
			"author": gin.H{
				"id":       p.Author.ID,
				"username": p.Author.Username,
			},
		})
	}

	util.Success(c, util.Response{"posts": items})
}

// GetPostBySlug returns one post, published or not, by its slug.
func (h *PostHandler) GetPostBySlug(c *gin.Context) {
	slug := c.Param("slug")

	var post models.Post
	if err := h.DB.Preload("Author").Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Post not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load post")
		}
		return
	}

	util.Success(c, util.Response{"post": postResp(&post)})
}

// UpdatePost replaces a post. Only the author or a superuser may update.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid post id")
		return
	}

	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	var post models.Post
	if err := h.DB.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Post not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load post")
		}
		return
	}

	if post.AuthorID != user.ID && !user.IsSuperuser {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "Not enough permissions")
		return
	}

	post.Title = req.Title
	post.Excerpt = req.Excerpt
	post.Content = req.Content
	post.Published = req.Published
	post.Slug = blog.GenerateSlug(req.Title)
	post.ReadingTime = blog.CalculateReadingTime(req.Content)
	h.enrichPost(c, &post, &req)

	if err := h.DB.Save(&post).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update post")
		return
	}

	util.Success(c, util.Response{
		"post":    postResp(&post),
		"message": "Post updated successfully",
	})
}

// DeletePost removes a post. Superuser only.
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid post id")
		return
	}

	var post models.Post
	if err := h.DB.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Post not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load post")
		}
		return
	}

	deleted := gin.H{"id": post.ID, "uuid": post.UUID, "title": post.Title}
	if err := h.DB.Delete(&post).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete post")
		return
	}

	util.Success(c, util.Response{
		"message":      "Post has been deleted successfully",
		"deleted_item": deleted,
	})
}

// SearchPosts ranks published posts against the query by cosine similarity
// of their embeddings. Similarity is computed in Go over the stored vectors.
func (h *PostHandler) SearchPosts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		util.Success(c, util.Response{"posts": []gin.H{}})
		return
	}
	if h.LLM == nil {
		util.Error(c, http.StatusServiceUnavailable, util.CodeServerErr, "Semantic search is not configured")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	threshold, err := strconv.ParseFloat(c.DefaultQuery("threshold", "0"), 64)
	if err != nil || threshold < 0 {
		threshold = 0
	}

	queryVector, err := h.LLM.Embed(c.Request.Context(), query)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to embed query")
		return
	}

	var posts []models.Post
	if err := h.DB.Preload("Author").
		Where("published = ? AND embedding != ''", true).
		Find(&posts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to search posts")
		return
	}

	type scoredPost struct {
		post       *models.Post
		similarity float64
	}
	scored := make([]scoredPost, 0, len(posts))
	for i := range posts {
		vector, err := blog.DecodeVector(posts[i].Embedding)
		if err != nil {
			continue
		}
		similarity := blog.CosineSimilarity(queryVector, vector)
		if similarity >= threshold {
			scored = append(scored, scoredPost{post: &posts[i], similarity: similarity})
		}
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].similarity > scored[j].similarity })
	if len(scored) > limit {
		scored = scored[:limit]
	}

	items := make([]gin.H, 0, len(scored))
	for _, s := range scored {
		item := postResp(s.post)
		item["similarity"] = s.similarity
		items = append(items, item)
	}

	util.Success(c, util.Response{"posts": items})
}
