package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ismail6385/primeuaeservices-sub000/models"
	"github.com/ismail6385/primeuaeservices-sub000/utils"
)

type BlogController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewBlogController(db *gorm.DB, logger *log.Logger) *BlogController {
	return &BlogController{
		DB:     db,
		Logger: logger,
	}
}

type blogPostInput struct {
	Title          string   `json:"title" validate:"required"`
	Slug           string   `json:"slug" validate:"required"`
	Excerpt        string   `json:"excerpt"`
	Body           string   `json:"body"`
	FeaturedImage  string   `json:"featured_image"`
	Status         string   `json:"status"`
	Category       string   `json:"category"`
	Tags           []string `json:"tags"`
	AuthorName     string   `json:"author_name"`
	SEOTitle       string   `json:"seo_title"`
	SEODescription string   `json:"seo_description"`
}

// GetPosts lists posts for the admin table, any status.
func (bc *BlogController) GetPosts(c *fiber.Ctx) error {
	status := c.Query("status")
	category := c.Query("category")
	search := c.Query("search")

	query := bc.DB.Preload("Tags").Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR excerpt LIKE ?", like, like)
	}

	var posts []models.BlogPost
	if err := query.Find(&posts).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch posts", err)
	}
	return c.JSON(utils.SuccessResponse(posts))
}

func (bc *BlogController) GetPost(c *fiber.Ctx) error {
	var post models.BlogPost
	if err := bc.DB.Preload("Tags").First(&post, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Post not found", nil)
	}
	return c.JSON(utils.SuccessResponse(post))
}

func (bc *BlogController) CreatePost(c *fiber.Ctx) error {
	var input blogPostInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	status := input.Status
	if status == "" {
		status = models.BlogStatusDraft
	}
	if !models.ValidBlogStatus(status) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown post status", nil)
	}

	post := models.BlogPost{
		Title:          input.Title,
		Slug:           input.Slug,
		Excerpt:        input.Excerpt,
		Body:           input.Body,
		FeaturedImage:  input.FeaturedImage,
		Status:         status,
		Category:       input.Category,
		AuthorName:     input.AuthorName,
		SEOTitle:       input.SEOTitle,
		SEODescription: input.SEODescription,
	}
	if status == models.BlogStatusPublished {
		post.PublishedAt = utils.Pointer(time.Now())
	}
	for _, tag := range input.Tags {
		post.Tags = append(post.Tags, models.BlogTag{Tag: tag})
	}

	if err := bc.DB.Create(&post).Error; err != nil {
		if isDuplicateErr(err) {
			return utils.ErrorResponse(c, fiber.StatusConflict, "slug already exists", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create post", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(post))
}

// UpdatePost replaces the editable fields; last write wins. A status change
// to published goes through setStatus so the publish timestamp is stamped
// exactly once.
func (bc *BlogController) UpdatePost(c *fiber.Ctx) error {
	var post models.BlogPost
	if err := bc.DB.Preload("Tags").First(&post, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Post not found", nil)
	}

	var input blogPostInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.Status != "" && !models.ValidBlogStatus(input.Status) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown post status", nil)
	}

	post.Title = input.Title
	post.Slug = input.Slug
	post.Excerpt = input.Excerpt
	post.Body = input.Body
	post.FeaturedImage = input.FeaturedImage
	post.Category = input.Category
	post.AuthorName = input.AuthorName
	post.SEOTitle = input.SEOTitle
	post.SEODescription = input.SEODescription
	if input.Status != "" {
		setStatus(&post, input.Status)
	}

	tx := bc.DB.Begin()
	if err := tx.Where("blog_post_id = ?", post.ID).Delete(&models.BlogTag{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update post", err)
	}
	post.Tags = nil
	for _, tag := range input.Tags {
		post.Tags = append(post.Tags, models.BlogTag{BlogPostID: post.ID, Tag: tag})
	}

	if err := tx.Save(&post).Error; err != nil {
		tx.Rollback()
		if isDuplicateErr(err) {
			return utils.ErrorResponse(c, fiber.StatusConflict, "slug already exists", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update post", err)
	}
	tx.Commit()

	return c.JSON(utils.SuccessResponse(post))
}

// PublishPost transitions a post to published. The publish timestamp is set
// on the first transition only; republishing keeps the original date.
func (bc *BlogController) PublishPost(c *fiber.Ctx) error {
	var post models.BlogPost
	if err := bc.DB.First(&post, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Post not found", nil)
	}

	setStatus(&post, models.BlogStatusPublished)
	if err := bc.DB.Save(&post).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to publish post", err)
	}
	return c.JSON(utils.SuccessResponse(post))
}

func (bc *BlogController) DeletePost(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := bc.DB.Where("blog_post_id = ?", id).Delete(&models.BlogTag{}).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete post", err)
	}
	if err := bc.DB.Delete(&models.BlogPost{}, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete post", err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Post deleted"})
}

// GetPublishedPosts is the public listing.
func (bc *BlogController) GetPublishedPosts(c *fiber.Ctx) error {
	category := c.Query("category")
	tag := c.Query("tag")
	search := c.Query("search")

	query := bc.DB.Preload("Tags").
		Where("status = ?", models.BlogStatusPublished).
		Order("published_at DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR excerpt LIKE ?", like, like)
	}
	if tag != "" {
		query = query.Joins("JOIN blog_tags ON blog_tags.blog_post_id = blog_posts.id").
			Where("blog_tags.tag = ?", tag)
	}

	var posts []models.BlogPost
	if err := query.Find(&posts).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch posts", err)
	}
	return c.JSON(utils.SuccessResponse(posts))
}

// GetPostBySlug renders one published post and bumps its view counter.
// The counter write is best-effort read-then-write; racing reads can
// undercount.
func (bc *BlogController) GetPostBySlug(c *fiber.Ctx) error {
	var post models.BlogPost
	err := bc.DB.Preload("Tags").
		Where("slug = ? AND status = ?", c.Params("slug"), models.BlogStatusPublished).
		First(&post).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Post not found", nil)
	}

	bc.DB.Model(&models.BlogPost{}).
		Where("id = ?", post.ID).
		UpdateColumn("view_count", post.ViewCount+1)
	post.ViewCount++

	return c.JSON(utils.SuccessResponse(post))
}

// setStatus applies a status change, stamping PublishedAt on the first
// publish only. Unpublishing never clears the timestamp so the post keeps
// its record of having been live.
func setStatus(post *models.BlogPost, status string) {
	post.Status = status
	if status == models.BlogStatusPublished && post.PublishedAt == nil {
		post.PublishedAt = utils.Pointer(time.Now())
	}
}

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
