package controller

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ismail6385/primeuaeservices-sub000/models"
)

func newBlogApp(db *gorm.DB) *fiber.App {
	bc := NewBlogController(db, testLogger())

	app := fiber.New()
	app.Get("/blog", bc.GetPublishedPosts)
	app.Get("/blog/:slug", bc.GetPostBySlug)
	app.Get("/admin/blog", bc.GetPosts)
	app.Post("/admin/blog", bc.CreatePost)
	app.Get("/admin/blog/:id", bc.GetPost)
	app.Put("/admin/blog/:id", bc.UpdatePost)
	app.Post("/admin/blog/:id/publish", bc.PublishPost)
	app.Delete("/admin/blog/:id", bc.DeletePost)
	return app
}

func TestCreatePostDefaultsToDraft(t *testing.T) {
	db := setupTestDB(t)
	app := newBlogApp(db)

	resp := doJSON(t, app, http.MethodPost, "/admin/blog", fiber.Map{
		"title": "Golden Visa Guide",
		"slug":  "golden-visa-guide",
		"tags":  []string{"visa", "golden-visa"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post models.BlogPost
	require.NoError(t, db.Preload("Tags").First(&post).Error)
	assert.Equal(t, models.BlogStatusDraft, post.Status)
	assert.Nil(t, post.PublishedAt)
	assert.Len(t, post.Tags, 2)
}

func TestCreatePostDuplicateSlug(t *testing.T) {
	db := setupTestDB(t)
	app := newBlogApp(db)

	body := fiber.Map{"title": "Guide", "slug": "guide"}
	resp := doJSON(t, app, http.MethodPost, "/admin/blog", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/admin/blog", body)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	out := decodeBody(t, resp)
	assert.Equal(t, "slug already exists", out["error"])
}

func TestPublishTimestampSetOnce(t *testing.T) {
	db := setupTestDB(t)
	app := newBlogApp(db)

	post := models.BlogPost{Title: "Guide", Slug: "guide", Status: models.BlogStatusDraft}
	require.NoError(t, db.Create(&post).Error)

	path := fmt.Sprintf("/admin/blog/%d/publish", post.ID)
	resp := doJSON(t, app, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var first models.BlogPost
	require.NoError(t, db.First(&first, post.ID).Error)
	require.NotNil(t, first.PublishedAt)
	firstPublished := *first.PublishedAt

	time.Sleep(10 * time.Millisecond)

	// Unpublish then publish again; the original date must survive
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/admin/blog/%d", post.ID), fiber.Map{
		"title": "Guide", "slug": "guide", "status": models.BlogStatusDraft,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var second models.BlogPost
	require.NoError(t, db.First(&second, post.ID).Error)
	require.NotNil(t, second.PublishedAt)
	assert.True(t, second.PublishedAt.Equal(firstPublished),
		"republish must keep the original publish date")
}

func TestPublicListingExcludesDrafts(t *testing.T) {
	db := setupTestDB(t)
	app := newBlogApp(db)

	now := time.Now()
	require.NoError(t, db.Create(&models.BlogPost{
		Title: "Live", Slug: "live", Status: models.BlogStatusPublished, PublishedAt: &now,
	}).Error)
	require.NoError(t, db.Create(&models.BlogPost{
		Title: "Hidden", Slug: "hidden", Status: models.BlogStatusDraft,
	}).Error)

	resp := doJSON(t, app, http.MethodGet, "/blog", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	data := out["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "live", data[0].(map[string]interface{})["slug"])
}

func TestGetPostBySlugIncrementsViewCount(t *testing.T) {
	db := setupTestDB(t)
	app := newBlogApp(db)

	now := time.Now()
	post := models.BlogPost{Title: "Live", Slug: "live", Status: models.BlogStatusPublished, PublishedAt: &now}
	require.NoError(t, db.Create(&post).Error)

	for i := 0; i < 2; i++ {
		resp := doJSON(t, app, http.MethodGet, "/blog/live", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var updated models.BlogPost
	require.NoError(t, db.First(&updated, post.ID).Error)
	assert.EqualValues(t, 2, updated.ViewCount)
}

func TestGetPostBySlugHidesDrafts(t *testing.T) {
	db := setupTestDB(t)
	app := newBlogApp(db)

	require.NoError(t, db.Create(&models.BlogPost{
		Title: "Hidden", Slug: "hidden", Status: models.BlogStatusDraft,
	}).Error)

	resp := doJSON(t, app, http.MethodGet, "/blog/hidden", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdatePostReplacesTags(t *testing.T) {
	db := setupTestDB(t)
	app := newBlogApp(db)

	post := models.BlogPost{
		Title: "Guide", Slug: "guide", Status: models.BlogStatusDraft,
		Tags: []models.BlogTag{{Tag: "old"}},
	}
	require.NoError(t, db.Create(&post).Error)

	resp := doJSON(t, app, http.MethodPut, fmt.Sprintf("/admin/blog/%d", post.ID), fiber.Map{
		"title": "Guide", "slug": "guide",
		"tags": []string{"visa", "pro-services"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.BlogPost
	require.NoError(t, db.Preload("Tags").First(&updated, post.ID).Error)
	assert.ElementsMatch(t, []string{"visa", "pro-services"}, updated.TagNames())
}

func TestDeletePostRemovesTags(t *testing.T) {
	db := setupTestDB(t)
	app := newBlogApp(db)

	post := models.BlogPost{
		Title: "Guide", Slug: "guide", Status: models.BlogStatusDraft,
		Tags: []models.BlogTag{{Tag: "visa"}},
	}
	require.NoError(t, db.Create(&post).Error)

	resp := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/admin/blog/%d", post.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tagCount int64
	db.Model(&models.BlogTag{}).Count(&tagCount)
	assert.Zero(t, tagCount)
}
