package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cms_backend/internal/logging"
	authmw "github.com/Skotchmaster/cms_backend/internal/middleware/auth"
	"github.com/Skotchmaster/cms_backend/internal/models"
	"github.com/Skotchmaster/cms_backend/internal/mykafka"
	"github.com/Skotchmaster/cms_backend/internal/repository"
	"github.com/Skotchmaster/cms_backend/internal/response"
	"github.com/Skotchmaster/cms_backend/internal/service/search"
	"github.com/Skotchmaster/cms_backend/internal/storage"
	"github.com/Skotchmaster/cms_backend/internal/util"
)

type ContentHandler struct {
	DB       *gorm.DB
	Store    *storage.Store
	Indexer  *search.Indexer
	Producer *mykafka.Producer
}

func (h *ContentHandler) GetContent(c echo.Context) error {
	user := authmw.CurrentUser(c)

	articles, err := repository.GetArticlesByAuthor(h.DB, user.ID)
	if err != nil {
		return response.InternalServerError(c)
	}

	return response.OK(c, "Articles retrieved successfully", articles)
}

func (h *ContentHandler) GetContentByID(c echo.Context) error {
	article, err := repository.GetArticleByID(h.DB, c.Param("id"))
	if err != nil {
		return response.InternalServerError(c)
	}
	if article == nil || article.DeletedAt != nil {
		return response.NotFound(c, "Article not found")
	}

	return response.OK(c, "Article retrieved successfully", article)
}

func (h *ContentHandler) CreateContent(c echo.Context) error {
	user := authmw.CurrentUser(c)

	title := c.FormValue("title")
	content := c.FormValue("content")
	if title == "" || len(title) > 255 {
		return response.BadRequest(c, "Title must be between 1 and 255 characters")
	}
	if content == "" {
		return response.BadRequest(c, "Content must not be empty")
	}

	filePath, thumbnail, err := h.saveThumbnail(c)
	if err != nil {
		return h.thumbnailError(c, err)
	}

	article := models.Article{
		Title:    title,
		Slug:     slug.Make(title),
		Content:  content,
		AuthorID: user.ID,
	}
	if thumbnail != nil {
		article.ThumbnailFileID = &thumbnail.ID
	}

	if err := repository.CreateArticle(h.DB, &article); err != nil {
		h.discardUpload(c, filePath, thumbnail)
		return response.InternalServerError(c)
	}

	h.index(c, &article)
	h.publish(c, map[string]any{
		"type":       "article_created",
		"article_id": article.ID,
		"user_id":    user.ID,
	})

	return response.OK(c, "Article created successfully", echo.Map{"id": article.ID})
}

func (h *ContentHandler) UpdateContent(c echo.Context) error {
	user := authmw.CurrentUser(c)

	article, err := repository.GetArticleByID(h.DB, c.Param("id"))
	if err != nil {
		return response.InternalServerError(c)
	}
	if article == nil {
		return response.NotFound(c, "Article not found")
	}
	if article.DeletedAt != nil {
		return response.BadRequest(c, "Article is already deleted")
	}
	if article.AuthorID != user.ID {
		return response.BadRequest(c, "You are not allowed to update this content")
	}

	var oldThumbnail *models.File
	filePath, thumbnail, err := h.saveThumbnail(c)
	if err != nil {
		return h.thumbnailError(c, err)
	}
	if thumbnail != nil {
		oldThumbnail = article.ThumbnailFile
		article.ThumbnailFileID = &thumbnail.ID
		article.ThumbnailFile = thumbnail
	}

	if title := c.FormValue("title"); title != "" {
		if len(title) > 255 {
			h.discardUpload(c, filePath, thumbnail)
			return response.BadRequest(c, "Title must be between 1 and 255 characters")
		}
		article.Title = title
		article.Slug = slug.Make(title)
	}
	if content := c.FormValue("content"); content != "" {
		article.Content = content
	}

	if err := repository.UpdateArticle(h.DB, article); err != nil {
		h.discardUpload(c, filePath, thumbnail)
		return response.InternalServerError(c)
	}

	if oldThumbnail != nil {
		if err := h.Store.Remove(oldThumbnail.FilePath); err != nil {
			logging.FromContext(c.Request().Context()).Error("remove old thumbnail", "error", err)
		}
		if err := repository.DeleteFile(h.DB, oldThumbnail); err != nil {
			logging.FromContext(c.Request().Context()).Error("delete old thumbnail record", "error", err)
		}
	}

	h.index(c, article)
	h.publish(c, map[string]any{
		"type":       "article_updated",
		"article_id": article.ID,
		"user_id":    user.ID,
	})

	return response.OK(c, "Article updated successfully", nil)
}

func (h *ContentHandler) DeleteContent(c echo.Context) error {
	user := authmw.CurrentUser(c)

	article, err := repository.GetArticleByID(h.DB, c.Param("id"))
	if err != nil {
		return response.InternalServerError(c)
	}
	if article == nil {
		return response.NotFound(c, "Article not found")
	}
	if article.AuthorID != user.ID {
		return response.BadRequest(c, "You are not allowed to delete this content")
	}

	if err := repository.SoftDeleteArticle(h.DB, article); err != nil {
		return response.InternalServerError(c)
	}

	h.deindex(c, article.ID)
	h.publish(c, map[string]any{
		"type":       "article_deleted",
		"article_id": article.ID,
		"user_id":    user.ID,
	})

	return response.OK(c, "Article deleted successfully", nil)
}

func (h *ContentHandler) DeleteContentPermanently(c echo.Context) error {
	user := authmw.CurrentUser(c)

	article, err := repository.GetArticleByID(h.DB, c.Param("id"))
	if err != nil {
		return response.InternalServerError(c)
	}
	if article == nil {
		return response.NotFound(c, "Article not found")
	}
	if article.AuthorID != user.ID {
		return response.BadRequest(c, "You are not allowed to delete this content")
	}

	if err := repository.DeleteArticle(h.DB, article); err != nil {
		return response.InternalServerError(c)
	}
	if article.ThumbnailFile != nil {
		if err := h.Store.Remove(article.ThumbnailFile.FilePath); err != nil {
			logging.FromContext(c.Request().Context()).Error("remove thumbnail", "error", err)
		}
		if err := repository.DeleteFile(h.DB, article.ThumbnailFile); err != nil {
			logging.FromContext(c.Request().Context()).Error("delete thumbnail record", "error", err)
		}
	}

	h.deindex(c, article.ID)
	h.publish(c, map[string]any{
		"type":       "article_deleted",
		"article_id": article.ID,
		"user_id":    user.ID,
	})

	return response.OK(c, "Article deleted successfully", nil)
}

func (h *ContentHandler) RestoreContent(c echo.Context) error {
	user := authmw.CurrentUser(c)

	article, err := repository.GetArticleByID(h.DB, c.Param("id"))
	if err != nil {
		return response.InternalServerError(c)
	}
	if article == nil {
		return response.NotFound(c, "Article not found")
	}
	if article.AuthorID != user.ID {
		return response.BadRequest(c, "You are not allowed to restore this content")
	}

	if err := repository.RestoreArticle(h.DB, article); err != nil {
		return response.InternalServerError(c)
	}

	h.index(c, article)
	h.publish(c, map[string]any{
		"type":       "article_restored",
		"article_id": article.ID,
		"user_id":    user.ID,
	})

	return response.OK(c, "Article restored successfully", nil)
}

func (h *ContentHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return response.BadRequest(c, "Query parameter q is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	total, docs, err := h.Indexer.Search(c.Request().Context(), q, from, size)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("article search", "error", err)
		return response.InternalServerError(c)
	}

	return response.OK(c, "Articles retrieved successfully", echo.Map{
		"total":    total,
		"articles": docs,
	})
}

// saveThumbnail stores an optional multipart thumbnail and records it as a
// File row. A request without a thumbnail part is not an error.
func (h *ContentHandler) saveThumbnail(c echo.Context) (string, *models.File, error) {
	fh, err := c.FormFile("thumbnail")
	if err != nil {
		return "", nil, nil
	}

	filePath, err := h.Store.Save(fh)
	if err != nil {
		return "", nil, err
	}

	file := models.File{FilePath: filePath}
	if err := repository.CreateFile(h.DB, &file); err != nil {
		if rmErr := h.Store.Remove(filePath); rmErr != nil {
			logging.FromContext(c.Request().Context()).Error("remove upload", "error", rmErr)
		}
		return "", nil, err
	}

	return filePath, &file, nil
}

// thumbnailError renders a failed thumbnail save: validation failures are the
// client's fault, anything else is ours.
func (h *ContentHandler) thumbnailError(c echo.Context, err error) error {
	if errors.Is(err, storage.ErrFileType) || errors.Is(err, storage.ErrFileTooLarge) {
		return response.BadRequest(c, err.Error())
	}
	logging.FromContext(c.Request().Context()).Error("save upload", "error", err)
	return response.InternalServerError(c)
}

// discardUpload rolls back a stored thumbnail after a failed write.
func (h *ContentHandler) discardUpload(c echo.Context, filePath string, file *models.File) {
	if filePath != "" {
		if err := h.Store.Remove(filePath); err != nil {
			logging.FromContext(c.Request().Context()).Error("remove upload", "error", err)
		}
	}
	if file != nil {
		if err := repository.DeleteFile(h.DB, file); err != nil {
			logging.FromContext(c.Request().Context()).Error("delete upload record", "error", err)
		}
	}
}

func (h *ContentHandler) index(c echo.Context, article *models.Article) {
	if err := h.Indexer.IndexArticle(c.Request().Context(), article); err != nil {
		logging.FromContext(c.Request().Context()).Error("index article", "error", err)
	}
}

func (h *ContentHandler) deindex(c echo.Context, id string) {
	if err := h.Indexer.DeleteArticle(c.Request().Context(), id); err != nil {
		logging.FromContext(c.Request().Context()).Error("deindex article", "error", err)
	}
}

func (h *ContentHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "content_events", fmt.Sprint(event["user_id"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish", "error", err)
	}
}
