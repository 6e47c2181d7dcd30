package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slugblog/internal/db"
	"github.com/slugblog/internal/service"
)

type publishPayload struct {
	Title    string  `json:"title"`
	Subtitle *string `json:"subtitle"`
	Content  string  `json:"content"`
	Draft    bool    `json:"draft"`
}

type postPatchPayload struct {
	Title     *string    `json:"title"`
	Subtitle  *string    `json:"subtitle"`
	Content   *string    `json:"content"`
	Published *time.Time `json:"published"`
}

type draftPayload struct {
	Draft *bool `json:"draft"`
}

// PublishPost 创建文章并分配 slug
func (a *API) PublishPost(c *gin.Context) {
	var payload publishPayload
	if !bindJSON(c, &payload, "invalid post payload") {
		return
	}

	result, err := a.publisher.Publish(c.Request.Context(), service.PublishInput{
		Title:    payload.Title,
		Subtitle: payload.Subtitle,
		Content:  payload.Content,
		Draft:    payload.Draft,
	})
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": result.Post.ID, "slug": result.Slug})
}

// RevisePost 更新文章内容，必要时重命名 slug
func (a *API) RevisePost(c *gin.Context) {
	id, err := parsePostIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload publishPayload
	if !bindJSON(c, &payload, "invalid post payload") {
		return
	}

	result, err := a.publisher.Revise(c.Request.Context(), id, service.RevisionInput{
		Title:    payload.Title,
		Subtitle: payload.Subtitle,
		Content:  payload.Content,
	})
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": result.Post.ID, "slug": result.Slug})
}

// GetPost 获取单篇文章，草稿同样可见
func (a *API) GetPost(c *gin.Context) {
	id, err := parsePostIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := a.posts.Get(c.Request.Context(), id)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	slugs, err := a.slugs.ForPost(c.Request.Context(), id)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post, "slugs": slugs})
}

// PatchPost applies a partial update. Content changes are archived.
func (a *API) PatchPost(c *gin.Context) {
	id, err := parsePostIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload postPatchPayload
	if !bindJSON(c, &payload, "invalid post payload") {
		return
	}

	post, err := a.posts.Update(c.Request.Context(), id, func(p *db.Post) error {
		if payload.Title != nil {
			p.Title = *payload.Title
		}
		if payload.Subtitle != nil {
			p.Subtitle = payload.Subtitle
			if strings.TrimSpace(*payload.Subtitle) == "" {
				p.Subtitle = nil
			}
		}
		if payload.Content != nil {
			p.Content = *payload.Content
		}
		if payload.Published != nil {
			p.Published = *payload.Published
		}
		return nil
	})
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// SetPostDraft toggles public visibility.
func (a *API) SetPostDraft(c *gin.Context) {
	id, err := parsePostIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload draftPayload
	if !bindJSON(c, &payload, "invalid draft payload") {
		return
	}
	if payload.Draft == nil {
		respondError(c, http.StatusBadRequest, "draft is required")
		return
	}

	if err := a.posts.SetDraft(c.Request.Context(), id, *payload.Draft); err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "draft": *payload.Draft})
}

// DeletePost 删除文章，历史版本与 slug 保留
func (a *API) DeletePost(c *gin.Context) {
	id, err := parsePostIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.posts.Delete(c.Request.Context(), id); err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// GetPostHistory lists archived versions, oldest first.
func (a *API) GetPostHistory(c *gin.Context) {
	id, err := parsePostIDParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := a.archive.History(c.Request.Context(), id)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	versions := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		item := gin.H{
			"seq":         entry.Seq,
			"archivedAt":  entry.ArchivedAt,
			"contentHash": entry.ContentHash,
		}
		if snapshot, err := entry.Snapshot(); err == nil {
			item["snapshot"] = snapshot
		} else {
			item["data"] = entry.Data
		}
		versions = append(versions, item)
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "history": versions})
}
