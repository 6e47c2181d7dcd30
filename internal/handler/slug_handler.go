package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slugblog/internal/db"
)

type bindPayload struct {
	Slug   string `json:"slug"`
	PostID string `json:"postId"`
}

type renamePayload struct {
	NewSlug string `json:"newSlug"`
	PostID  string `json:"postId"`
}

// BindSlug creates a new live slug for a post.
func (a *API) BindSlug(c *gin.Context) {
	var payload bindPayload
	if !bindJSON(c, &payload, "invalid slug payload") {
		return
	}
	id, err := db.ParsePostID(payload.PostID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid postId")
		return
	}

	record, err := a.slugs.Bind(c.Request.Context(), payload.Slug, id)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"slug": record})
}

// RenameSlug turns the slug in the path into a forward pointer to newSlug.
func (a *API) RenameSlug(c *gin.Context) {
	var payload renamePayload
	if !bindJSON(c, &payload, "invalid rename payload") {
		return
	}
	id, err := db.ParsePostID(payload.PostID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid postId")
		return
	}

	record, err := a.slugs.Rename(c.Request.Context(), c.Param("slug"), payload.NewSlug, id)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slug": record})
}

// LookupSlug returns a single slug record without following it.
func (a *API) LookupSlug(c *gin.Context) {
	record, err := a.slugs.Lookup(c.Request.Context(), c.Param("slug"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slug": record})
}
