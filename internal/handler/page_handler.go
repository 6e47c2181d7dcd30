package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/slugblog/internal/service"
)

// ShowPage resolves the slug in the path. A stale slug is answered with a
// permanent redirect to the live slug at the end of its chain.
func (a *API) ShowPage(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, http.StatusNotFound, "page not found")
		return
	}

	res, err := a.resolver.Resolve(c.Request.Context(), slug)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	switch res.Kind {
	case service.KindResolved:
		c.JSON(http.StatusOK, gin.H{"slug": res.Slug, "post": res.Post})
	case service.KindRedirect:
		c.Redirect(http.StatusMovedPermanently, a.Route(res.Slug))
	case service.KindNotFound, service.KindDraft, service.KindPostMissing:
		respondError(c, http.StatusNotFound, "page not found")
	default:
		// Broken or cyclic chains are already logged by the resolver.
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": res.Err().Error(),
			"kind":  res.Kind,
		})
	}
}

// ResolveSlug reports the full resolution for a slug without redirecting.
func (a *API) ResolveSlug(c *gin.Context) {
	res, err := a.resolver.Resolve(c.Request.Context(), c.Param("slug"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolution": res})
}

// ShowRecent returns the recent posts projection.
func (a *API) ShowRecent(c *gin.Context) {
	limit := parsePositiveInt(c.Query("limit"), a.feedLimit)
	items, err := a.feed.Recent(c.Request.Context(), limit)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pageRoot": a.pageRoot, "posts": items})
}

// ShowAudit lists slugs whose chains are corrupted or point at deleted posts.
func (a *API) ShowAudit(c *gin.Context) {
	problems, err := a.resolver.Audit(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	if problems == nil {
		problems = []service.Resolution{}
	}
	c.JSON(http.StatusOK, gin.H{"problems": problems})
}
