package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shorturl-api/internal/clock"
	"shorturl-api/internal/middleware"
	"shorturl-api/internal/models"
	"shorturl-api/internal/service"
)

type LinkController struct {
	linkService service.LinkService
	clock       clock.Clock
}

func NewLinkController(linkService service.LinkService, clk clock.Clock) *LinkController {
	return &LinkController{
		linkService: linkService,
		clock:       clk,
	}
}

// CreateLink handles POST /api/v1/links. Authentication is optional.
func (lc *LinkController) CreateLink(c *gin.Context) {
	var req models.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := req.Validate(lc.clock.Now()); err != nil {
		respondBindError(c, err)
		return
	}

	var ownerID *string
	if identity, ok := middleware.CurrentIdentity(c); ok {
		ownerID = &identity.UserID
	}

	link, err := lc.linkService.CreateLink(c.Request.Context(), req.OriginalURL, req.ExpiresAt, ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewLinkResponse(link))
}

// RedirectToURL handles GET /:code
func (lc *LinkController) RedirectToURL(c *gin.Context) {
	originalURL, err := lc.linkService.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, originalURL)
}

// ResolveURL handles GET /api/v1/redirect/:code and answers with JSON
// instead of a redirect. The access is counted.
func (lc *LinkController) ResolveURL(c *gin.Context) {
	originalURL, err := lc.linkService.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RedirectResponse{OriginalURL: originalURL})
}

// ListLinks handles GET /api/v1/links
func (lc *LinkController) ListLinks(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	links, err := lc.linkService.ListLinks(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewLinkResponses(links))
}

// GetLink handles GET /api/v1/links/:id
func (lc *LinkController) GetLink(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var params models.IDParam
	if err := c.ShouldBindUri(&params); err != nil {
		respondInvalidID(c, err)
		return
	}

	link, err := lc.linkService.GetLink(c.Request.Context(), identity, params.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewLinkResponse(link))
}

// UpdateLink handles PUT /api/v1/links/:id
func (lc *LinkController) UpdateLink(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var params models.IDParam
	if err := c.ShouldBindUri(&params); err != nil {
		respondInvalidID(c, err)
		return
	}

	var req models.UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := req.Validate(lc.clock.Now()); err != nil {
		respondBindError(c, err)
		return
	}

	link, err := lc.linkService.UpdateLink(c.Request.Context(), identity, params.ID, service.LinkPatch{
		OriginalURL: req.OriginalURL,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewLinkResponse(link))
}

// DeleteLink handles DELETE /api/v1/links/:id
func (lc *LinkController) DeleteLink(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var params models.IDParam
	if err := c.ShouldBindUri(&params); err != nil {
		respondInvalidID(c, err)
		return
	}

	if err := lc.linkService.SoftDeleteLink(c.Request.Context(), identity, params.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "URL deleted",
	})
}
