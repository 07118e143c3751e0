package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"shorturl-api/internal/service"
)

type QRCodeController struct {
	linkService service.LinkService
	size        int
}

func NewQRCodeController(linkService service.LinkService, size int) *QRCodeController {
	if size <= 0 {
		size = 256
	}
	return &QRCodeController{
		linkService: linkService,
		size:        size,
	}
}

// GenerateQRCode handles GET /api/v1/qrcode/:code. The link must be active;
// the lookup does not count as an access.
func (qc *QRCodeController) GenerateQRCode(c *gin.Context) {
	link, err := qc.linkService.Lookup(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	qrCode, err := qrcode.New(link.ShortURL, qrcode.Medium)
	if err != nil {
		respondError(c, err)
		return
	}

	pngData, err := qrCode.PNG(qc.size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=qrcode.png")
	c.Data(http.StatusOK, "image/png", pngData)
}
