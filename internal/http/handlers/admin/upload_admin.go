package admin

import (
	handlershared "github.com/dujiao-next/announcements/internal/http/handlers/shared"
	"github.com/dujiao-next/announcements/internal/http/response"
	"github.com/dujiao-next/announcements/internal/service"

	"github.com/gin-gonic/gin"
)

var uploadErrorRules = []handlershared.MappedError{
	{Target: service.ErrUploadTooLarge, Code: response.CodeBadRequest, Key: "error.upload_too_large"},
	{Target: service.ErrUploadTypeInvalid, Code: response.CodeBadRequest, Key: "error.upload_type_invalid"},
	{Target: service.ErrUploadImageInvalid, Code: response.CodeBadRequest, Key: "error.upload_image_invalid"},
}

// UploadImage multipart 字段 file，scene 取 cover/og/editor
func (h *Handler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.upload_image_invalid", nil)
		return
	}
	url, err := h.UploadService.SaveImage(file, c.DefaultPostForm("scene", "cover"))
	if err != nil {
		respondMapped(c, err, uploadErrorRules, response.CodeInternal, "error.upload_failed")
		return
	}
	response.Success(c, gin.H{"url": url, "filename": file.Filename, "size": file.Size})
}
