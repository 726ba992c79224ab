package handlers

import (
	"io"
	"net/http"

	"leadcrm/internal/api/middleware"
	"leadcrm/internal/models"
	"leadcrm/internal/services"
	"leadcrm/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const maxUploadSize = 25 << 20 // 25 MB

type UploadHandler struct {
	db  *gorm.DB
	s3  *services.S3Service
	log *logger.Logger
}

func NewUploadHandler(db *gorm.DB, s3 *services.S3Service) *UploadHandler {
	return &UploadHandler{db: db, s3: s3, log: logger.New("UploadHandler")}
}

// Upload stores a multipart file in S3 and records an attachment row.
// The file may be linked to a lead or a quotation via form fields.
func (h *UploadHandler) Upload(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "No autenticado"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing file"})
	}
	if fileHeader.Size > maxUploadSize {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "File too large"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unreadable file"})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to read file"})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	path, err := h.s3.Upload(c.Request().Context(), fileHeader.Filename, contentType, data)
	if err != nil {
		h.log.Error("upload failed", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store file"})
	}

	attachment := models.Attachment{
		LeadID:      c.FormValue("leadId"),
		QuotationID: c.FormValue("quotationId"),
		UploadedBy:  userID,
		Path:        path,
		Name:        fileHeader.Filename,
		Size:        fileHeader.Size,
		Type:        contentType,
	}
	if err := h.db.Create(&attachment).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to record attachment"})
	}

	models.LogActivity(h.db, userID, models.ActivityRecordCreated, "attachments", attachment.ID, map[string]string{
		"name": attachment.Name,
		"type": attachment.Type,
	})

	return c.JSON(http.StatusCreated, attachment)
}

// Delete removes an attachment from storage and marks the row deleted.
func (h *UploadHandler) Delete(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "No autenticado"})
	}

	attachment := &models.Attachment{}
	if err := h.db.Where("id = ? AND is_deleted = false", c.Param("id")).First(attachment).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Attachment not found"})
	}

	if err := h.s3.Delete(c.Request().Context(), attachment.Path); err != nil {
		h.log.Warn("failed to delete %s from storage: %v", attachment.Path, err)
	}

	if err := h.db.Model(attachment).Updates(map[string]interface{}{
		"is_deleted": true,
		"deleted_at": gorm.Expr("NOW()"),
	}).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete attachment"})
	}

	models.LogActivity(h.db, userID, models.ActivityRecordDeleted, "attachments", attachment.ID, nil)

	return c.NoContent(http.StatusNoContent)
}
