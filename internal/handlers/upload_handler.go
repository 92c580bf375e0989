package handlers

import (
	"io"
	"net/http"
	"strings"

	"assse/internal/db"
	"assse/internal/models"
	"assse/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

type UploadHandler struct {
	log *logger.Logger
}

func NewUploadHandler() *UploadHandler {
	return &UploadHandler{
		log: logger.New("upload_handler"),
	}
}

func (h *UploadHandler) readUpload(c echo.Context) ([]byte, string, string, error) {
	contentType := c.Request().Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return nil, "", "", echo.NewHTTPError(http.StatusBadRequest, "Content-Type must be multipart/form-data")
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.log.Error("Failed to get file from request", err)
		return nil, "", "", echo.NewHTTPError(http.StatusBadRequest, "No file provided")
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to open file")
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, "", "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to read file")
	}

	return content, file.Filename, file.Header.Get("Content-Type"), nil
}

// UploadFrameDocument attaches an uploaded frame file to a frame record
// @Summary Upload a frame document
// @Description Upload the enumeration file for a frame
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Frame ID"
// @Param file formData file true "File to upload"
// @Success 200 {object} map[string]string "File uploaded successfully"
// @Failure 400 {object} map[string]string "Validation error or file not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/files/frames/{id} [post]
func (h *UploadHandler) UploadFrameDocument(c echo.Context) error {
	storage := GetDocumentStorage()
	if storage == nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Document storage not configured",
		})
	}

	gdb := db.GetDB()

	var frame models.Frame
	if err := gdb.Where("id = ?", c.Param("id")).First(&frame).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Frame not found"})
	}

	content, filename, contentType, err := h.readUpload(c)
	if err != nil {
		return err
	}

	key, err := storage.UploadDocument(c.Request().Context(), content, "frames", filename, contentType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to upload document",
		})
	}

	h.log.Success("Frame document uploaded successfully: %s", key)

	if err := gdb.Model(&frame).Update("document_path", key).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to attach document to frame",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "File uploaded successfully",
		"frame":   frame.ID,
		"path":    key,
	})
}

// UploadNoticeDocument attaches a rendered notice document to a notice record
// @Summary Upload a notice document
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Notice ID"
// @Param file formData file true "File to upload"
// @Success 200 {object} map[string]string "File uploaded successfully"
// @Failure 400 {object} map[string]string "Validation error or file not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/files/notices/{id} [post]
func (h *UploadHandler) UploadNoticeDocument(c echo.Context) error {
	storage := GetDocumentStorage()
	if storage == nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Document storage not configured",
		})
	}

	gdb := db.GetDB()

	var notice models.Notice
	if err := gdb.Where("id = ?", c.Param("id")).First(&notice).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Notice not found"})
	}

	content, filename, contentType, err := h.readUpload(c)
	if err != nil {
		return err
	}

	key, err := storage.UploadDocument(c.Request().Context(), content, "notices", filename, contentType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to upload document",
		})
	}

	h.log.Success("Notice document uploaded successfully: %s", key)

	if err := gdb.Model(&notice).Update("document_path", key).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to attach document to notice",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "File uploaded successfully",
		"notice":  notice.ID,
		"path":    key,
	})
}
