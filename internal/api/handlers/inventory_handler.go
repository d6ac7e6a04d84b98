package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// multipart framing allowance on top of the file size limit
const multipartOverhead = 1 << 20

type InventoryHandler struct {
	service *service.InventoryService
}

func NewInventoryHandler(service *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// Upload ingests the CSV sent in the "file" form field.
func (h *InventoryHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.MaxUploadBytes()+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Upload failed", "details": domain.ErrFileTooLarge.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided", "details": err.Error()})
		return
	}

	if err := h.service.ValidateUpload(fileHeader.Filename, fileHeader.Size); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Upload failed", "details": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Upload failed", "details": err.Error()})
		return
	}
	defer file.Close()

	result, err := h.service.Upload(c.Request.Context(), domain.UploadedFile{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
	}, file)
	if err != nil {
		status := http.StatusInternalServerError
		if isValidationError(err) {
			status = http.StatusBadRequest
		} else {
			log.Ctx(c.Request.Context()).Error().Err(err).Str("filename", fileHeader.Filename).Msg("failed to ingest upload")
		}
		c.JSON(status, gin.H{"error": "Upload failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "CSV uploaded and saved successfully",
		"runId":       result.RunID,
		"processed":   result.Processed,
		"skipped":     result.Skipped,
		"skipReasons": result.SkipReasons,
		"truncated":   result.Truncated,
	})
}

// GetAll returns every stored record.
func (h *InventoryHandler) GetAll(c *gin.Context) {
	records, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inventory", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetRuns returns recent ingest runs. ?limit= defaults to 20.
func (h *InventoryHandler) GetRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	runs, err := h.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load ingest runs", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, runs)
}

func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrInvalidFileType) ||
		errors.Is(err, domain.ErrFileTooLarge) ||
		errors.Is(err, domain.ErrEmptyFile)
}
