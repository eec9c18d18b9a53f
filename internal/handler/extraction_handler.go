package handler

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"invex/internal/export"
	"invex/internal/service"
)

// ExtractionHandler handles invoice extraction endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// Extract handles POST /api/v1/extractions. It accepts a multipart "file"
// field and returns the extraction result, or, with ?format=csv|xlsx, streams
// the result as a spreadsheet.
func (h *ExtractionHandler) Extract(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}

	ext, err := h.extractionService.Extract(c.Request.Context(), data)
	if err != nil {
		log.Printf("extractionHandler: extraction of %q failed: %v", header.Filename, err)
		status, code, msg := MapDomainError(err)
		RespondError(c, status, code, msg)
		return
	}

	switch c.Query("format") {
	case "csv":
		var buf bytes.Buffer
		buf.Write(export.BOM)
		w := export.NewCSVWriter(&buf)
		if err := w.WriteExtraction(ext); err == nil {
			w.Flush()
			err = w.Error()
		}
		if err != nil {
			RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "could not render CSV export")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "extraction.csv"))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())

	case "xlsx":
		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, ext); err != nil {
			RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "could not render XLSX export")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "extraction.xlsx"))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())

	default:
		RespondCreated(c, ext)
	}
}
