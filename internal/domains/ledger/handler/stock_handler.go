package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"inventory-backend/internal/domains/ledger/ingest"
	"inventory-backend/internal/domains/ledger/model"
	"inventory-backend/internal/domains/ledger/service"
	"inventory-backend/internal/shared/response"
)

type StockHandler struct {
	service service.ServiceInterface
}

func NewStockHandler(svc service.ServiceInterface) *StockHandler {
	return &StockHandler{
		service: svc,
	}
}

// Add handles POST /api/v1/stock/add
func (h *StockHandler) Add(c *gin.Context) {
	var req model.AddStockRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "Validation failed", err)
		return
	}

	movement, err := h.service.Add(c.Request.Context(), req.Barcode, req.Quantity)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), "STOCK_ADD_FAILED", err.Error())
		return
	}

	response.Success(c, http.StatusCreated, "Stock added successfully", movement)
}

// Remove handles POST /api/v1/stock/remove
func (h *StockHandler) Remove(c *gin.Context) {
	var req model.RemoveStockRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "Validation failed", err)
		return
	}

	movement, err := h.service.Remove(c.Request.Context(), req.Barcode, req.Quantity)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), "STOCK_REMOVE_FAILED", err.Error())
		return
	}

	response.Success(c, http.StatusCreated, "Stock removed successfully", movement)
}

// History handles GET /api/v1/stock/history?book=<uuid>&start=&end=
func (h *StockHandler) History(c *gin.Context) {
	bookID, err := uuid.Parse(c.Query("book"))
	if err != nil {
		response.BadRequest(c, "Query parameter `book` must be a valid UUID")
		return
	}

	start, err := parseTimeParam(c.Query("start"))
	if err != nil {
		response.BadRequest(c, "Query parameter `start` must be RFC3339 or YYYY-MM-DD")
		return
	}
	end, err := parseTimeParam(c.Query("end"))
	if err != nil {
		response.BadRequest(c, "Query parameter `end` must be RFC3339 or YYYY-MM-DD")
		return
	}

	history, err := h.service.History(c.Request.Context(), bookID, start, end)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), "STOCK_HISTORY_FAILED", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Stock history retrieved successfully", history)
}

// BulkImport handles POST /api/v1/stock/bulk-import (multipart `file`)
func (h *StockHandler) BulkImport(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "Multipart field `file` is required")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Failed to open uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.InternalServerError(c, "Failed to read uploaded file")
		return
	}

	result, err := h.service.BulkImport(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		message := err.Error()
		if errors.Is(err, model.ErrUnsupportedFormat) {
			message = fmt.Sprintf("%s (supported: %s)", message, strings.Join(ingest.SupportedExtensions(), ", "))
		}
		response.ErrorResponse(c, model.ToHTTPStatus(err), "BULK_IMPORT_FAILED", message)
		return
	}

	response.Success(c, http.StatusCreated, "Bulk import applied successfully", result)
}

func parseTimeParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
