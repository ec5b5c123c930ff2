package summaries

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"summary-backend/internal/shared/server/middleware"
	"summary-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches summary routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/summarize", h.summarize)
}

type summarizeRequest struct {
	FileContent  string `json:"fileContent"`
	FileName     string `json:"fileName"`
	Language     string `json:"language"`
	CustomPrompt string `json:"customPrompt"`
	FileID       string `json:"fileId"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

func (h *Handler) summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid JSON", err)
		return
	}
	if req.FileContent == "" {
		respond.Error(c, http.StatusBadRequest, "Missing file content", nil)
		return
	}

	fileID := strings.TrimSpace(req.FileID)
	if fileID != "" {
		c.Set(middleware.DocumentIDKey, fileID)
	}

	result, err := h.Svc.Summarize(c.Request.Context(), Request{
		Content:      req.FileContent,
		FileName:     req.FileName,
		Language:     req.Language,
		CustomPrompt: req.CustomPrompt,
		FileID:       fileID,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "Missing file content", err)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	respond.OK(c, summarizeResponse{Summary: result.Summary})
}
