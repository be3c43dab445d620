package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
	"github.com/noah-isme/exam-seating-api/pkg/response"
)

type facultyAuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	ReplaceDirectory(ctx context.Context, req dto.ReplaceDirectoryRequest, actorID string) (*dto.DirectoryResponse, error)
}

// AuthHandler wires HTTP endpoints to the faculty auth service.
type AuthHandler struct {
	service facultyAuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc facultyAuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Faculty sign in
// @Description Authenticate with a faculty id and the shared secure key
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// ReplaceDirectory godoc
// @Summary Replace faculty directory
// @Description Store a new secure key and list of faculty allowed to sign in
// @Tags Faculty
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceDirectoryRequest true "Directory"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /faculty/directory [put]
func (h *AuthHandler) ReplaceDirectory(c *gin.Context) {
	var req dto.ReplaceDirectoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid directory payload"))
		return
	}
	actorID, _ := actorFromContext(c)
	res, err := h.service.ReplaceDirectory(c.Request.Context(), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
