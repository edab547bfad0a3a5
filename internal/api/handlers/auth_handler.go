package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/models"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/service"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	liveResolver
	gate *service.AuthGate
}

// Login submits the login form. On success the session moves to the welcome
// view and on to the dashboard once the welcome delay has passed.
func (h *AuthHandler) Login(c *gin.Context) {
	ls, ok := h.live(c, "Auth.Login")
	if !ok {
		return
	}

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	err := h.gate.SubmitLogin(c.Request.Context(), ls, service.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		Role:     types.Role(req.Role),
	})
	if err != nil {
		logAPIError(c, "Auth.Login", err, map[string]interface{}{
			"email": req.Email,
			"role":  req.Role,
		})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(ls))
}

func (h *AuthHandler) Signup(c *gin.Context) {
	ls, ok := h.live(c, "Auth.Signup")
	if !ok {
		return
	}

	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	err := h.gate.SubmitSignup(c.Request.Context(), ls, service.SignupRequest{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Position:    types.Role(req.Position),
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		logAPIError(c, "Auth.Signup", err, map[string]interface{}{
			"email":    req.Email,
			"position": req.Position,
		})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(ls))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ls, ok := h.live(c, "Auth.Logout")
	if !ok {
		return
	}
	ls.Logout()
	c.JSON(http.StatusOK, toSessionResponse(ls))
}
