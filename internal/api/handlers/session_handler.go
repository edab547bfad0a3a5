package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/models"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/service"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	liveResolver
	tokens service.TokenIssuer
}

// Start opens an anonymous session on the home view and returns its token.
func (h *SessionHandler) Start(c *gin.Context) {
	ls, err := h.sessions.Start(c.Request.Context())
	if err != nil {
		logAPIError(c, "Session.Start", err, nil)
		handleServiceError(c, err)
		return
	}

	token, err := h.tokens.Issue(ls.ID())
	if err != nil {
		logAPIError(c, "Session.Start", err, map[string]interface{}{"sessionID": ls.ID()})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.StartSessionResponse{
		Token:   token,
		Session: toSessionResponse(ls),
	})
}

func (h *SessionHandler) Get(c *gin.Context) {
	ls, ok := h.live(c, "Session.Get")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(ls))
}

func (h *SessionHandler) End(c *gin.Context) {
	ls, ok := h.live(c, "Session.End")
	if !ok {
		return
	}
	if err := h.sessions.End(c.Request.Context(), ls.ID()); err != nil {
		logAPIError(c, "Session.End", err, nil)
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Session ended"})
}

func (h *SessionHandler) GoHome(c *gin.Context) {
	h.navigate(c, "Session.GoHome", (*service.LiveSession).GoHome)
}

func (h *SessionHandler) GoLogin(c *gin.Context) {
	h.navigate(c, "Session.GoLogin", (*service.LiveSession).GoLogin)
}

func (h *SessionHandler) GoSignup(c *gin.Context) {
	h.navigate(c, "Session.GoSignup", (*service.LiveSession).GoSignup)
}

func (h *SessionHandler) navigate(c *gin.Context, action string, move func(*service.LiveSession)) {
	ls, ok := h.live(c, action)
	if !ok {
		return
	}
	move(ls)
	c.JSON(http.StatusOK, toSessionResponse(ls))
}
