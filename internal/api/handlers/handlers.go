package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/api/middleware"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/models"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/repository"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/service"
	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Session   *SessionHandler
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Profile   *ProfileHandler

	tokens service.TokenIssuer
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	live := liveResolver{sessions: services.Sessions}
	return &Handlers{
		Session:   &SessionHandler{liveResolver: live, tokens: services.Tokens},
		Auth:      &AuthHandler{liveResolver: live, gate: services.Auth},
		Dashboard: &DashboardHandler{liveResolver: live},
		Profile:   &ProfileHandler{liveResolver: live},
		tokens:    services.Tokens,
	}
}

// RegisterRoutes mounts the session and dashboard API on api.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup) {
	// Public: the token comes from here
	api.POST("/sessions", h.Session.Start)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(h.tokens))
	{
		protected.GET("/session", h.Session.Get)
		protected.DELETE("/session", h.Session.End)

		view := protected.Group("/view")
		{
			view.POST("/home", h.Session.GoHome)
			view.POST("/login", h.Session.GoLogin)
			view.POST("/signup", h.Session.GoSignup)
		}

		auth := protected.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/logout", h.Auth.Logout)
		}

		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("", h.Dashboard.Get)
			dashboard.GET("/activity", h.Dashboard.Activity)
			dashboard.GET("/rejection-reasons", h.Dashboard.RejectionReasons)

			// Tasks
			dashboard.GET("/tasks", h.Dashboard.ListTasks)
			dashboard.POST("/tasks", h.Dashboard.CreateTask)
			dashboard.GET("/tasks/total", h.Dashboard.TotalTasks)
			dashboard.GET("/tasks/available", h.Dashboard.AvailableTasks)
			dashboard.GET("/tasks/current", h.Dashboard.CurrentTasks)
			dashboard.GET("/tasks/:id", h.Dashboard.GetTask)
			dashboard.POST("/tasks/:id/accept", h.Dashboard.AcceptTask)
			dashboard.POST("/tasks/:id/reject", h.Dashboard.RejectTask)
			dashboard.POST("/tasks/:id/complete", h.Dashboard.CompleteTask)
			dashboard.POST("/tasks/:id/reassign", h.Dashboard.ReassignTask)

			// Member requests
			dashboard.GET("/member-requests", h.Dashboard.ListMemberRequests)
			dashboard.POST("/member-requests/:id/approve", h.Dashboard.ApproveRequest)
			dashboard.POST("/member-requests/:id/reject", h.Dashboard.RejectRequest)

			// Profile
			dashboard.GET("/profile", h.Profile.Get)
			dashboard.PATCH("/profile", h.Profile.Update)
			dashboard.POST("/profile/edit", h.Profile.Edit)
			dashboard.POST("/profile/save", h.Profile.Save)
			dashboard.POST("/profile/cancel", h.Profile.Cancel)
			dashboard.POST("/profile/toggle", h.Profile.Toggle)
			dashboard.PUT("/profile/picture", h.Profile.UploadPicture)
			dashboard.POST("/profile/password", h.Profile.ChangePassword)

			// Settings
			dashboard.GET("/settings", h.Profile.GetSettings)
			dashboard.PATCH("/settings", h.Profile.UpdateSettings)
		}
	}
}

// ============================================
// Session lookup
// ============================================

type liveResolver struct {
	sessions *service.SessionService
}

// live resolves the session bound to the request token. It writes the error
// response itself.
func (r liveResolver) live(c *gin.Context, action string) (*service.LiveSession, bool) {
	sessionID, ok := middleware.RequireSessionID(c)
	if !ok {
		return nil, false
	}
	ls, err := r.sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		logAPIError(c, action, err, nil)
		handleServiceError(c, err)
		return nil, false
	}
	return ls, true
}

// dashboard resolves the dashboard mounted on the request's session.
func (r liveResolver) dashboard(c *gin.Context, action string) (*service.Dashboard, bool) {
	ls, ok := r.live(c, action)
	if !ok {
		return nil, false
	}
	d, err := ls.Dashboard()
	if err != nil {
		logAPIError(c, action, err, map[string]interface{}{"view": ls.View()})
		handleServiceError(c, err)
		return nil, false
	}
	return d, true
}

// ============================================
// Errors
// ============================================

func logAPIError(c *gin.Context, action string, err error, fields map[string]interface{}) {
	log.Printf(
		"[API_ERROR] action=%s method=%s path=%s sessionID=%v fields=%v err=%v",
		action,
		c.Request.Method,
		c.FullPath(),
		middleware.GetSessionID(c),
		fields,
		err,
	)
}

func handleServiceError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, ""
	switch {
	case errors.Is(err, service.ErrMissingField):
		status, code = http.StatusBadRequest, "missing_field"
	case errors.Is(err, service.ErrEmptyReason):
		status, code = http.StatusBadRequest, "empty_reason"
	case errors.Is(err, service.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, service.ErrInvalidToken):
		status, code = http.StatusUnauthorized, "invalid_token"
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrTaskNotFound):
		status, code = http.StatusNotFound, "task_not_found"
	case errors.Is(err, service.ErrRequestNotFound):
		status, code = http.StatusNotFound, "request_not_found"
	case errors.Is(err, service.ErrSessionNotFound):
		status, code = http.StatusNotFound, "session_not_found"
	case errors.Is(err, service.ErrInvalidTransition):
		status, code = http.StatusConflict, "invalid_transition"
	case errors.Is(err, service.ErrNotEditing):
		status, code = http.StatusConflict, "not_editing"
	case errors.Is(err, service.ErrNoDashboard):
		status, code = http.StatusConflict, "no_dashboard"
	}

	if status == http.StatusInternalServerError {
		c.JSON(status, models.ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(status, models.ErrorResponse{Error: err.Error(), Code: code})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error(), Code: "invalid_input"})
}

// ============================================
// Response Mappers
// ============================================

func toSessionResponse(ls *service.LiveSession) models.SessionResponse {
	s := ls.Session()
	return models.SessionResponse{
		ID:   ls.ID(),
		View: string(ls.View()),
		Session: models.SessionInfo{
			Authenticated: s.Authenticated,
			Role:          string(s.Role),
			Email:         s.Email,
		},
	}
}

func toDashboardResponse(d *service.Dashboard) models.DashboardResponse {
	caps := d.Capabilities()
	return models.DashboardResponse{
		Kind: string(d.Kind()),
		Capabilities: models.CapabilitiesResponse{
			CanCreateTask:     caps.CanCreateTask,
			CanApproveMembers: caps.CanApproveMembers,
			CanReassign:       caps.CanReassign,
		},
		Sections: d.Sections(),
	}
}

func toTaskResponse(t *repository.Task) models.TaskResponse {
	if t == nil {
		return models.TaskResponse{}
	}
	return models.TaskResponse{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		AssignedTo:      t.AssignedTo,
		Deadline:        t.Deadline.Format(dateLayout),
		Status:          string(t.Status),
		RejectionReason: t.RejectionReason,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func toTaskResponseList(tasks []*repository.Task) []models.TaskResponse {
	response := make([]models.TaskResponse, len(tasks))
	for i, t := range tasks {
		response[i] = toTaskResponse(t)
	}
	return response
}

func toMemberRequestResponse(r *repository.MemberRequest) models.MemberRequestResponse {
	return models.MemberRequestResponse{
		ID:          r.ID,
		FullName:    r.FullName,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
		Role:        string(r.Role),
		SubmittedAt: r.SubmittedAt,
		Status:      string(r.Status),
		DecidedAt:   r.DecidedAt,
	}
}

func toActivityResponse(a *repository.Activity) models.ActivityResponse {
	resp := models.ActivityResponse{
		ID:         a.ID,
		TaskID:     a.TaskID,
		Action:     a.Action,
		ToStatus:   string(a.ToStatus),
		Detail:     a.Detail,
		ActorEmail: a.ActorEmail,
		CreatedAt:  a.CreatedAt,
	}
	if a.FromStatus != nil {
		from := string(*a.FromStatus)
		resp.FromStatus = &from
	}
	return resp
}

// The password hash never leaves the service.
func toProfileResponse(p *repository.Profile, editing bool) models.ProfileResponse {
	return models.ProfileResponse{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Branch:         p.Branch,
		Section:        p.Section,
		Department:     p.Department,
		ProfilePicture: p.ProfilePicture,
		Editing:        editing,
	}
}

func toSettingsResponse(s repository.Settings) models.SettingsResponse {
	return models.SettingsResponse{
		TaskReminders:      s.TaskReminders,
		EmailNotifications: s.EmailNotifications,
	}
}
