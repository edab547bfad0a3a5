package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/models"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/repository"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/service"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
	"github.com/gin-gonic/gin"
)

// Task deadlines travel as calendar dates.
const dateLayout = "2006-01-02"

const defaultActivityLimit = 50

type DashboardHandler struct {
	liveResolver
}

func (h *DashboardHandler) Get(c *gin.Context) {
	d, ok := h.dashboard(c, "Dashboard.Get")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toDashboardResponse(d))
}

// ============================================
// TASK VIEWS
// ============================================

// ListTasks returns every task, or one projection when ?status= or ?exclude=
// is set.
func (h *DashboardHandler) ListTasks(c *gin.Context) {
	d, ok := h.dashboard(c, "Dashboard.ListTasks")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var (
		tasks []*repository.Task
		err   error
	)
	status, exclude := c.Query("status"), c.Query("exclude")
	switch {
	case status != "" && exclude != "":
		err = fmt.Errorf("%w: status and exclude are mutually exclusive", service.ErrInvalidInput)
	case status != "":
		var s types.TaskStatus
		if s, err = parseTaskStatus(status); err == nil {
			tasks, err = d.TasksByStatus(ctx, s)
		}
	case exclude != "":
		var s types.TaskStatus
		if s, err = parseTaskStatus(exclude); err == nil {
			tasks, err = d.TasksExcluding(ctx, s)
		}
	default:
		tasks, err = d.Tasks(ctx)
	}
	if err != nil {
		logAPIError(c, "Dashboard.ListTasks", err, map[string]interface{}{
			"status":  status,
			"exclude": exclude,
		})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponseList(tasks))
}

func (h *DashboardHandler) TotalTasks(c *gin.Context) {
	h.listSection(c, "Dashboard.TotalTasks", (*service.Dashboard).TotalTasks)
}

func (h *DashboardHandler) AvailableTasks(c *gin.Context) {
	h.listSection(c, "Dashboard.AvailableTasks", (*service.Dashboard).AvailableTasks)
}

func (h *DashboardHandler) CurrentTasks(c *gin.Context) {
	h.listSection(c, "Dashboard.CurrentTasks", (*service.Dashboard).CurrentTasks)
}

func (h *DashboardHandler) listSection(c *gin.Context, action string, list func(*service.Dashboard, context.Context) ([]*repository.Task, error)) {
	d, ok := h.dashboard(c, action)
	if !ok {
		return
	}
	tasks, err := list(d, c.Request.Context())
	if err != nil {
		logAPIError(c, action, err, nil)
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponseList(tasks))
}

func (h *DashboardHandler) GetTask(c *gin.Context) {
	d, ok := h.dashboard(c, "Dashboard.GetTask")
	if !ok {
		return
	}

	taskID := c.Param("id")
	task, err := d.Task(c.Request.Context(), taskID)
	if err != nil {
		logAPIError(c, "Dashboard.GetTask", err, map[string]interface{}{"taskID": taskID})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *DashboardHandler) RejectionReasons(c *gin.Context) {
	d, ok := h.dashboard(c, "Dashboard.RejectionReasons")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"reasons": d.RejectionReasons()})
}

func (h *DashboardHandler) Activity(c *gin.Context) {
	d, ok := h.dashboard(c, "Dashboard.Activity")
	if !ok {
		return
	}

	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, fmt.Errorf("%w: limit %q", service.ErrInvalidInput, raw))
			return
		}
		limit = n
	}

	entries, err := d.Activity(c.Request.Context(), limit)
	if err != nil {
		logAPIError(c, "Dashboard.Activity", err, map[string]interface{}{"limit": limit})
		handleServiceError(c, err)
		return
	}

	response := make([]models.ActivityResponse, len(entries))
	for i, a := range entries {
		response[i] = toActivityResponse(a)
	}
	c.JSON(http.StatusOK, response)
}

// ============================================
// TASK TRANSITIONS
// ============================================

func (h *DashboardHandler) CreateTask(c *gin.Context) {
	d, ok := h.dashboard(c, "Dashboard.CreateTask")
	if !ok {
		return
	}

	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	in := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
	}
	// A blank deadline is left zero so the store reports it as missing.
	if deadline := strings.TrimSpace(req.Deadline); deadline != "" {
		parsed, err := time.Parse(dateLayout, deadline)
		if err != nil {
			badRequest(c, fmt.Errorf("%w: deadline must be YYYY-MM-DD", service.ErrInvalidInput))
			return
		}
		in.Deadline = parsed
	}

	task, err := d.CreateTask(c.Request.Context(), in)
	if err != nil {
		logAPIError(c, "Dashboard.CreateTask", err, map[string]interface{}{
			"title":      req.Title,
			"assignedTo": req.AssignedTo,
		})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

func (h *DashboardHandler) AcceptTask(c *gin.Context) {
	h.transition(c, "Dashboard.AcceptTask", func(d *service.Dashboard, id string) (*repository.Task, error) {
		return d.AcceptTask(c.Request.Context(), id)
	})
}

func (h *DashboardHandler) CompleteTask(c *gin.Context) {
	h.transition(c, "Dashboard.CompleteTask", func(d *service.Dashboard, id string) (*repository.Task, error) {
		return d.CompleteTask(c.Request.Context(), id)
	})
}

func (h *DashboardHandler) RejectTask(c *gin.Context) {
	var req models.RejectTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.transition(c, "Dashboard.RejectTask", func(d *service.Dashboard, id string) (*repository.Task, error) {
		return d.RejectTask(c.Request.Context(), id, req.Reason)
	})
}

func (h *DashboardHandler) ReassignTask(c *gin.Context) {
	var req models.ReassignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.transition(c, "Dashboard.ReassignTask", func(d *service.Dashboard, id string) (*repository.Task, error) {
		return d.ReassignTask(c.Request.Context(), id, req.AssignedTo)
	})
}

func (h *DashboardHandler) transition(c *gin.Context, action string, apply func(d *service.Dashboard, id string) (*repository.Task, error)) {
	d, ok := h.dashboard(c, action)
	if !ok {
		return
	}

	taskID := c.Param("id")
	task, err := apply(d, taskID)
	if err != nil {
		logAPIError(c, action, err, map[string]interface{}{"taskID": taskID})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// ============================================
// MEMBER REQUESTS
// ============================================

func (h *DashboardHandler) ListMemberRequests(c *gin.Context) {
	d, ok := h.dashboard(c, "Dashboard.ListMemberRequests")
	if !ok {
		return
	}

	var status *types.RequestStatus
	if raw := c.Query("status"); raw != "" {
		s := types.RequestStatus(raw)
		if !types.IsValidRequestStatus(s) {
			badRequest(c, fmt.Errorf("%w: status %q", service.ErrInvalidInput, raw))
			return
		}
		status = &s
	}

	requests, err := d.MemberRequests(c.Request.Context(), status)
	if err != nil {
		logAPIError(c, "Dashboard.ListMemberRequests", err, map[string]interface{}{"status": c.Query("status")})
		handleServiceError(c, err)
		return
	}

	response := make([]models.MemberRequestResponse, len(requests))
	for i, r := range requests {
		response[i] = toMemberRequestResponse(r)
	}
	c.JSON(http.StatusOK, response)
}

func (h *DashboardHandler) ApproveRequest(c *gin.Context) {
	h.decide(c, "Dashboard.ApproveRequest", (*service.Dashboard).ApproveRequest)
}

func (h *DashboardHandler) RejectRequest(c *gin.Context) {
	h.decide(c, "Dashboard.RejectRequest", (*service.Dashboard).RejectRequest)
}

func (h *DashboardHandler) decide(c *gin.Context, action string, apply func(*service.Dashboard, context.Context, string) (*repository.MemberRequest, error)) {
	d, ok := h.dashboard(c, action)
	if !ok {
		return
	}

	requestID := c.Param("id")
	req, err := apply(d, c.Request.Context(), requestID)
	if err != nil {
		logAPIError(c, action, err, map[string]interface{}{"requestID": requestID})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMemberRequestResponse(req))
}

func parseTaskStatus(raw string) (types.TaskStatus, error) {
	s := types.TaskStatus(raw)
	if !types.IsValidTaskStatus(s) {
		return "", fmt.Errorf("%w: status %q", service.ErrInvalidInput, raw)
	}
	return s, nil
}
