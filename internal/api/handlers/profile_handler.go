package handlers

import (
	"fmt"
	"net/http"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/models"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/service"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	liveResolver
}

func (h *ProfileHandler) Get(c *gin.Context) {
	d, ok := h.dashboard(c, "Profile.Get")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(d.Profile(), d.IsEditing()))
}

// Update applies the given fields while in edit mode. Fields are applied in
// form order and the first invalid one stops the batch.
func (h *ProfileHandler) Update(c *gin.Context) {
	d, ok := h.dashboard(c, "Profile.Update")
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var updates []service.FieldUpdate
	add := func(name string, value *string) {
		if value != nil {
			updates = append(updates, service.FieldUpdate{Name: name, Value: *value})
		}
	}
	add(service.FieldFirstName, req.FirstName)
	add(service.FieldLastName, req.LastName)
	add(service.FieldBranch, req.Branch)
	add(service.FieldSection, req.Section)
	add(service.FieldDepartment, req.Department)

	if err := d.UpdateFields(updates); err != nil {
		logAPIError(c, "Profile.Update", err, map[string]interface{}{"fields": len(updates)})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(d.Profile(), d.IsEditing()))
}

func (h *ProfileHandler) Edit(c *gin.Context) {
	d, ok := h.dashboard(c, "Profile.Edit")
	if !ok {
		return
	}
	d.EnterEditMode()
	c.JSON(http.StatusOK, toProfileResponse(d.Profile(), d.IsEditing()))
}

func (h *ProfileHandler) Toggle(c *gin.Context) {
	d, ok := h.dashboard(c, "Profile.Toggle")
	if !ok {
		return
	}
	editing := d.ToggleEditMode()
	c.JSON(http.StatusOK, toProfileResponse(d.Profile(), editing))
}

func (h *ProfileHandler) Save(c *gin.Context) {
	h.finishEdit(c, "Profile.Save", (*service.Dashboard).SaveEdit)
}

func (h *ProfileHandler) Cancel(c *gin.Context) {
	h.finishEdit(c, "Profile.Cancel", (*service.Dashboard).CancelEdit)
}

func (h *ProfileHandler) finishEdit(c *gin.Context, action string, finish func(*service.Dashboard) error) {
	d, ok := h.dashboard(c, action)
	if !ok {
		return
	}
	if err := finish(d); err != nil {
		logAPIError(c, action, err, nil)
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(d.Profile(), d.IsEditing()))
}

// UploadPicture takes a multipart "picture" file and stores it as the profile
// image.
func (h *ProfileHandler) UploadPicture(c *gin.Context) {
	d, ok := h.dashboard(c, "Profile.UploadPicture")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("picture")
	if err != nil {
		badRequest(c, fmt.Errorf("%w: picture file is required", service.ErrMissingField))
		return
	}
	if fileHeader.Size > service.MaxProfilePictureBytes {
		badRequest(c, fmt.Errorf("%w: profile picture larger than %d bytes", service.ErrInvalidInput, service.MaxProfilePictureBytes))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logAPIError(c, "Profile.UploadPicture", err, map[string]interface{}{"filename": fileHeader.Filename})
		handleServiceError(c, err)
		return
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	if err := d.LoadProfilePicture(file, mimeType); err != nil {
		logAPIError(c, "Profile.UploadPicture", err, map[string]interface{}{
			"filename": fileHeader.Filename,
			"mimeType": mimeType,
		})
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(d.Profile(), d.IsEditing()))
}

func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	d, ok := h.dashboard(c, "Profile.ChangePassword")
	if !ok {
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := d.ChangePassword(req.CurrentPassword, req.NewPassword); err != nil {
		logAPIError(c, "Profile.ChangePassword", err, nil)
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Password changed"})
}

func (h *ProfileHandler) GetSettings(c *gin.Context) {
	d, ok := h.dashboard(c, "Profile.GetSettings")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toSettingsResponse(d.Settings()))
}

func (h *ProfileHandler) UpdateSettings(c *gin.Context) {
	d, ok := h.dashboard(c, "Profile.UpdateSettings")
	if !ok {
		return
	}

	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	settings := d.UpdateSettings(service.SettingsPatch{
		TaskReminders:      req.TaskReminders,
		EmailNotifications: req.EmailNotifications,
	})
	c.JSON(http.StatusOK, toSettingsResponse(settings))
}
