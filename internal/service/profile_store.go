package service

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/repository"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
	"golang.org/x/crypto/bcrypt"
)

// Editable profile fields
const (
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldBranch     = "branch"
	FieldSection    = "section"
	FieldDepartment = "department"
)

// MaxProfilePictureBytes caps uploads before they are inlined as a data URI.
const MaxProfilePictureBytes = 2 << 20

type SettingsPatch struct {
	TaskReminders      *bool
	EmailNotifications *bool
}

// ProfileStore holds one editable profile. Edits happen in edit mode; the
// profile as it was on entering edit mode is kept so CancelEdit can restore it.
// Callers serialize access.
type ProfileStore struct {
	profile  repository.Profile
	snapshot *repository.Profile
}

func NewProfileStore(initial repository.Profile) *ProfileStore {
	return &ProfileStore{profile: *initial.Clone()}
}

func (s *ProfileStore) Profile() *repository.Profile {
	return s.profile.Clone()
}

func (s *ProfileStore) IsEditing() bool {
	return s.snapshot != nil
}

// EnterEditMode is a no-op when already editing; the first snapshot wins.
func (s *ProfileStore) EnterEditMode() {
	if s.snapshot == nil {
		s.snapshot = s.profile.Clone()
	}
}

func (s *ProfileStore) UpdateField(name, value string) error {
	if !s.IsEditing() {
		return ErrNotEditing
	}
	value = strings.TrimSpace(value)
	switch name {
	case FieldFirstName:
		s.profile.FirstName = value
	case FieldLastName:
		s.profile.LastName = value
	case FieldBranch:
		s.profile.Branch = value
	case FieldSection:
		s.profile.Section = value
	case FieldDepartment:
		if !isDepartment(value) {
			return fmt.Errorf("%w: department %q", ErrInvalidInput, value)
		}
		s.profile.Department = value
	default:
		return fmt.Errorf("%w: field %q", ErrInvalidInput, name)
	}
	return nil
}

// SaveEdit keeps the edits and leaves edit mode.
func (s *ProfileStore) SaveEdit() error {
	if !s.IsEditing() {
		return ErrNotEditing
	}
	s.snapshot = nil
	return nil
}

// CancelEdit discards everything changed since EnterEditMode.
func (s *ProfileStore) CancelEdit() error {
	if !s.IsEditing() {
		return ErrNotEditing
	}
	s.profile = *s.snapshot
	s.snapshot = nil
	return nil
}

// ToggleEditMode enters edit mode, or saves and leaves it. It reports the new mode.
func (s *ProfileStore) ToggleEditMode() bool {
	if s.IsEditing() {
		s.snapshot = nil
		return false
	}
	s.EnterEditMode()
	return true
}

// SetProfilePicture replaces the stored image reference.
func (s *ProfileStore) SetProfilePicture(data string) error {
	data = strings.TrimSpace(data)
	if data == "" {
		return fmt.Errorf("%w: profilePicture", ErrMissingField)
	}
	if !strings.HasPrefix(data, "data:image/") {
		return fmt.Errorf("%w: profilePicture must be an image data URI", ErrInvalidInput)
	}
	s.profile.ProfilePicture = &data
	return nil
}

// LoadProfilePicture reads an uploaded image and applies it. The current
// picture is only replaced once the whole upload has been read.
func (s *ProfileStore) LoadProfilePicture(r io.Reader, mimeType string) error {
	if !strings.HasPrefix(mimeType, "image/") {
		return fmt.Errorf("%w: unsupported content type %q", ErrInvalidInput, mimeType)
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxProfilePictureBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read profile picture: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: profilePicture", ErrMissingField)
	}
	if len(data) > MaxProfilePictureBytes {
		return fmt.Errorf("%w: profile picture larger than %d bytes", ErrInvalidInput, MaxProfilePictureBytes)
	}
	uri := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return s.SetProfilePicture(uri)
}

// ChangePassword stores a hash of the new password. The current password is
// required but not checked: there is no credential store to check it against.
func (s *ProfileStore) ChangePassword(current, next string) error {
	if err := requireFields(
		field{"currentPassword", current},
		field{"newPassword", next},
	); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	s.profile.PasswordHash = string(hash)
	return nil
}

func (s *ProfileStore) Settings() repository.Settings {
	return s.profile.Settings
}

func (s *ProfileStore) UpdateSettings(patch SettingsPatch) repository.Settings {
	if patch.TaskReminders != nil {
		s.profile.Settings.TaskReminders = *patch.TaskReminders
	}
	if patch.EmailNotifications != nil {
		s.profile.Settings.EmailNotifications = *patch.EmailNotifications
	}
	return s.profile.Settings
}

func isDepartment(value string) bool {
	for _, d := range types.Departments {
		if d == value {
			return true
		}
	}
	return false
}
