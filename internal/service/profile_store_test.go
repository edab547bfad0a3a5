package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/seed"
	"golang.org/x/crypto/bcrypt"
)

type errReader struct{}

func (errReader) Read(p []byte) (int, error) { return 0, errors.New("disk on fire") }

func newProfileStore() *ProfileStore {
	return NewProfileStore(seed.Profile("asha@bvcoe.edu", "Asha", "Rao", ""))
}

func TestProfileEditAndCancel(t *testing.T) {
	store := newProfileStore()

	if err := store.UpdateField(FieldFirstName, "X"); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}

	store.EnterEditMode()
	if err := store.UpdateField(FieldFirstName, "Ashwini"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Profile().FirstName != "Ashwini" {
		t.Fatal("edits apply immediately while editing")
	}

	if err := store.CancelEdit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.IsEditing() || store.Profile().FirstName != "Asha" {
		t.Fatalf("cancel should restore the snapshot: %+v", store.Profile())
	}
}

func TestProfileEditAndSave(t *testing.T) {
	store := newProfileStore()
	store.EnterEditMode()
	store.UpdateField(FieldBranch, "IT")
	store.UpdateField(FieldDepartment, "Design")

	if err := store.SaveEdit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := store.Profile()
	if store.IsEditing() || p.Branch != "IT" || p.Department != "Design" {
		t.Fatalf("unexpected profile after save: %+v", p)
	}
	if err := store.SaveEdit(); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}
}

func TestProfileUpdateFieldValidation(t *testing.T) {
	store := newProfileStore()
	store.EnterEditMode()

	if err := store.UpdateField("email", "new@b.c"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("email is not editable, got %v", err)
	}
	if err := store.UpdateField(FieldDepartment, "Astronomy"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown department, got %v", err)
	}
}

func TestProfileToggle(t *testing.T) {
	store := newProfileStore()
	if !store.ToggleEditMode() || !store.IsEditing() {
		t.Fatal("first toggle enters edit mode")
	}
	store.UpdateField(FieldSection, "B")
	if store.ToggleEditMode() || store.IsEditing() {
		t.Fatal("second toggle leaves edit mode")
	}
	if store.Profile().Section != "B" {
		t.Fatal("toggling out keeps the edits")
	}
}

func TestLoadProfilePicture(t *testing.T) {
	store := newProfileStore()

	if err := store.LoadProfilePicture(strings.NewReader("png-bytes"), "image/png"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pic := store.Profile().ProfilePicture
	if pic == nil || *pic != "data:image/png;base64,cG5nLWJ5dGVz" {
		t.Fatalf("unexpected picture: %v", pic)
	}

	if err := store.LoadProfilePicture(errReader{}, "image/png"); err == nil {
		t.Fatal("expected read error")
	}
	if err := store.LoadProfilePicture(strings.NewReader("%PDF"), "application/pdf"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if got := store.Profile().ProfilePicture; got == nil || *got != *pic {
		t.Fatal("failed uploads must leave the picture unchanged")
	}
}

func TestChangePassword(t *testing.T) {
	store := newProfileStore()

	if err := store.ChangePassword("", "new"); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if err := store.ChangePassword("anything", "new-secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hash := store.Profile().PasswordHash
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-secret")); err != nil {
		t.Fatalf("hash mismatch: %v", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	store := newProfileStore()
	off := false

	got := store.UpdateSettings(SettingsPatch{TaskReminders: &off})
	if got.TaskReminders || !got.EmailNotifications {
		t.Fatalf("only taskReminders should change: %+v", got)
	}
}
