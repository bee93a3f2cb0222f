// Package service implements the application's business logic on top of the
// store, auth, search, and export packages. Handlers stay thin; services
// own validation, error mapping, and cross-package orchestration.
package service

import (
	"github.com/angelarchive/archive-server/internal/color"
	"github.com/angelarchive/archive-server/internal/domain"
	"github.com/angelarchive/archive-server/internal/validation"
)

// validate is a shared validator instance for request validation.
var validate = validation.New()

// sanitizeUser returns a copy of the user safe to send to clients.
// The password hash is persisted in the stored JSON, so it must be stripped
// here rather than relying on struct tags. The avatar color is derived, not
// stored, so it is filled in on the way out.
func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clean := *u
	clean.PasswordHash = ""
	clean.AvatarColor = color.ForUser(u.ID)
	return &clean
}
