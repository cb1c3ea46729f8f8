package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"stockx-backend-go/internal/db"
	"stockx-backend-go/internal/models"
	"stockx-backend-go/internal/packages"
)

type profileService struct {
	repo   db.ProfileRepository
	audit  AuditService
	logger *zap.Logger
	opts   serviceOptions
}

// NewProfileService creates a ProfileService.
func NewProfileService(repo db.ProfileRepository, audit AuditService, logger *zap.Logger, opts ...Option) ProfileService {
	return &profileService{
		repo:   repo,
		audit:  audit,
		logger: logger,
		opts:   applyOptions(opts),
	}
}

// Get loads the profile and applies the expiry rule. A missing document is
// ErrProfileNotFound.
func (s *profileService) Get(ctx context.Context, uid string) (*models.Profile, error) {
	profile, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, uid)
		}
		return nil, fmt.Errorf("failed to get profile '%s': %w", uid, err)
	}
	s.CheckAndHandleExpiry(ctx, profile)
	return profile, nil
}

// CheckAndHandleExpiry suspends an approved user whose package window has
// closed. A failed write is logged and the profile is still reported expired.
func (s *profileService) CheckAndHandleExpiry(ctx context.Context, profile *models.Profile) bool {
	if profile == nil || profile.Role.IsAdmin() || profile.Status != models.StatusApproved {
		return false
	}
	if profile.PackageEndDate == nil || !packages.IsExpired(*profile.PackageEndDate, s.opts.now()) {
		return false
	}

	err := s.repo.Update(ctx, profile.UID, map[string]interface{}{
		models.FieldStatus:        models.StatusSuspended,
		models.FieldPackageStatus: models.PackageExpired,
	})
	if err != nil {
		// Reported as expired regardless; the next read retries the write.
		s.logger.Warn("Failed to persist package expiry",
			zap.String("uid", profile.UID),
			zap.Error(err),
		)
	} else {
		recordAudit(ctx, s.audit, s.logger, models.AuditActorSystem, models.AuditActionExpireSuspend, profile.UID,
			map[string]interface{}{"package": profile.Package, "packageEndDate": *profile.PackageEndDate})
	}

	profile.Status = models.StatusSuspended
	profile.PackageStatus = models.PackageExpired
	return true
}

// Remaining formats the time left on the package, or "" without an end date.
func (s *profileService) Remaining(profile *models.Profile) string {
	if profile == nil || profile.PackageEndDate == nil {
		return ""
	}
	return packages.FormatRemaining(*profile.PackageEndDate, s.opts.now())
}
