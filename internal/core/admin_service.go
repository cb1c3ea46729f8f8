package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"stockx-backend-go/internal/access"
	"stockx-backend-go/internal/db"
	"stockx-backend-go/internal/models"
	"stockx-backend-go/internal/packages"
)

// UsersPerPage is the admin listing page size.
const UsersPerPage = 15

// StatusFilterAll disables status filtering in List.
const StatusFilterAll = "all"

type adminService struct {
	repo      db.ProfileRepository
	profiles  ProfileService
	idp       IdentityProvider
	catalog   *packages.Catalog
	audit     AuditService
	notifier  NotificationService
	validator *InputValidator
	logger    *zap.Logger
	opts      serviceOptions
}

// NewAdminService creates the AdminService.
func NewAdminService(
	repo db.ProfileRepository,
	profiles ProfileService,
	idp IdentityProvider,
	catalog *packages.Catalog,
	audit AuditService,
	notifier NotificationService,
	validator *InputValidator,
	logger *zap.Logger,
	opts ...Option,
) AdminService {
	return &adminService{
		repo:      repo,
		profiles:  profiles,
		idp:       idp,
		catalog:   catalog,
		audit:     audit,
		notifier:  notifier,
		validator: validator,
		logger:    logger,
		opts:      applyOptions(opts),
	}
}

// List returns one page of profiles, newest first. Stats cover every profile.
func (s *adminService) List(ctx context.Context, filter models.ListUsersFilter) (*UserPage, error) {
	statusFilter := strings.ToLower(strings.TrimSpace(filter.Status))
	if statusFilter != "" && statusFilter != StatusFilterAll && !models.Status(statusFilter).Valid() {
		return nil, newValidationError("status", "status must be one of: all, pending, approved, rejected, suspended.")
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	var stats UserStats
	for _, p := range all {
		s.profiles.CheckAndHandleExpiry(ctx, p)
		stats.Total++
		switch p.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusApproved:
			stats.Approved++
		case models.StatusSuspended:
			stats.Suspended++
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]*models.Profile, 0, len(all))
	for _, p := range all {
		if statusFilter != "" && statusFilter != StatusFilterAll && string(p.Status) != statusFilter {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.DisplayName), search) &&
			!strings.Contains(strings.ToLower(p.Email), search) {
			continue
		}
		matched = append(matched, p)
	}

	totalPages := (len(matched) + UsersPerPage - 1) / UsersPerPage
	page := filter.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	start := (page - 1) * UsersPerPage
	end := start + UsersPerPage
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	return &UserPage{
		Users:      matched[start:end],
		Page:       page,
		TotalPages: totalPages,
		Stats:      stats,
	}, nil
}

// Approve moves a pending or suspended account to approved and starts its package window.
// Ordinary users must be given a package; admins may be approved without one.
func (s *adminService) Approve(ctx context.Context, actor *models.Profile, uid, pkg string) (*models.Profile, error) {
	if err := access.CanManageUsers(actor); err != nil {
		return nil, forbidden(err)
	}
	target, err := s.profiles.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	pkg = strings.TrimSpace(pkg)
	if pkg == "" && !target.Role.IsAdmin() {
		return nil, ErrPackageRequired
	}
	if err := ValidateTransition(target.Status, models.StatusApproved); err != nil {
		return nil, err
	}

	now := s.opts.now().UTC()
	fields := map[string]interface{}{
		models.FieldStatus:     models.StatusApproved,
		models.FieldApprovedAt: now,
		models.FieldApprovedBy: actor.UID,
	}
	var endDate time.Time
	if pkg != "" {
		endDate, err = s.catalog.EndDate(now, pkg)
		if err != nil {
			return nil, err
		}
		fields[models.FieldPackage] = pkg
		fields[models.FieldPackageStartDate] = now
		fields[models.FieldPackageEndDate] = endDate
		fields[models.FieldPackageStatus] = models.PackageActive
	}

	if err := s.repo.Update(ctx, uid, fields); err != nil {
		return nil, fmt.Errorf("failed to approve profile '%s': %w", uid, err)
	}

	target.Status = models.StatusApproved
	target.ApprovedAt = &now
	target.ApprovedBy = actor.UID
	if pkg != "" {
		start := now
		target.Package = pkg
		target.PackageStartDate = &start
		target.PackageEndDate = &endDate
		target.PackageStatus = models.PackageActive
	}

	details := map[string]interface{}{}
	if pkg != "" {
		details["package"] = pkg
		details["packageEndDate"] = endDate
	}
	recordAudit(ctx, s.audit, s.logger, actor.UID, models.AuditActionApprove, uid, details)
	if target.Role.IsAdmin() {
		s.notifier.InvalidateAdminEmails(ctx)
	}
	return target, nil
}

// Reject refuses a pending account.
func (s *adminService) Reject(ctx context.Context, actor *models.Profile, uid string) (*models.Profile, error) {
	return s.transition(ctx, actor, uid, models.StatusRejected, models.AuditActionReject)
}

// Suspend blocks an approved account. Package fields are left as they are.
func (s *adminService) Suspend(ctx context.Context, actor *models.Profile, uid string) (*models.Profile, error) {
	return s.transition(ctx, actor, uid, models.StatusSuspended, models.AuditActionSuspend)
}

func (s *adminService) transition(ctx context.Context, actor *models.Profile, uid string, to models.Status, action string) (*models.Profile, error) {
	if err := access.CanManageUsers(actor); err != nil {
		return nil, forbidden(err)
	}
	target, err := s.profiles.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(target.Status, to); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, uid, map[string]interface{}{models.FieldStatus: to}); err != nil {
		return nil, fmt.Errorf("failed to set status '%s' on profile '%s': %w", to, uid, err)
	}
	from := target.Status
	target.Status = to
	s.revokeSessions(ctx, uid)
	recordAudit(ctx, s.audit, s.logger, actor.UID, action, uid, map[string]interface{}{"from": string(from), "to": string(to)})
	return target, nil
}

// revokeSessions signs the user out everywhere. The status change already
// blocks the gates, so a failure here is only logged.
func (s *adminService) revokeSessions(ctx context.Context, uid string) {
	if err := s.idp.RevokeSessions(ctx, uid); err != nil {
		s.logger.Warn("Failed to revoke sessions", zap.String("uid", uid), zap.Error(err))
	}
}

// Delete removes the profile document, then the identity account.
// A missing identity account counts as already deleted.
func (s *adminService) Delete(ctx context.Context, actor *models.Profile, uid string) error {
	if err := access.CanDelete(actor, uid); err != nil {
		return forbidden(err)
	}

	wasAdmin := false
	if target, err := s.repo.GetByID(ctx, uid); err == nil {
		wasAdmin = target.Role.IsAdmin()
	} else if !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("failed to load profile '%s' before delete: %w", uid, err)
	}

	if err := s.repo.Delete(ctx, uid); err != nil {
		return err
	}
	if err := s.idp.DeleteAccount(ctx, uid); err != nil {
		if !IsProviderCode(err, CodeUserNotFound) {
			return fmt.Errorf("profile deleted but identity account removal failed for '%s': %w", uid, err)
		}
		s.logger.Info("Identity account already absent", zap.String("uid", uid))
	}

	recordAudit(ctx, s.audit, s.logger, actor.UID, models.AuditActionDelete, uid, nil)
	if wasAdmin {
		s.notifier.InvalidateAdminEmails(ctx)
	}
	return nil
}

// Edit applies the admin edit dialog. Status is set directly without the
// transition table; a new package restarts the window at now.
func (s *adminService) Edit(ctx context.Context, actor *models.Profile, uid string, req models.EditProfileRequest) (*models.Profile, error) {
	if err := access.CanManageUsers(actor); err != nil {
		return nil, forbidden(err)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	target, err := s.profiles.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := access.CanEdit(actor, target); err != nil {
		return nil, forbidden(err)
	}
	if req.Role != nil {
		if err := access.CanAssignRole(actor, target.Role, *req.Role); err != nil {
			return nil, forbidden(err)
		}
	}

	fields := map[string]interface{}{}
	changes := map[string]interface{}{}
	updated := *target
	wasAdmin := target.Role.IsAdmin()

	if req.DisplayName != nil {
		updated.DisplayName = strings.TrimSpace(*req.DisplayName)
		fields[models.FieldDisplayName] = updated.DisplayName
	}
	if req.Email != nil {
		updated.Email = db.NormalizeEmail(*req.Email)
		fields[models.FieldEmail] = updated.Email
	}
	if req.PhoneNumber != nil {
		phone := strings.TrimSpace(*req.PhoneNumber)
		if phone != "" {
			if phone, err = s.validator.NormalizePhone(phone); err != nil {
				return nil, err
			}
		}
		updated.PhoneNumber = phone
		fields[models.FieldPhoneNumber] = phone
	}
	if req.Role != nil && *req.Role != target.Role {
		updated.Role = *req.Role
		fields[models.FieldRole] = updated.Role
		changes["role"] = string(updated.Role)
	}
	if req.Status != nil && *req.Status != target.Status {
		updated.Status = *req.Status
		fields[models.FieldStatus] = updated.Status
		changes["status"] = string(updated.Status)
	}
	if req.Package != nil {
		pkg := strings.TrimSpace(*req.Package)
		if pkg != "" && pkg != target.Package {
			now := s.opts.now().UTC()
			end, err := s.catalog.EndDate(now, pkg)
			if err != nil {
				return nil, err
			}
			updated.Package = pkg
			updated.PackageStartDate = &now
			updated.PackageEndDate = &end
			updated.PackageStatus = models.PackageActive
			fields[models.FieldPackage] = pkg
			fields[models.FieldPackageStartDate] = now
			fields[models.FieldPackageEndDate] = end
			fields[models.FieldPackageStatus] = models.PackageActive
			changes["package"] = pkg
		}
	}

	if len(fields) == 0 {
		return target, nil
	}
	if err := s.repo.Update(ctx, uid, fields); err != nil {
		return nil, fmt.Errorf("failed to edit profile '%s': %w", uid, err)
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	changes["fields"] = names
	recordAudit(ctx, s.audit, s.logger, actor.UID, models.AuditActionEdit, uid, changes)
	if _, ok := fields[models.FieldStatus]; ok && updated.Status != models.StatusApproved {
		s.revokeSessions(ctx, uid)
	}
	if wasAdmin || updated.Role.IsAdmin() {
		s.notifier.InvalidateAdminEmails(ctx)
	}
	return &updated, nil
}
