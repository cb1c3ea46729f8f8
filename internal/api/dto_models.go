package api

import (
	"math"
	"strings"
	"time"

	"stockx-backend-go/internal/core"
	"stockx-backend-go/internal/models"
	"stockx-backend-go/internal/packages"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`             // User-facing message
	Details string `json:"details,omitempty"` // Extra context, never internal error text
}

// SuccessResponse wraps successful results.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// MeResponse is returned by GET /api/v1/users/me.
type MeResponse struct {
	Profile      *models.Profile `json:"profile"`
	Remaining    string          `json:"remaining,omitempty"`    // Time left on the package, e.g. "3 days"
	PackageLabel string          `json:"packageLabel,omitempty"` // e.g. "1 Month"
}

// UserListItem is one row of the admin table.
type UserListItem struct {
	*models.Profile
	PackageLabel string `json:"packageLabel,omitempty"`
}

// UserListResponse is returned by GET /api/v1/admin/users.
type UserListResponse struct {
	Users      []UserListItem `json:"users"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	Stats      core.UserStats `json:"stats"`
}

// packageLabel is empty for profiles without a package.
func packageLabel(catalog *packages.Catalog, pkg string) string {
	if pkg == "" {
		return ""
	}
	return catalog.Label(pkg)
}

func newUserListResponse(page *core.UserPage, catalog *packages.Catalog) UserListResponse {
	items := make([]UserListItem, 0, len(page.Users))
	for _, p := range page.Users {
		items = append(items, UserListItem{Profile: p, PackageLabel: packageLabel(catalog, p.Package)})
	}
	return UserListResponse{Users: items, Page: page.Page, TotalPages: page.TotalPages, Stats: page.Stats}
}

// RelayResponse is the flat body used by the /api relay endpoints.
type RelayResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func ok(data interface{}) SuccessResponse {
	return SuccessResponse{Success: true, Data: data}
}

func okMessage(message string, data interface{}) SuccessResponse {
	return SuccessResponse{Success: true, Message: message, Data: data}
}

// notifyAdminPayload is the wire form of /api/notify-admin. Callers send the
// timestamp as an ISO string, a plain date-time or epoch milliseconds.
type notifyAdminPayload struct {
	UID         string      `json:"uid"`
	Email       string      `json:"email"`
	DisplayName string      `json:"displayName"`
	PhoneNumber string      `json:"phoneNumber,omitempty"`
	Timestamp   interface{} `json:"timestamp"`
	AdminEmails []string    `json:"adminEmails,omitempty"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// request converts the payload. An unreadable timestamp is dropped so the
// notification service falls back to the current time.
func (p notifyAdminPayload) request() (models.NotifyAdminRequest, bool) {
	ts, ok := parseTimestamp(p.Timestamp)
	return models.NotifyAdminRequest{
		UID:         p.UID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		PhoneNumber: p.PhoneNumber,
		Timestamp:   ts,
		AdminEmails: p.AdminEmails,
	}, ok
}

// parseTimestamp reports false only when a value was given but could not be read.
func parseTimestamp(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, true
	case string:
		raw := strings.TrimSpace(t)
		if raw == "" {
			return time.Time{}, true
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, raw); err == nil {
				if parsed.IsZero() {
					return time.Time{}, true
				}
				return parsed.UTC(), true
			}
		}
	case float64:
		if t <= 0 || math.IsInf(t, 0) || math.IsNaN(t) {
			break
		}
		// Values this large are milliseconds; smaller ones are seconds.
		if t >= 1e12 {
			return time.UnixMilli(int64(t)).UTC(), true
		}
		return time.Unix(int64(t), 0).UTC(), true
	}
	return time.Time{}, false
}
