package core

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockx-backend-go/internal/db"
	"stockx-backend-go/internal/models"
	"stockx-backend-go/pkg/cache"
	"stockx-backend-go/pkg/mailer"
	"stockx-backend-go/pkg/messagequeue"
)

const (
	// NotifyTopic is the queue topic for signup notifications.
	NotifyTopic = "signup.notify"
	// AdminEmailsCacheKey holds the JSON encoded admin recipient list.
	AdminEmailsCacheKey = "notify:admin-emails"

	NotifySubject         = "🔔 New User Signup - Pending Approval"
	NoAdminsMessage       = "No admins to notify"
	MissingFieldsMessage  = "Missing required fields"
	phoneNotProvided      = "Not provided"
	signupDateLayout      = "Monday, January 2, 2006 at 3:04 PM MST"
	defaultAdminsCacheTTL = 5 * time.Minute
	defaultEnqueueTimeout = 3 * time.Second
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	signupHTML = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/admin_signup.html.tmpl"))
	signupText = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/admin_signup.txt.tmpl"))
)

// NotificationConfig configures the notification service.
type NotificationConfig struct {
	AppURL   string
	Topic    string
	CacheTTL time.Duration
	// EnqueueTimeout bounds Publish so a stalled broker cannot hold up signup.
	EnqueueTimeout time.Duration
}

// notifyTask is the queued form of a NotifyAdminRequest.
type notifyTask struct {
	ID string `json:"taskId"`
	models.NotifyAdminRequest
}

type notificationService struct {
	queue  messagequeue.MessageQueue
	mailer Mailer
	repo   db.ProfileRepository
	cache  cache.Cache
	cfg    NotificationConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService creates a NotificationService. cache may be nil.
func NewNotificationService(
	queue messagequeue.MessageQueue,
	m Mailer,
	repo db.ProfileRepository,
	c cache.Cache,
	cfg NotificationConfig,
	logger *zap.Logger,
	opts ...Option,
) NotificationService {
	o := applyOptions(opts)
	if cfg.Topic == "" {
		cfg.Topic = NotifyTopic
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultAdminsCacheTTL
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = defaultEnqueueTimeout
	}
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")
	return &notificationService{
		queue:  queue,
		mailer: m,
		repo:   repo,
		cache:  c,
		cfg:    cfg,
		logger: logger,
		now:    o.now,
	}
}

// Enqueue publishes a signup notification task. The publish is cut off after
// EnqueueTimeout.
func (s *notificationService) Enqueue(ctx context.Context, req models.NotifyAdminRequest) error {
	if req.Timestamp.IsZero() {
		req.Timestamp = s.now()
	}
	body, err := json.Marshal(notifyTask{ID: uuid.NewString(), NotifyAdminRequest: req})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.EnqueueTimeout)
	defer cancel()
	if err := s.queue.Publish(ctx, s.cfg.Topic, body); err != nil {
		return fmt.Errorf("failed to enqueue notification for %s: %w", req.UID, err)
	}
	return nil
}

// RunWorker consumes queued signup tasks until ctx is done. Delivery failures
// are logged and the task is acknowledged.
func (s *notificationService) RunWorker(ctx context.Context) error {
	s.logger.Info("Notification worker started", zap.String("topic", s.cfg.Topic))
	return s.queue.Consume(ctx, s.cfg.Topic, func(ctx context.Context, body []byte) error {
		var task notifyTask
		if err := json.Unmarshal(body, &task); err != nil {
			return fmt.Errorf("failed to decode notification: %w", err)
		}
		res, err := s.NotifyAdmins(ctx, task.NotifyAdminRequest)
		if err != nil {
			s.logger.Warn("Admin notification failed",
				zap.String("taskId", task.ID),
				zap.String("uid", task.UID),
				zap.Error(err),
			)
			return nil
		}
		s.logger.Info("Admin notification processed",
			zap.String("taskId", task.ID),
			zap.String("uid", task.UID),
			zap.Int("recipients", res.Recipients),
		)
		return nil
	})
}

// NotifyAdmins mails the signup notice to req.AdminEmails, or to every admin
// and superadmin when the list is empty.
func (s *notificationService) NotifyAdmins(ctx context.Context, req models.NotifyAdminRequest) (*NotifyResult, error) {
	if strings.TrimSpace(req.UID) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.DisplayName) == "" {
		return nil, newValidationError("uid", MissingFieldsMessage)
	}

	recipients := cleanEmails(req.AdminEmails)
	if len(recipients) == 0 {
		var err error
		if recipients, err = s.adminEmails(ctx); err != nil {
			return nil, err
		}
	}
	if len(recipients) == 0 {
		return &NotifyResult{Message: NoAdminsMessage}, nil
	}

	msg, err := RenderSignupNotification(req, s.cfg.AppURL)
	if err != nil {
		return nil, err
	}
	msg.To = recipients
	if err := s.mailer.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send admin notification: %w", err)
	}
	return &NotifyResult{
		Recipients: len(recipients),
		Message:    fmt.Sprintf("Notification sent to %d admin(s)", len(recipients)),
	}, nil
}

// InvalidateAdminEmails drops the cached recipient list after an admin role change.
func (s *notificationService) InvalidateAdminEmails(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, AdminEmailsCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate admin email cache", zap.Error(err))
	}
}

// adminEmails returns the emails of every admin and superadmin profile,
// served from cache when possible.
func (s *notificationService) adminEmails(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, AdminEmailsCacheKey)
		if err != nil {
			s.logger.Warn("Admin email cache read failed", zap.Error(err))
		} else if cached != "" {
			var emails []string
			if err := json.Unmarshal([]byte(cached), &emails); err == nil {
				return emails, nil
			}
		}
	}

	admins, err := s.repo.ListByRoles(ctx, models.RoleAdmin, models.RoleSuperAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin recipients: %w", err)
	}
	emails := make([]string, 0, len(admins))
	for _, a := range admins {
		emails = append(emails, a.Email)
	}
	emails = cleanEmails(emails)

	if s.cache != nil {
		if raw, err := json.Marshal(emails); err == nil {
			if err := s.cache.Set(ctx, AdminEmailsCacheKey, string(raw), s.cfg.CacheTTL); err != nil {
				s.logger.Warn("Admin email cache write failed", zap.Error(err))
			}
		}
	}
	return emails, nil
}

// cleanEmails trims, drops blanks and removes case-insensitive duplicates.
func cleanEmails(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		key := strings.ToLower(e)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

type signupView struct {
	Name         string
	Email        string
	Phone        string
	SignupDate   string
	DashboardURL string
}

// RenderSignupNotification renders the subject and both bodies of the admin
// notification. Recipients are left empty.
func RenderSignupNotification(req models.NotifyAdminRequest, appURL string) (mailer.Message, error) {
	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" {
		phone = phoneNotProvided
	}
	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	view := signupView{
		Name:         req.DisplayName,
		Email:        req.Email,
		Phone:        phone,
		SignupDate:   ts.UTC().Format(signupDateLayout),
		DashboardURL: strings.TrimRight(appURL, "/") + "/admin",
	}

	var html, text bytes.Buffer
	if err := signupHTML.Execute(&html, view); err != nil {
		return mailer.Message{}, fmt.Errorf("failed to render html notification: %w", err)
	}
	if err := signupText.Execute(&text, view); err != nil {
		return mailer.Message{}, fmt.Errorf("failed to render text notification: %w", err)
	}
	return mailer.Message{
		Subject: NotifySubject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
