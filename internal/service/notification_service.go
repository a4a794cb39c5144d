package service

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"

	"go.uber.org/zap"

	"github.com/noah-isme/card-order-api/internal/models"
	"github.com/noah-isme/card-order-api/pkg/jobs"
	"github.com/noah-isme/card-order-api/pkg/mailer"
)

type notificationMetrics interface {
	RecordNotification(template string, err error)
}

// NotificationConfig holds addresses and links embedded in mail.
type NotificationConfig struct {
	BaseURL      string
	AdminEmail   string
	Organization string
	Queue        jobs.QueueConfig
}

// notificationView is the data every template renders from.
type notificationView struct {
	Organization   string
	ApplicationID  string
	ApplicantName  string
	ApplicantEmail string
	Quantity       int
	SameAsExisting string
	IsLawyer       string
	LawyerName     string
	Remarks        string
	Reason         string
	ConfirmURL     string
	StatusURL      string
	AdminURL       string
}

type compiledTemplate struct {
	subject *texttemplate.Template
	body    *htmltemplate.Template
}

type outgoingMail struct {
	kind    NotificationKind
	message mailer.Message
}

// NotificationService renders transactional mail and hands it to a worker
// pool. Callers never wait for delivery and never see its errors.
type NotificationService struct {
	mailer    mailer.Mailer
	metrics   notificationMetrics
	logger    *zap.Logger
	cfg       NotificationConfig
	templates map[NotificationKind]compiledTemplate
	queue     *jobs.Queue
}

// NewNotificationService parses the templates and builds the delivery queue.
func NewNotificationService(m mailer.Mailer, metrics notificationMetrics, logger *zap.Logger, cfg NotificationConfig) (*NotificationService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = mailer.Discard{}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	templates := make(map[NotificationKind]compiledTemplate, len(notificationTemplates))
	for kind, src := range notificationTemplates {
		subject, err := texttemplate.New(string(kind)).Option("missingkey=error").Parse(src.subject)
		if err != nil {
			return nil, fmt.Errorf("parse %s subject: %w", kind, err)
		}
		body, err := htmltemplate.New(string(kind)).Option("missingkey=error").Parse(src.body)
		if err != nil {
			return nil, fmt.Errorf("parse %s body: %w", kind, err)
		}
		templates[kind] = compiledTemplate{subject: subject, body: body}
	}

	s := &NotificationService{
		mailer:    m,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		templates: templates,
	}

	queueCfg := cfg.Queue
	if queueCfg.Logger == nil {
		queueCfg.Logger = logger
	}
	queueCfg.OnFailure = func(job jobs.Job, err error) {
		s.record(job.Type, err)
	}
	s.queue = jobs.NewQueue("notifications", s.deliver, queueCfg)
	return s, nil
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains queued mail until ctx expires.
func (s *NotificationService) Stop(ctx context.Context) {
	s.queue.Stop(ctx)
}

// ApplicationSubmitted confirms receipt to the applicant and alerts the admin.
func (s *NotificationService) ApplicationSubmitted(app *models.Application) {
	view := s.view(app)
	s.Notify(NotifySubmissionConfirmation, app.ApplicantEmail, view)
	s.Notify(NotifyAdminNewApplication, s.cfg.AdminEmail, view)
}

// DraftReady sends the applicant the confirmation link.
func (s *NotificationService) DraftReady(app *models.Application) {
	s.Notify(NotifyDraftReady, app.ApplicantEmail, s.view(app))
}

// ProductionApproved alerts the admin that the applicant approved the draft.
func (s *NotificationService) ProductionApproved(app *models.Application) {
	s.Notify(NotifyProductionApproved, s.cfg.AdminEmail, s.view(app))
}

// ModificationRequested forwards the applicant's reason to the admin.
func (s *NotificationService) ModificationRequested(app *models.Application, reason string) {
	view := s.view(app)
	view.Reason = reason
	s.Notify(NotifyModificationRequested, s.cfg.AdminEmail, view)
}

// OrderCompleted tells the applicant the cards are ready.
func (s *NotificationService) OrderCompleted(app *models.Application) {
	s.Notify(NotifyOrderCompleted, app.ApplicantEmail, s.view(app))
}

// ConfirmURL is the applicant's draft confirmation page link.
func (s *NotificationService) ConfirmURL(id, email string) string {
	return s.cfg.BaseURL + "/confirm.html?id=" + url.QueryEscape(id) + "&email=" + url.QueryEscape(email)
}

// Notify renders kind for recipient and enqueues it. Failures are logged
// and counted only.
func (s *NotificationService) Notify(kind NotificationKind, recipient string, view notificationView) {
	logger := s.logger.With(zap.String("template", string(kind)), zap.String("application_id", view.ApplicationID))
	if strings.TrimSpace(recipient) == "" {
		logger.Warn("notification skipped: no recipient")
		s.record(string(kind), fmt.Errorf("no recipient"))
		return
	}

	msg, err := s.render(kind, recipient, view)
	if err != nil {
		logger.Error("notification render failed", zap.Error(err))
		s.record(string(kind), err)
		return
	}

	if err := s.queue.Enqueue(jobs.Job{Type: string(kind), Payload: outgoingMail{kind: kind, message: msg}}); err != nil {
		logger.Error("notification not queued", zap.Error(err))
		s.record(string(kind), err)
	}
}

func (s *NotificationService) render(kind NotificationKind, recipient string, view notificationView) (mailer.Message, error) {
	tpl, ok := s.templates[kind]
	if !ok {
		return mailer.Message{}, fmt.Errorf("unknown notification template %q", kind)
	}
	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, view); err != nil {
		return mailer.Message{}, fmt.Errorf("render subject: %w", err)
	}
	if err := tpl.body.Execute(&body, view); err != nil {
		return mailer.Message{}, fmt.Errorf("render body: %w", err)
	}
	return mailer.Message{To: recipient, Subject: subject.String(), HTML: body.String()}, nil
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	out, ok := job.Payload.(outgoingMail)
	if !ok {
		return fmt.Errorf("unexpected notification payload %T", job.Payload)
	}
	if err := s.mailer.Send(ctx, out.message); err != nil {
		return err
	}
	s.record(string(out.kind), nil)
	s.logger.Debug("notification sent", zap.String("template", string(out.kind)), zap.String("provider", s.mailer.Name()))
	return nil
}

func (s *NotificationService) record(kind string, err error) {
	if s.metrics != nil {
		s.metrics.RecordNotification(kind, err)
	}
}

func (s *NotificationService) view(app *models.Application) notificationView {
	return notificationView{
		Organization:   s.cfg.Organization,
		ApplicationID:  app.ID,
		ApplicantName:  app.ApplicantName,
		ApplicantEmail: app.ApplicantEmail,
		Quantity:       app.Quantity,
		SameAsExisting: app.SameAsExisting.Label(),
		IsLawyer:       app.IsLawyer.Label(),
		LawyerName:     app.LawyerName,
		Remarks:        app.Remarks,
		ConfirmURL:     s.ConfirmURL(app.ID, app.ApplicantEmail),
		StatusURL:      s.cfg.BaseURL + "/status.html",
		AdminURL:       s.cfg.BaseURL + "/admin.html",
	}
}
