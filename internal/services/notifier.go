package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/insightdesk/backend/internal/config"
	"github.com/insightdesk/backend/internal/models"
	"github.com/insightdesk/backend/pkg/logger"
	"gopkg.in/gomail.v2"
)

// Mailer delivers a single message. The SMTP implementation is used in
// production; tests substitute a recording fake.
type Mailer interface {
	Send(to []string, subject, body string) error
}

type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to []string, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	return dialer.DialAndSend(msg)
}

type notification struct {
	Event   string
	To      []string
	Subject string
	Body    string
}

// Notifier dispatches lifecycle emails without blocking the operations that
// trigger them. Sends are queued onto a buffered channel and drained by a
// single worker; delivery failures are logged and never reach the caller.
// A full queue drops the message with a warning rather than blocking.
type Notifier struct {
	mailer Mailer
	queue  chan notification
}

func NewNotifier(mailer Mailer, queueSize int) *Notifier {
	if queueSize <= 0 {
		queueSize = 1000
	}
	n := &Notifier{
		mailer: mailer,
		queue:  make(chan notification, queueSize),
	}
	go n.processQueue()
	return n
}

func (n *Notifier) processQueue() {
	for msg := range n.queue {
		if err := n.mailer.Send(msg.To, msg.Subject, msg.Body); err != nil {
			logger.Error("notification_send_failed", err, map[string]interface{}{
				"event":      msg.Event,
				"recipients": len(msg.To),
			})
		}
	}
}

func (n *Notifier) enqueue(msg notification) {
	if len(msg.To) == 0 {
		return
	}
	select {
	case n.queue <- msg:
	default:
		logger.Warn("notification_queue_full", map[string]interface{}{
			"event":   msg.Event,
			"dropped": true,
		})
	}
}

func (n *Notifier) SendOTP(email, code string) {
	n.enqueue(notification{
		Event:   "auth.otp",
		To:      []string{email},
		Subject: "Your login code - InsightDesk Portal",
		Body: fmt.Sprintf("Your one-time login code is %s.\n\n"+
			"It expires in 5 minutes. Do not share this code with anyone.\n"+
			"If you did not request it, you can ignore this email.\n", code),
	})
}

func (n *Notifier) SendNewRequest(req *models.Request, admins []models.Admin) {
	to := make([]string, 0, len(admins))
	for _, admin := range admins {
		to = append(to, admin.Email)
	}
	n.enqueue(notification{
		Event:   "request.created.admins",
		To:      to,
		Subject: fmt.Sprintf("New analytics request from %s", req.Name),
		Body: fmt.Sprintf("A new analytics request was submitted.\n\n"+
			"Requester: %s <%s>\nDepartment: %s\nType: %s\nDue: %s\n\n%s\n",
			req.Name, req.Email, req.Department, req.RequestType,
			req.DueDate.Format(time.DateOnly), req.Description),
	})
}

func (n *Notifier) SendConfirmation(req *models.Request) {
	n.enqueue(notification{
		Event:   "request.created.requester",
		To:      []string{req.Email},
		Subject: "We received your analytics request",
		Body: fmt.Sprintf("Hi %s,\n\nYour %s request for %s has been received "+
			"and is pending assignment. Requested due date: %s.\n",
			req.Name, req.RequestType, req.Department,
			req.DueDate.Format(time.DateOnly)),
	})
}

func (n *Notifier) SendAssignment(req *models.Request, analyst *models.Analyst, notes string) {
	body := fmt.Sprintf("Hi %s,\n\nYou have been assigned an analytics request.\n\n"+
		"Requester: %s <%s>\nDepartment: %s\nType: %s\nDue: %s\n\n%s\n",
		analyst.Name, req.Name, req.Email, req.Department, req.RequestType,
		req.DueDate.Format(time.DateOnly), req.Description)
	if strings.TrimSpace(notes) != "" {
		body += fmt.Sprintf("\nNotes from the assigning admin:\n%s\n", notes)
	}
	n.enqueue(notification{
		Event:   "request.assigned",
		To:      []string{analyst.Email},
		Subject: fmt.Sprintf("Analytics request assigned to you: %s", req.RequestType),
		Body:    body,
	})
}

func (n *Notifier) SendCompletion(req *models.Request) {
	n.enqueue(notification{
		Event:   "request.completed",
		To:      []string{req.Email},
		Subject: "Your analytics request is complete",
		Body: fmt.Sprintf("Hi %s,\n\nYour %s request has been completed. "+
			"Thank you for using the portal.\n", req.Name, req.RequestType),
	})
}

func (n *Notifier) SendDueDateChange(req *models.Request, oldDate, newDate time.Time, reason string) {
	n.enqueue(notification{
		Event:   "request.due_date_changed",
		To:      []string{req.Email},
		Subject: "Your analytics request due date has changed",
		Body: fmt.Sprintf("Hi %s,\n\nThe due date of your %s request changed "+
			"from %s to %s.\n\nReason: %s\n",
			req.Name, req.RequestType,
			oldDate.Format(time.DateOnly), newDate.Format(time.DateOnly), reason),
	})
}
