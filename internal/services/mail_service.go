package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Sender delivers one rendered message. Tests swap in a fake, the
// server uses the SMTP implementation below.
type Sender interface {
	Send(to []string, subject, body string) error
}

type smtpSender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func (s *smtpSender) Send(to []string, subject, body string) error {
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: Libris <%s>\r\n"+
		"Subject: %s\r\n"+
		"%s\r\n%s", strings.Join(to, ","), s.from, subject, mime, body))

	return smtp.SendMail(addr, auth, s.from, to, msg)
}

type mailJob struct {
	id      string
	to      []string
	subject string
	body    string
}

// MailService queues outgoing mail and delivers it from a single
// background worker. Enqueueing never blocks the caller: when the
// queue is full the job is dropped with a log line instead.
type MailService struct {
	sender  Sender
	enabled bool
	queue   chan mailJob
	quit    chan struct{}
	done    chan struct{}
}

var (
	mailService *MailService
	mailOnce    sync.Once
)

// GetMailService returns the singleton configured from SMTP_* env vars.
func GetMailService() *MailService {
	mailOnce.Do(func() {
		host := os.Getenv("SMTP_HOST")
		port := os.Getenv("SMTP_PORT")
		user := os.Getenv("SMTP_USER")
		pass := os.Getenv("SMTP_PASS")
		from := os.Getenv("SMTP_FROM")

		enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
		if !enabled {
			log.Println("⚠️ MailService disabled: Missing SMTP environment variables.")
		}

		mailService = newMailService(&smtpSender{
			host:     host,
			port:     port,
			username: user,
			password: pass,
			from:     from,
		}, enabled)
	})
	return mailService
}

func newMailService(sender Sender, enabled bool) *MailService {
	s := &MailService{
		sender:  sender,
		enabled: enabled,
		queue:   make(chan mailJob, 256),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.worker()
	return s
}

// Enqueue hands a message to the worker without waiting on delivery.
func (s *MailService) Enqueue(to []string, subject, body string) {
	if !s.enabled {
		return
	}

	job := mailJob{
		id:      uuid.NewString(),
		to:      to,
		subject: subject,
		body:    body,
	}

	select {
	case s.queue <- job:
	default:
		log.Printf("⚠️ Mail queue full, dropping job %s to %v", job.id, job.to)
	}
}

func (s *MailService) worker() {
	defer close(s.done)
	for {
		select {
		case job := <-s.queue:
			s.deliver(job)
		case <-s.quit:
			// Drain whatever is still queued, then exit.
			for {
				select {
				case job := <-s.queue:
					s.deliver(job)
				default:
					return
				}
			}
		}
	}
}

func (s *MailService) deliver(job mailJob) {
	if err := s.sender.Send(job.to, job.subject, job.body); err != nil {
		log.Printf("❌ Failed to send email %s to %v: %v", job.id, job.to, err)
		return
	}
	log.Printf("✅ Email %s sent to %v: %s", job.id, job.to, job.subject)
}

// Stop flushes the queue and stops the worker. Used by graceful
// shutdown and tests.
func (s *MailService) Stop() {
	close(s.quit)
	<-s.done
}

func (s *MailService) parseTemplate(templateName string, data interface{}) (string, error) {
	path := filepath.Join("web", "templates", "email", templateName)
	t, err := template.ParseFiles(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}
	return buf.String(), nil
}

// SendConfirmationEmail mails the single-use confirmation link to a
// freshly registered member.
func (s *MailService) SendConfirmationEmail(email, handle, token string) {
	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:8080"
	}

	body, err := s.parseTemplate("confirm.html", map[string]string{
		"Handle": handle,
		"Link":   fmt.Sprintf("%s/confirm/%s", strings.TrimSuffix(siteURL, "/"), token),
	})
	if err != nil {
		log.Printf("Error rendering confirmation email: %v", err)
		return
	}
	s.Enqueue([]string{email}, "Welcome to Libris, please confirm your email", body)
}

// SendCommentNotification mails an author when somebody responds to
// their post or comment.
func (s *MailService) SendCommentNotification(email, activeHandle, title, replyContent, link string) {
	body, err := s.parseTemplate("comment.html", map[string]string{
		"ActiveHandle": activeHandle,
		"Title":        title,
		"ReplyContent": replyContent,
		"Link":         link,
	})
	if err != nil {
		log.Printf("Error rendering comment email: %v", err)
		return
	}
	s.Enqueue([]string{email}, "💬 "+activeHandle+" replied to \""+title+"\"", body)
}
