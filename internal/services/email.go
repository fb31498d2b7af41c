package services

import (
	"crypto/tls"
	"fmt"

	"github.com/studyhive/studyhive-backend/internal/config"
	"gopkg.in/gomail.v2"
)

type EmailService struct {
	config *config.Config
}

func NewEmailService(config *config.Config) *EmailService {
	return &EmailService{config: config}
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)
	d.TLSConfig = &tls.Config{InsecureSkipVerify: true}

	return d.DialAndSend(m)
}

func (s *EmailService) SendVerificationEmail(email, verificationToken, frontendURL string) error {
	verifyLink := fmt.Sprintf("%s/verify-email?token=%s", frontendURL, verificationToken)

	subject := "Verify your StudyHive account"
	body := fmt.Sprintf(`
		<h2>Welcome to StudyHive</h2>
		<p>Confirm your institutional email to start posting reviews and sharing study resources.</p>
		<p><a href="%s">Verify my email</a></p>
		<p>If you did not create an account, you can ignore this message.</p>
	`, verifyLink)

	return s.SendEmail(email, subject, body)
}
