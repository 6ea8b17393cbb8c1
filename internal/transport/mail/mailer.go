package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// SMTPMailer sends the transactional mail the credential lifecycle depends
// on: signup codes, password-change codes and reset links. Every message
// carries both a plain-text and an HTML body.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	brand    string
}

func NewSMTPMailer(host, port, username, password, from, brand string) *SMTPMailer {
	if strings.TrimSpace(brand) == "" {
		brand = "Bhramann"
	}
	return &SMTPMailer{
		host:     strings.TrimSpace(host),
		port:     strings.TrimSpace(port),
		username: username,
		password: password,
		from:     strings.TrimSpace(from),
		brand:    brand,
	}
}

func (m *SMTPMailer) SendSignupOTP(ctx context.Context, email, otp string) error {
	subject := fmt.Sprintf("Your %s Login Code", m.brand)
	text := fmt.Sprintf(
		"Your %s login code is: %s\n\nThis code will expire in 10 minutes. If you did not request this, you can ignore this email.\n\n— The %s Team\n",
		m.brand, otp, m.brand,
	)
	return m.send(ctx, email, subject, text, otpHTML(m.brand, "complete your login", otp))
}

func (m *SMTPMailer) SendPasswordChangeOTP(ctx context.Context, email, otp string) error {
	subject := fmt.Sprintf("Your %s Password Reset Code", m.brand)
	text := fmt.Sprintf(
		"Your %s password reset code is: %s\n\nThis code will expire in 10 minutes. If you did not request this, you can ignore this email.\n\n— The %s Team\n",
		m.brand, otp, m.brand,
	)
	return m.send(ctx, email, subject, text, otpHTML(m.brand, "complete your password reset", otp))
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, resetURL string) error {
	subject := fmt.Sprintf("Reset Your %s Password", m.brand)
	text := fmt.Sprintf(
		"You requested to reset your %s password.\n\nClick the link below to choose a new password:\n%s\n\nThis link will expire in 1 hour.\nIf you did not request a password reset, you can safely ignore this email.\n\n— The %s Team\n",
		m.brand, resetURL, m.brand,
	)
	html := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;color:#333;max-width:600px;margin:0 auto;padding:20px;">
<h1 style="color:#0297CF;">Forgot your password?</h1>
<p>We received a request to reset the password for your %s account.</p>
<p style="text-align:center;margin:30px 0;"><a href="%s" style="background-color:#0297CF;color:#fff;text-decoration:none;padding:12px 24px;border-radius:4px;font-weight:bold;">Reset Password</a></p>
<p style="color:#666;">This link will expire in <strong>1 hour</strong>. For your security, do not share it with anyone.</p>
<p style="font-size:14px;color:#999;">If you didn't request a password reset, you can ignore this email.</p>
</div>`, m.brand, resetURL)
	return m.send(ctx, email, subject, text, html)
}

func otpHTML(brand, purpose, otp string) string {
	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;color:#333;max-width:600px;margin:0 auto;padding:20px;">
<h1 style="color:#0297CF;">Your %s Code</h1>
<p>Hi there,</p>
<p>Use the following one-time password (OTP) to %s:</p>
<p style="text-align:center;margin:20px 0;"><span style="display:inline-block;background:#f0f4f8;padding:15px 25px;font-size:32px;font-weight:bold;letter-spacing:4px;border-radius:6px;color:#0297CF;">%s</span></p>
<p style="color:#666;">This code will expire in <strong>10 minutes</strong>. For your security, do not share it with anyone.</p>
<p style="font-size:14px;color:#999;">If you didn't request this code, you can ignore this email.</p>
</div>`, brand, purpose, otp)
}

// send assembles a multipart/alternative message and delivers it over SMTP.
// Transport errors propagate to the caller.
func (m *SMTPMailer) send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	if m == nil {
		return errors.New("mailer not configured")
	}
	if m.host == "" || m.port == "" || m.from == "" {
		return errors.New("mailer missing configuration")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	const boundary = "mime-boundary-4f2a9c"

	message := strings.Builder{}
	message.WriteString(fmt.Sprintf("From: %q <%s>\r\n", m.brand, m.from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", to))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary))

	message.WriteString("--" + boundary + "\r\n")
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	message.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	message.WriteString(textBody)
	message.WriteString("\r\n")

	message.WriteString("--" + boundary + "\r\n")
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	message.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	message.WriteString(htmlBody)
	message.WriteString("\r\n")

	message.WriteString("--" + boundary + "--\r\n")

	addr := net.JoinHostPort(m.host, m.port)
	var auth smtp.Auth
	if m.username != "" || m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(message.String()))
}
