package service

import (
	"crypto/tls"
	"fmt"
	"time"

	"yatube/config"
	"yatube/internal/util"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// Mailer 发送纯文本邮件，测试里用假实现替换
type Mailer interface {
	Send(to, subject, body string) error
}

type EmailService struct {
	smtpHost string
	smtpPort int
	username string
	password string
	baseURL  string
	mailer   Mailer
}

func NewEmailService() *EmailService {
	s := &EmailService{
		smtpHost: config.AppConfig.SMTPHost,
		smtpPort: config.AppConfig.SMTPPort,
		username: config.AppConfig.SMTPUsername,
		password: config.AppConfig.SMTPPassword,
		baseURL:  config.AppConfig.BaseURL,
	}
	if config.AppConfig.MailEnabled() {
		s.mailer = s
	}
	return s
}

// WithMailer 替换底层发送实现
func (s *EmailService) WithMailer(m Mailer) *EmailService {
	s.mailer = m
	return s
}

// PasswordResetLink 构造重置链接
func (s *EmailService) PasswordResetLink(token string) string {
	return fmt.Sprintf("%s/auth/reset/%s/", s.baseURL, token)
}

// SendPasswordResetEmail 异步发送密码重置邮件，未配置 SMTP 时只写日志
func (s *EmailService) SendPasswordResetEmail(email, username string) error {
	token, err := util.GeneratePasswordResetToken(email)
	if err != nil {
		util.Logger.Error("生成密码重置令牌失败", zap.Error(err))
		return fmt.Errorf("生成密码重置令牌失败: %w", err)
	}

	link := s.PasswordResetLink(token)
	subject := "Password reset on Yatube"
	body := fmt.Sprintf("You're receiving this email because you requested a password reset for your user account %s.\n\n"+
		"Please go to the following page and choose a new password:\n%s\n\nThe link expires in 1 hour.\n", username, link)

	if s.mailer == nil {
		util.Logger.Info("SMTP 未配置，密码重置链接写入日志",
			zap.String("to", email),
			zap.String("link", link))
		return nil
	}

	s.sendEmailAsync(email, subject, body)
	return nil
}

func (s *EmailService) sendEmailAsync(to, subject, body string) {
	mailer := s.mailer
	go func() {
		if err := mailer.Send(to, subject, body); err != nil {
			util.Logger.Error("异步发送邮件失败", zap.Error(err), zap.String("to", to))
		}
	}()
}

// Send 通过 SMTP 发送邮件
func (s *EmailService) Send(to, subject, body string) error {
	util.Logger.Info("开始发送邮件",
		zap.String("to", to),
		zap.String("subject", subject))

	m := mail.NewMessage()
	m.SetHeader("From", s.username)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := mail.NewDialer(s.smtpHost, s.smtpPort, s.username, s.password)
	d.Timeout = 20 * time.Second
	d.SSL = s.smtpPort == 465
	d.TLSConfig = &tls.Config{ServerName: s.smtpHost}

	if err := d.DialAndSend(m); err != nil {
		util.Logger.Error("发送邮件失败", zap.Error(err))
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	util.Logger.Info("邮件发送成功", zap.String("to", to))
	return nil
}
