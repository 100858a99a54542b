package service

import (
	"fmt"
	"net/smtp"
	"strings"

	"learnx_backend/internal/config"

	"go.uber.org/zap"
)

// EmailService 邮件通知，所有发送均为异步尽力而为
type EmailService struct {
	config config.EmailConfig
	logger *zap.Logger
}

func NewEmailService(cfg config.EmailConfig, logger *zap.Logger) *EmailService {
	return &EmailService{config: cfg, logger: logger}
}

func (s *EmailService) send(to []string, subject, htmlBody string) error {
	if s.config.SMTPHost == "" {
		s.logger.Debug("邮件服务未配置，跳过发送", zap.String("subject", subject))
		return nil
	}

	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: LearnX <%s>\r\n", s.config.Sender)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", s.config.Sender, s.config.Password, s.config.SMTPHost)
	return smtp.SendMail(s.config.SMTPHost+":"+s.config.SMTPPort, auth, s.config.Sender, to, []byte(msg))
}

func (s *EmailService) sendAsync(to []string, subject, htmlBody string) {
	go func() {
		if err := s.send(to, subject, htmlBody); err != nil {
			s.logger.Warn("邮件发送失败", zap.String("subject", subject), zap.Error(err))
		}
	}()
}

func (s *EmailService) template(title, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1A237E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #212121; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #3949AB; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>LearnX</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">&copy; 2026 LearnX. All rights reserved.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// SendVerificationEmail 注册后发送邮箱验证链接
func (s *EmailService) SendVerificationEmail(email, name, token string) {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.config.BaseURL, token)
	body := fmt.Sprintf(`
		<p>%s，你好：</p>
		<p>感谢注册 LearnX 学习平台，请点击下方按钮完成邮箱验证：</p>
		<a href="%s" class="btn">验证邮箱</a>
		<p>如果不是你本人操作，请忽略此邮件。</p>
	`, name, link)
	s.sendAsync([]string{email}, "LearnX 邮箱验证", s.template("验证你的邮箱", body))
}

// SendPasswordResetEmail 发送密码重置链接，链接1小时内有效
func (s *EmailService) SendPasswordResetEmail(email, name, token string) {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.config.BaseURL, token)
	body := fmt.Sprintf(`
		<p>%s，你好：</p>
		<p>我们收到了你的密码重置请求，请点击下方按钮设置新密码（1小时内有效）：</p>
		<a href="%s" class="btn">重置密码</a>
		<p>如果不是你本人操作，请忽略此邮件，你的密码不会被更改。</p>
	`, name, link)
	s.sendAsync([]string{email}, "LearnX 密码重置", s.template("重置你的密码", body))
}

// SendTrackCompletedEmail 课程完成祝贺邮件
func (s *EmailService) SendTrackCompletedEmail(email, name, trackTitle string) {
	body := fmt.Sprintf(`
		<p>%s，你好：</p>
		<p>恭喜你完成了课程 <strong>%s</strong> 的全部学习内容！</p>
		<p>继续保持，更多课程等你探索。</p>
	`, name, trackTitle)
	s.sendAsync([]string{email}, "恭喜完成课程："+trackTitle, s.template("课程完成", body))
}
