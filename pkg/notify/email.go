package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"mobistay/config"
	"mobistay/pkg/logger"
)

// EmailGateway sends over SMTP when credentials are configured and degrades
// to log-only delivery otherwise, so development environments work without
// a mail account.
type EmailGateway struct {
	host string
	port int
	user string
	pass string
	from string
	log  logger.ILogger
}

func NewEmailGateway(cfg config.Config, log logger.ILogger) *EmailGateway {
	return &EmailGateway{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.SMTPFrom,
		log:  log,
	}
}

func (g *EmailGateway) configured() bool {
	return g.host != "" && g.user != "" && g.pass != ""
}

func (g *EmailGateway) SendCode(ctx context.Context, destination, code string) error {
	body := fmt.Sprintf("Your Mobistay verification code is %s. It expires in 5 minutes.", code)
	return g.SendMessage(ctx, destination, "Your Verification Code", body)
}

func (g *EmailGateway) SendMessage(ctx context.Context, destination, subject, text string) error {
	if !g.configured() {
		g.log.Warning("smtp not configured, logging email instead",
			logger.String("to", destination), logger.String("subject", subject))
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		g.from, destination, subject, text)
	addr := fmt.Sprintf("%s:%d", g.host, g.port)
	auth := smtp.PlainAuth("", g.user, g.pass, g.host)

	if err := smtp.SendMail(addr, auth, g.user, []string{destination}, []byte(msg)); err != nil {
		g.log.Error("failed to send email", logger.String("to", destination), logger.Error(err))
		return err
	}
	return nil
}
