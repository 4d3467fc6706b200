package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"mobistay/config"
	"mobistay/pkg/logger"
)

const smsEndpoint = "https://api.africastalking.com/version1/messaging"

// SMSGateway posts to the Africa's Talking messaging API, or logs the
// message when no API key is configured.
type SMSGateway struct {
	apiKey   string
	username string
	sender   string
	client   *http.Client
	log      logger.ILogger
}

func NewSMSGateway(cfg config.Config, log logger.ILogger) *SMSGateway {
	return &SMSGateway{
		apiKey:   cfg.SMSAPIKey,
		username: cfg.SMSUsername,
		sender:   cfg.SMSSender,
		client:   http.DefaultClient,
		log:      log,
	}
}

func (g *SMSGateway) SendCode(ctx context.Context, destination, code string) error {
	text := fmt.Sprintf("Your Mobistay verification code is %s. It expires in 5 minutes.", code)
	return g.SendMessage(ctx, destination, "", text)
}

func (g *SMSGateway) SendMessage(ctx context.Context, destination, _ string, text string) error {
	if g.apiKey == "" || g.username == "" {
		g.log.Warning("sms gateway not configured, logging message instead",
			logger.String("to", destination), logger.String("text", text))
		return nil
	}

	form := url.Values{}
	form.Set("username", g.username)
	form.Set("to", destination)
	form.Set("from", g.sender)
	form.Set("message", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, smsEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Error("failed to send sms", logger.String("to", destination), logger.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		g.log.Error("sms gateway rejected message",
			logger.String("to", destination), logger.Int("status", resp.StatusCode))
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
