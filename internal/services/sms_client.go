package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// SMSClient talks to the external SMS gateway. This is the delivery
// boundary: the worker hands a phone and a body to the gateway and
// never hears about the SMS again.
type SMSClient struct {
	http *resty.Client
	url  string
	log  *zap.Logger
}

func NewSMSClient(gatewayURL, authKey string, timeout time.Duration, log *zap.Logger) *SMSClient {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-auth-key", authKey)

	return &SMSClient{
		http: client,
		url:  gatewayURL,
		log:  log,
	}
}

type smsRequest struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

func (c *SMSClient) Send(ctx context.Context, phone, content string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(smsRequest{To: phone, Content: content}).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("sms gateway unavailable: %w", err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusAccepted {
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode(), resp.String())
	}

	c.log.Info("sms accepted by gateway", zap.String("phone", phone), zap.Int("status", resp.StatusCode()))
	return nil
}
