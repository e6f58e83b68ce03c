package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// SMSSender posts codes to an HTTP SMS gateway as
// {"to": "...", "message": "..."} with a bearer token.
type SMSSender struct {
	client *resty.Client
	url    string
}

type smsRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

func NewSMSSender(gatewayURL, token string) *SMSSender {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &SMSSender{client: client, url: gatewayURL}
}

func (s *SMSSender) Send(ctx context.Context, to, code string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(smsRequest{
			To:      to,
			Message: fmt.Sprintf("SalonBook: seu código de verificação é %s", code),
		}).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sms gateway returned %d", resp.StatusCode())
	}
	return nil
}
