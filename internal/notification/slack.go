package notification

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

type Notifer interface {
	Notify(message string) error
}

// None drops every message.
type None struct{}

func NewNone() *None {
	return &None{}
}

func (*None) Notify(string) error {
	return nil
}

// Slack posts to an incoming webhook.
type Slack struct {
	channel string
	webhook string
	client  *resty.Client
}

func NewNotifer(channel, webhook string) *Slack {
	return &Slack{
		channel: channel,
		webhook: webhook,
		client:  resty.New().SetTimeout(10 * time.Second),
	}
}

func (s *Slack) Notify(message string) error {
	body := map[string]string{"text": message + " " + time.Now().Format(time.UnixDate)}
	if s.channel != "" {
		body["channel"] = s.channel
	}
	resp, err := s.client.R().SetBody(body).Post(s.webhook)
	if err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("slack: http %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// New picks Slack when a webhook is configured.
func New(channel, webhook string) Notifer {
	if webhook == "" {
		return NewNone()
	}
	return NewNotifer(channel, webhook)
}
