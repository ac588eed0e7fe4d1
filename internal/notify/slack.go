package notify

import (
	"fmt"

	slackapi "github.com/slack-go/slack"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Slack posts alerts to a Slack channel via a bot token.
type Slack struct {
	client  slackClient
	channel string
}

// NewSlack builds a Slack notifier for the given bot token and channel ID.
func NewSlack(token, channel string) *Slack {
	return &Slack{
		client:  slackapi.New(token),
		channel: channel,
	}
}

// Post sends text to the configured channel.
func (s *Slack) Post(text string) error {
	_, _, err := s.client.PostMessage(s.channel, slackapi.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("notify: slack post: %w", err)
	}
	return nil
}
