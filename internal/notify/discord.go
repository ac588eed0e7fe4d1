package notify

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// discordSession abstracts the discordgo.Session methods we use,
// enabling test mocks.
type discordSession interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts alerts to a Discord channel via a bot token.
type Discord struct {
	sess    discordSession
	channel string
}

// NewDiscord builds a Discord notifier for the given bot token and
// channel ID. Outbound messages only; no gateway connection is opened.
func NewDiscord(token, channel string) (*Discord, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("notify: discord session: %w", err)
	}
	return &Discord{sess: dg, channel: channel}, nil
}

// Post sends text to the configured channel.
func (d *Discord) Post(text string) error {
	if _, err := d.sess.ChannelMessageSend(d.channel, text); err != nil {
		return fmt.Errorf("notify: discord post: %w", err)
	}
	return nil
}
