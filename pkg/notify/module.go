package notify

import (
	"context"
	"errors"
	"fmt"

	"license-tracker/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("notify", fx.Provide(ProvideChannels))

// Channels groups the configured delivery paths. Contact channels address
// owners by email; Chat is the team webhook and may be nil.
type Channels struct {
	Contact []Channel
	Chat    Channel
}

func ProvideChannels(lc fx.Lifecycle, cfg *config.Config) (*Channels, error) {
	n := cfg.Notification
	out := &Channels{}

	for _, name := range n.ContactChannels {
		ch, closer, err := newContactChannel(name, cfg)
		if errors.Is(err, ErrNotConfigured) {
			zap.L().Warn("contact channel disabled", zap.String("channel", name), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		if closer != nil {
			lc.Append(fx.Hook{OnStop: func(context.Context) error { closer(); return nil }})
		}
		out.Contact = append(out.Contact, ch)
	}

	if n.Webhook.URL != "" {
		chat, err := NewWebhookChannel(n.Webhook.URL, n.Webhook.Timeout)
		if err != nil {
			return nil, err
		}
		out.Chat = chat
	} else {
		zap.L().Warn("chat webhook disabled", zap.String("reason", "notification.webhook.url not set"))
	}

	return out, nil
}

func newContactChannel(name string, cfg *config.Config) (Channel, func(), error) {
	n := cfg.Notification
	switch name {
	case ChannelEmail:
		ch, err := NewEmailChannel(SMTPConfig{
			Host:     n.SMTP.Host,
			Port:     n.SMTP.Port,
			Username: n.SMTP.Username,
			Password: n.SMTP.Password,
			From:     n.SMTP.From,
			StartTLS: n.SMTP.StartTLS,
			Timeout:  n.SMTP.Timeout,
		})
		return ch, nil, err
	case ChannelSNS:
		pub, err := NewSNSPublisher(SNSConfig{
			TopicArn:  n.SNS.TopicArn,
			Region:    n.SNS.Region,
			Endpoint:  n.SNS.Endpoint,
			AccessKey: n.SNS.AccessKey,
			SecretKey: n.SNS.SecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return NewPubSubChannel(pub), nil, nil
	case ChannelKafka:
		pub, err := NewKafkaPublisher(n.Kafka.Addrs, n.Kafka.TopicPrefix)
		if err != nil {
			return nil, nil, err
		}
		return NewPubSubChannel(pub), pub.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown contact channel %q", name)
	}
}
