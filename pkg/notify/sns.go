package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/gosimple/unidecode"
)

const (
	ChannelSNS = "sns"

	snsRecipientAttribute = "recipient"
	snsMaxSubject         = 100
)

type snsAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	Subscribe(ctx context.Context, in *sns.SubscribeInput, optFns ...func(*sns.Options)) (*sns.SubscribeOutput, error)
	ListSubscriptionsByTopic(ctx context.Context, in *sns.ListSubscriptionsByTopicInput, optFns ...func(*sns.Options)) (*sns.ListSubscriptionsByTopicOutput, error)
}

type SNSConfig struct {
	TopicArn  string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// SNSPublisher publishes to one shared topic. Each recipient gets an email
// subscription with a filter policy on the recipient attribute, so a message
// only reaches its addressee.
type SNSPublisher struct {
	client   snsAPI
	topicArn string
}

func NewSNSPublisher(cfg SNSConfig) (*SNSPublisher, error) {
	if cfg.TopicArn == "" {
		return nil, fmt.Errorf("sns topic arn: %w", ErrNotConfigured)
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("sns credentials: %w", ErrNotConfigured)
	}

	opts := sns.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return newSNSPublisher(sns.New(opts), cfg.TopicArn), nil
}

func newSNSPublisher(client snsAPI, topicArn string) *SNSPublisher {
	return &SNSPublisher{client: client, topicArn: topicArn}
}

func (p *SNSPublisher) Name() string { return ChannelSNS }

func (p *SNSPublisher) EnsureSubscribed(ctx context.Context, destination string) error {
	pages := sns.NewListSubscriptionsByTopicPaginator(p.client, &sns.ListSubscriptionsByTopicInput{
		TopicArn: aws.String(p.topicArn),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, sub := range page.Subscriptions {
			if aws.ToString(sub.Protocol) == "email" && strings.EqualFold(aws.ToString(sub.Endpoint), destination) {
				return nil
			}
		}
	}

	_, err := p.client.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn: aws.String(p.topicArn),
		Protocol: aws.String("email"),
		Endpoint: aws.String(destination),
		Attributes: map[string]string{
			"FilterPolicy": fmt.Sprintf(`{%q:[%q]}`, snsRecipientAttribute, strings.ToLower(destination)),
		},
		ReturnSubscriptionArn: true,
	})
	return err
}

func (p *SNSPublisher) Publish(ctx context.Context, destination string, m Message) error {
	subject := snsSubject(m.Subject)

	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(m.Body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			snsRecipientAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(strings.ToLower(destination)),
			},
		},
	})
	return err
}

// snsSubject folds the subject to printable ASCII and caps its length, SNS
// rejects anything else.
func snsSubject(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return -1
		}
		return r
	}, unidecode.Unidecode(s))
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > snsMaxSubject {
		s = strings.TrimSpace(s[:snsMaxSubject])
	}
	return s
}
