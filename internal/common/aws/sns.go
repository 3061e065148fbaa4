// internal/common/aws/sns.go
package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSAPI is the subset of the SNS client used here.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	client   SNSAPI
	topicARN string
}

func NewSNSClient(ctx context.Context, region, topicARN string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewSNSClientWithAPI(sns.NewFromConfig(cfg), topicARN), nil
}

func NewSNSClientWithAPI(api SNSAPI, topicARN string) *SNSClient {
	return &SNSClient{client: api, topicARN: topicARN}
}

// Publish sends message to the configured topic. Attributes become string
// message attributes for subscription filtering.
func (s *SNSClient) Publish(ctx context.Context, subject, message string, attributes map[string]string) (string, error) {
	input := &sns.PublishInput{
		TopicArn: awssdk.String(s.topicARN),
		Message:  awssdk.String(message),
	}
	if subject != "" {
		input.Subject = awssdk.String(subject)
	}
	if len(attributes) > 0 {
		input.MessageAttributes = make(map[string]types.MessageAttributeValue, len(attributes))
		for k, v := range attributes {
			input.MessageAttributes[k] = types.MessageAttributeValue{
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(v),
			}
		}
	}

	out, err := s.client.Publish(ctx, input)
	if err != nil {
		return "", err
	}
	return awssdk.ToString(out.MessageId), nil
}
