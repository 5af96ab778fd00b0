package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/metrics"
	"github.com/Builder-Lawyers/orbiter-backend/pkg/env"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/goccy/go-json"
)

type ContractQueueConfig struct {
	Enabled bool
	SqsURL  string
}

func NewContractQueueConfig() ContractQueueConfig {
	url := env.GetEnv("CONTRACT_SQS_URL", "")
	return ContractQueueConfig{
		Enabled: env.GetBool("CONTRACT_SQS_ENABLED", url != ""),
		SqsURL:  url,
	}
}

// ContractQueue hands contract work to the on-chain worker over SQS.
type ContractQueue struct {
	client *sqs.Client
	cfg    ContractQueueConfig
}

var _ interfaces.ContractQueue = (*ContractQueue)(nil)

func NewContractQueue(client *sqs.Client, cfg ContractQueueConfig) *ContractQueue {
	return &ContractQueue{client: client, cfg: cfg}
}

func (q *ContractQueue) Publish(ctx context.Context, msg entity.ContractMessage) (err error) {
	if !q.cfg.Enabled {
		slog.Debug("contract queue disabled, dropping message", "type", msg.Type, "cid", msg.CID)
		return nil
	}
	defer func(started time.Time) { metrics.ObserveProvider("sqs", "send_message", started, err) }(time.Now())

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("err marshalling contract message, %w", err)
	}
	out, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.cfg.SqsURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"type": {DataType: aws.String("String"), StringValue: aws.String(string(msg.Type))},
		},
	})
	if err != nil {
		return fmt.Errorf("err sending contract message, %w", err)
	}
	slog.Info("contract message queued", "type", msg.Type, "id", aws.ToString(out.MessageId))
	return nil
}
