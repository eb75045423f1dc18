package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// JobHandler processes one dequeued large-file job. Returning an error nacks
// the message so Pub/Sub redelivers it.
type JobHandler func(ctx context.Context, job *LargeFileJob) error

// Consumer receives large-file jobs one at a time. Large files are memory
// heavy, so concurrency stays at 1.
type Consumer struct {
	client    *pubsub.Client
	topicName string
	subName   string
	handler   JobHandler
}

// NewConsumer connects to Pub/Sub for the large-file subscription.
func NewConsumer(ctx context.Context, projectID, topicName, credentialsFile string, handler JobHandler) (*Consumer, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &Consumer{
		client:    client,
		topicName: topicName,
		subName:   topicName + "-sub", // Convention: topic-sub
		handler:   handler,
	}, nil
}

// Start ensures the subscription exists and blocks receiving messages until
// the context is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	log.Printf("[LargeFileQueue] Starting consumer on topic: %s, subscription: %s", c.topicName, c.subName)

	sub := c.client.Subscription(c.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[LargeFileQueue] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := c.client.Topic(c.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[LargeFileQueue] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[LargeFileQueue] Topic does not exist, cannot create subscription")
			return
		}

		sub, err = c.client.CreateSubscription(ctx, c.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Minute, // Large files take a while
		})
		if err != nil {
			log.Printf("[LargeFileQueue] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[LargeFileQueue] Created subscription: %s", c.subName)
	}

	// One large file at a time
	sub.ReceiveSettings.MaxOutstandingMessages = 1
	sub.ReceiveSettings.NumGoroutines = 1

	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		var job LargeFileJob
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			log.Printf("[LargeFileQueue] Failed to unmarshal job, dropping: %v", err)
			msg.Ack()
			return
		}

		log.Printf("[LargeFileQueue] Processing queued file %s (%d bytes) for tenant %s",
			job.FileName, job.FileSize, job.TenantID)

		if err := c.handler(ctx, &job); err != nil {
			log.Printf("[LargeFileQueue] Failed to process %s, nacking for retry: %v", job.FileName, err)
			msg.Nack()
			return
		}
		msg.Ack()
	})
	if err != nil {
		log.Printf("[LargeFileQueue] Error receiving messages: %v", err)
	}
}

// Close releases the Pub/Sub client.
func (c *Consumer) Close() error {
	return c.client.Close()
}
