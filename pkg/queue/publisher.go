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

// MaxQueueFileSize is the hard ceiling for queued files (1GB).
const MaxQueueFileSize = 1024 * 1024 * 1024

// LargeFileJob describes a file too large for inline webhook processing.
type LargeFileJob struct {
	TenantID string    `json:"tenant_id"`
	DriveID  string    `json:"drive_id"`
	ItemID   string    `json:"item_id"`
	FileName string    `json:"file_name"`
	FileSize int64     `json:"file_size"`
	QueuedAt time.Time `json:"queued_at"`
}

// Publisher enqueues large-file jobs on a Pub/Sub topic.
type Publisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPublisher connects to Pub/Sub and binds the large-file topic.
func NewPublisher(ctx context.Context, projectID, topicName, credentialsFile string) (*Publisher, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &Publisher{
		client: client,
		topic:  client.Topic(topicName),
	}, nil
}

// Enqueue publishes a job and waits for the server ack.
func (p *Publisher) Enqueue(ctx context.Context, job *LargeFileJob) error {
	if job.FileSize > MaxQueueFileSize {
		return fmt.Errorf("file %s exceeds maximum queue size (%d bytes)", job.FileName, job.FileSize)
	}
	if job.QueuedAt.IsZero() {
		job.QueuedAt = time.Now().UTC()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish job: %w", err)
	}

	log.Printf("[LargeFileQueue] Enqueued %s (%d bytes) for tenant %s", job.FileName, job.FileSize, job.TenantID)
	return nil
}

// Close releases the Pub/Sub client.
func (p *Publisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
