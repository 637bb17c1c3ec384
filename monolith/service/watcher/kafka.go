package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mycok/uJobs/jobs"
)

// Static and compile-time check to ensure KafkaPublisher implements
// Publisher.
var _ Publisher = (*KafkaPublisher)(nil)

// postingMessage is the JSON payload written for each new posting.
type postingMessage struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Source       string    `json:"source"`
	Remote       bool      `json:"remote"`
	Keywords     []string  `json:"jd_keywords"`
	DatePosted   time.Time `json:"datePosted"`
	DiscoveredAt time.Time `json:"discoveredAt"`
}

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per posting, keyed by the posting URL
// so updates of a posting land on the same partition.
type KafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaPublisher returns a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher: brokers not provided")
	}

	if topic == "" {
		return nil, fmt.Errorf("kafka publisher: topic not provided")
	}

	return NewPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
	}), nil
}

// NewPublisher wraps an existing message writer.
func NewPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, postings []jobs.Posting) error {
	msgs := make([]kafka.Message, 0, len(postings))

	for i := range postings {
		data, err := json.Marshal(newPostingMessage(&postings[i]))
		if err != nil {
			return fmt.Errorf("kafka publisher: %w", err)
		}

		msgs = append(msgs, kafka.Message{
			Key:   []byte(postings[i].URL),
			Value: data,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka publisher: %w", err)
	}

	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func newPostingMessage(p *jobs.Posting) postingMessage {
	keywords := p.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	return postingMessage{
		ID:           p.ID.String(),
		URL:          p.URL,
		Title:        p.Title,
		Company:      p.Company,
		Location:     p.Location,
		Source:       string(p.Board),
		Remote:       p.Remote,
		Keywords:     keywords,
		DatePosted:   p.DatePosted,
		DiscoveredAt: p.DiscoveredAt,
	}
}
