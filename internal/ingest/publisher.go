package ingest

import (
	"context"
	"encoding/json"

	"careerhub/internal/listing"

	"github.com/nats-io/nats.go"
)

// Publisher sends crawled records to the consumers.
type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

// Publish encodes payload as JSON on the subject of category c.
func (p *Publisher) Publish(_ context.Context, c listing.Category, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.conn.Publish(Subject(c), data)
}

// Flush waits until the server has processed every published message.
func (p *Publisher) Flush() error {
	return p.conn.Flush()
}
