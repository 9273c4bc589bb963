// Package ingest receives crawled records over NATS and stores them through the
// ingest service.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"careerhub/internal/listing"
	"careerhub/internal/middleware"
	"careerhub/internal/models"
	"careerhub/internal/observability"
	"careerhub/internal/service"

	"github.com/nats-io/nats.go"
)

const (
	// SubjectPrefix prefixes the per-category subjects, e.g. crawling.outside.
	SubjectPrefix = "crawling."
	// QueueGroup spreads messages across every running consumer.
	QueueGroup = "careerhub-ingest"

	connectWait    = 5 * time.Second
	maxReconnects  = -1
	reconnectWait  = 2 * time.Second
	handlerTimeout = 10 * time.Second
)

// ErrUnknownSubject is returned for messages outside the crawling subjects.
var ErrUnknownSubject = errors.New("unknown ingest subject")

// Subject returns the subject crawled records of category c are published on.
func Subject(c listing.Category) string {
	return SubjectPrefix + string(c)
}

// Connect dials NATS with reconnects enabled and logs connection state changes.
func Connect(url, name string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(connectWait),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			middleware.Logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			middleware.Logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			middleware.Logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return nc, nil
}

// Indexer is the part of the ingest service the consumer drives.
type Indexer interface {
	IndexLinkareer(ctx context.Context, in service.LinkareerInput) (string, error)
	IndexLanguage(ctx context.Context, in service.LanguageInput) (*models.Language, error)
	IndexQnet(ctx context.Context, in service.QnetInput) (*models.Qnet, error)
}

// linkareerMessage is the payload of crawling.outside, crawling.intern and crawling.competition.
type linkareerMessage struct {
	Data  map[string]any `json:"data"`
	Month int            `json:"month"`
	Scale int            `json:"scale"`
}

type languageMessage struct {
	Test       string    `json:"test"`
	Classify   string    `json:"classify"`
	ExamDate   time.Time `json:"examDate"`
	CloseDate  time.Time `json:"closeDate"`
	ResultDate time.Time `json:"resultDate"`
	HomePage   string    `json:"homePage"`
}

type qnetMessage struct {
	CategoryObj struct {
		MainCategory string `json:"mainCategory"`
		SubCategory  string `json:"subCategory"`
	} `json:"categoryObj"`
	Title         string                `json:"title"`
	Institution   string                `json:"institution"`
	Summary       string                `json:"summary"`
	ExamSchedules []models.ExamSchedule `json:"examSchedules"`
}

// Consumer subscribes to the crawling subjects.
type Consumer struct {
	nc      *nats.Conn
	indexer Indexer
	subs    []*nats.Subscription
}

func NewConsumer(nc *nats.Conn, indexer Indexer) *Consumer {
	return &Consumer{nc: nc, indexer: indexer}
}

// Start queue-subscribes to the subject of every category that can be ingested.
func (c *Consumer) Start(ctx context.Context) error {
	for _, cat := range listing.All() {
		if cat == listing.Community {
			continue
		}
		sub, err := c.nc.QueueSubscribe(Subject(cat), QueueGroup, func(msg *nats.Msg) {
			c.receive(ctx, msg)
		})
		if err != nil {
			c.Stop()
			return fmt.Errorf("subscribe %s: %w", Subject(cat), err)
		}
		c.subs = append(c.subs, sub)
	}
	middleware.Logger.Info("Ingest consumer started", "subjects", len(c.subs), "queue", QueueGroup)
	return nil
}

// Stop drains every subscription.
func (c *Consumer) Stop() {
	for _, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			middleware.Logger.Warn("Failed to drain ingest subscription", "subject", sub.Subject, "error", err)
		}
	}
	c.subs = nil
}

func (c *Consumer) receive(parent context.Context, msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(observability.EnsureCorrelationID(parent), handlerTimeout)
	defer cancel()

	category := strings.TrimPrefix(msg.Subject, SubjectPrefix)
	fields := map[string]any{"subject": msg.Subject, "bytes": len(msg.Data)}
	observability.LogAsyncOperationStart(ctx, "ingest", fields)
	start := time.Now()

	status := "ok"
	if err := c.Handle(ctx, msg.Subject, msg.Data); err != nil {
		status = "error"
		observability.LogAsyncOperationError(ctx, "ingest", err, map[string]any{"subject": msg.Subject})
	} else {
		observability.LogAsyncOperationEnd(ctx, "ingest", map[string]any{
			"subject":     msg.Subject,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
	observability.IngestMessages.WithLabelValues(category, status).Inc()

	if msg.Reply != "" {
		_ = msg.Respond([]byte(status))
	}
}

// Handle decodes one message of subject and stores it.
func (c *Consumer) Handle(ctx context.Context, subject string, data []byte) error {
	if !strings.HasPrefix(subject, SubjectPrefix) {
		return fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}
	category := listing.Category(strings.TrimPrefix(subject, SubjectPrefix))

	switch category {
	case listing.Outside, listing.Intern, listing.Competition:
		var m linkareerMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("decode %s: %w", subject, err)
		}
		_, err := c.indexer.IndexLinkareer(ctx, service.LinkareerInput{
			Category: string(category),
			Data:     m.Data,
			Month:    m.Month,
			Scale:    m.Scale,
		})
		return err
	case listing.Language:
		var m languageMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("decode %s: %w", subject, err)
		}
		_, err := c.indexer.IndexLanguage(ctx, service.LanguageInput(m))
		return err
	case listing.Qnet:
		var m qnetMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("decode %s: %w", subject, err)
		}
		_, err := c.indexer.IndexQnet(ctx, service.QnetInput{
			MainCategory:  m.CategoryObj.MainCategory,
			SubCategory:   m.CategoryObj.SubCategory,
			Title:         m.Title,
			Institution:   m.Institution,
			Summary:       m.Summary,
			ExamSchedules: m.ExamSchedules,
		})
		return err
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}
}
