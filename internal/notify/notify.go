// Package notify publishes high-priority assessments to NATS.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/logging"
)

const DefaultSubject = "watchfloor.assessments"

// Headers set on every message.
const (
	HeaderAssessmentID = "Watchfloor-Assessment-Id"
	HeaderArticleID    = "Watchfloor-Article-Id"
	HeaderPriority     = "Watchfloor-Priority"
)

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// Publisher sends assessments at or above a minimum priority to
// <subject>.<priority>, the priority in lower case.
type Publisher struct {
	nc      conn
	subject string
	min     intel.Level
}

// Connect dials NATS and returns a Publisher on it.
func Connect(url, subject string, min intel.Level) (*Publisher, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("watchfloor"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logging.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return New(nc, subject, min), nil
}

// New wraps an existing connection.
func New(nc conn, subject string, min intel.Level) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	if !min.Valid() {
		min = intel.LevelHigh
	}
	return &Publisher{nc: nc, subject: subject, min: min}
}

// Subject returns the subject an assessment of priority p goes to.
func (p *Publisher) Subject(level intel.Level) string {
	return p.subject + "." + strings.ToLower(string(level))
}

// Publish sends a if its priority is at or above the minimum. sent is
// false when a was filtered out.
func (p *Publisher) Publish(ctx context.Context, a intel.IntelligenceAssessment) (sent bool, err error) {
	if !a.Priority.AtLeast(p.min) {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	data, err := json.Marshal(a)
	if err != nil {
		return false, fmt.Errorf("encode assessment %s: %w", a.ID, err)
	}
	msg := nats.NewMsg(p.Subject(a.Priority))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, a.ID)
	msg.Header.Set(HeaderAssessmentID, a.ID)
	msg.Header.Set(HeaderArticleID, a.ArticleID)
	msg.Header.Set(HeaderPriority, string(a.Priority))
	if err := p.nc.PublishMsg(msg); err != nil {
		return false, fmt.Errorf("publish assessment %s: %w", a.ID, err)
	}
	return true, nil
}

// PublishAll publishes every qualifying assessment and flushes. It keeps
// going past individual failures and returns them joined.
func (p *Publisher) PublishAll(ctx context.Context, assessments []intel.IntelligenceAssessment) (int, error) {
	var errs []error
	sent := 0
	for _, a := range assessments {
		ok, err := p.Publish(ctx, a)
		if err != nil {
			if ctx.Err() != nil {
				return sent, ctx.Err()
			}
			errs = append(errs, err)
			continue
		}
		if ok {
			sent++
		}
	}
	if sent > 0 {
		if err := p.nc.FlushWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush: %w", err))
		}
	}
	return sent, errors.Join(errs...)
}

// Close drains the connection.
func (p *Publisher) Close() error {
	return p.nc.Drain()
}
