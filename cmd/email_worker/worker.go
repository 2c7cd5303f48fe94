package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookworm-api/pkg/mailer"
	mailtpl "github.com/oksasatya/bookworm-api/pkg/mailer/templates"
)

const sendTimeout = 15 * time.Second

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type outcome int

const (
	acked outcome = iota
	requeued
	dropped
)

type worker struct {
	mail   Sender
	logger *logrus.Logger
}

// handle processes one delivery. Undecodable or unrenderable jobs are dropped,
// send failures are requeued for another attempt.
func (w *worker) handle(ctx context.Context, msg amqp.Delivery) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		w.logger.WithError(err).Warn("bad email job")
		_ = msg.Nack(false, false)
		return dropped
	}
	if job.To == "" {
		w.logger.Warn("email job without recipient")
		_ = msg.Nack(false, false)
		return dropped
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			w.logger.WithError(err).WithField("template", job.Template).Warn("render email failed")
			_ = msg.Nack(false, false)
			return dropped
		}
		subject, text, html = s, t, h
	}
	if subject == "" || (text == "" && html == "") {
		w.logger.Warn("email job without content")
		_ = msg.Nack(false, false)
		return dropped
	}

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := w.mail.Send(c, job.To, subject, text, html); err != nil {
		w.logger.WithError(err).WithField("template", job.Template).Warn("send email failed")
		_ = msg.Nack(false, true)
		return requeued
	}
	_ = msg.Ack(false)
	return acked
}

// run consumes deliveries until the channel closes or ctx is cancelled.
func (w *worker) run(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.handle(ctx, msg)
		}
	}
}
