package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/document-qa/internal/infrastructure/resilience"
)

const (
	DefaultDocumentSubject = "documents.loaded"
	DefaultQuestionSubject = "questions"
	questionWorkersGroup   = "workers"
)

// Queue carries two flows: document reload events delivered to every subscriber, and queued
// questions delivered to one worker of the group.
type Queue struct {
	conn            *nats.Conn
	documentSubject string
	questionSubject string
	executor        *resilience.Executor
	logger          *slog.Logger
}

type Options struct {
	Name                 string
	DocumentSubject      string
	QuestionSubject      string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
}

func New(url string) (*Queue, error) {
	return NewWithOptions(url, Options{})
}

func NewWithOptions(url string, options Options) (*Queue, error) {
	options = options.withDefaults()
	logger := options.Logger

	conn, err := nats.Connect(
		url,
		nats.Name(options.Name),
		nats.Timeout(options.ConnectTimeout),
		nats.ReconnectWait(options.ReconnectWait),
		nats.MaxReconnects(options.MaxReconnects),
		nats.RetryOnFailedConnect(*options.RetryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:            conn,
		documentSubject: options.DocumentSubject,
		questionSubject: options.QuestionSubject,
		executor:        options.ResilienceExecutor,
		logger:          logger,
	}, nil
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = "document-qa"
	}
	if o.DocumentSubject == "" {
		o.DocumentSubject = DefaultDocumentSubject
	}
	if o.QuestionSubject == "" {
		o.QuestionSubject = DefaultQuestionSubject
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 2 * time.Second
	}
	if o.ReconnectWait <= 0 {
		o.ReconnectWait = 2 * time.Second
	}
	if o.MaxReconnects <= 0 {
		o.MaxReconnects = 60
	}
	if o.RetryOnFailedConnect == nil {
		retry := true
		o.RetryOnFailedConnect = &retry
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishDocumentLoaded(ctx context.Context, documentID string) error {
	return q.publish(ctx, q.documentSubject, documentID)
}

func (q *Queue) PublishQuestion(ctx context.Context, interactionID string) error {
	return q.publish(ctx, q.questionSubject, interactionID)
}

// SubscribeDocumentLoaded blocks until ctx is done. Every subscribed process receives every event.
func (q *Queue) SubscribeDocumentLoaded(ctx context.Context, handler func(context.Context, string) error) error {
	return q.consume(ctx, func(cb nats.MsgHandler) (*nats.Subscription, error) {
		return q.conn.Subscribe(q.documentSubject, cb)
	}, "document_event_failed", handler)
}

// SubscribeQuestions blocks until ctx is done. Each question is delivered to one worker.
func (q *Queue) SubscribeQuestions(ctx context.Context, handler func(context.Context, string) error) error {
	return q.consume(ctx, func(cb nats.MsgHandler) (*nats.Subscription, error) {
		return q.conn.QueueSubscribe(q.questionSubject, questionWorkersGroup, cb)
	}, "question_handler_failed", handler)
}

func (q *Queue) publish(ctx context.Context, subject, payload string) error {
	err := q.executor.Execute(ctx, "nats.publish", func(_ context.Context) error {
		if err := q.conn.Publish(subject, []byte(payload)); err != nil {
			return fmt.Errorf("nats publish %s: %w", subject, err)
		}
		return nil
	}, classifyNATSError)
	return resilience.WrapTemporary("nats publish", err, classifyNATSError)
}

func (q *Queue) consume(
	ctx context.Context,
	subscribe func(nats.MsgHandler) (*nats.Subscription, error),
	failureEvent string,
	handler func(context.Context, string) error,
) error {
	sub, err := subscribe(func(msg *nats.Msg) {
		if ctx.Err() != nil {
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, string(msg.Data)); err != nil {
			q.logger.Error(failureEvent, "subject", msg.Subject, "id", string(msg.Data), "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
