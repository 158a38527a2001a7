package queue

import (
	"context"
	"errors"
	"strings"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/services/notifier"
	"github.com/nats-io/nats.go"
	"github.com/opentracing/opentracing-go"
	"github.com/rs/zerolog/log"
)

const queueGroup = "estafette-bitbucket-server-notifier"

var (
	ErrNotConnected = errors.New("queue connection has not been created")
)

//go:generate mockgen -package=queue -destination ./mock.go -source=service.go
type Service interface {
	CreateConnection(ctx context.Context) (err error)
	CloseConnection(ctx context.Context)
	InitSubscriptions(ctx context.Context, notifierService notifier.Service) (err error)
	ReceiveNotificationRequest(request *api.NotificationRequest)
	PublishNotificationEvent(ctx context.Context, event api.NotificationEvent) (err error)
}

// NewService returns a new queue.Service
func NewService(configGetter api.ConfigGetter) Service {
	return &service{
		configGetter: configGetter,
	}
}

type service struct {
	configGetter          api.ConfigGetter
	notifierService       notifier.Service
	natsConnection        *nats.Conn
	natsEncodedConnection *nats.EncodedConn
}

func (s *service) CreateConnection(ctx context.Context) (err error) {
	s.natsConnection, err = nats.Connect(strings.Join(s.configGetter.GetConfig().Queue.Hosts, ","), nats.Name(queueGroup))
	if err != nil {
		return
	}

	s.natsEncodedConnection, err = nats.NewEncodedConn(s.natsConnection, nats.JSON_ENCODER)
	if err != nil {
		return
	}

	return nil
}

func (s *service) CloseConnection(ctx context.Context) {
	if s.natsEncodedConnection != nil {
		s.natsEncodedConnection.Close()
	}
	if s.natsConnection != nil {
		s.natsConnection.Close()
	}
}

func (s *service) InitSubscriptions(ctx context.Context, notifierService notifier.Service) (err error) {
	if s.natsEncodedConnection == nil {
		return ErrNotConnected
	}

	s.notifierService = notifierService

	_, err = s.natsEncodedConnection.QueueSubscribe(s.configGetter.GetConfig().Queue.SubjectBuilds, queueGroup, s.ReceiveNotificationRequest)
	if err != nil {
		return
	}

	return nil
}

func (s *service) ReceiveNotificationRequest(request *api.NotificationRequest) {
	if request == nil || s.notifierService == nil {
		return
	}

	var err error
	ctx := context.Background()
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName("queue", "ReceiveNotificationRequest"))
	defer func() { api.FinishSpanWithError(span, err) }()

	var sent bool
	sent, err = s.notifierService.NotifyJob(ctx, request.Job, request.Build)
	if err != nil {
		log.Error().Err(err).Str("job", request.Job).Msg("Failed handling notification request from queue")
		return
	}

	log.Debug().Str("job", request.Job).Bool("sent", sent).Msg("Handled notification request from queue")
}

func (s *service) PublishNotificationEvent(ctx context.Context, event api.NotificationEvent) (err error) {
	span, _ := opentracing.StartSpanFromContext(ctx, api.GetSpanName("queue", "PublishNotificationEvent"))
	defer func() { api.FinishSpanWithError(span, err) }()

	if s.natsEncodedConnection == nil {
		return ErrNotConnected
	}

	return s.natsEncodedConnection.Publish(s.configGetter.GetConfig().Queue.SubjectNotifications, &event)
}
