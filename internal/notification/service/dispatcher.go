package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/udyogmart/udyogmart/internal/metrics"
	notificationdomain "github.com/udyogmart/udyogmart/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	queueSize      = 1024
	deliverTimeout = 5 * time.Second
)

type envelope struct {
	userID  snowflake.ID
	event   notificationdomain.EventKind
	payload map[string]any
}

// Dispatcher drains a bounded queue into the sink on a single worker
// goroutine. A full queue drops the event rather than blocking settlement.
type Dispatcher struct {
	log      *zap.Logger
	sink     notificationdomain.Sink
	recorder *metrics.Recorder

	queue chan envelope
	stop  chan struct{}
	done  chan struct{}
}

type DispatcherParam struct {
	fx.In

	Log      *zap.Logger
	Sink     notificationdomain.Sink
	Recorder *metrics.Recorder
}

func NewDispatcher(p DispatcherParam) *Dispatcher {
	return &Dispatcher{
		log:      p.Log.Named("notification.dispatcher"),
		sink:     p.Sink,
		recorder: p.Recorder,
		queue:    make(chan envelope, queueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (d *Dispatcher) Dispatch(userID snowflake.ID, event notificationdomain.EventKind, payload map[string]any) {
	select {
	case d.queue <- envelope{userID: userID, event: event, payload: payload}:
	default:
		d.recorder.RecordNotificationFailure()
		d.log.Warn("notification queue full, event dropped",
			zap.String("user_id", userID.String()),
			zap.String("event", string(event)),
		)
	}
}

func (d *Dispatcher) Start() {
	go d.run()
}

// Stop drains queued events and waits for the worker to exit.
func (d *Dispatcher) Stop() {
	close(d.stop)
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		select {
		case env := <-d.queue:
			d.deliver(env)
		case <-d.stop:
			for {
				select {
				case env := <-d.queue:
					d.deliver(env)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(env envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	if err := d.sink.Notify(ctx, env.userID, env.event, env.payload); err != nil {
		d.recorder.RecordNotificationFailure()
		d.log.Warn("notification delivery failed",
			zap.String("user_id", env.userID.String()),
			zap.String("event", string(env.event)),
			zap.Error(err),
		)
	}
}

var _ notificationdomain.Dispatcher = (*Dispatcher)(nil)
