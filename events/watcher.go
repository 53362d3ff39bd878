package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/client_event_pb2"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/events_pb2"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/validator_pb2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/protoadapt"

	"github.com/mezonai/sawlet/logx"
)

const (
	subscribeTimeout = 5 * time.Second
	recvInterval     = 250 * time.Millisecond
)

// Watcher subscribes to state-delta events for one namespace and routes them to the bus.
type Watcher struct {
	dial   func() (Conn, error)
	router *EventRouter
	prefix string
	log    *logx.Logger
}

func NewWatcher(validatorURL string, router *EventRouter, prefix string, log *logx.Logger) *Watcher {
	return NewWatcherWithDialer(func() (Conn, error) { return DialZMQ(validatorURL) }, router, prefix, log)
}

func NewWatcherWithDialer(dial func() (Conn, error), router *EventRouter, prefix string, log *logx.Logger) *Watcher {
	return &Watcher{dial: dial, router: router, prefix: prefix, log: log}
}

// Run subscribes and routes events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	conn, err := w.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := w.subscribe(ctx, conn); err != nil {
		return err
	}
	w.log.Infof("Subscribed to state changes under %s", w.prefix)

	for {
		select {
		case <-ctx.Done():
			w.unsubscribe(conn)
			return nil
		default:
		}

		data, err := conn.Recv(recvInterval)
		if err != nil {
			return fmt.Errorf("receive events: %w", err)
		}
		if data == nil {
			continue
		}

		msg := &validator_pb2.Message{}
		if err := unmarshal(data, msg); err != nil {
			w.log.Warnf("Dropping undecodable message: %v", err)
			continue
		}
		if msg.GetMessageType() != validator_pb2.Message_CLIENT_EVENTS {
			w.log.Warnf("Unexpected message type: %v", msg.GetMessageType())
			continue
		}

		list := &events_pb2.EventList{}
		if err := unmarshal(msg.GetContent(), list); err != nil {
			w.log.Warnf("Dropping undecodable event list: %v", err)
			continue
		}
		if _, err := w.router.Route(list); err != nil {
			w.log.Warnf("Failed to route events: %v", err)
		}
	}
}

func (w *Watcher) subscribe(ctx context.Context, conn Conn) error {
	request := &client_event_pb2.ClientEventsSubscribeRequest{
		Subscriptions: []*events_pb2.EventSubscription{
			{EventType: BlockCommitEvent},
			{
				EventType: StateDeltaEvent,
				Filters: []*events_pb2.EventFilter{{
					Key:         "address",
					MatchString: "^" + w.prefix + ".*",
					FilterType:  events_pb2.EventFilter_REGEX_ANY,
				}},
			},
		},
	}
	correlationID, err := send(conn, validator_pb2.Message_CLIENT_EVENTS_SUBSCRIBE_REQUEST, request)
	if err != nil {
		return fmt.Errorf("send subscribe request: %w", err)
	}

	deadline := time.Now().Add(subscribeTimeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := conn.Recv(recvInterval)
		if err != nil {
			return fmt.Errorf("receive subscribe response: %w", err)
		}
		if data == nil {
			continue
		}

		msg := &validator_pb2.Message{}
		if err := unmarshal(data, msg); err != nil {
			return fmt.Errorf("decode subscribe response: %w", err)
		}
		if msg.GetCorrelationId() != correlationID ||
			msg.GetMessageType() != validator_pb2.Message_CLIENT_EVENTS_SUBSCRIBE_RESPONSE {
			continue
		}

		resp := &client_event_pb2.ClientEventsSubscribeResponse{}
		if err := unmarshal(msg.GetContent(), resp); err != nil {
			return fmt.Errorf("decode subscribe response: %w", err)
		}
		if resp.GetStatus() != client_event_pb2.ClientEventsSubscribeResponse_OK {
			return fmt.Errorf("subscription failed with status %v: %s", resp.GetStatus(), resp.GetResponseMessage())
		}
		return nil
	}
	return fmt.Errorf("no subscribe response within %s", subscribeTimeout)
}

func (w *Watcher) unsubscribe(conn Conn) {
	_, err := send(conn, validator_pb2.Message_CLIENT_EVENTS_UNSUBSCRIBE_REQUEST,
		&client_event_pb2.ClientEventsUnsubscribeRequest{})
	if err != nil {
		w.log.Warnf("Failed to unsubscribe: %v", err)
	}
}

func send(conn Conn, typ validator_pb2.Message_MessageType, content protoadapt.MessageV1) (string, error) {
	body, err := proto.Marshal(protoadapt.MessageV2Of(content))
	if err != nil {
		return "", err
	}
	correlationID := uuid.NewString()
	data, err := proto.Marshal(protoadapt.MessageV2Of(&validator_pb2.Message{
		CorrelationId: correlationID,
		MessageType:   typ,
		Content:       body,
	}))
	if err != nil {
		return "", err
	}
	return correlationID, conn.Send(data)
}

func unmarshal(data []byte, m protoadapt.MessageV1) error {
	return proto.Unmarshal(data, protoadapt.MessageV2Of(m))
}
