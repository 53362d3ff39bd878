package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hyperledger/sawtooth-sdk-go/protobuf/client_event_pb2"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/events_pb2"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/transaction_receipt_pb2"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/validator_pb2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/protoadapt"

	"github.com/mezonai/sawlet/address"
	"github.com/mezonai/sawlet/types"
)

func marshal(t *testing.T, m protoadapt.MessageV1) []byte {
	t.Helper()
	data, err := proto.Marshal(protoadapt.MessageV2Of(m))
	require.NoError(t, err)
	return data
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	id1, ch1 := bus.Subscribe()
	_, ch2 := bus.Subscribe()
	assert.Equal(t, 2, bus.GetTotalSubscriptions())

	ev := NewAccountDeleted("addr", 7)
	bus.Publish(ev)
	assert.Equal(t, ev, <-ch1)
	assert.Equal(t, ev, <-ch2)

	assert.True(t, bus.Unsubscribe(id1))
	assert.False(t, bus.Unsubscribe(id1))
	_, open := <-ch1
	assert.False(t, open)
	assert.Equal(t, 1, bus.GetTotalSubscriptions())

	bus.Close()
	assert.Equal(t, 0, bus.GetTotalSubscriptions())
}

func TestEventBusDropsWhenFull(t *testing.T) {
	bus := NewEventBus()
	_, ch := bus.Subscribe()
	for i := 0; i < bus.buffer+10; i++ {
		bus.Publish(NewAccountDeleted("addr", uint64(i)))
	}
	assert.Len(t, ch, bus.buffer)
}

func stateDeltaList(t *testing.T, prefix string) *events_pb2.EventList {
	t.Helper()
	codec := address.NewCodec("bank")
	alice, bob := codec.Address("alice"), codec.Address("bob")

	changes := &transaction_receipt_pb2.StateChangeList{
		StateChanges: []*transaction_receipt_pb2.StateChange{
			{Address: alice, Value: []byte(`{"name":"alice","balance":60}`), Type: transaction_receipt_pb2.StateChange_SET},
			{Address: bob, Type: transaction_receipt_pb2.StateChange_DELETE},
			{Address: "000000" + alice[6:], Value: []byte("foreign"), Type: transaction_receipt_pb2.StateChange_SET},
		},
	}
	return &events_pb2.EventList{
		Events: []*events_pb2.Event{
			{
				EventType: BlockCommitEvent,
				Attributes: []*events_pb2.Event_Attribute{
					{Key: "block_id", Value: "abc"},
					{Key: "block_num", Value: "12"},
				},
			},
			{EventType: StateDeltaEvent, Data: marshal(t, changes)},
		},
	}
}

func TestDecodeStateDelta(t *testing.T) {
	codec := address.NewCodec("bank")
	decoded, err := DecodeStateDelta(codec.Prefix(), stateDeltaList(t, codec.Prefix()))
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	updated, ok := decoded[0].(*AccountUpdated)
	require.True(t, ok)
	assert.Equal(t, EventAccountUpdated, updated.Type())
	assert.Equal(t, codec.Address("alice"), updated.Address())
	assert.Equal(t, uint64(12), updated.BlockNum())
	assert.Equal(t, &types.Account{Name: "alice", Balance: 60, Address: codec.Address("alice")}, updated.Account())

	assert.Equal(t, EventAccountDeleted, decoded[1].Type())
	assert.Equal(t, codec.Address("bob"), decoded[1].Address())
}

func TestDecodeStateDeltaRejectsGarbage(t *testing.T) {
	list := &events_pb2.EventList{Events: []*events_pb2.Event{{EventType: StateDeltaEvent, Data: []byte{0xff, 0xff}}}}
	_, err := DecodeStateDelta("3a8434", list)
	assert.Error(t, err)
}

// fakeConn plays the validator side of the event subscription protocol.
type fakeConn struct {
	t       *testing.T
	inbox   chan []byte
	mu      sync.Mutex
	sent    []validator_pb2.Message_MessageType
	onEvent []byte
	status  client_event_pb2.ClientEventsSubscribeResponse_Status
}

func (f *fakeConn) Send(data []byte) error {
	msg := &validator_pb2.Message{}
	require.NoError(f.t, proto.Unmarshal(data, protoadapt.MessageV2Of(msg)))
	f.mu.Lock()
	f.sent = append(f.sent, msg.GetMessageType())
	f.mu.Unlock()

	if msg.GetMessageType() == validator_pb2.Message_CLIENT_EVENTS_SUBSCRIBE_REQUEST {
		resp := marshal(f.t, &client_event_pb2.ClientEventsSubscribeResponse{Status: f.status})
		f.inbox <- marshal(f.t, &validator_pb2.Message{
			CorrelationId: msg.GetCorrelationId(),
			MessageType:   validator_pb2.Message_CLIENT_EVENTS_SUBSCRIBE_RESPONSE,
			Content:       resp,
		})
		if f.onEvent != nil {
			f.inbox <- marshal(f.t, &validator_pb2.Message{
				MessageType: validator_pb2.Message_CLIENT_EVENTS,
				Content:     f.onEvent,
			})
		}
	}
	return nil
}

func (f *fakeConn) Recv(timeout time.Duration) ([]byte, error) {
	select {
	case data := <-f.inbox:
		return data, nil
	case <-time.After(timeout):
		return nil, nil
	}
}

func (f *fakeConn) Close() error { return nil }

func (f *fakeConn) sentTypes() []validator_pb2.Message_MessageType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]validator_pb2.Message_MessageType(nil), f.sent...)
}

func TestWatcherRoutesEvents(t *testing.T) {
	codec := address.NewCodec("bank")
	conn := &fakeConn{
		t:       t,
		inbox:   make(chan []byte, 4),
		onEvent: marshal(t, stateDeltaList(t, codec.Prefix())),
		status:  client_event_pb2.ClientEventsSubscribeResponse_OK,
	}
	bus := NewEventBus()
	_, ch := bus.Subscribe()
	w := NewWatcherWithDialer(func() (Conn, error) { return conn, nil },
		NewEventRouter(bus, codec.Prefix(), nil), codec.Prefix(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case ev := <-ch:
		assert.Equal(t, codec.Address("alice"), ev.Address())
	case <-time.After(5 * time.Second):
		t.Fatal("no event routed")
	}
	<-ch

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []validator_pb2.Message_MessageType{
		validator_pb2.Message_CLIENT_EVENTS_SUBSCRIBE_REQUEST,
		validator_pb2.Message_CLIENT_EVENTS_UNSUBSCRIBE_REQUEST,
	}, conn.sentTypes())
}

func TestWatcherSubscriptionRefused(t *testing.T) {
	conn := &fakeConn{
		t:      t,
		inbox:  make(chan []byte, 4),
		status: client_event_pb2.ClientEventsSubscribeResponse_INVALID_FILTER,
	}
	w := NewWatcherWithDialer(func() (Conn, error) { return conn, nil },
		NewEventRouter(NewEventBus(), "3a8434", nil), "3a8434", nil)

	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subscription failed")
}
