package events

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperledger/sawtooth-sdk-go/protobuf/events_pb2"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/transaction_receipt_pb2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/protoadapt"

	"github.com/mezonai/sawlet/logx"
	"github.com/mezonai/sawlet/monitoring"
	"github.com/mezonai/sawlet/store"
)

const (
	StateDeltaEvent  = "sawtooth/state-delta"
	BlockCommitEvent = "sawtooth/block-commit"
)

// EventRouter turns validator event lists into account events on the bus.
type EventRouter struct {
	eventBus *EventBus
	prefix   string
	log      *logx.Logger
}

// NewEventRouter routes changes to addresses under namespace prefix.
func NewEventRouter(eventBus *EventBus, prefix string, log *logx.Logger) *EventRouter {
	return &EventRouter{eventBus: eventBus, prefix: prefix, log: log}
}

// Route decodes list and publishes its account changes. It returns how many were published.
func (er *EventRouter) Route(list *events_pb2.EventList) (int, error) {
	decoded, err := DecodeStateDelta(er.prefix, list)
	if err != nil {
		return 0, err
	}
	for _, ev := range decoded {
		monitoring.RecordStateEvent(string(ev.Type()))
		er.eventBus.Publish(ev)
	}
	return len(decoded), nil
}

// DecodeStateDelta extracts the changes to addresses under prefix.
// A block-commit event in the same list supplies the block number.
func DecodeStateDelta(prefix string, list *events_pb2.EventList) ([]AccountEvent, error) {
	var blockNum uint64
	for _, ev := range list.GetEvents() {
		if ev.GetEventType() != BlockCommitEvent {
			continue
		}
		for _, attr := range ev.GetAttributes() {
			if attr.GetKey() == "block_num" {
				n, err := strconv.ParseUint(attr.GetValue(), 10, 64)
				if err != nil {
					return nil, fmt.Errorf("bad block_num %q: %w", attr.GetValue(), err)
				}
				blockNum = n
			}
		}
	}

	var out []AccountEvent
	for _, ev := range list.GetEvents() {
		if ev.GetEventType() != StateDeltaEvent {
			continue
		}
		changes := &transaction_receipt_pb2.StateChangeList{}
		if err := proto.Unmarshal(ev.GetData(), protoadapt.MessageV2Of(changes)); err != nil {
			return nil, fmt.Errorf("failed to unmarshal state change list: %w", err)
		}

		for _, change := range changes.GetStateChanges() {
			addr := change.GetAddress()
			if !strings.HasPrefix(addr, prefix) {
				continue
			}
			switch change.GetType() {
			case transaction_receipt_pb2.StateChange_SET:
				acc, err := store.DecodeAccount(change.GetValue())
				if err != nil {
					return nil, fmt.Errorf("state change at %s: %w", addr, err)
				}
				if acc.Address == "" {
					acc.Address = addr
				}
				out = append(out, NewAccountUpdated(addr, acc, blockNum))
			case transaction_receipt_pb2.StateChange_DELETE:
				out = append(out, NewAccountDeleted(addr, blockNum))
			}
		}
	}
	return out, nil
}
