package shell

import (
	"errors"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/eventstore"
)

// ErrEventEnvelopeFromStorableEventFailed is returned when event envelope conversion fails.
var ErrEventEnvelopeFromStorableEventFailed = errors.New("event envelope from storable event failed")

// EventEnvelopes is a slice of EventEnvelope instances.
type EventEnvelopes = []EventEnvelope

// EventEnvelope combines a journaled domain event with its position and metadata.
type EventEnvelope struct {
	SequenceNumber eventstore.MaxSequenceNumberUint
	DomainEvent    core.DomainEvent
	EventMetadata  EventMetadata
}

// EventEnvelopeFrom converts a StorableEvent to an EventEnvelope.
// Events journaled without metadata get a zero EventMetadata.
func EventEnvelopeFrom(storableEvent eventstore.StorableEvent) (EventEnvelope, error) {
	domainEvent, err := DomainEventFrom(storableEvent)
	if err != nil {
		return EventEnvelope{}, errors.Join(ErrEventEnvelopeFromStorableEventFailed, err)
	}

	metadata, err := EventMetadataFrom(storableEvent)
	if err != nil {
		return EventEnvelope{}, errors.Join(ErrEventEnvelopeFromStorableEventFailed, err)
	}

	return EventEnvelope{
		SequenceNumber: storableEvent.SequenceNumber,
		DomainEvent:    domainEvent,
		EventMetadata:  metadata,
	}, nil
}

// EventEnvelopesFrom converts multiple StorableEvents to EventEnvelopes, keeping their order.
func EventEnvelopesFrom(storableEvents eventstore.StorableEvents) (EventEnvelopes, error) {
	envelopes := make(EventEnvelopes, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		envelope, err := EventEnvelopeFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		envelopes = append(envelopes, envelope)
	}

	return envelopes, nil
}
