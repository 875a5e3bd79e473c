// Package event defines the registry's append-only notification log entries
// and an in-process fan-out bus for live subscribers. The durable log is the
// source of truth; the bus only accelerates delivery.
package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies the kind of notification.
type Type string

const (
	// TypeContributorCreated is emitted once per new contributor record.
	TypeContributorCreated Type = "contributor.created"
	// TypeAssetCreated is emitted once per registered asset.
	TypeAssetCreated Type = "asset.created"
	// TypeAssetStateChanged is emitted once per applied workflow transition.
	TypeAssetStateChanged Type = "asset.state_changed"
)

// AssetTypePaper is the asset type label carried by asset.created payloads.
const AssetTypePaper = "paper"

// Event is one log entry. Seq is assigned by storage in commit order and is
// zero until the entry is persisted.
type Event struct {
	Seq       uint64
	Timestamp time.Time
	Type      Type
	// EntityID is the primary subject: contributor ID or asset address.
	EntityID    string
	PayloadJSON []byte
}

// ContributorCreatedPayload announces a new contributor record.
type ContributorCreatedPayload struct {
	ContributorID string `json:"contributor_id"`
	ExternalID    string `json:"external_id"`
}

// AssetCreatedPayload announces a newly registered asset.
type AssetCreatedPayload struct {
	AssetAddress string `json:"asset_address"`
	AssetType    string `json:"asset_type"`
	Creator      string `json:"creator"`
}

// AssetStateChangedPayload announces one applied workflow transition.
type AssetStateChangedPayload struct {
	AssetAddress string `json:"asset_address"`
	OldState     string `json:"old_state"`
	NewState     string `json:"new_state"`
	Action       string `json:"action"`
	Actor        string `json:"actor"`
}

// NewContributorCreated builds an unsequenced contributor.created entry.
func NewContributorCreated(timestamp time.Time, payload ContributorCreatedPayload) (Event, error) {
	return newEvent(timestamp, TypeContributorCreated, payload.ContributorID, payload)
}

// NewAssetCreated builds an unsequenced asset.created entry.
func NewAssetCreated(timestamp time.Time, payload AssetCreatedPayload) (Event, error) {
	return newEvent(timestamp, TypeAssetCreated, payload.AssetAddress, payload)
}

// NewAssetStateChanged builds an unsequenced asset.state_changed entry.
func NewAssetStateChanged(timestamp time.Time, payload AssetStateChangedPayload) (Event, error) {
	return newEvent(timestamp, TypeAssetStateChanged, payload.AssetAddress, payload)
}

func newEvent(timestamp time.Time, eventType Type, entityID string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		Timestamp:   timestamp.UTC(),
		Type:        eventType,
		EntityID:    entityID,
		PayloadJSON: raw,
	}, nil
}

// DecodeContributorCreated unpacks a contributor.created payload.
func DecodeContributorCreated(evt Event) (ContributorCreatedPayload, error) {
	var payload ContributorCreatedPayload
	if err := decode(evt, TypeContributorCreated, &payload); err != nil {
		return ContributorCreatedPayload{}, err
	}
	return payload, nil
}

// DecodeAssetCreated unpacks an asset.created payload.
func DecodeAssetCreated(evt Event) (AssetCreatedPayload, error) {
	var payload AssetCreatedPayload
	if err := decode(evt, TypeAssetCreated, &payload); err != nil {
		return AssetCreatedPayload{}, err
	}
	return payload, nil
}

// DecodeAssetStateChanged unpacks an asset.state_changed payload.
func DecodeAssetStateChanged(evt Event) (AssetStateChangedPayload, error) {
	var payload AssetStateChangedPayload
	if err := decode(evt, TypeAssetStateChanged, &payload); err != nil {
		return AssetStateChangedPayload{}, err
	}
	return payload, nil
}

func decode(evt Event, want Type, target any) error {
	if evt.Type != want {
		return fmt.Errorf("decode event: expected %s, got %s", want, evt.Type)
	}
	if err := json.Unmarshal(evt.PayloadJSON, target); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", want, err)
	}
	return nil
}
