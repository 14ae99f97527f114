// Package domain contains core concepts of the relay.
// This file defines Member entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

// PeerID identifies a participant as seen by the media layer.
// It is distinct from the transport connection identifier.
type PeerID string

// Member is one participant of a room. A peer id is unique within a room
// and never appears in two rooms at the same time.
type Member struct {
	Name  string
	ID    PeerID
	Color string
}
