package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotIngestedMessage announces that a statement snapshot was archived.
// It carries only the snapshot id and headline counts; consumers fetch the
// raw statement from the archive themselves.
type SnapshotIngestedMessage struct {
	SnapshotID string    `json:"snapshot_id"`
	LoanCount  int       `json:"loan_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewSnapshotIngestedMessage creates an ingest announcement for a snapshot.
func NewSnapshotIngestedMessage(snapshotID string, loanCount int) *SnapshotIngestedMessage {
	return &SnapshotIngestedMessage{
		SnapshotID: snapshotID,
		LoanCount:  loanCount,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotIngestedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotIngestedMessageFromJSON creates a message from JSON bytes
func SnapshotIngestedMessageFromJSON(data []byte) (*SnapshotIngestedMessage, error) {
	var msg SnapshotIngestedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
