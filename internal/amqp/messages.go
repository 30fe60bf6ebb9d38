package amqp

import (
	"encoding/json"
	"time"
)

// ShiftSyncMessage asks the worker to export one committed shift to the
// settlement timesheet. It carries only the id and version; the worker
// fetches the full record from the database.
type ShiftSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewShiftSyncMessage(id, version int64) *ShiftSyncMessage {
	return &ShiftSyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *ShiftSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ShiftSyncMessageFromJSON(data []byte) (*ShiftSyncMessage, error) {
	var msg ShiftSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
