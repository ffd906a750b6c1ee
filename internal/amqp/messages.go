package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// RecordSyncMessage asks the worker to mirror freshly stored records. It
// carries only row IDs; the worker reads the records back from SQLite.
type RecordSyncMessage struct {
	MessageID string    `json:"message_id"`
	IDs       []int64   `json:"ids"`
	Timestamp time.Time `json:"timestamp"`
}

var errNoIDs = errors.New("sync message without record ids")

func NewRecordSyncMessage(ids ...int64) *RecordSyncMessage {
	return &RecordSyncMessage{
		MessageID: uuid.NewString(),
		IDs:       append([]int64(nil), ids...),
		Timestamp: time.Now(),
	}
}

func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSyncMessageFromJSON decodes a message and rejects one without IDs.
func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if len(msg.IDs) == 0 {
		return nil, errNoIDs
	}
	return &msg, nil
}
