package amqp

import (
	"encoding/json"
	"time"
)

// TransactionExportMessage asks the worker to export one committed
// transaction to the spreadsheet. It carries only identifiers; the
// worker loads the full row from the database.
type TransactionExportMessage struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionExportMessage(id, ownerID int64) *TransactionExportMessage {
	return &TransactionExportMessage{
		ID:        id,
		OwnerID:   ownerID,
		Timestamp: time.Now(),
	}
}

func (m *TransactionExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionExportMessageFromJSON(data []byte) (*TransactionExportMessage, error) {
	var msg TransactionExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
