package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/alerts"
)

// AlertMessage is the payload published for each newly stored alert.
type AlertMessage struct {
	Alert       alerts.Alert `json:"alert"`
	PublishedAt time.Time    `json:"publishedAt"`
}

func NewAlertMessage(a alerts.Alert) *AlertMessage {
	return &AlertMessage{
		Alert:       a,
		PublishedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertMessageFromJSON creates a message from JSON bytes
func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
