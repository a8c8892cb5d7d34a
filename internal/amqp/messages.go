package amqp

import (
	"encoding/json"
	"time"
)

// ReportViewedMessage records that a dashboard report was rendered.
// Year is omitted for reports that do not take one.
type ReportViewedMessage struct {
	ReportType string    `json:"report_type"`
	Year       *int      `json:"year,omitempty"`
	Charts     int       `json:"charts"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewReportViewedMessage(reportType string, year *int, charts int) *ReportViewedMessage {
	msg := &ReportViewedMessage{
		ReportType: reportType,
		Charts:     charts,
		Timestamp:  time.Now().UTC(),
	}
	if year != nil {
		y := *year
		msg.Year = &y
	}
	return msg
}

func (m *ReportViewedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportViewedMessageFromJSON(data []byte) (*ReportViewedMessage, error) {
	var msg ReportViewedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
