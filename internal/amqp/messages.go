package amqp

import (
	"encoding/json"
	"time"
)

// ReportMessage carries a rendered financial report, one string per line.
type ReportMessage struct {
	GeneratedAt time.Time `json:"generated_at"`
	Lines       []string  `json:"lines"`
}

func NewReportMessage(lines []string, generatedAt time.Time) *ReportMessage {
	cp := make([]string, len(lines))
	copy(cp, lines)
	return &ReportMessage{GeneratedAt: generatedAt.UTC(), Lines: cp}
}

// ToJSON converts the message to JSON bytes
func (m *ReportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
