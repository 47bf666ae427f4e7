package filing

import "encoding/json"

// ProcessingQueue is the durable queue downstream processors consume.
const ProcessingQueue = "doc_processing_queue"

// ProcessingMessage tells a downstream processor where a raw filing was stored.
type ProcessingMessage struct {
	S3Path string `json:"s3_path"`
}

func NewProcessingMessage(key string) ProcessingMessage {
	return ProcessingMessage{S3Path: key}
}

// Encode returns the wire payload, e.g. {"s3_path":"raw_filings/ACME/10-Q/report.pdf"}.
func (m ProcessingMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}
