package domain

import (
	"context"
	"time"
)

// RequestMessage is an undecoded prediction request read from the source topic.
type RequestMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}
