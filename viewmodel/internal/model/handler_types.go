package model

import "fmt"

// HandlerKey identifies a handler registered on a context.
type HandlerKey string

const (
	HandlerLog HandlerKey = "udf_view_model_handler_key_log"
)

var ErrNoHandler = fmt.Errorf("no handler registered for this key")

// Partitionable values are routed to a lane chosen by their key.
type Partitionable interface {
	PartitionKey() string
}

type ScopeConfig struct {
	BufferSize int // default: 1
	NumWorkers int // default: 1
}

func NewScopeConfig(bufferSize int, numWorkers int) ScopeConfig {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return ScopeConfig{
		BufferSize: bufferSize,
		NumWorkers: numWorkers,
	}
}
