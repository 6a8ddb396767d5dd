package viewmodel

import "github.com/howettl/udf-view-model/viewmodel/observability"

// FailurePolicy decides what a derivation failure does to the pipeline.
type FailurePolicy int

const (
	// TerminateOnFailure stops the pipeline, records the failure as Err
	// and closes every subscriber channel.
	TerminateOnFailure FailurePolicy = iota

	// ContinueOnFailure logs the failure, keeps the pre-failure state and
	// moves on to the next mutation.
	ContinueOnFailure
)

func (p FailurePolicy) String() string {
	switch p {
	case TerminateOnFailure:
		return "terminate"
	case ContinueOnFailure:
		return "continue"
	default:
		return "unknown"
	}
}

const (
	defaultName          = "viewmodel"
	defaultQueueCapacity = 16
)

// Config holds container parameters.
type Config struct {
	// Name identifies the container in logs and events.
	Name string

	// QueueCapacity is the initial capacity of the mutation queue and of
	// each effect lane. The queues grow past it; it never blocks callers.
	QueueCapacity int

	// EffectPartitions is the number of ordered effect lanes for
	// Partitionable effects. Zero runs every effect on its own goroutine.
	EffectPartitions int

	FailurePolicy FailurePolicy

	Observer observability.Observer
}

// DefaultConfig returns the default container configuration.
func DefaultConfig() Config {
	return Config{
		Name:          defaultName,
		QueueCapacity: defaultQueueCapacity,
		FailurePolicy: TerminateOnFailure,
		Observer:      observability.NoOpObserver{},
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source == nil {
		return
	}
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.QueueCapacity > 0 {
		c.QueueCapacity = source.QueueCapacity
	}
	if source.EffectPartitions > 0 {
		c.EffectPartitions = source.EffectPartitions
	}
	if source.FailurePolicy != TerminateOnFailure {
		c.FailurePolicy = source.FailurePolicy
	}
	if source.Observer != nil {
		c.Observer = source.Observer
	}
}

func (c Config) normalized() Config {
	cfg := DefaultConfig()
	cfg.Merge(&c)
	return cfg
}
