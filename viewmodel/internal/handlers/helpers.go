package handlers

import (
	"github.com/cespare/xxhash/v2"

	"github.com/howettl/udf-view-model/viewmodel/internal/model"
)

func hash(key string) uint64 {
	return xxhash.Sum64String(key)
}

func getIndexByHash(payload model.Partitionable, numChs int) int {
	switch numChs {
	case 0:
		panic("number of lanes cannot be 0")
	case 1:
		return 0
	default:
		return int(hash(payload.PartitionKey()) % uint64(numChs))
	}
}
