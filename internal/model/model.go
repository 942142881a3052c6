package model

import "scratchnet/internal/matrix"

// Batch pairs an N x D input matrix with its N x O targets.
type Batch struct {
	Inputs  *matrix.Dense
	Targets *matrix.Dense
}

// Model defines the minimal training functionality required by the trainer.
type Model interface {
	// TrainStep runs one forward/backward/update cycle and returns the loss
	// measured before the update.
	TrainStep(batch Batch) (float64, error)
}
