package classifier

import (
	"context"

	"district-digest/internal/domain/entity"
)

// NoOpName is the identifier of the no-op classifier.
const NoOpName = "noop"

// NoOp is a classifier that labels everything Crime without inspection.
// This is useful for tests and for the provider diagnostic tool.
type NoOp struct{}

// NewNoOp creates a new NoOp classifier.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Name returns the classifier identifier.
func (n *NoOp) Name() string { return NoOpName }

// Classify always returns the Crime category.
func (n *NoOp) Classify(_ context.Context, _, _ string) (string, error) {
	return entity.CategoryCrime, nil
}
