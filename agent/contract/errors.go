package contract

import "errors"

var (
	// Hard graph failures. These surface to the caller of Run; everything
	// in the ErrorKind family is recovered locally by the issuing node.
	ErrExceededStepBudget   = errors.New("graph exceeded step budget")
	ErrPreconditionViolated = errors.New("node precondition violated")

	ErrValidation      = errors.New("validation failed")
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
)
