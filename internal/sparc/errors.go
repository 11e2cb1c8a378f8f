package sparc

import (
	"errors"
	"fmt"
)

// InternalError reports IR that does not have the shape this scheduler
// relies on. It is a compiler-internal failure: not attributable to user
// input and never recoverable inside a session.
type InternalError struct {
	// Code identifies the violated assumption.
	Code InternalErrorCode

	// Message is a human-readable description.
	Message string

	// Block is the ID of the block being scheduled, 0 if unknown.
	Block int64

	// Node is the ID of the offending node, 0 if unknown.
	Node int64

	// Err is the underlying engine error for ErrCodeEngine.
	Err error
}

// InternalErrorCode categorizes internal scheduler errors.
type InternalErrorCode string

const (
	// ErrCodeMissingCfgPred: the first successor of a two-way block has no
	// incoming control-flow edge.
	ErrCodeMissingCfgPred InternalErrorCode = "MISSING_CFG_PRED"

	// ErrCodeMissingBranch: the control-flow edge node has no operand.
	ErrCodeMissingBranch InternalErrorCode = "MISSING_BRANCH"

	// ErrCodeNotBranch: the node behind the edge is not a conditional branch.
	ErrCodeNotBranch InternalErrorCode = "NOT_BRANCH"

	// ErrCodeForeignBranch: the conditional branch belongs to another block.
	ErrCodeForeignBranch InternalErrorCode = "FOREIGN_BRANCH"

	// ErrCodeBranchArity: the conditional branch does not have exactly one
	// operand.
	ErrCodeBranchArity InternalErrorCode = "BRANCH_ARITY"

	// ErrCodeNotCompare: the branch operand is not a compare.
	ErrCodeNotCompare InternalErrorCode = "NOT_COMPARE"

	// ErrCodeEngine: the list-scheduling engine rejected the session.
	ErrCodeEngine InternalErrorCode = "ENGINE"
)

// Error implements the error interface.
func (e *InternalError) Error() string {
	msg := fmt.Sprintf("internal scheduler error: %s: %s", e.Code, e.Message)
	switch {
	case e.Block != 0 && e.Node != 0:
		msg += fmt.Sprintf(" (block=%d, node=%d)", e.Block, e.Node)
	case e.Block != 0:
		msg += fmt.Sprintf(" (block=%d)", e.Block)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying engine error, if any.
func (e *InternalError) Unwrap() error {
	return e.Err
}

// IsInternalError returns true if err is or wraps an InternalError.
func IsInternalError(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}

// InternalErrorCodeOf returns the code of the InternalError in err's chain,
// or "" when there is none.
func InternalErrorCodeOf(err error) InternalErrorCode {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

func newShapeError(code InternalErrorCode, block, node int64, format string, args ...any) *InternalError {
	return &InternalError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Block:   block,
		Node:    node,
	}
}

func newEngineError(block int64, err error) *InternalError {
	return &InternalError{
		Code:    ErrCodeEngine,
		Message: "list scheduler rejected the session",
		Block:   block,
		Err:     err,
	}
}
