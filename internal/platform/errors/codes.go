// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Game errors
	CodeGameIDRequired Code = "GAME_ID_REQUIRED"
	CodeGameNotFound   Code = "GAME_NOT_FOUND"

	// Round errors
	CodeInvalidPersistedState Code = "INVALID_PERSISTED_STATE"
	CodeGeneratorExhausted    Code = "GENERATOR_EXHAUSTED"
	CodeOperationUnknown      Code = "OPERATION_UNKNOWN"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeGameIDRequired,
		CodeOperationUnknown:
		return codes.InvalidArgument

	// NotFound - missing resources
	case CodeGameNotFound,
		CodeNotFound:
		return codes.NotFound

	// DataLoss - stored state could not be trusted
	case CodeInvalidPersistedState:
		return codes.DataLoss

	default:
		return codes.Internal
	}
}
