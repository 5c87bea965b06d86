package ocptv

import (
	"github.com/roach88/ocptv/internal/artifact"
	"github.com/roach88/ocptv/internal/emitter"
)

type (
	TestStatus       = artifact.TestStatus
	TestResult       = artifact.TestResult
	LogSeverity      = artifact.LogSeverity
	DiagnosisType    = artifact.DiagnosisType
	ValidatorType    = artifact.ValidatorType
	SoftwareType     = artifact.SoftwareType
	SubcomponentType = artifact.SubcomponentType

	// Metadata is free-form key/value data attached to an artifact.
	Metadata = artifact.Metadata

	// Subcomponent narrows a measurement or diagnosis to part of a hardware
	// component.
	Subcomponent = artifact.Subcomponent

	// Validator is an assertion recorded with a measurement. It is never
	// evaluated by this package.
	Validator = artifact.Validator

	// SchemaError reports an artifact that cannot be serialized.
	SchemaError = artifact.SchemaError

	// SinkError reports a Writer failure.
	SinkError = emitter.SinkError
)

const (
	StatusComplete = artifact.StatusComplete
	StatusError    = artifact.StatusError
	StatusSkip     = artifact.StatusSkip

	ResultPass          = artifact.ResultPass
	ResultFail          = artifact.ResultFail
	ResultNotApplicable = artifact.ResultNotApplicable

	SeverityInfo    = artifact.SeverityInfo
	SeverityDebug   = artifact.SeverityDebug
	SeverityWarning = artifact.SeverityWarning
	SeverityError   = artifact.SeverityError
	SeverityFatal   = artifact.SeverityFatal

	DiagnosisPass    = artifact.DiagnosisPass
	DiagnosisFail    = artifact.DiagnosisFail
	DiagnosisUnknown = artifact.DiagnosisUnknown

	ValidatorEqual              = artifact.ValidatorEqual
	ValidatorNotEqual           = artifact.ValidatorNotEqual
	ValidatorLessThan           = artifact.ValidatorLessThan
	ValidatorLessThanOrEqual    = artifact.ValidatorLessThanOrEqual
	ValidatorGreaterThan        = artifact.ValidatorGreaterThan
	ValidatorGreaterThanOrEqual = artifact.ValidatorGreaterThanOrEqual
	ValidatorRegexMatch         = artifact.ValidatorRegexMatch
	ValidatorRegexNoMatch       = artifact.ValidatorRegexNoMatch
	ValidatorInSet              = artifact.ValidatorInSet
	ValidatorNotInSet           = artifact.ValidatorNotInSet

	SoftwareUnspecified = artifact.SoftwareUnspecified
	SoftwareFirmware    = artifact.SoftwareFirmware
	SoftwareSystem      = artifact.SoftwareSystem
	SoftwareApplication = artifact.SoftwareApplication

	SubcomponentUnspecified   = artifact.SubcomponentUnspecified
	SubcomponentAsic          = artifact.SubcomponentAsic
	SubcomponentAsicSubsystem = artifact.SubcomponentAsicSubsystem
	SubcomponentBus           = artifact.SubcomponentBus
	SubcomponentFunction      = artifact.SubcomponentFunction
	SubcomponentConnector     = artifact.SubcomponentConnector
)

// IsSchemaError returns true if err is or wraps a SchemaError.
func IsSchemaError(err error) bool {
	return artifact.IsSchemaError(err)
}

// IsSinkError returns true if err is or wraps a SinkError.
func IsSinkError(err error) bool {
	return emitter.IsSinkError(err)
}
