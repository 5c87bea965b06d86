package artifact

import "fmt"

// enumValue is implemented by every enum in this package.
// FormatEnum uses it to resolve the symbolic wire name.
type enumValue interface {
	IsZero() bool
	wireName() (string, bool)
}

func lookupName(names []string, i int) (string, bool) {
	if i <= 0 || i >= len(names) {
		return "", false
	}
	return names[i], true
}

func parseName(kind string, names []string, s string) (int, error) {
	for i := 1; i < len(names); i++ {
		if names[i] == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

func enumString(names []string, i int) string {
	if name, ok := lookupName(names, i); ok {
		return name
	}
	return fmt.Sprintf("%d", i)
}

// TestStatus is the terminal status of a run or step.
type TestStatus uint8

const (
	StatusComplete TestStatus = iota + 1
	StatusError
	StatusSkip
)

var testStatusNames = []string{"", "COMPLETE", "ERROR", "SKIP"}

func (s TestStatus) String() string           { return enumString(testStatusNames, int(s)) }
func (s TestStatus) IsZero() bool             { return s == 0 }
func (s TestStatus) wireName() (string, bool) { return lookupName(testStatusNames, int(s)) }

// ParseTestStatus resolves a wire name such as "COMPLETE".
func ParseTestStatus(s string) (TestStatus, error) {
	i, err := parseName("test status", testStatusNames, s)
	return TestStatus(i), err
}

// TestResult is the verdict of a run.
type TestResult uint8

const (
	ResultPass TestResult = iota + 1
	ResultFail
	ResultNotApplicable
)

var testResultNames = []string{"", "PASS", "FAIL", "NOT_APPLICABLE"}

func (r TestResult) String() string           { return enumString(testResultNames, int(r)) }
func (r TestResult) IsZero() bool             { return r == 0 }
func (r TestResult) wireName() (string, bool) { return lookupName(testResultNames, int(r)) }

// ParseTestResult resolves a wire name such as "NOT_APPLICABLE".
func ParseTestResult(s string) (TestResult, error) {
	i, err := parseName("test result", testResultNames, s)
	return TestResult(i), err
}

// LogSeverity is the severity of a log artifact.
type LogSeverity uint8

const (
	SeverityInfo LogSeverity = iota + 1
	SeverityDebug
	SeverityWarning
	SeverityError
	SeverityFatal
)

var logSeverityNames = []string{"", "INFO", "DEBUG", "WARNING", "ERROR", "FATAL"}

func (s LogSeverity) String() string           { return enumString(logSeverityNames, int(s)) }
func (s LogSeverity) IsZero() bool             { return s == 0 }
func (s LogSeverity) wireName() (string, bool) { return lookupName(logSeverityNames, int(s)) }

// ParseLogSeverity resolves a wire name such as "WARNING".
func ParseLogSeverity(s string) (LogSeverity, error) {
	i, err := parseName("log severity", logSeverityNames, s)
	return LogSeverity(i), err
}

// DiagnosisType classifies a diagnosis.
type DiagnosisType uint8

const (
	DiagnosisPass DiagnosisType = iota + 1
	DiagnosisFail
	DiagnosisUnknown
)

var diagnosisTypeNames = []string{"", "PASS", "FAIL", "UNKNOWN"}

func (d DiagnosisType) String() string           { return enumString(diagnosisTypeNames, int(d)) }
func (d DiagnosisType) IsZero() bool             { return d == 0 }
func (d DiagnosisType) wireName() (string, bool) { return lookupName(diagnosisTypeNames, int(d)) }

// ParseDiagnosisType resolves a wire name such as "FAIL".
func ParseDiagnosisType(s string) (DiagnosisType, error) {
	i, err := parseName("diagnosis type", diagnosisTypeNames, s)
	return DiagnosisType(i), err
}

// ValidatorType is the comparison a validator asserts.
// Validators are recorded for downstream consumers, never evaluated here.
type ValidatorType uint8

const (
	ValidatorEqual ValidatorType = iota + 1
	ValidatorNotEqual
	ValidatorLessThan
	ValidatorLessThanOrEqual
	ValidatorGreaterThan
	ValidatorGreaterThanOrEqual
	ValidatorRegexMatch
	ValidatorRegexNoMatch
	ValidatorInSet
	ValidatorNotInSet
)

var validatorTypeNames = []string{
	"",
	"EQUAL",
	"NOT_EQUAL",
	"LESS_THAN",
	"LESS_THAN_OR_EQUAL",
	"GREATER_THAN",
	"GREATER_THAN_OR_EQUAL",
	"REGEX_MATCH",
	"REGEX_NO_MATCH",
	"IN_SET",
	"NOT_IN_SET",
}

func (v ValidatorType) String() string           { return enumString(validatorTypeNames, int(v)) }
func (v ValidatorType) IsZero() bool             { return v == 0 }
func (v ValidatorType) wireName() (string, bool) { return lookupName(validatorTypeNames, int(v)) }

// ParseValidatorType resolves a wire name such as "GREATER_THAN".
func ParseValidatorType(s string) (ValidatorType, error) {
	i, err := parseName("validator type", validatorTypeNames, s)
	return ValidatorType(i), err
}

// SoftwareType classifies a software info entry.
type SoftwareType uint8

const (
	SoftwareUnspecified SoftwareType = iota + 1
	SoftwareFirmware
	SoftwareSystem
	SoftwareApplication
)

var softwareTypeNames = []string{"", "UNSPECIFIED", "FIRMWARE", "SYSTEM", "APPLICATION"}

func (s SoftwareType) String() string           { return enumString(softwareTypeNames, int(s)) }
func (s SoftwareType) IsZero() bool             { return s == 0 }
func (s SoftwareType) wireName() (string, bool) { return lookupName(softwareTypeNames, int(s)) }

// ParseSoftwareType resolves a wire name such as "FIRMWARE".
func ParseSoftwareType(s string) (SoftwareType, error) {
	i, err := parseName("software type", softwareTypeNames, s)
	return SoftwareType(i), err
}

// SubcomponentType classifies a subcomponent.
type SubcomponentType uint8

const (
	SubcomponentUnspecified SubcomponentType = iota + 1
	SubcomponentAsic
	SubcomponentAsicSubsystem
	SubcomponentBus
	SubcomponentFunction
	SubcomponentConnector
)

var subcomponentTypeNames = []string{"", "UNSPECIFIED", "ASIC", "ASIC-SUBSYSTEM", "BUS", "FUNCTION", "CONNECTOR"}

func (s SubcomponentType) String() string { return enumString(subcomponentTypeNames, int(s)) }
func (s SubcomponentType) IsZero() bool   { return s == 0 }
func (s SubcomponentType) wireName() (string, bool) {
	return lookupName(subcomponentTypeNames, int(s))
}

// ParseSubcomponentType resolves a wire name such as "ASIC-SUBSYSTEM".
func ParseSubcomponentType(s string) (SubcomponentType, error) {
	i, err := parseName("subcomponent type", subcomponentTypeNames, s)
	return SubcomponentType(i), err
}
