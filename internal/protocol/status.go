package protocol

import "fmt"

// StatusError reports a non-OK status code carried by a response.
type StatusError struct {
	Op     string
	Code   int32
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

func statusName(names []string, code int32) string {
	if code >= 0 && int(code) < len(names) {
		return names[code]
	}
	return fmt.Sprintf("STATUS_%d", code)
}

func statusErr(op string, names []string, code int32) error {
	if code == 0 {
		return nil
	}
	return &StatusError{Op: op, Code: code, Status: statusName(names, code)}
}

var sessionStatusNames = []string{"OK", "SESSION_NOT_FOUND"}

// SendTextStatus is the result code of a SendTextRequest.
type SendTextStatus int32

const (
	SendTextOK SendTextStatus = iota
	SendTextSessionNotFound
)

func (s SendTextStatus) String() string { return statusName(sessionStatusNames, int32(s)) }

var getBufferStatusNames = []string{"OK", "SESSION_NOT_FOUND", "INVALID_LINE_RANGE", "REQUEST_MALFORMED"}

// GetBufferStatus is the result code of a GetBufferRequest.
type GetBufferStatus int32

const (
	GetBufferOK GetBufferStatus = iota
	GetBufferSessionNotFound
	GetBufferInvalidLineRange
	GetBufferRequestMalformed
)

func (s GetBufferStatus) String() string { return statusName(getBufferStatusNames, int32(s)) }

var variableStatusNames = []string{"OK", "INVALID_NAME", "MISSING_SCOPE", "SESSION_NOT_FOUND", "MULTI_GET_DISALLOWED", "TAB_NOT_FOUND", "WINDOW_NOT_FOUND"}

// VariableStatus is the result code of a VariableRequest.
type VariableStatus int32

const (
	VariableOK VariableStatus = iota
	VariableInvalidName
	VariableMissingScope
	VariableSessionNotFound
	VariableMultiGetDisallowed
	VariableTabNotFound
	VariableWindowNotFound
)

func (s VariableStatus) String() string { return statusName(variableStatusNames, int32(s)) }

var profilePropertyStatusNames = []string{"OK", "SESSION_NOT_FOUND", "REQUEST_MALFORMED", "BAD_GUID"}

// ProfilePropertyStatus is the result code of Get/SetProfilePropertyRequest.
type ProfilePropertyStatus int32

const (
	ProfilePropertyOK ProfilePropertyStatus = iota
	ProfilePropertySessionNotFound
	ProfilePropertyRequestMalformed
	ProfilePropertyBadGUID
)

func (s ProfilePropertyStatus) String() string {
	return statusName(profilePropertyStatusNames, int32(s))
}

var colorPresetStatusNames = []string{"OK", "PRESET_NOT_FOUND", "REQUEST_MALFORMED"}

// ColorPresetStatus is the result code of a ColorPresetRequest.
type ColorPresetStatus int32

const (
	ColorPresetOK ColorPresetStatus = iota
	ColorPresetNotFound
	ColorPresetRequestMalformed
)

func (s ColorPresetStatus) String() string { return statusName(colorPresetStatusNames, int32(s)) }

var activateStatusNames = []string{"OK", "BAD_IDENTIFIER", "INVALID_OPTION"}

// ActivateStatus is the result code of an ActivateRequest.
type ActivateStatus int32

const (
	ActivateOK ActivateStatus = iota
	ActivateBadIdentifier
	ActivateInvalidOption
)

func (s ActivateStatus) String() string { return statusName(activateStatusNames, int32(s)) }

var invokeStatusNames = []string{"OK", "TIMEOUT", "FAILED", "REQUEST_MALFORMED", "INVALID_ID"}

// InvokeFunctionStatus is the error code of a failed InvokeFunctionRequest.
type InvokeFunctionStatus int32

const (
	InvokeFunctionOK InvokeFunctionStatus = iota
	InvokeFunctionTimeout
	InvokeFunctionFailed
	InvokeFunctionRequestMalformed
	InvokeFunctionInvalidID
)

func (s InvokeFunctionStatus) String() string { return statusName(invokeStatusNames, int32(s)) }
