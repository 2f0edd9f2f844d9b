package dynamo

// Status is the integer status code returned by every fallible kernel call.
type Status int32

const (
	StatusOK              Status = 0
	StatusInvalidArgument Status = 1
	StatusInvalidHandle   Status = 2
	StatusPolicyDenied    Status = 3
	StatusInternalError   Status = 4
)

var statusNames = map[Status]string{
	StatusOK:              "ok",
	StatusInvalidArgument: "invalid_argument",
	StatusInvalidHandle:   "invalid_handle",
	StatusPolicyDenied:    "policy_denied",
	StatusInternalError:   "internal_error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Status) OK() bool { return s == StatusOK }

// Sentinel returns the sentinel error matching s, or nil for StatusOK.
func (s Status) Sentinel() error {
	switch s {
	case StatusOK:
		return nil
	case StatusInvalidArgument:
		return ErrInvalidArgument
	case StatusInvalidHandle:
		return ErrInvalidHandle
	case StatusPolicyDenied:
		return ErrPolicyDenied
	default:
		return ErrNonFinite
	}
}
