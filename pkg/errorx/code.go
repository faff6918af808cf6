package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009
	TooManyRequests  Code = 100010

	// Toggle codes
	InvalidTarget Code = 200001
	Conflict      Code = 200002

	// Reward codes
	InvalidCritique        Code = 300001
	SelfSelection          Code = 300002
	NoActiveReward         Code = 300003
	CaptureFailed          Code = 300004
	SettlementFailed       Code = 300005
	ReconciliationRequired Code = 300006
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthorization
	KindConflict
	KindExternal
	KindFatal
)

// KindOf groups codes by how a client is expected to react to them.
func KindOf(code Code) Kind {
	switch code {
	case BadRequest, InvalidTarget, InvalidCritique, NotFound:
		return KindValidation
	case PermissionDenied, Unauthenticated, SelfSelection:
		return KindAuthorization
	case AlreadyExists, Conflict, NoActiveReward:
		return KindConflict
	case CaptureFailed, SettlementFailed, Unavailable, BadResponse:
		return KindExternal
	case ReconciliationRequired:
		return KindFatal
	}

	return KindUnknown
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindExternal:
		return "external"
	case KindFatal:
		return "fatal"
	}

	return "unknown"
}
