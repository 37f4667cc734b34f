package entity

// DeliveryStatus is the terminal state of one recipient within a pass.
// Each recipient moves PENDING -> SENT, or PENDING -> FAILED ->
// QUEUED_FOR_RETRY; there are no intermediate states.
type DeliveryStatus int16

const (
	DeliveryStatusUnknown        DeliveryStatus = 0
	DeliveryStatusPending        DeliveryStatus = 1
	DeliveryStatusSent           DeliveryStatus = 2
	DeliveryStatusFailed         DeliveryStatus = 3
	DeliveryStatusQueuedForRetry DeliveryStatus = 4
)

func (s DeliveryStatus) String() string {
	switch s {
	case DeliveryStatusPending:
		return "pending"
	case DeliveryStatusSent:
		return "sent"
	case DeliveryStatusFailed:
		return "failed"
	case DeliveryStatusQueuedForRetry:
		return "queued_for_retry"
	default:
		return "unknown"
	}
}

// PassKind distinguishes the primary pass over the recipient source from the
// passes that consume the retry store.
type PassKind int16

const (
	PassKindPrimary PassKind = 1
	PassKindRetry   PassKind = 2
)

func (k PassKind) String() string {
	switch k {
	case PassKindPrimary:
		return "primary"
	case PassKindRetry:
		return "retry"
	default:
		return "unknown"
	}
}

// IsRetry reports whether this pass consumes the retry store.
func (k PassKind) IsRetry() bool {
	return k == PassKindRetry
}
