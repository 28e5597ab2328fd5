package alarm

import (
	"errors"
	"fmt"
	"time"
)

// RejectReason — машиночитаемая причина отказа в создании будильника.
type RejectReason string

const (
	DuplicateInstant RejectReason = "duplicate_instant"
	InPast           RejectReason = "in_past"
)

// RejectError возвращается Registry.Create при нарушении инвариантов.
// Это ожидаемый результат пользовательского ввода, а не сбой.
type RejectError struct {
	Reason RejectReason
	At     time.Time
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("alarm: %s: %s", e.Reason, Title(e.At))
}

// Message возвращает текст статуса для страницы.
func (e *RejectError) Message() string {
	switch e.Reason {
	case DuplicateInstant:
		return StatusDuplicate
	case InPast:
		return StatusInPast
	default:
		return string(e.Reason)
	}
}

// ReasonOf возвращает причину отказа или пустую строку, если err не RejectError.
func ReasonOf(err error) RejectReason {
	var e *RejectError
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
