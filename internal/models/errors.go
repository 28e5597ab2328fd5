package models

import "errors"

// ErrMalformed возвращается, когда в ответе внешнего API нет обязательных полей.
var ErrMalformed = errors.New("malformed upstream document")

// PayloadError — ошибка разбора ответа вместе с его телом.
type PayloadError struct {
	Payload []byte
	Err     error
}

func (e *PayloadError) Error() string {
	return e.Err.Error()
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// PayloadOf возвращает тело ответа из цепочки ошибок или nil.
func PayloadOf(err error) []byte {
	var pe *PayloadError
	if errors.As(err, &pe) {
		return pe.Payload
	}
	return nil
}
