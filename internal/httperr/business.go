package httperr

import "errors"

// Business error codes shared by use cases and handlers.
const (
	CodeNoData          = "no_data"
	CodeUnknownChart    = "unknown_chart"
	CodeUnknownEntity   = "unknown_entity"
	CodeUnknownDataset  = "unknown_dataset"
	CodeInvalidQuestion = "invalid_question"
	CodeEmptyRelation   = "empty_relation"
)

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}
