package plasma

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	POS_ERR_RANGE    ErrorCode = "POS_ERR_RANGE"
	POS_ERR_OVERFLOW ErrorCode = "POS_ERR_OVERFLOW"

	TX_ERR_MALFORMED ErrorCode = "TX_ERR_MALFORMED"

	SIG_ERR_LENGTH  ErrorCode = "SIG_ERR_LENGTH"
	SIG_ERR_RECOVER ErrorCode = "SIG_ERR_RECOVER"

	MERKLE_ERR_HEIGHT   ErrorCode = "MERKLE_ERR_HEIGHT"
	MERKLE_ERR_CAPACITY ErrorCode = "MERKLE_ERR_CAPACITY"
	MERKLE_ERR_INDEX    ErrorCode = "MERKLE_ERR_INDEX"

	EXIT_ERR_INVALID_PROOF     ErrorCode = "EXIT_ERR_INVALID_PROOF"
	EXIT_ERR_UNKNOWN_OUTPUT    ErrorCode = "EXIT_ERR_UNKNOWN_OUTPUT"
	EXIT_ERR_NOT_OWNER         ErrorCode = "EXIT_ERR_NOT_OWNER"
	EXIT_ERR_WRONG_BOND        ErrorCode = "EXIT_ERR_WRONG_BOND"
	EXIT_ERR_WRONG_VALUE       ErrorCode = "EXIT_ERR_WRONG_VALUE"
	EXIT_ERR_DUPLICATE         ErrorCode = "EXIT_ERR_DUPLICATE"
	EXIT_ERR_NOT_FOUND         ErrorCode = "EXIT_ERR_NOT_FOUND"
	EXIT_ERR_SPEND_MISMATCH    ErrorCode = "EXIT_ERR_SPEND_MISMATCH"
	EXIT_ERR_SIG_MISMATCH      ErrorCode = "EXIT_ERR_SIG_MISMATCH"
	EXIT_ERR_ALREADY_FINALIZED ErrorCode = "EXIT_ERR_ALREADY_FINALIZED"

	QUEUE_ERR_EMPTY     ErrorCode = "QUEUE_ERR_EMPTY"
	QUEUE_ERR_DUPLICATE ErrorCode = "QUEUE_ERR_DUPLICATE"

	BLOCK_ERR_UNKNOWN_ROOT ErrorCode = "BLOCK_ERR_UNKNOWN_ROOT"

	ERR_NOT_AUTHORIZED ErrorCode = "ERR_NOT_AUTHORIZED"
)

// GameError is the failure type for every validation rejection in the exit
// game. A rejected call leaves all state untouched.
type GameError struct {
	Code ErrorCode
	Msg  string
}

func (e *GameError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func Errf(code ErrorCode, format string, args ...any) error {
	return &GameError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode from err, or "" if err carries none.
func CodeOf(err error) ErrorCode {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}
