package ledger

import "errors"

// ErrInsufficientFunds indicates the platform account cannot cover the
// stamp value plus gas
var ErrInsufficientFunds = errors.New("insufficient funds in platform account")

// Error wraps a failure of one step of the recording sequence. Op is one of
// "balance", "nonce", "sign", "broadcast".
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "ledger " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
