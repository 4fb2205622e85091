package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Amount errors
	ErrInvalidAmount = errors.New("amount must be a positive integer")

	// Withdrawal errors
	ErrWithdrawalNotFound      = errors.New("withdrawal request not found")
	ErrInvalidVerificationCode = errors.New("verification code mismatch or already consumed")
	ErrInvalidStateTransition  = errors.New("withdrawal request is in a terminal state")
	ErrSelfConfirmationDenied  = errors.New("requester cannot confirm their own withdrawal request")
	ErrNotAuthorizedToConfirm  = errors.New("party is not authorized to act on this request")

	// Transfer errors
	ErrSameAccount      = errors.New("cannot transfer to same account")
	ErrTransferNotFound = errors.New("transfer not found")
)
