package wallet

import "errors"

// Service errors
var (
	ErrConflict              = errors.New("username or mobile number already exists")
	ErrSelfPayment           = errors.New("cannot pay yourself")
	ErrRecipientNotFound     = errors.New("recipient does not exist")
	ErrConversionUnavailable = errors.New("currency conversion unavailable")
)
