package repositories

import "errors"

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrDuplicateAccount  = errors.New("username or mobile number already exists")
	ErrDatabaseOperation = errors.New("database operation failed")
)
