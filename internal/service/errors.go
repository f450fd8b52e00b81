package service

import "errors"

var (
	// Company errors
	ErrCompanyNotFound = errors.New("company not found")

	// Sale errors
	ErrSaleNotFound   = errors.New("sale not found")
	ErrUnknownCompany = errors.New("referenced company does not exist")
	ErrInvalidAmount  = errors.New("amount must be positive")

	ErrInvalidName = errors.New("name is required")
)
