package services

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailExists        = errors.New("email already in use")
	ErrCreationFailed     = errors.New("could not create record")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidID          = errors.New("invalid id")
	ErrNotFound           = errors.New("not found")
	ErrHeadChefNotFound   = errors.New("head chef not found")
	ErrRestaurantExists   = errors.New("head chef already has a restaurant")
	ErrInvalidPlan        = errors.New("invalid plan type or billing cycle")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidToken       = errors.New("invalid token")
)
