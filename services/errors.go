package services

import (
	"errors"
	"fmt"
)

// Failure categories. Every error returned by this package either wraps
// one of these or comes from the database.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("validation failed")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrForbidden          = errors.New("forbidden")
)

var (
	ErrTeacherNotFound         = fmt.Errorf("teacher %w", ErrNotFound)
	ErrStudentNotFound         = fmt.Errorf("student %w", ErrNotFound)
	ErrUserNotFound            = fmt.Errorf("user %w", ErrNotFound)
	ErrLessonNotFound          = fmt.Errorf("lesson %w", ErrNotFound)
	ErrSlotNotFound            = fmt.Errorf("slot %w", ErrNotFound)
	ErrRecurringLessonNotFound = fmt.Errorf("recurring lesson %w", ErrNotFound)
	ErrPaymentMethodNotFound   = fmt.Errorf("payment method %w", ErrNotFound)

	ErrSlotUnavailable   = fmt.Errorf("%w: availability slot is no longer available", ErrConflict)
	ErrSlotAlreadyBooked = fmt.Errorf("%w: recurring slot is already booked", ErrConflict)
	ErrEmailTaken        = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrAlreadyPaid       = fmt.Errorf("%w: lesson already has a payment", ErrConflict)
	ErrConcurrentUpdate  = fmt.Errorf("%w: record changed concurrently", ErrConflict)

	ErrAlreadyCompleted        = fmt.Errorf("%w: lesson is already completed", ErrPreconditionFailed)
	ErrLessonNotUpcoming       = fmt.Errorf("%w: lesson is not upcoming", ErrPreconditionFailed)
	ErrNoPaymentMethod         = fmt.Errorf("%w: student has no primary verified credit card", ErrPreconditionFailed)
	ErrNoVerifiedPaymentMethod = fmt.Errorf("%w: student has no primary verified payment method", ErrPreconditionFailed)
	ErrNotBooked               = fmt.Errorf("%w: recurring slot has not been booked", ErrPreconditionFailed)
	ErrRecurringNotActive      = fmt.Errorf("%w: recurring lesson is not active", ErrPreconditionFailed)
	ErrInvalidTransition       = fmt.Errorf("%w: status transition not allowed", ErrPreconditionFailed)
	ErrLessonTypeNotOffered    = fmt.Errorf("%w: teacher does not offer this lesson type", ErrPreconditionFailed)

	ErrInvalidCredentials = errors.New("invalid email or password")
)

func validationError(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func validationMessage(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
