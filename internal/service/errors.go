package service

import "errors"

var (
	ErrUserAlreadyExist     = errors.New("user already exist")
	ErrUserNotFound         = errors.New("user not found")
	ErrIncorrectCredentials = errors.New("incorrect credentials")
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrVerificationCode     = errors.New("verification code invalid")
	ErrSessionExpired       = errors.New("session expired")

	ErrContactNotFound      = errors.New("contact not found")
	ErrTooManyVerifiers     = errors.New("death verifier limit reached")
	ErrInvitationInvalid    = errors.New("invitation invalid")
	ErrWillNotFound         = errors.New("will not found")
	ErrForbidden            = errors.New("forbidden")
	ErrWillNotEditable      = errors.New("will is not editable")
	ErrCheckInTokenMismatch = errors.New("check-in token does not match request")
	ErrOTPInvalid           = errors.New("verification code invalid or expired")
)
