package v1

// Errors
const (
	UnknownErrorCode    = 0
	UnknownErrorMessage = "unknown error"

	UserAlreadyExistsCode          = 1001
	UserAlreadyExistsMessage       = "user already exists"
	UserNotFoundCode               = 1002
	UserNotFoundMessage            = "user not found"
	IncorrectCredentialsCode       = 1003
	IncorrectCredentialsMessage    = "incorrect email or password"
	EmailNotVerifiedCode           = 1004
	EmailNotVerifiedMessage        = "email is not verified"
	VerificationCodeInvalidCode    = 1005
	VerificationCodeInvalidMessage = "verification code invalid or expired"
	RefreshTokenExpiredCode        = 1006
	RefreshTokenExpiredMessage     = "refresh token expired"

	ContactNotFoundCode         = 2001
	ContactNotFoundMessage      = "contact not found"
	VerifierLimitReachedCode    = 2002
	VerifierLimitReachedMessage = "death verifier limit reached"
	InvitationInvalidCode       = 2003
	InvitationInvalidMessage    = "invitation link invalid or expired"

	WillNotFoundCode        = 3001
	WillNotFoundMessage     = "will not found"
	WillNotEditableCode     = 3002
	WillNotEditableMessage  = "will can no longer be edited"
	DocumentNotFoundCode    = 3003
	DocumentNotFoundMessage = "document not found"

	CheckInTokenInvalidCode     = 4001
	CheckInTokenInvalidMessage  = "check-in link invalid"
	CheckInTokenExpiredCode     = 4002
	CheckInTokenExpiredMessage  = "check-in link expired"
	CheckInTokenMismatchCode    = 4003
	CheckInTokenMismatchMessage = "check-in link does not match request"

	OTPInvalidCode    = 5001
	OTPInvalidMessage = "verification code invalid or expired"

	AssistantUnavailableCode    = 7001
	AssistantUnavailableMessage = "assistant is not available"
)

type ErrorCode int
type ErrorMessage string

type ErrorStruct struct {
	ErrorCode    `json:"error_code"`
	ErrorMessage `json:"error_message"`
} // @name ErrorStruct

type ValidationErrorStruct struct {
	ErrorCode    int               `json:"error_code"`
	ErrorMessage string            `json:"error_message"`
	Errors       []ValidationError `json:"validation_errors"`
}

type ValidationError struct {
	FieldKey     string `json:"field_key"`
	ErrorMessage string `json:"error_message"`
}

func getErrorStruct(code ErrorCode) *ErrorStruct {
	errorStruct := &ErrorStruct{
		ErrorCode:    UnknownErrorCode,
		ErrorMessage: UnknownErrorMessage,
	}

	if message, ok := errorMessages[code]; ok {
		errorStruct.ErrorCode = code
		errorStruct.ErrorMessage = message
	}

	return errorStruct
}

var errorMessages = map[ErrorCode]ErrorMessage{
	UserAlreadyExistsCode:       UserAlreadyExistsMessage,
	UserNotFoundCode:            UserNotFoundMessage,
	IncorrectCredentialsCode:    IncorrectCredentialsMessage,
	EmailNotVerifiedCode:        EmailNotVerifiedMessage,
	VerificationCodeInvalidCode: VerificationCodeInvalidMessage,
	RefreshTokenExpiredCode:     RefreshTokenExpiredMessage,
	ContactNotFoundCode:         ContactNotFoundMessage,
	VerifierLimitReachedCode:    VerifierLimitReachedMessage,
	InvitationInvalidCode:       InvitationInvalidMessage,
	WillNotFoundCode:            WillNotFoundMessage,
	WillNotEditableCode:         WillNotEditableMessage,
	DocumentNotFoundCode:        DocumentNotFoundMessage,
	CheckInTokenInvalidCode:     CheckInTokenInvalidMessage,
	CheckInTokenExpiredCode:     CheckInTokenExpiredMessage,
	CheckInTokenMismatchCode:    CheckInTokenMismatchMessage,
	OTPInvalidCode:              OTPInvalidMessage,
	AssistantUnavailableCode:    AssistantUnavailableMessage,
}
