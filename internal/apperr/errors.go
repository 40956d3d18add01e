// Package apperr defines the error taxonomy shared by the graph, post and feed
// services. Every failure a caller can act on carries a Kind and a stable Code.
package apperr

import "errors"

// Kind 错误大类
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindAuthorization
	KindStorageUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindConflict:
		return "ConflictError"
	case KindNotFound:
		return "NotFoundError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindStorageUnavailable:
		return "StorageUnavailable"
	default:
		return "Unknown"
	}
}

// Code 稳定的业务错误码
type Code string

const (
	CodeSelfReference      Code = "SelfReference"
	CodeInvalidInput       Code = "InvalidInput"
	CodeEmptyContent       Code = "EmptyContent"
	CodeContentTooLong     Code = "ContentTooLong"
	CodeAlreadyFollowing   Code = "AlreadyFollowing"
	CodeAlreadyBlocked     Code = "AlreadyBlocked"
	CodeUserIDTaken        Code = "UserIDTaken"
	CodeEmailTaken         Code = "EmailTaken"
	CodeConcurrentWrite    Code = "ConcurrentWrite"
	CodeUnknownUser        Code = "UnknownUser"
	CodeNotFollowing       Code = "NotFollowing"
	CodeNotAFollower       Code = "NotAFollower"
	CodePostNotFound       Code = "NotFound"
	CodeNotOwner           Code = "NotOwner"
	CodeBlockedByTarget    Code = "BlockedByTarget"
	CodeHasBlockedTarget   Code = "HasBlockedTarget"
	CodeInvalidCredentials Code = "InvalidCredentials"
	CodeStorageUnavailable Code = "StorageUnavailable"
)

var (
	ErrSelfReference  = New(KindValidation, CodeSelfReference, "cannot follow or block yourself")
	ErrInvalidInput   = New(KindValidation, CodeInvalidInput, "invalid input")
	ErrEmptyContent   = New(KindValidation, CodeEmptyContent, "post cannot be empty")
	ErrContentTooLong = New(KindValidation, CodeContentTooLong, "post is too long")

	ErrAlreadyFollowing = New(KindConflict, CodeAlreadyFollowing, "already following this user")
	ErrAlreadyBlocked   = New(KindConflict, CodeAlreadyBlocked, "user already blocked")
	ErrUserIDTaken      = New(KindConflict, CodeUserIDTaken, "user id already taken")
	ErrEmailTaken       = New(KindConflict, CodeEmailTaken, "email already registered")
	ErrConcurrentWrite  = New(KindConflict, CodeConcurrentWrite, "conflicting concurrent write")

	ErrUnknownUser  = New(KindNotFound, CodeUnknownUser, "user does not exist")
	ErrNotFollowing = New(KindNotFound, CodeNotFollowing, "not following this user")
	ErrNotAFollower = New(KindNotFound, CodeNotAFollower, "user is not currently your follower")
	ErrPostNotFound = New(KindNotFound, CodePostNotFound, "post not found")

	ErrNotOwner           = New(KindAuthorization, CodeNotOwner, "post belongs to another user")
	ErrBlockedByTarget    = New(KindAuthorization, CodeBlockedByTarget, "you are blocked by this user")
	ErrHasBlockedTarget   = New(KindAuthorization, CodeHasBlockedTarget, "you have blocked this user")
	ErrInvalidCredentials = New(KindAuthorization, CodeInvalidCredentials, "invalid credentials")

	ErrStorageUnavailable = New(KindStorageUnavailable, CodeStorageUnavailable, "storage unavailable")
)

// Error 带分类的业务错误
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Err     error
}

func New(kind Kind, code Code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code, so a wrapped copy still compares equal to its sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Wrap returns a copy of base carrying cause.
func Wrap(base *Error, cause error) error {
	return &Error{Kind: base.Kind, Code: base.Code, Message: base.Message, Err: cause}
}

// Storage classifies an unexpected persistence failure. Errors that already
// carry a Kind pass through unchanged.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return Wrap(ErrStorageUnavailable, err)
}

// KindOf 返回错误分类；非 apperr 错误返回 0。
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

// CodeOf 返回错误码；非 apperr 错误返回空串。
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
