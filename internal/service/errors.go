package service

import "errors"

// 服务层哨兵错误，handler 层据此映射业务码。
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrPostFetchFailed  = errors.New("post fetch failed")
	ErrPostCreateFailed = errors.New("post create failed")
	ErrPostUpdateFailed = errors.New("post update failed")
	ErrPostDeleteFailed = errors.New("post delete failed")
	ErrPostInvalid      = errors.New("post invalid")

	ErrActorNotFound  = errors.New("actor not found")
	ErrActorForbidden = errors.New("actor forbidden")
	ErrNotAssigned    = errors.New("actor not assigned to client")

	ErrStatusNotPending   = errors.New("post is not pending")
	ErrStatusNotScheduled = errors.New("post is not scheduled")
	ErrStatusConflict     = errors.New("post status changed concurrently")
	ErrTransitionInvalid  = errors.New("transition not allowed from current status")

	ErrPageNotFound     = errors.New("platform page not found")
	ErrTokenExpired     = errors.New("platform token expired")
	ErrPublishFailed    = errors.New("platform publish failed")
	ErrPlatformsMissing = errors.New("post has no target platforms")

	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrUserDisabled        = errors.New("user disabled")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrSelfDeleteForbidden = errors.New("cannot delete own account")
)
