package api

import (
	"errors"

	"github.com/postdeck-next/internal/http/response"
	"github.com/postdeck-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			response.Error(c, rule.code, rule.msg)
			return
		}
	}
	response.Error(c, fallbackCode, fallbackMsg)
}

var workflowErrorRules = []mappedHandlerError{
	{target: service.ErrPostNotFound, code: response.CodeNotFound, msg: "post not found"},
	{target: service.ErrActorNotFound, code: response.CodeUnauthorized, msg: "actor not found"},
	{target: service.ErrActorForbidden, code: response.CodeForbidden, msg: "role not allowed for this operation"},
	{target: service.ErrNotAssigned, code: response.CodeForbidden, msg: "actor is not assigned to this post"},
	{target: service.ErrStatusNotPending, code: response.CodeConflict, msg: "only pending posts can be reviewed"},
	{target: service.ErrStatusNotScheduled, code: response.CodeConflict, msg: "only scheduled posts allow this operation"},
	{target: service.ErrStatusConflict, code: response.CodeConflict, msg: "post status changed concurrently, reload and retry"},
	{target: service.ErrTransitionInvalid, code: response.CodeConflict, msg: "transition not allowed from current status"},
	{target: service.ErrPostInvalid, code: response.CodeBadRequest, msg: "post content is invalid"},
	{target: service.ErrPlatformsMissing, code: response.CodeBadRequest, msg: "at least one target platform is required"},
}

var pageErrorRules = []mappedHandlerError{
	{target: service.ErrPageNotFound, code: response.CodeNotFound, msg: "platform page not found"},
	{target: service.ErrUserNotFound, code: response.CodeBadRequest, msg: "client not found"},
	{target: service.ErrPostInvalid, code: response.CodeBadRequest, msg: "page payload is invalid"},
}

var userErrorRules = []mappedHandlerError{
	{target: service.ErrUserNotFound, code: response.CodeNotFound, msg: "user not found"},
	{target: service.ErrUserExists, code: response.CodeConflict, msg: "user already exists"},
	{target: service.ErrSelfDeleteForbidden, code: response.CodeForbidden, msg: "privileged accounts cannot delete themselves"},
	{target: service.ErrActorForbidden, code: response.CodeBadRequest, msg: "user role does not match this assignment"},
	{target: service.ErrNotAssigned, code: response.CodeBadRequest, msg: "assignment constraint violated"},
	{target: service.ErrPostInvalid, code: response.CodeBadRequest, msg: "user payload is invalid"},
}
