package api

import (
	"github.com/postdeck-next/internal/provider"
)

// Handler 接口处理器，直接复用容器内的服务。
type Handler struct {
	*provider.Container
}

// New 创建接口处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
