package shop

import "github.com/velamall/internal/provider"

// Handler 店铺端接口处理器入口
// 说明：该处理器仅用于店铺成员 API。
type Handler struct {
	*provider.Container
}

// New 创建店铺端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
