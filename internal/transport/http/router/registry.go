package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// AdminModule 功能模块把自己的管理端路由挂到 /admin/v1 下
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂），不实现默认 100
type prioritizer interface{ Priority() int }

var (
	mu        sync.RWMutex
	adminMods []AdminModule
)

// Register 模块在 init 里调用，集中注册
func Register(mod AdminModule) {
	mu.Lock()
	defer mu.Unlock()
	adminMods = append(adminMods, mod)
}

// MountAllAdmin 按优先级把所有已注册模块挂到分组上
func MountAllAdmin(admin *gin.RouterGroup) {
	mu.RLock()
	mods := append([]AdminModule(nil), adminMods...)
	mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAdmin(admin)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
