package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// A module implements one or both mount interfaces.
type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// prioritizer orders mounting, lower first; modules without it default to 100.
type prioritizer interface{ Priority() int }

type Registry struct {
	api   []APIModule
	admin []AdminModule
}

// Register files each module under every interface it implements.
func (r *Registry) Register(mods ...any) {
	for _, mod := range mods {
		if m, ok := mod.(APIModule); ok {
			r.api = append(r.api, m)
		}
		if m, ok := mod.(AdminModule); ok {
			r.admin = append(r.admin, m)
		}
	}
}

func (r *Registry) MountAPI(g *gin.RouterGroup) {
	mods := append([]APIModule(nil), r.api...)
	sort.SliceStable(mods, func(i, j int) bool { return priorityOf(mods[i]) < priorityOf(mods[j]) })
	for _, m := range mods {
		m.MountAPI(g)
	}
}

func (r *Registry) MountAdmin(g *gin.RouterGroup) {
	mods := append([]AdminModule(nil), r.admin...)
	sort.SliceStable(mods, func(i, j int) bool { return priorityOf(mods[i]) < priorityOf(mods[j]) })
	for _, m := range mods {
		m.MountAdmin(g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
