package config

import (
	"strings"

	"github.com/minboot/ats-web/internal/domain/model"
)

// UIConfig controls listing sizes and the route rule table.
type UIConfig struct {
	BrowsePageSize int `env:"UI_BROWSE_PAGE_SIZE" envDefault:"9"`
	ManagePageSize int `env:"UI_MANAGE_PAGE_SIZE" envDefault:"100"`

	// RulesFile overrides the built-in route rules with a YAML table.
	RulesFile string `env:"ROUTE_RULES_FILE" envDefault:""`
}

// Sanitize clamps page sizes to what the backend accepts.
func (u *UIConfig) Sanitize() {
	u.BrowsePageSize = clampPageSize(u.BrowsePageSize, model.BrowsePageSize)
	u.ManagePageSize = clampPageSize(u.ManagePageSize, model.ManagePageSize)
	u.RulesFile = strings.TrimSpace(u.RulesFile)
}

func clampPageSize(v, def int) int {
	const maxPageSize = 200
	switch {
	case v <= 0:
		return def
	case v > maxPageSize:
		return maxPageSize
	default:
		return v
	}
}
