package dashboard

import (
	"context"
	"sync"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/record"
)

// HomeView shows the health of the Records API.
type HomeView struct {
	api record.API

	mu      sync.Mutex
	health  record.HealthStatus
	checked bool
}

// Refresh runs a health check. It never fails: problems end up in the status.
func (v *HomeView) Refresh(ctx context.Context) record.HealthStatus {
	status := v.api.Health(ctx)
	v.mu.Lock()
	v.health, v.checked = status, true
	v.mu.Unlock()
	return status
}

// Health returns the last status and whether a check completed yet.
func (v *HomeView) Health() (record.HealthStatus, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.health, v.checked
}

// Settings is the read-only configuration page.
type Settings struct {
	AppName     string `json:"appName"`
	Environment string `json:"nodeEnv"`
	APIBaseURL  string `json:"apiBaseURL"`
	HealthPath  string `json:"healthPath"`
	ClientOnly  bool   `json:"clientOnly"`
}

func CurrentSettings() Settings {
	base := core.APIBaseURL()
	return Settings{
		AppName:     core.Conf.GetString("appName"),
		Environment: core.Conf.GetString("nodeEnv"),
		APIBaseURL:  base,
		HealthPath:  core.HealthPath(),
		ClientOnly:  base == "",
	}
}
