package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// StatusResponse mirrors the UI's system status panel: which external
// integrations are configured plus basic host metrics.
type StatusResponse struct {
	Uptime           string  `json:"uptime"`
	RestaurantSearch string  `json:"restaurant_search"`
	SmartQueries     string  `json:"smart_queries"`
	Database         string  `json:"database"`
	Hostname         string  `json:"hostname,omitempty"`
	Platform         string  `json:"platform,omitempty"`
	CPUPercent       float64 `json:"cpu_percent,omitempty"`
	MemoryPercent    float64 `json:"memory_percent,omitempty"`
}

func (s *Server) statusHandler(c echo.Context) error {
	resp := StatusResponse{
		Uptime:           time.Since(s.startTime).Round(time.Second).String(),
		RestaurantSearch: keyStatus(s.cfg.ExaAPIKey),
		SmartQueries:     keyStatus(s.cfg.MistralAPIKey),
		Database:         s.db.Health()["status"],
	}

	// Host metrics are best-effort; a failing probe leaves the field empty.
	if info, err := host.Info(); err == nil {
		resp.Hostname = info.Hostname
		resp.Platform = info.Platform
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		resp.MemoryPercent = vm.UsedPercent
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		resp.CPUPercent = percents[0]
	}

	return c.JSON(http.StatusOK, resp)
}

func keyStatus(key string) string {
	if key == "" {
		return "not configured"
	}
	return "connected"
}
