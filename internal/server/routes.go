package server

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"go.uber.org/zap"

	"github.com/jarodbruce/inputrelay/internal/clients"
	"github.com/jarodbruce/inputrelay/internal/keys"
)

const serviceName = "input-service"

type healthResponse struct {
	Status   string        `json:"status"`
	Service  string        `json:"service"`
	Uptime   string        `json:"uptime"`
	DryRun   bool          `json:"dry_run"`
	Sessions []sessionInfo `json:"sessions"`
	Host     *hostInfo     `json:"host,omitempty"`
}

type sessionInfo struct {
	ID        string    `json:"id"`
	Transport string    `json:"transport"`
	Remote    string    `json:"remote,omitempty"`
	Connected time.Time `json:"connected"`
	Received  uint64    `json:"received"`
	Rejected  uint64    `json:"rejected"`
}

type hostInfo struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	KernelArch      string `json:"kernel_arch"`
	Uptime          uint64 `json:"uptime"`
}

type keysResponse struct {
	SupportedKeys map[string]string `json:"supported_keys"`
	Note          string            `json:"note"`
	Examples      map[string]any    `json:"examples"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "healthy",
		Service:  serviceName,
		Uptime:   time.Since(s.started).Round(time.Second).String(),
		DryRun:   s.cfg.Replay.DryRun,
		Sessions: []sessionInfo{},
	}
	s.cfg.Manager.ForEachClient(func(c *clients.Client) {
		resp.Sessions = append(resp.Sessions, sessionInfo{
			ID:        c.ID(),
			Transport: c.Transport,
			Remote:    c.Session.Remote(),
			Connected: c.Session.Started(),
			Received:  c.Session.Received(),
			Rejected:  c.Session.Rejected(),
		})
	})

	if info, err := host.InfoWithContext(r.Context()); err == nil {
		resp.Host = &hostInfo{
			Hostname:        info.Hostname,
			OS:              info.OS,
			Platform:        info.Platform,
			PlatformVersion: info.PlatformVersion,
			KernelArch:      info.KernelArch,
			Uptime:          info.Uptime,
		}
	} else {
		log.Debug("host info unavailable", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	table := make(map[string]string)
	for alias, k := range keys.Aliases() {
		table[alias] = keys.Named(k).String()
	}
	writeJSON(w, http.StatusOK, keysResponse{
		SupportedKeys: table,
		Note:          "All keys are case-insensitive. Single characters and text strings are also supported.",
		Examples: map[string]any{
			"arrow_keys":   []string{"Up", "down", "LEFT", "right", "ArrowUp", "arrow_down"},
			"modifiers":    []string{"ctrl", "shift", "alt", "cmd"},
			"combinations": "Use keyCombo event with keys array: ['ctrl', 'c']",
			"text":         "Any single character or string will be typed normally",
		},
	})
}
