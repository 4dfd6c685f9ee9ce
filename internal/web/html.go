package web

import (
	_ "embed"
	"encoding/json"
	"html/template"
	"net/http"
)

//go:embed board.html
var boardHTML string

var boardTemplate = template.Must(template.New("board").Parse(boardHTML))

// boardConfig is the slice of config the browser needs, injected into
// the page so the board renders columns and priority options without an
// extra round trip.
type boardConfig struct {
	Statuses        []string `json:"statuses"`
	Priorities      []string `json:"priorities"`
	DefaultPriority string   `json:"defaultPriority"`
}

// handleIndex serves the Kanban board page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	cfg, err := json.Marshal(boardConfig{
		Statuses:        s.cfg.Statuses,
		Priorities:      s.cfg.Priorities,
		DefaultPriority: s.cfg.Defaults.Priority,
	})
	if err != nil {
		jsonError(w, "Failed to render board", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := boardTemplate.Execute(w, map[string]interface{}{
		"ConfigJSON": template.JS(cfg),
	}); err != nil {
		s.logger.Error("render board failed", "error", err)
	}
}
