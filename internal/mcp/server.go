package mcp

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/alignlab/entalign/internal/config"
	"github.com/alignlab/entalign/internal/corpus"
	"github.com/alignlab/entalign/internal/match"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"entity_align": {
		def:     alignToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAlign },
	},
	"annotation_submit": {
		def:     submitToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSubmit },
	},
	"annotation_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"annotation_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"text_categories": {
		def:     categoriesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategories },
	},
	"text_status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the alignment tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, store *corpus.Store, engine *match.Engine, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"entalign",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, store, engine)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, store *corpus.Store, engine *match.Engine, version string) error {
	s := NewServer(db, cfg, store, engine, version)
	return server.ServeStdio(s)
}
