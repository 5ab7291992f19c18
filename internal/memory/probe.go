// Package memory probes the MCP memory tool server that runs beside the analyzer.
// The probe is informational: the report only says whether the server answered
// and which tools it exposes.
package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wonny/ipo-scorecard/internal/contracts"
	"github.com/wonny/ipo-scorecard/pkg/config"
	"github.com/wonny/ipo-scorecard/pkg/logger"
)

const clientName = "ipo-scorecard"

// session is the part of the MCP client the probe uses
type session interface {
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	Close() error
}

type dialFunc func() (session, error)

// Probe launches the memory server over stdio and lists its tools
// ⭐ SSOT: MCP 메모리 서버 연결은 여기서만
type Probe struct {
	enabled bool
	timeout time.Duration
	dial    dialFunc
	logger  *logger.Logger
}

var _ contracts.MemoryProbe = (*Probe)(nil)

// NewProbe creates a probe from config. A disabled probe never starts a process.
func NewProbe(cfg config.MCPMemoryConfig, log *logger.Logger) *Probe {
	env := []string{"LIBSQL_URL=" + cfg.LibsqlURL}
	dial := func() (session, error) {
		c, err := client.NewStdioMCPClient(cfg.Command, env, cfg.Args...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return newProbe(cfg.Enabled, cfg.Timeout, dial, log)
}

func newProbe(enabled bool, timeout time.Duration, dial dialFunc, log *logger.Logger) *Probe {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Probe{
		enabled: enabled,
		timeout: timeout,
		dial:    dial,
		logger:  log.WithComponent("mcp_memory"),
	}
}

// ListTools never fails: any problem is reported as Connected=false
func (p *Probe) ListTools(ctx context.Context) contracts.MemoryStatus {
	status := contracts.MemoryStatus{Connected: false, Tools: []string{}}
	if !p.enabled {
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	tools, err := p.list(ctx)
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Warn("MCP memory server unavailable")
		return status
	}

	status.Connected = true
	status.Tools = tools
	return status
}

func (p *Probe) list(ctx context.Context) ([]string, error) {
	s, err := p.dial()
	if err != nil {
		return nil, fmt.Errorf("start memory server: %w", err)
	}
	defer s.Close()

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: "1.0.0"}
	req.Params.Capabilities = mcp.ClientCapabilities{}

	if _, err := s.Initialize(ctx, req); err != nil {
		return nil, fmt.Errorf("initialize session: %w", err)
	}

	result, err := s.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	return names, nil
}
