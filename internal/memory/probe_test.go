package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"

	"github.com/wonny/ipo-scorecard/pkg/logger"
)

type fakeSession struct {
	tools   []string
	initErr error
	block   bool
	closed  bool
}

func (f *fakeSession) Initialize(ctx context.Context, _ mcp.InitializeRequest) (*mcp.InitializeResult, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &mcp.InitializeResult{}, nil
}

func (f *fakeSession) ListTools(_ context.Context, _ mcp.ListToolsRequest) (*mcp.ListToolsResult, error) {
	result := &mcp.ListToolsResult{}
	for _, name := range f.tools {
		result.Tools = append(result.Tools, mcp.Tool{Name: name})
	}
	return result, nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func dialer(s *fakeSession, err error) dialFunc {
	return func() (session, error) {
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func TestProbe_ListsTools(t *testing.T) {
	s := &fakeSession{tools: []string{"search_nodes", "create_entities"}}
	p := newProbe(true, time.Second, dialer(s, nil), logger.NewNop())

	status := p.ListTools(context.Background())

	assert.True(t, status.Connected)
	assert.Equal(t, []string{"create_entities", "search_nodes"}, status.Tools)
	assert.True(t, s.closed)
}

func TestProbe_Failures(t *testing.T) {
	tests := []struct {
		name string
		dial dialFunc
	}{
		{"process fails to start", dialer(nil, errors.New("exec: npx not found"))},
		{"initialize fails", dialer(&fakeSession{initErr: errors.New("bad handshake")}, nil)},
		{"server hangs", dialer(&fakeSession{block: true}, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProbe(true, 50*time.Millisecond, tt.dial, logger.NewNop())
			status := p.ListTools(context.Background())

			assert.False(t, status.Connected)
			assert.NotNil(t, status.Tools)
			assert.Empty(t, status.Tools)
		})
	}
}

func TestProbe_Disabled(t *testing.T) {
	dialed := false
	p := newProbe(false, time.Second, func() (session, error) {
		dialed = true
		return &fakeSession{}, nil
	}, logger.NewNop())

	status := p.ListTools(context.Background())
	assert.False(t, status.Connected)
	assert.False(t, dialed)
}
