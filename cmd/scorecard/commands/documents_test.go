package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ipo-scorecard/internal/contracts"
	"github.com/wonny/ipo-scorecard/pkg/database"
)

type fakeHealth struct {
	err error
}

func (f fakeHealth) HealthCheck(context.Context) (*database.HealthStatus, error) {
	status := &database.HealthStatus{Healthy: f.err == nil, Timestamp: time.Now()}
	if f.err != nil {
		status.Error = f.err.Error()
	}
	return status, f.err
}

type fakeLister struct {
	docs  []*contracts.Document
	limit int
}

func (f *fakeLister) Recent(_ context.Context, limit int) ([]*contracts.Document, error) {
	f.limit = limit
	return f.docs, nil
}

func TestBuildDocumentsReport(t *testing.T) {
	lister := &fakeLister{docs: []*contracts.Document{{FileID: "abc", Filename: "drhp.pdf"}}}

	report, err := buildDocumentsReport(context.Background(), fakeHealth{}, lister, 5)
	require.NoError(t, err)
	assert.True(t, report.Database.Healthy)
	assert.Equal(t, 5, lister.limit)
	require.Len(t, report.Documents, 1)
	assert.Equal(t, "drhp.pdf", report.Documents[0].Filename)
}

func TestBuildDocumentsReport_UnhealthyDatabase(t *testing.T) {
	lister := &fakeLister{}

	report, err := buildDocumentsReport(context.Background(), fakeHealth{err: errors.New("connection refused")}, lister, 5)
	require.Error(t, err)
	require.NotNil(t, report)
	assert.False(t, report.Database.Healthy)
	assert.Equal(t, "connection refused", report.Database.Error)
	assert.Empty(t, report.Documents)
	assert.Zero(t, lister.limit, "registry must not be queried")
}

func TestBuildDocumentsReport_InvalidLimit(t *testing.T) {
	_, err := buildDocumentsReport(context.Background(), fakeHealth{}, &fakeLister{}, 0)
	assert.Error(t, err)
}
