package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrocli/internal/catalog"
	"macrocli/internal/config"
	"macrocli/pkg/contracts/domain"
)

type fakeSocketStats struct {
	stats map[string]interface{}
}

func (f *fakeSocketStats) Stats() map[string]interface{} { return f.stats }

func TestHealthService_Check(t *testing.T) {
	paths := config.PathsFor(t.TempDir())
	svc := NewHealthService("1.2.3", paths, nil, nil, nil, testLogger())

	status := svc.Check(context.Background())
	require.NotNil(t, status)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.False(t, status.CollectionRunning)
	assert.Nil(t, status.WebSocket)
	assert.Nil(t, status.Runtime)
	assert.WithinDuration(t, time.Now(), status.Time, 5*time.Second)

	require.Len(t, status.Workbooks, len(catalog.Sources()))
	for source, collected := range status.Workbooks {
		assert.False(t, collected, "no workbook written yet for %s", source)
	}
}

func TestHealthService_Check_ReportsWorkbooksAndSocket(t *testing.T) {
	paths := config.PathsFor(t.TempDir())
	writeSourceWorkbook(t, paths, catalog.SourceFRED, []domain.Observation{
		fredObs("UNRATE", monthStart(2024, time.January), 3.7),
	})

	socket := &fakeSocketStats{stats: map[string]interface{}{"active_clients": 2}}
	collection := NewCollectionService(nil, paths, nil, nil, 1, testLogger())
	svc := NewHealthService("dev", paths, collection, socket, nil, testLogger())

	status := svc.Check(context.Background())
	assert.True(t, status.Workbooks[catalog.SourceFRED])
	assert.False(t, status.Workbooks[catalog.SourceBLS])
	assert.False(t, status.CollectionRunning)
	require.NotNil(t, status.WebSocket)
	assert.Equal(t, 2, status.WebSocket["active_clients"])
}
