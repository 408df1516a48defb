package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxhedge/hedgegate/internal/model"
)

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*model.AuditLog
	listErr error
}

func (m *memAuditRepo) Insert(_ context.Context, entry *model.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAuditRepo) List(context.Context, string, int, *time.Time, *time.Time) ([]*model.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, m.listErr
}

func TestAuditServiceWritesFileAndRepo(t *testing.T) {
	dir := t.TempDir()
	repo := &memAuditRepo{}
	svc, err := NewAuditService(dir, repo)
	require.NoError(t, err)

	svc.Log(&model.AuditLog{ID: "1", TenantID: "a", Path: "/v1/risk/plan"})
	svc.Log(&model.AuditLog{ID: "2", TenantID: "b", Path: "/v1/execution/orders"})
	svc.Log(nil)
	svc.Close()

	assert.Len(t, repo.entries, 2)
	files, err := filepath.Glob(filepath.Join(dir, "audit-*.jsonl"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	raw, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(raw), "\n"))
}

func TestAuditServiceListFallsBackToBuffer(t *testing.T) {
	repo := &memAuditRepo{listErr: errors.New("db down")}
	svc, err := NewAuditService(t.TempDir(), repo)
	require.NoError(t, err)
	defer svc.Close()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.Log(&model.AuditLog{ID: "1", TenantID: "a", CreatedAt: base})
	svc.Log(&model.AuditLog{ID: "2", TenantID: "a", CreatedAt: base.Add(time.Hour)})
	svc.Log(&model.AuditLog{ID: "3", TenantID: "b", CreatedAt: base.Add(2 * time.Hour)})

	got, err := svc.List(context.Background(), "a", 10, nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)

	from := base.Add(30 * time.Minute)
	got, err = svc.List(context.Background(), "", 10, &from, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
