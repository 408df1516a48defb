package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/pkg/logger"
	"github.com/fxhedge/hedgegate/internal/pkg/ringbuf"
)

type AuditService struct {
	logChan chan *model.AuditLog
	logFile *os.File
	buffer  *ringbuf.Buffer[*model.AuditLog]
	repo    AuditRepo
	log     *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

type AuditRepo interface {
	Insert(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, tenantID string, limit int, from, to *time.Time) ([]*model.AuditLog, error)
}

func NewAuditService(logDir string, repo AuditRepo) (*AuditService, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	// 简单的按日轮转文件
	filename := filepath.Join(logDir, "audit-"+time.Now().Format(time.DateOnly)+".jsonl")
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	svc := &AuditService{
		logChan: make(chan *model.AuditLog, 1000), // 缓冲区 1000
		logFile: f,
		buffer:  ringbuf.New[*model.AuditLog](1000),
		repo:    repo,
		log:     logger.Get().With("component", "audit"),
		done:    make(chan struct{}),
	}

	// 启动消费者 goroutine
	go svc.processLogs()

	return svc, nil
}

func (s *AuditService) Log(entry *model.AuditLog) {
	if entry == nil {
		return
	}
	s.buffer.Add(entry)
	select {
	case s.logChan <- entry:
	default:
		// 缓冲区满，丢弃日志以保护主流程
		s.log.Warn("audit log buffer full, dropping entry", "id", entry.ID, "path", entry.Path)
	}
}

func (s *AuditService) List(ctx context.Context, tenantID string, limit int, from, to *time.Time) ([]*model.AuditLog, error) {
	if s.repo != nil {
		records, err := s.repo.List(ctx, tenantID, limit, from, to)
		if err == nil {
			return records, nil
		}
		s.log.Warn("audit repo list failed, serving buffer", "error", err)
	}
	keep := func(entry *model.AuditLog) bool {
		if tenantID != "" && entry.TenantID != tenantID {
			return false
		}
		if from != nil && entry.CreatedAt.Before(*from) {
			return false
		}
		return to == nil || !entry.CreatedAt.After(*to)
	}
	return s.buffer.List(keep, limit), nil
}

func (s *AuditService) processLogs() {
	defer close(s.done)
	encoder := json.NewEncoder(s.logFile)
	for entry := range s.logChan {
		if s.repo != nil {
			if err := s.repo.Insert(context.Background(), entry); err != nil {
				s.log.Error("failed to write audit log to store", "error", err)
			}
		}
		if err := encoder.Encode(entry); err != nil {
			s.log.Error("failed to write audit log", "error", err)
		}
	}
}

// Close drains pending entries before closing the file.
func (s *AuditService) Close() {
	s.closeOnce.Do(func() {
		close(s.logChan)
		<-s.done
		_ = s.logFile.Close()
	})
}
