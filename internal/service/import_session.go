package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/WarunaSLFI/study-planner-saas/internal/dto"
	"github.com/WarunaSLFI/study-planner-saas/pkg/redis"
)

// 会话类型
const (
	SessionKindSubjects    = "subjects"
	SessionKindAssignments = "assignments"
)

// SubjectSessionRow 会话中暂存的科目预览行（含审核候选）
type SubjectSessionRow struct {
	RowID          string                `json:"row_id"`
	Name           string                `json:"name"`
	Code           string                `json:"code"`
	Candidates     []dto.ReviewCandidate `json:"candidates,omitempty"`
	AllowCreateNew bool                  `json:"allow_create_new"`
}

// AssignmentSessionRow 会话中暂存的作业预览行
type AssignmentSessionRow struct {
	RowID       string `json:"row_id"`
	Title       string `json:"title"`
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	DueDate     string `json:"due_date"`
}

// ImportSession 一次导入会话（解析 → 审核 → 提交或放弃）。
// 预览行只活在会话里，提交或过期后即消失，从不进业务表。
type ImportSession struct {
	SessionID   string                 `json:"session_id"`
	UserID      string                 `json:"user_id"`
	Kind        string                 `json:"kind"`
	Subjects    []SubjectSessionRow    `json:"subjects,omitempty"`
	Assignments []AssignmentSessionRow `json:"assignments,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// sessionStore 导入会话存取接口
type sessionStore interface {
	Save(ctx context.Context, session *ImportSession, ttl time.Duration) error
	Load(ctx context.Context, userID, sessionID string) (*ImportSession, error)
	Delete(ctx context.Context, userID, sessionID string) error
}

func sessionKey(userID, sessionID string) string {
	return fmt.Sprintf("import:session:%s:%s", userID, sessionID)
}

// newSessionStore Redis 可用时用 Redis（多实例共享、自动过期），
// 否则降级为进程内存储（单实例够用，重启丢会话可接受）
func newSessionStore(rdb *redis.Client) sessionStore {
	if rdb != nil {
		return &redisSessionStore{rdb: rdb}
	}
	return newMemorySessionStore()
}

// ── Redis 实现 ──

type redisSessionStore struct {
	rdb *redis.Client
}

func (s *redisSessionStore) Save(ctx context.Context, session *ImportSession, ttl time.Duration) error {
	return s.rdb.SetJSON(ctx, sessionKey(session.UserID, session.SessionID), session, ttl)
}

func (s *redisSessionStore) Load(ctx context.Context, userID, sessionID string) (*ImportSession, error) {
	var session ImportSession
	err := s.rdb.GetJSON(ctx, sessionKey(userID, sessionID), &session)
	if err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return nil, ErrImportSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, userID, sessionID string) error {
	return s.rdb.Del(ctx, sessionKey(userID, sessionID))
}

// ── 进程内降级实现 ──

type memoryEntry struct {
	session   ImportSession
	expiresAt time.Time
}

type memorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{entries: make(map[string]memoryEntry)}
}

func (s *memorySessionStore) Save(_ context.Context, session *ImportSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// 顺带清理已过期会话，避免长期驻留
	now := time.Now()
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
	s.entries[sessionKey(session.UserID, session.SessionID)] = memoryEntry{
		session:   *session,
		expiresAt: now.Add(ttl),
	}
	return nil
}

func (s *memorySessionStore) Load(_ context.Context, userID, sessionID string) (*ImportSession, error) {
	s.mu.RLock()
	entry, ok := s.entries[sessionKey(userID, sessionID)]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrImportSessionNotFound
	}
	session := entry.session
	return &session, nil
}

func (s *memorySessionStore) Delete(_ context.Context, userID, sessionID string) error {
	s.mu.Lock()
	delete(s.entries, sessionKey(userID, sessionID))
	s.mu.Unlock()
	return nil
}
