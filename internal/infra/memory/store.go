package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	authDomain "utility-kpi/internal/domain/auth"
	"utility-kpi/internal/domain/operations"
	authinfra "utility-kpi/internal/infrastructure/auth"

	"github.com/google/uuid"
)

// ErrNoSnapshot 表示尚未載入任何資料。
var ErrNoSnapshot = fmt.Errorf("record snapshot not loaded")

// Store 保存目前發布中的紀錄 snapshot 與帳號資料。
// 發布後的 Records slice 不再修改，重新載入時整批替換。
type Store struct {
	mu       sync.RWMutex
	snapshot *operations.Snapshot
	users    map[string]authDomain.User
	byEmail  map[string]string
	idSeq    int64
	now      func() time.Time
}

// NewStore 建立新的記憶體 Store 實例。
func NewStore() *Store {
	return &Store{
		users:   make(map[string]authDomain.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

// Publish 以新的紀錄集合取代目前 snapshot。
func (s *Store) Publish(_ context.Context, source string, records []operations.MonthlyRecord) (operations.Snapshot, error) {
	owned := make([]operations.MonthlyRecord, len(records))
	copy(owned, records)
	snap := operations.Snapshot{
		ID:       uuid.NewString(),
		Source:   source,
		LoadedAt: s.now(),
		Records:  owned,
	}

	s.mu.Lock()
	s.snapshot = &snap
	s.mu.Unlock()
	return snap, nil
}

// Current 回傳目前 snapshot。
func (s *Store) Current(_ context.Context) (operations.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return operations.Snapshot{}, ErrNoSnapshot
	}
	return *s.snapshot, nil
}

// SeedUsers 建立每個角色的預設帳號。
func (s *Store) SeedUsers() {
	hash, err := authinfra.HashPassword(authDomain.DefaultPassword)
	if err != nil {
		return
	}
	for _, a := range authDomain.DefaultAccounts {
		s.addUser(a.Email, hash, a.Name, a.Role)
	}
}

// AddUser 新增使用者，password 需為雜湊值。
func (s *Store) AddUser(email, password, name string, role authDomain.Role) string {
	return s.addUser(email, password, name, role)
}

func (s *Store) addUser(email, password, name string, role authDomain.Role) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idSeq++
	id := fmt.Sprintf("user-%d", s.idSeq)
	email = authDomain.NormalizeEmail(email)
	s.users[id] = authDomain.User{
		ID:       id,
		Email:    email,
		Name:     name,
		Role:     role,
		Status:   authDomain.StatusActive,
		Password: password,
	}
	s.byEmail[email] = id
	return id
}

// DisableUser 停用帳號；之後登入會被拒絕。
func (s *Store) DisableUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return authDomain.ErrUserNotFound
	}
	u.Status = authDomain.StatusDisabled
	s.users[id] = u
	return nil
}

// FindByEmail 依 email 查詢使用者。
func (s *Store) FindByEmail(_ context.Context, email string) (authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[authDomain.NormalizeEmail(email)]
	if !ok {
		return authDomain.User{}, authDomain.ErrUserNotFound
	}
	return s.users[id], nil
}

// FindByID 依 ID 查詢使用者。
func (s *Store) FindByID(_ context.Context, id string) (authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return authDomain.User{}, authDomain.ErrUserNotFound
	}
	return u, nil
}
