package dataingestion

import (
	"context"
	"fmt"

	"utility-kpi/internal/domain/operations"
)

// RecordSource 抽象化月度紀錄來源（合成資料、CSV、資料庫）。
type RecordSource interface {
	Name() string
	Load(ctx context.Context) ([]operations.MonthlyRecord, error)
}

// RejectingSource 為能逐列回報解析失敗的來源；失敗列會併入 IngestResult.Failures。
type RejectingSource interface {
	LoadWithRejects(ctx context.Context) ([]operations.MonthlyRecord, []operations.RowError, error)
}

// SnapshotPublisher 發布新的 snapshot。
type SnapshotPublisher interface {
	Publish(ctx context.Context, source string, records []operations.MonthlyRecord) (operations.Snapshot, error)
}

// Recorder 接收載入結果統計（metrics）。
type Recorder interface {
	ObserveIngestion(source string, loaded, failed int)
}

// IngestUseCase 讀取來源、驗證紀錄並整批替換 snapshot。
type IngestUseCase struct {
	source         RecordSource
	store          SnapshotPublisher
	recorder       Recorder
	enforceBalance bool
}

func NewIngestUseCase(source RecordSource, store SnapshotPublisher) *IngestUseCase {
	return &IngestUseCase{
		source: source,
		store:  store,
	}
}

// WithInactiveBalance 啟用 inactive = inactiveBoP + newInactive - wokenUp 檢查。
func (u *IngestUseCase) WithInactiveBalance(enforce bool) *IngestUseCase {
	u.enforceBalance = enforce
	return u
}

// WithRecorder 設定統計輸出。
func (u *IngestUseCase) WithRecorder(r Recorder) *IngestUseCase {
	u.recorder = r
	return u
}

type Failure struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

type IngestResult struct {
	SnapshotID   string    `json:"snapshotId"`
	Source       string    `json:"source"`
	SuccessCount int       `json:"successCount"`
	FailedCount  int       `json:"failedCount"`
	Failures     []Failure `json:"failures,omitempty"`
}

// Execute 執行一次完整載入；來源錯誤時不替換現有 snapshot。
func (u *IngestUseCase) Execute(ctx context.Context) (IngestResult, error) {
	result := IngestResult{Source: u.source.Name()}

	raw, rejected, err := u.load(ctx)
	if err != nil {
		return result, fmt.Errorf("load records from %s: %w", result.Source, err)
	}
	for _, rej := range rejected {
		result.FailedCount++
		result.Failures = append(result.Failures, Failure{Key: rej.Key, Reason: rej.Err.Error()})
	}

	valid := make([]operations.MonthlyRecord, 0, len(raw))
	for _, r := range raw {
		if err := u.validate(r); err != nil {
			result.FailedCount++
			result.Failures = append(result.Failures, Failure{
				Key:    recordKey(r),
				Reason: err.Error(),
			})
			continue
		}
		valid = append(valid, r)
	}

	snap, err := u.store.Publish(ctx, result.Source, valid)
	if err != nil {
		return result, fmt.Errorf("publish snapshot: %w", err)
	}
	result.SnapshotID = snap.ID
	result.SuccessCount = len(valid)

	if u.recorder != nil {
		u.recorder.ObserveIngestion(result.Source, result.SuccessCount, result.FailedCount)
	}
	return result, nil
}

func (u *IngestUseCase) load(ctx context.Context) ([]operations.MonthlyRecord, []operations.RowError, error) {
	if rs, ok := u.source.(RejectingSource); ok {
		return rs.LoadWithRejects(ctx)
	}
	records, err := u.source.Load(ctx)
	return records, nil, err
}

func (u *IngestUseCase) validate(r operations.MonthlyRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if u.enforceBalance {
		return r.CheckInactiveBalance()
	}
	return nil
}

func recordKey(r operations.MonthlyRecord) string {
	return fmt.Sprintf("%04d-%02d %s/%s/%s", r.Year, r.Month, r.Site, r.Phase, r.Profile)
}
