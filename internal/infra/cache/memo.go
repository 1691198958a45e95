package cache

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"
)

// Recorder 接收命中 / 未命中統計。
type Recorder interface {
	CacheHit(report string)
	CacheMiss(report string)
}

// Config 控制報表快取大小。
type Config struct {
	Enabled     bool
	NumCounters int64
	MaxCost     int64
}

// Memo 依 (snapshot, 報表, 參數) 快取計算結果；同一個 key 的併發計算只會執行一次。
// 停用時直接計算，結果與啟用時相同。
type Memo struct {
	cache    *ristretto.Cache
	group    singleflight.Group
	recorder Recorder
}

type entry struct {
	key   string
	value any
}

// New 建立快取；Enabled 為 false 時回傳只做 singleflight 的 Memo。
func New(cfg Config, recorder Recorder) (*Memo, error) {
	m := &Memo{recorder: recorder}
	if !cfg.Enabled {
		return m, nil
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create report cache: %w", err)
	}
	m.cache = c
	return m, nil
}

// Do 取得快取值，未命中時呼叫 compute 並寫回。
func (m *Memo) Do(report, key string, compute func() (any, error)) (any, error) {
	if m == nil {
		return compute()
	}
	h := xxhash.Sum64String(key)
	if m.cache != nil {
		if v, ok := m.cache.Get(h); ok {
			if e, ok := v.(entry); ok && e.key == key {
				m.hit(report)
				return e.value, nil
			}
		}
	}
	m.miss(report)

	v, err, _ := m.group.Do(key, func() (any, error) {
		value, err := compute()
		if err != nil {
			return nil, err
		}
		if m.cache != nil {
			m.cache.Set(h, entry{key: key, value: value}, 1)
		}
		return value, nil
	})
	return v, err
}

// Wait 等待寫入緩衝處理完成（測試用）。
func (m *Memo) Wait() {
	if m != nil && m.cache != nil {
		m.cache.Wait()
	}
}

// Clear 清除所有快取項目。
func (m *Memo) Clear() {
	if m != nil && m.cache != nil {
		m.cache.Clear()
	}
}

// Close 釋放快取資源。
func (m *Memo) Close() {
	if m != nil && m.cache != nil {
		m.cache.Close()
	}
}

func (m *Memo) hit(report string) {
	if m.recorder != nil {
		m.recorder.CacheHit(report)
	}
}

func (m *Memo) miss(report string) {
	if m.recorder != nil {
		m.recorder.CacheMiss(report)
	}
}
