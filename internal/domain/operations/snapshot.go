package operations

import "time"

// Snapshot 為一次載入完成、不再變動的紀錄集合。
// 重新載入會產生新的 ID，舊的 Snapshot 仍可安全讀取。
type Snapshot struct {
	ID       string          `json:"id"`
	Source   string          `json:"source"`
	LoadedAt time.Time       `json:"loadedAt"`
	Records  []MonthlyRecord `json:"-"`
}

// Size 回傳紀錄筆數。
func (s Snapshot) Size() int {
	return len(s.Records)
}
