package notify

import (
	"context"
	"log"
	"time"
)

// Sender 推送文字訊息。
type Sender interface {
	SendMessage(ctx context.Context, text string) error
}

// DigestSource 產出要推播的摘要文字。
type DigestSource interface {
	Digest(ctx context.Context) (string, error)
}

// DigestSourceFunc 讓一般函式滿足 DigestSource。
type DigestSourceFunc func(ctx context.Context) (string, error)

func (f DigestSourceFunc) Digest(ctx context.Context) (string, error) { return f(ctx) }

// DigestJob 定期推送 KPI 摘要。
type DigestJob struct {
	sender     Sender
	source     DigestSource
	interval   time.Duration
	startDelay time.Duration
}

func NewDigestJob(sender Sender, source DigestSource, interval time.Duration) *DigestJob {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &DigestJob{
		sender:     sender,
		source:     source,
		interval:   interval,
		startDelay: 5 * time.Second,
	}
}

// WithStartDelay 設定第一次推送前的等待時間。
func (j *DigestJob) WithStartDelay(d time.Duration) *DigestJob {
	j.startDelay = d
	return j
}

// Run 先推送一次，之後每個 interval 推送，直到 ctx 結束。
func (j *DigestJob) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(j.startDelay):
	}
	j.PushOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.PushOnce(ctx)
		}
	}
}

// PushOnce 產生並推送一次摘要；失敗只記錄，不中斷排程。
func (j *DigestJob) PushOnce(ctx context.Context) error {
	text, err := j.source.Digest(ctx)
	if err != nil {
		log.Printf("[Notify] digest skipped: %v", err)
		return err
	}
	if err := j.sender.SendMessage(ctx, text); err != nil {
		log.Printf("[Notify] digest push failed: %v", err)
		return err
	}
	log.Printf("[Notify] digest sent (%d chars)", len([]rune(text)))
	return nil
}
