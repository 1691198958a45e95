package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Telegram 單則訊息長度上限（字元）。
const maxMessageRunes = 4096

var (
	ErrNilClient     = errors.New("telegram client is nil")
	ErrMissingConfig = errors.New("telegram token or chat_id missing")
)

// TelegramClient 封裝 Bot API 的 sendMessage。
type TelegramClient struct {
	token      string
	chatID     int64
	prefix     string
	baseURL    string
	httpClient *http.Client
}

// NewTelegramClient 建立推播 client；prefix 會原樣加在每則訊息前。
func NewTelegramClient(token string, chatID int64, prefix string) *TelegramClient {
	return &TelegramClient{
		token:   token,
		chatID:  chatID,
		prefix:  prefix,
		baseURL: "https://api.telegram.org",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage 推送文字訊息；超過長度上限時依行切成多則。
func (c *TelegramClient) SendMessage(ctx context.Context, text string) error {
	if c == nil {
		return ErrNilClient
	}
	if c.token == "" || c.chatID == 0 {
		return ErrMissingConfig
	}
	if c.prefix != "" {
		text = c.prefix + " " + text
	}
	for _, part := range splitMessage(text, maxMessageRunes) {
		if err := c.send(ctx, part); err != nil {
			return err
		}
	}
	return nil
}

func (c *TelegramClient) send(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: c.chatID, Text: text})
	if err != nil {
		return fmt.Errorf("encode telegram payload: %w", err)
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telegram send failed status=%d body=%s", resp.StatusCode, string(raw))
	}
	var out apiResponse
	if err := json.Unmarshal(raw, &out); err == nil && !out.OK {
		return fmt.Errorf("telegram send rejected: %s", out.Description)
	}
	return nil
}

// splitMessage 依換行切段，使每段不超過 limit 個字元；單行過長時硬切。
func splitMessage(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}
	var parts []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			parts = append(parts, strings.TrimRight(string(cur), "\n"))
			cur = cur[:0]
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		r := []rune(line)
		if len(cur)+len(r) > limit {
			flush()
		}
		for len(r) > limit {
			parts = append(parts, string(r[:limit]))
			r = r[limit:]
		}
		cur = append(cur, r...)
	}
	flush()
	return parts
}
