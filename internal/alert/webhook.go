package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Event webhook 请求体
type Event struct {
	Event     Kind           `json:"event"`
	SheepID   string         `json:"sheepId"`
	DevEUI    string         `json:"devEUI,omitempty"`
	Message   string         `json:"message"`
	Timestamp int64          `json:"timestamp"`
	Nonce     string         `json:"nonce"`
	Data      map[string]any `json:"data,omitempty"`
}

// Message 返回给人看的告警文本
func Message(kind Kind, sheepID string) string {
	switch kind {
	case KindUpsideDown:
		return fmt.Sprintf("%s is upside down!", sheepID)
	case KindBackUp:
		return fmt.Sprintf("%s is back up.", sheepID)
	default:
		return ""
	}
}

// Sender 告警投递
type Sender interface {
	Send(ctx context.Context, ev Event) error
}

// Webhook 带 HMAC 签名的 HTTP 推送，5xx 与网络错误按 Backoff 重试
type Webhook struct {
	Client   *http.Client
	Endpoint string
	APIKey   string
	Secret   string
	Retries  int
	Backoff  []time.Duration
	now      func() time.Time
}

func NewWebhook(client *http.Client, endpoint, apiKey, secret string) *Webhook {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Webhook{
		Client:   client,
		Endpoint: endpoint,
		APIKey:   apiKey,
		Secret:   secret,
		Retries:  3,
		Backoff:  []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, time.Second},
		now:      time.Now,
	}
}

// Send 发送事件，自动补齐时间戳与 nonce 并签名
func (w *Webhook) Send(ctx context.Context, ev Event) error {
	if w == nil || w.Client == nil {
		return errors.New("nil webhook")
	}
	u, err := url.Parse(w.Endpoint)
	if err != nil {
		return fmt.Errorf("parse webhook url: %w", err)
	}
	if ev.Timestamp == 0 {
		now := w.now
		if now == nil {
			now = time.Now
		}
		ev.Timestamp = now().Unix()
	}
	if ev.Nonce == "" {
		ev.Nonce = fmt.Sprintf("%08x", rand.Uint32())
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	sig := SignHMAC(w.Secret, buildCanonical(http.MethodPost, u.Path, ev.Timestamp, ev.Nonce, hashHex(body)))

	var lastErr error
	for attempt := 0; attempt <= w.Retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.Endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Api-Key", w.APIKey)
		req.Header.Set("X-Signature", sig)
		req.Header.Set("X-Timestamp", strconv.FormatInt(ev.Timestamp, 10))
		req.Header.Set("X-Nonce", ev.Nonce)

		resp, err := w.Client.Do(req)
		if err != nil {
			lastErr = err
		} else {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
			lastErr = fmt.Errorf("webhook http %d", resp.StatusCode)
			// 仅对 5xx 重试
			if resp.StatusCode < 500 {
				return lastErr
			}
		}
		if attempt == w.Retries || len(w.Backoff) == 0 {
			break
		}
		backoff := w.Backoff[min(attempt, len(w.Backoff)-1)]
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return lastErr
}
