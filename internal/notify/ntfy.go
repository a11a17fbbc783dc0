package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

const userAgent = "lostfound/1.0"

// UserPlaceholder in a topic URL is replaced with the recipient's user ID.
const UserPlaceholder = "{user}"

// NtfySink pushes notifications to an ntfy topic.
type NtfySink struct {
	topic   string
	baseURL string
	client  *http.Client
}

// NewNtfySink returns a sink posting to topic, or nil when topic is empty.
// A topic containing UserPlaceholder gives every user their own topic.
// baseURL, when set, turns notification links into click targets.
func NewNtfySink(topic, baseURL string, timeout time.Duration) *NtfySink {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NtfySink{
		topic:   topic,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *NtfySink) Notify(ctx context.Context, n model.Notification) error {
	if s == nil {
		return nil
	}

	endpoint := strings.ReplaceAll(s.topic, UserPlaceholder, strconv.FormatInt(n.UserID, 10))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(n.Message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if n.Title != "" {
		req.Header.Set("Title", n.Title)
	}
	req.Header.Set("Tags", strings.Join([]string{"lostfound", n.Type}, ","))
	if s.baseURL != "" && n.Link != "" {
		req.Header.Set("Click", s.baseURL+n.Link)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
