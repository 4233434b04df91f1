package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client provides the minimal Telegram Bot API calls used outside the
// long-polling bot: membership checks and direct messages.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// APIError is a non-ok answer from the Bot API.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// ChatMember is the subset of getChatMember result we rely on.
type ChatMember struct {
	Status   string `json:"status"`
	IsMember bool   `json:"is_member"`
}

// Counts reports whether the status represents a current member.
// Restricted users count only while they are still in the chat.
func (m *ChatMember) Counts() bool {
	switch m.Status {
	case "creator", "administrator", "member":
		return true
	case "restricted":
		return m.IsMember
	default:
		return false
	}
}

type tgResponse[T any] struct {
	Ok          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
	Result      T      `json:"result"`
}

// GetChatMember fetches a user's membership in a chat (@username or numeric id).
func (c *Client) GetChatMember(ctx context.Context, chatID string, userID int64) (*ChatMember, error) {
	params := url.Values{
		"chat_id": {normalizeChatID(chatID)},
		"user_id": {strconv.FormatInt(userID, 10)},
	}
	var result tgResponse[ChatMember]
	if err := c.call(ctx, http.MethodGet, "getChatMember", params, &result); err != nil {
		return nil, err
	}
	return &result.Result, nil
}

// IsChatMember is GetChatMember reduced to a membership boolean.
func (c *Client) IsChatMember(ctx context.Context, chatID string, userID int64) (bool, error) {
	m, err := c.GetChatMember(ctx, chatID, userID)
	if err != nil {
		return false, err
	}
	return m.Counts(), nil
}

// SendMessage sends a plain-text direct message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	params := url.Values{
		"chat_id":                  {strconv.FormatInt(chatID, 10)},
		"text":                     {text},
		"disable_web_page_preview": {"true"},
	}
	var result tgResponse[json.RawMessage]
	return c.call(ctx, http.MethodPost, "sendMessage", params, &result)
}

func (c *Client) call(ctx context.Context, method, apiMethod string, data url.Values, out interface{ ok() (bool, int, string) }) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, apiMethod)
	var (
		req *http.Request
		err error
	)
	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(data.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		if len(data) > 0 {
			endpoint = endpoint + "?" + data.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
		if err != nil {
			return err
		}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", apiMethod, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", apiMethod, err)
	}
	if ok, code, desc := out.ok(); !ok {
		if code == 0 {
			code = resp.StatusCode
		}
		return &APIError{Method: apiMethod, Code: code, Description: desc}
	}
	return nil
}

func (r *tgResponse[T]) ok() (bool, int, string) { return r.Ok, r.ErrorCode, r.Description }

// normalizeChatID accepts "@name", "name" or a numeric id.
func normalizeChatID(chatID string) string {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" || strings.HasPrefix(chatID, "@") {
		return chatID
	}
	if _, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return chatID
	}
	return "@" + chatID
}
