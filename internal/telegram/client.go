// Package telegram is a minimal Bot API client covering long polling, text
// replies and document uploads.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultBaseURL = "https://api.telegram.org"

	// MaxCaptionRunes is the Bot API limit for document captions.
	MaxCaptionRunes = 1024

	sendMessageTimeout  = 10 * time.Second
	sendDocumentTimeout = 120 * time.Second
	controlTimeout      = 10 * time.Second
	pollGrace           = 10 * time.Second
)

type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

func NewClient(httpClient *http.Client, baseURL, token string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		token:   strings.TrimSpace(token),
	}
}

type Update struct {
	UpdateID      int64    `json:"update_id"`
	Message       *Message `json:"message,omitempty"`
	EditedMessage *Message `json:"edited_message,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Date      int64  `json:"date,omitempty"`
	Chat      *Chat  `json:"chat,omitempty"`
	From      *User  `json:"from,omitempty"`
	Text      string `json:"text,omitempty"`
}

// ChatID returns 0 when the message carries no chat.
func (m *Message) ChatID() int64 {
	if m == nil || m.Chat == nil {
		return 0
	}
	return m.Chat.ID
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"` // private|group|supergroup|channel
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// FirstNameOr returns the user's first name, or fallback when it is unknown.
func (u *User) FirstNameOr(fallback string) string {
	if u == nil {
		return fallback
	}
	if first := strings.TrimSpace(u.FirstName); first != "" {
		return first
	}
	if username := strings.TrimSpace(u.Username); username != "" {
		return "@" + username
	}
	return fallback
}

type okResponse struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// RequestError is returned when the Bot API answers with a non-2xx status or
// ok=false.
type RequestError struct {
	Method      string
	StatusCode  int
	ErrorCode   int
	Description string
	Body        string
}

func (e *RequestError) Error() string {
	if e == nil {
		return "telegram request failed"
	}
	prefix := "telegram"
	if e.Method != "" {
		prefix += " " + e.Method
	}
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		desc = strings.TrimSpace(e.Body)
	}
	switch {
	case e.StatusCode > 0 && desc != "":
		return fmt.Sprintf("%s: http %d: %s", prefix, e.StatusCode, desc)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: http %d", prefix, e.StatusCode)
	case desc != "":
		return prefix + ": " + desc
	default:
		return prefix + ": ok=false"
	}
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// GetMe validates the token and returns the bot's own user.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var me User
	if err := c.call(ctx, controlTimeout, "getMe", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// DeleteWebhook removes any configured webhook. getUpdates is refused while
// one is set.
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	body := map[string]any{"drop_pending_updates": dropPending}
	return c.call(ctx, controlTimeout, "deleteWebhook", body, nil)
}

// GetUpdates long-polls for updates. A zero offset is omitted so the server
// applies its own default; -1 asks for the latest pending update only.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	secs := int(timeout / time.Second)
	if secs < 0 {
		secs = 0
	}
	q := url.Values{"timeout": {strconv.Itoa(secs)}}
	if offset != 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout+pollGrace)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.endpoint("getUpdates")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out []Update
	if err := c.do(req, "getUpdates", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IsPollTimeout reports whether err is an expected long-poll timeout rather
// than a real failure.
func IsPollTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "client.timeout exceeded")
}

type sendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// SendMessage sends plain text. Callers keep text under the 4096 char limit.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		text = "(empty)"
	}
	body := sendMessageRequest{ChatID: chatID, Text: text, DisableWebPagePreview: true}
	return c.call(ctx, sendMessageTimeout, "sendMessage", body, nil)
}

// SendDocument uploads the file at path as a document attachment. The body is
// streamed, so large exports are never held in memory.
func (c *Client) SendDocument(ctx context.Context, chatID int64, path, filename, caption string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("missing file path")
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}
	if st.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}

	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = filepath.Base(path)
	}
	caption = TruncateRunes(strings.TrimSpace(caption), MaxCaptionRunes)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeDocumentForm(mw, f, chatID, filename, caption)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	reqCtx, cancel := context.WithTimeout(ctx, sendDocumentTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint("sendDocument"), pr)
	if err != nil {
		_ = pr.Close()
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	err = c.do(req, "sendDocument", nil)
	_ = pr.Close()
	return err
}

func writeDocumentForm(mw *multipart.Writer, r io.Reader, chatID int64, filename, caption string) error {
	if err := mw.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return err
	}
	if caption != "" {
		if err := mw.WriteField("caption", caption); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("document", filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, r)
	return err
}

func (c *Client) call(ctx context.Context, timeout time.Duration, method string, body any, out any) error {
	var reader io.Reader
	httpMethod := http.MethodGet
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
		httpMethod = http.MethodPost
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, httpMethod, c.endpoint(method), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, method, out)
}

func (c *Client) do(req *http.Request, method string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	var env okResponse
	_ = json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.OK {
		return &RequestError{
			Method:      method,
			StatusCode:  resp.StatusCode,
			ErrorCode:   env.ErrorCode,
			Description: env.Description,
			Body:        strings.TrimSpace(string(raw)),
		}
	}
	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("telegram %s: decode result: %w", method, err)
	}
	return nil
}

// TruncateRunes cuts s to at most max runes without splitting a character.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
