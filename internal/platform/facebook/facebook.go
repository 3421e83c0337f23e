package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("facebook config invalid")
	ErrRequestFailed   = errors.New("facebook request failed")
	ErrResponseInvalid = errors.New("facebook response invalid")
	ErrTokenInvalid    = errors.New("facebook token invalid")
)

const defaultBaseURL = "https://graph.facebook.com/v19.0"

// Config Graph API 配置
type Config struct {
	BaseURL   string `json:"base_url"`   // Graph API 根地址
	TimeoutMS int    `json:"timeout_ms"` // 单次请求超时
}

// CreateInput 发帖输入
type CreateInput struct {
	PageID      string   // 页面外部 ID
	AccessToken string   // 页面访问令牌
	Message     string   // 帖子文案
	MediaURLs   []string // 图片地址，走 photos 接口
}

// CreateResult 发帖结果
type CreateResult struct {
	PostID string                 // 平台帖子 ID
	Raw    map[string]interface{} // 原始响应
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 10000
	}
}

// ParseConfig 解析配置
func ParseConfig(raw map[string]interface{}) (*Config, error) {
	var cfg Config
	if raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal config failed", ErrConfigInvalid)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%w: unmarshal config failed", ErrConfigInvalid)
		}
	}
	cfg.normalize()
	return &cfg, nil
}

// CreatePost 在页面时间线上发布一条帖子。
// 带图片时走 photos 接口，Graph API 会在响应里同时返回 photo id 与 post_id。
func CreatePost(ctx context.Context, cfg *Config, input CreateInput) (*CreateResult, error) {
	if cfg == nil {
		return nil, ErrConfigInvalid
	}
	if input.PageID == "" || input.Message == "" {
		return nil, fmt.Errorf("%w: page id and message required", ErrConfigInvalid)
	}
	if input.AccessToken == "" {
		return nil, ErrTokenInvalid
	}

	params := url.Values{}
	params.Set("message", input.Message)
	params.Set("access_token", input.AccessToken)

	endpoint := cfg.BaseURL + "/" + input.PageID + "/feed"
	if len(input.MediaURLs) > 0 {
		endpoint = cfg.BaseURL + "/" + input.PageID + "/photos"
		params.Set("url", input.MediaURLs[0])
		params.Set("caption", input.Message)
		params.Del("message")
	}

	raw, err := postForm(ctx, cfg, endpoint, params)
	if err != nil {
		return nil, err
	}

	postID, _ := raw["post_id"].(string)
	if postID == "" {
		postID, _ = raw["id"].(string)
	}
	if postID == "" {
		return nil, fmt.Errorf("%w: missing post id", ErrResponseInvalid)
	}
	return &CreateResult{PostID: postID, Raw: raw}, nil
}

func postForm(ctx context.Context, cfg *Config, endpoint string, params url.Values) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body failed", ErrResponseInvalid)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	if errObj, ok := raw["error"].(map[string]interface{}); ok {
		msg, _ := errObj["message"].(string)
		if code, _ := errObj["code"].(float64); code == 190 {
			return nil, fmt.Errorf("%w: %s", ErrTokenInvalid, msg)
		}
		return nil, fmt.Errorf("%w: %s", ErrRequestFailed, msg)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}
	return raw, nil
}
