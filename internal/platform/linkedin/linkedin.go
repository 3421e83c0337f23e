package linkedin

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

var (
	ErrConfigInvalid   = errors.New("linkedin config invalid")
	ErrRequestFailed   = errors.New("linkedin request failed")
	ErrResponseInvalid = errors.New("linkedin response invalid")
	ErrTokenInvalid    = errors.New("linkedin token invalid")
)

const defaultBaseURL = "https://api.linkedin.com/v2"

// Config REST API 配置
type Config struct {
	BaseURL   string `json:"base_url"`
	TimeoutMS int    `json:"timeout_ms"`
}

// CreateInput 发帖输入
type CreateInput struct {
	OrganizationID string // 组织外部 ID
	AccessToken    string // OAuth2 访问令牌
	Text           string // 帖子文案
}

// CreateResult 发帖结果
type CreateResult struct {
	ShareID string                 // 平台分享 ID
	Raw     map[string]interface{} // 原始响应
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

// CreatePost 以组织身份发布一条 UGC 帖子。
func CreatePost(ctx context.Context, cfg *Config, input CreateInput) (*CreateResult, error) {
	if cfg == nil {
		return nil, ErrConfigInvalid
	}
	if input.OrganizationID == "" || input.Text == "" {
		return nil, fmt.Errorf("%w: organization id and text required", ErrConfigInvalid)
	}
	if input.AccessToken == "" {
		return nil, ErrTokenInvalid
	}

	payload := map[string]interface{}{
		"author":         "urn:li:organization:" + input.OrganizationID,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary": map[string]interface{}{
					"text": input.Text,
				},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]interface{}{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal payload failed", ErrRequestFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/ugcPosts", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+input.AccessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

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

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: status 401", ErrTokenInvalid)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	shareID, _ := raw["id"].(string)
	if shareID == "" {
		shareID = resp.Header.Get("X-RestLi-Id")
	}
	if shareID == "" {
		return nil, fmt.Errorf("%w: missing share id", ErrResponseInvalid)
	}
	return &CreateResult{ShareID: shareID, Raw: raw}, nil
}
