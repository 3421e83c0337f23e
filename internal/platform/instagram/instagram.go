package instagram

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
	ErrConfigInvalid   = errors.New("instagram config invalid")
	ErrRequestFailed   = errors.New("instagram request failed")
	ErrResponseInvalid = errors.New("instagram response invalid")
	ErrTokenInvalid    = errors.New("instagram token invalid")
	ErrMediaRequired   = errors.New("instagram media required")
)

const defaultBaseURL = "https://graph.facebook.com/v19.0"

// Config Graph API 配置，Instagram 发布走同一套 Graph 网关。
type Config struct {
	BaseURL   string `json:"base_url"`
	TimeoutMS int    `json:"timeout_ms"`
}

// CreateInput 发帖输入
type CreateInput struct {
	AccountID   string   // IG 商业账号 ID
	AccessToken string   // 访问令牌
	Caption     string   // 帖子文案
	MediaURLs   []string // 图片地址，至少一张
}

// CreateResult 发帖结果
type CreateResult struct {
	MediaID string                 // 平台媒体 ID
	Raw     map[string]interface{} // 发布接口原始响应
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

// CreatePost 发布一条帖子。Instagram 发布是两步：先创建媒体容器，再发布容器。
func CreatePost(ctx context.Context, cfg *Config, input CreateInput) (*CreateResult, error) {
	if cfg == nil {
		return nil, ErrConfigInvalid
	}
	if input.AccountID == "" {
		return nil, fmt.Errorf("%w: account id required", ErrConfigInvalid)
	}
	if input.AccessToken == "" {
		return nil, ErrTokenInvalid
	}
	if len(input.MediaURLs) == 0 {
		return nil, ErrMediaRequired
	}

	containerParams := url.Values{}
	containerParams.Set("image_url", input.MediaURLs[0])
	containerParams.Set("caption", input.Caption)
	containerParams.Set("access_token", input.AccessToken)

	containerRaw, err := postForm(ctx, cfg, cfg.BaseURL+"/"+input.AccountID+"/media", containerParams)
	if err != nil {
		return nil, err
	}
	containerID, _ := containerRaw["id"].(string)
	if containerID == "" {
		return nil, fmt.Errorf("%w: missing container id", ErrResponseInvalid)
	}

	publishParams := url.Values{}
	publishParams.Set("creation_id", containerID)
	publishParams.Set("access_token", input.AccessToken)

	publishRaw, err := postForm(ctx, cfg, cfg.BaseURL+"/"+input.AccountID+"/media_publish", publishParams)
	if err != nil {
		return nil, err
	}
	mediaID, _ := publishRaw["id"].(string)
	if mediaID == "" {
		return nil, fmt.Errorf("%w: missing media id", ErrResponseInvalid)
	}
	return &CreateResult{MediaID: mediaID, Raw: publishRaw}, nil
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
