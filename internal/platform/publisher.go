package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/postdeck-next/internal/config"
	"github.com/postdeck-next/internal/constants"
	"github.com/postdeck-next/internal/platform/facebook"
	"github.com/postdeck-next/internal/platform/instagram"
	"github.com/postdeck-next/internal/platform/linkedin"
)

var (
	ErrPlatformNotSupported = errors.New("platform not supported")
)

// PublishInput 一次平台发布的全部输入
type PublishInput struct {
	PageExternalID string
	AccessToken    string
	Title          string
	Body           string
	MediaURLs      []string
}

// PublishResult 平台发布结果
type PublishResult struct {
	PlatformPostID string
}

// Publisher 平台发布器，按目标平台各自实现一份。
type Publisher interface {
	Platform() string
	Publish(ctx context.Context, input PublishInput) (*PublishResult, error)
}

// Registry 平台发布器注册表
type Registry struct {
	publishers map[string]Publisher
}

// NewRegistry 构建内置三个平台的注册表
func NewRegistry(cfg config.PlatformsConfig) *Registry {
	registry := &Registry{publishers: map[string]Publisher{}}
	registry.Register(&facebookPublisher{cfg: &facebook.Config{BaseURL: cfg.Facebook.BaseURL, TimeoutMS: cfg.Facebook.TimeoutMS}})
	registry.Register(&instagramPublisher{cfg: &instagram.Config{BaseURL: cfg.Instagram.BaseURL, TimeoutMS: cfg.Instagram.TimeoutMS}})
	registry.Register(&linkedinPublisher{cfg: &linkedin.Config{BaseURL: cfg.LinkedIn.BaseURL, TimeoutMS: cfg.LinkedIn.TimeoutMS}})
	return registry
}

// Register 注册发布器，同名平台后注册的覆盖先注册的。
func (r *Registry) Register(p Publisher) {
	if p == nil {
		return
	}
	if r.publishers == nil {
		r.publishers = map[string]Publisher{}
	}
	r.publishers[p.Platform()] = p
}

// Get 按平台名取发布器
func (r *Registry) Get(name string) (Publisher, error) {
	p, ok := r.publishers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlatformNotSupported, name)
	}
	return p, nil
}

type facebookPublisher struct {
	cfg *facebook.Config
}

func (p *facebookPublisher) Platform() string {
	return constants.PlatformFacebook
}

func (p *facebookPublisher) Publish(ctx context.Context, input PublishInput) (*PublishResult, error) {
	result, err := facebook.CreatePost(ctx, p.cfg, facebook.CreateInput{
		PageID:      input.PageExternalID,
		AccessToken: input.AccessToken,
		Message:     input.Body,
		MediaURLs:   input.MediaURLs,
	})
	if err != nil {
		return nil, err
	}
	return &PublishResult{PlatformPostID: result.PostID}, nil
}

type instagramPublisher struct {
	cfg *instagram.Config
}

func (p *instagramPublisher) Platform() string {
	return constants.PlatformInstagram
}

func (p *instagramPublisher) Publish(ctx context.Context, input PublishInput) (*PublishResult, error) {
	result, err := instagram.CreatePost(ctx, p.cfg, instagram.CreateInput{
		AccountID:   input.PageExternalID,
		AccessToken: input.AccessToken,
		Caption:     input.Body,
		MediaURLs:   input.MediaURLs,
	})
	if err != nil {
		return nil, err
	}
	return &PublishResult{PlatformPostID: result.MediaID}, nil
}

type linkedinPublisher struct {
	cfg *linkedin.Config
}

func (p *linkedinPublisher) Platform() string {
	return constants.PlatformLinkedIn
}

func (p *linkedinPublisher) Publish(ctx context.Context, input PublishInput) (*PublishResult, error) {
	result, err := linkedin.CreatePost(ctx, p.cfg, linkedin.CreateInput{
		OrganizationID: input.PageExternalID,
		AccessToken:    input.AccessToken,
		Text:           input.Body,
	})
	if err != nil {
		return nil, err
	}
	return &PublishResult{PlatformPostID: result.ShareID}, nil
}
