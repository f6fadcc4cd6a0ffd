package fetch

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

	"golang.org/x/sync/singleflight"

	"github.com/MagicGod/shly/internal/config"
	"github.com/MagicGod/shly/internal/itemstore"
	"github.com/MagicGod/shly/internal/review"
	logpkg "github.com/MagicGod/shly/pkg/log"
)

const (
	profileFields = "photo_max_orig,photo_max,is_closed,deactivated,first_name,last_name"

	// maxImageBytes caps a single avatar download.
	maxImageBytes = 16 << 20
)

// ErrNotFound is returned when the API knows no user for the screen name.
var ErrNotFound = errors.New("fetch: user not found")

// Options configures a VK fetcher.
type Options struct {
	APIBase    string
	APIVersion string
	Token      string
	Timeout    time.Duration
	Client     *http.Client
	Logger     logpkg.Logger
}

// OptionsFromConfig maps the fetch section of the config.
func OptionsFromConfig(cfg config.FetchConfig) Options {
	return Options{
		APIBase:    cfg.APIBase,
		APIVersion: cfg.APIVersion,
		Token:      cfg.Token,
		Timeout:    time.Duration(cfg.TimeoutMs) * time.Millisecond,
	}
}

// VK implements review.Fetcher.
type VK struct {
	base    string
	version string
	token   string
	client  *http.Client
	logger  logpkg.Logger
	group   singleflight.Group
}

var _ review.Fetcher = (*VK)(nil)

// NewVK builds a fetcher. A nil Client gets one with the configured timeout.
func NewVK(opts Options) *VK {
	if opts.APIBase == "" {
		opts.APIBase = "https://api.vk.com"
	}
	if opts.APIVersion == "" {
		opts.APIVersion = "5.199"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	return &VK{
		base:    strings.TrimRight(opts.APIBase, "/"),
		version: opts.APIVersion,
		token:   opts.Token,
		client:  opts.Client,
		logger:  opts.Logger.With(logpkg.Component("fetch")),
	}
}

type vkUser struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsClosed     bool   `json:"is_closed"`
	Deactivated  string `json:"deactivated"`
	PhotoMaxOrig string `json:"photo_max_orig"`
	PhotoMax     string `json:"photo_max"`
}

type vkError struct {
	Code int    `json:"error_code"`
	Msg  string `json:"error_msg"`
}

type usersGetResponse struct {
	Response []vkUser `json:"response"`
	Error    *vkError `json:"error"`
}

// Fetch resolves the screen name in key, then downloads the avatar for open
// profiles. Deactivated and closed profiles yield metadata only. Concurrent
// calls for the same key share one lookup.
func (v *VK) Fetch(ctx context.Context, key string) (review.FetchResult, error) {
	res, err, shared := v.group.Do(key, func() (interface{}, error) {
		return v.fetch(ctx, key)
	})
	if shared {
		v.logger.Debug("coalesced fetch", logpkg.Str("key", key))
	}
	if err != nil {
		return review.FetchResult{}, fmt.Errorf("%w: %v", review.ErrFetchFailed, err)
	}
	return res.(review.FetchResult), nil
}

func (v *VK) fetch(ctx context.Context, key string) (review.FetchResult, error) {
	user, err := v.lookup(ctx, itemstore.ScreenName(key))
	if err != nil {
		return review.FetchResult{}, err
	}
	profile := &review.Profile{
		DisplayName: strings.TrimSpace(user.FirstName + " " + user.LastName),
		Restricted:  user.IsClosed,
		Deactivated: user.Deactivated != "",
	}
	if profile.Deactivated || profile.Restricted {
		return review.FetchResult{Profile: profile}, nil
	}

	src := user.PhotoMaxOrig
	if src == "" {
		src = user.PhotoMax
	}
	if src == "" {
		return review.FetchResult{Profile: profile}, nil
	}
	media, err := v.download(ctx, src)
	if err != nil {
		// metadata is still useful without the picture
		v.logger.Warn("avatar download failed", logpkg.Str("key", key), logpkg.Err(err))
		return review.FetchResult{Profile: profile}, nil
	}
	return review.FetchResult{Media: media, Profile: profile}, nil
}

func (v *VK) lookup(ctx context.Context, screenName string) (vkUser, error) {
	q := url.Values{}
	q.Set("user_ids", screenName)
	q.Set("fields", profileFields)
	q.Set("access_token", v.token)
	q.Set("v", v.version)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.base+"/method/users.get?"+q.Encode(), nil)
	if err != nil {
		return vkUser{}, fmt.Errorf("build users.get request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return vkUser{}, fmt.Errorf("users.get: %w", stripURL(err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return vkUser{}, fmt.Errorf("users.get returned %s", resp.Status)
	}

	var out usersGetResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return vkUser{}, fmt.Errorf("decode users.get response: %w", err)
	}
	if out.Error != nil {
		return vkUser{}, fmt.Errorf("users.get error %d: %s", out.Error.Code, out.Error.Msg)
	}
	if len(out.Response) == 0 {
		return vkUser{}, ErrNotFound
	}
	return out.Response[0], nil
}

func (v *VK) download(ctx context.Context, src string) (*review.Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image returned %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return &review.Media{Data: data, ContentType: ct}, nil
}

// stripURL drops the request URL from transport errors; it carries the
// access token.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}
