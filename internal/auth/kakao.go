package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

const (
	kakaoProviderName = "kakao"

	kakaoAuthURL        = "https://kauth.kakao.com/oauth/authorize"
	kakaoTokenURL       = "https://kauth.kakao.com/oauth/token"
	defaultKakaoUserURL = "https://kapi.kakao.com/v2/user/me"

	maxUserInfoBytes = 1 << 20
)

// KakaoProvider handles Kakao OAuth 2.0 authentication. Kakao does not
// issue OIDC ID tokens on the basic product, so identity comes from the
// user-info endpoint after the code exchange.
type KakaoProvider struct {
	config      *oauth2.Config
	client      *http.Client
	userInfoURL string
}

// KakaoOption customizes a KakaoProvider.
type KakaoOption func(*KakaoProvider)

// WithKakaoHTTPClient overrides the HTTP client used for user-info calls.
func WithKakaoHTTPClient(client *http.Client) KakaoOption {
	return func(p *KakaoProvider) {
		p.client = client
	}
}

// WithKakaoUserInfoURL overrides the user-info endpoint, for tests.
func WithKakaoUserInfoURL(url string) KakaoOption {
	return func(p *KakaoProvider) {
		p.userInfoURL = url
	}
}

// WithKakaoTokenURL overrides the token endpoint, for tests.
func WithKakaoTokenURL(url string) KakaoOption {
	return func(p *KakaoProvider) {
		p.config.Endpoint.TokenURL = url
	}
}

// NewKakaoProvider creates a KakaoProvider.
func NewKakaoProvider(clientID, clientSecret, redirectURL string, opts ...KakaoOption) *KakaoProvider {
	p := &KakaoProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  kakaoAuthURL,
				TokenURL: kakaoTokenURL,
			},
			Scopes: []string{"profile_nickname", "profile_image", "account_email"},
		},
		client:      &http.Client{Timeout: 10 * time.Second},
		userInfoURL: defaultKakaoUserURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier used by the registry.
func (p *KakaoProvider) Name() string {
	return kakaoProviderName
}

// AuthURL generates the Kakao consent URL with the given state.
func (p *KakaoProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades the authorization code for an access token and resolves
// the user's identity from the Kakao user-info endpoint.
func (p *KakaoProvider) Exchange(ctx context.Context, code string) (*Claims, error) {
	token, err := p.config.Exchange(ctx, code, oauth2.SetAuthURLParam("client_secret", p.config.ClientSecret))
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build user-info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserInfoBytes))
	if err != nil {
		return nil, fmt.Errorf("read user info: %w", err)
	}

	var payload struct {
		ID           int64 `json:"id"`
		KakaoAccount struct {
			Email   string `json:"email"`
			Profile struct {
				Nickname        string `json:"nickname"`
				ProfileImageURL string `json:"profile_image_url"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse user info: %w", err)
	}
	if payload.ID == 0 {
		return nil, fmt.Errorf("user info missing id")
	}

	return &Claims{
		Subject: strconv.FormatInt(payload.ID, 10),
		Name:    payload.KakaoAccount.Profile.Nickname,
		Email:   payload.KakaoAccount.Email,
		Picture: payload.KakaoAccount.Profile.ProfileImageURL,
	}, nil
}
