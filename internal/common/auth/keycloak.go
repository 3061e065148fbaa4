// internal/common/auth/keycloak.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"edpsych-connect/internal/common/errors"
)

// KeycloakClient talks to the OpenID Connect endpoints of a single realm.
type KeycloakClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// TokenResponse holds the response from Keycloak's token endpoint.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	TokenType        string `json:"token_type"`
	RefreshToken     string `json:"refresh_token"`
	Scope            string `json:"scope"`
}

// TokenInfo holds the information returned by the token introspection endpoint.
type TokenInfo struct {
	Active    bool   `json:"active"`
	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Username  string `json:"username,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Sub       string `json:"sub,omitempty"`
}

// NewKeycloakClient creates a new instance of KeycloakClient.
func NewKeycloakClient(baseURL, realm, clientID, clientSecret string) *KeycloakClient {
	return &KeycloakClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (k *KeycloakClient) endpoint(path string) string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/%s", k.baseURL, k.realm, path)
}

func (k *KeycloakClient) postForm(ctx context.Context, path string, data url.Values) (*http.Response, error) {
	data.Set("client_id", k.clientID)
	if k.clientSecret != "" {
		data.Set("client_secret", k.clientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.endpoint(path), strings.NewReader(data.Encode()))
	if err != nil {
		return nil, errors.NewInternalError("failed to create keycloak request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewTimeoutError("keycloak", err)
		}
		return nil, errors.NewExternalServiceError("keycloak", err)
	}
	return resp, nil
}

// Login exchanges user credentials for tokens using the password grant.
func (k *KeycloakClient) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "password")
	data.Set("username", username)
	data.Set("password", password)
	data.Set("scope", "openid")

	resp, err := k.postForm(ctx, "token", data)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		return nil, errors.NewAuthenticationError("Invalid username or password")
	default:
		return nil, k.apiError("token", resp)
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, errors.NewExternalServiceError("keycloak", fmt.Errorf("failed to decode token response: %w", err))
	}
	return &tokenResp, nil
}

// Logout revokes a user's refresh token.
func (k *KeycloakClient) Logout(ctx context.Context, refreshToken string) error {
	data := url.Values{}
	data.Set("refresh_token", refreshToken)

	resp, err := k.postForm(ctx, "logout", data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Keycloak returns 204 No Content on successful logout
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusBadRequest {
			return errors.NewAuthenticationError("Refresh token is invalid or expired")
		}
		return k.apiError("logout", resp)
	}
	return nil
}

// ValidateToken checks if an access token is valid and active.
func (k *KeycloakClient) ValidateToken(ctx context.Context, token string) (*TokenInfo, error) {
	data := url.Values{}
	data.Set("token", token)
	data.Set("token_type_hint", "access_token")

	resp, err := k.postForm(ctx, "token/introspect", data)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, k.apiError("introspect", resp)
	}

	var tokenInfo TokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&tokenInfo); err != nil {
		return nil, errors.NewExternalServiceError("keycloak", fmt.Errorf("failed to decode introspection response: %w", err))
	}

	if !tokenInfo.Active {
		return nil, errors.NewAuthenticationError("Token is expired, revoked or malformed")
	}
	return &tokenInfo, nil
}

func (k *KeycloakClient) apiError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	err := errors.NewExternalServiceError("keycloak",
		fmt.Errorf("%s failed with status %d: %s", operation, resp.StatusCode, strings.TrimSpace(string(body))))
	err.Retryable = isTransientHTTPError(resp.StatusCode)
	return err
}

// isTransientHTTPError returns true if the HTTP status code indicates a potentially transient error.
func isTransientHTTPError(statusCode int) bool {
	switch statusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
