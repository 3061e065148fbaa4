package zoho

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	httpclient "edpsych-connect/internal/common/http"
)

const DefaultBaseURL = "https://www.zohoapis.com/crm/v3"

type CRMClient struct {
	oauthToken string
	baseURL    string
	httpClient *httpclient.Client
}

type Contact struct {
	ID          string `json:"id,omitempty"`
	Email       string `json:"Email"`
	FirstName   string `json:"First_Name,omitempty"`
	LastName    string `json:"Last_Name"`
	Phone       string `json:"Phone,omitempty"`
	Source      string `json:"Lead_Source,omitempty"`
	Description string `json:"Description,omitempty"`
}

type CreateContactResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"data"`
}

// NewCRMClient builds a client for baseURL, falling back to the public Zoho API.
func NewCRMClient(baseURL, oauthToken string) *CRMClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &CRMClient{
		oauthToken: oauthToken,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpclient.NewClient(30 * time.Second),
	}
}

func (c *CRMClient) header() http.Header {
	return http.Header{"Authorization": {"Zoho-oauthtoken " + c.oauthToken}}
}

func (c *CRMClient) CreateContact(ctx context.Context, contact *Contact) (string, error) {
	payload := map[string]interface{}{
		"data": []Contact{*contact},
	}

	var createResp CreateContactResponse
	if err := c.httpClient.DoJSON(ctx, http.MethodPost, c.baseURL+"/Contacts", c.header(), payload, &createResp); err != nil {
		return "", fmt.Errorf("failed to create contact: %w", err)
	}

	if len(createResp.Data) == 0 {
		return "", fmt.Errorf("no data in response")
	}
	if createResp.Data[0].Status != "success" {
		return "", fmt.Errorf("contact creation failed: %s", createResp.Data[0].Message)
	}
	return createResp.Data[0].Details.ID, nil
}

// SearchContacts finds contacts by email. Zoho answers 204 when nothing matches.
func (c *CRMClient) SearchContacts(ctx context.Context, email string) ([]Contact, error) {
	endpoint := fmt.Sprintf("%s/Contacts/search?email=%s", c.baseURL, url.QueryEscape(email))

	var result struct {
		Data []Contact `json:"data"`
	}
	if err := c.httpClient.DoJSON(ctx, http.MethodGet, endpoint, c.header(), nil, &result); err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}
	return result.Data, nil
}

// UpsertContact returns the id of the contact with the same email, creating
// it when none exists.
func (c *CRMClient) UpsertContact(ctx context.Context, contact *Contact) (id string, created bool, err error) {
	existing, err := c.SearchContacts(ctx, contact.Email)
	if err != nil {
		return "", false, err
	}
	if len(existing) > 0 {
		return existing[0].ID, false, nil
	}
	id, err = c.CreateContact(ctx, contact)
	return id, err == nil, err
}
