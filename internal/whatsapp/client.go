package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	graphBaseURL       = "https://graph.facebook.com"
	defaultAPIVersion  = "v22.0"
	defaultSendTimeout = 20 * time.Second
)

// TemplateMessage is one outbound WhatsApp template send.
type TemplateMessage struct {
	To           string
	TemplateName string
	LanguageCode string
	Components   []any
}

// SendResult carries the provider-assigned message id on success.
type SendResult struct {
	MessageID string
}

// APIError is a non-2xx response from the Graph API. The message text is
// what the platform returned and is what classification runs on.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api error: status=%d: %s", e.StatusCode, e.Message)
}

// Client sends template messages through the Meta Graph API. Credentials
// are per-call because every business connects its own phone number.
type Client struct {
	client     *resty.Client
	baseURL    string
	apiVersion string
}

func NewClient(apiVersion string) *Client {
	if strings.TrimSpace(apiVersion) == "" {
		apiVersion = defaultAPIVersion
	}

	client := resty.New()
	client.SetTimeout(defaultSendTimeout)
	client.SetRetryCount(0)

	return &Client{
		client:     client,
		baseURL:    graphBaseURL,
		apiVersion: apiVersion,
	}
}

type templateLanguage struct {
	Code string `json:"code"`
}

type templatePayload struct {
	Name       string           `json:"name"`
	Language   templateLanguage `json:"language"`
	Components []any            `json:"components,omitempty"`
}

type sendRequest struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Template         templatePayload `json:"template"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendTemplate posts one template message for the given business phone
// number. A nil error means the platform accepted the message; delivery
// confirmation arrives later out of band.
func (c *Client) SendTemplate(ctx context.Context, phoneNumberID, accessToken string, msg TemplateMessage) (*SendResult, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("client is not initialized")
	}
	if strings.TrimSpace(phoneNumberID) == "" {
		return nil, fmt.Errorf("phone number id is required")
	}
	if strings.TrimSpace(msg.To) == "" {
		return nil, fmt.Errorf("recipient phone is required")
	}
	if strings.TrimSpace(msg.TemplateName) == "" {
		return nil, fmt.Errorf("template name is required")
	}

	body := sendRequest{
		MessagingProduct: "whatsapp",
		To:               msg.To,
		Type:             "template",
		Template: templatePayload{
			Name:       msg.TemplateName,
			Language:   templateLanguage{Code: msg.LanguageCode},
			Components: msg.Components,
		},
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.apiVersion, phoneNumberID)

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(accessToken).
		SetBody(body).
		Post(url)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("whatsapp request failed: %w", err)
	}

	if response.IsSuccess() {
		var parsed sendResponse
		messageID := "unknown"
		if err := json.Unmarshal(response.Body(), &parsed); err == nil && len(parsed.Messages) > 0 && parsed.Messages[0].ID != "" {
			messageID = parsed.Messages[0].ID
		}
		return &SendResult{MessageID: messageID}, nil
	}

	apiErr := &APIError{StatusCode: response.StatusCode()}

	var parsed errorResponse
	if err := json.Unmarshal(response.Body(), &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
	} else {
		apiErr.Message = strings.TrimSpace(response.String())
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(response.StatusCode())
	}

	return nil, apiErr
}
