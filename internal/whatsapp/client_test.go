package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/romeolab/agenda-notify/internal/domain"
)

func testTemplateMessage() TemplateMessage {
	return TemplateMessage{
		To:           "393331234567",
		TemplateName: "booking_confirmed_it",
		LanguageCode: "it",
		Components: []any{
			map[string]any{
				"type": "body",
				"parameters": []any{
					map[string]any{"type": "text", "text": "Maria"},
				},
			},
		},
	}
}

func TestClientSendTemplateSuccess(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotBody sendRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.HBgL"}]}`))
	}))
	defer server.Close()

	c := NewClient("v22.0")
	c.baseURL = server.URL

	result, err := c.SendTemplate(context.Background(), "1029384756", "EAAtoken", testTemplateMessage())
	if err != nil {
		t.Fatalf("SendTemplate() unexpected error: %v", err)
	}

	if result.MessageID != "wamid.HBgL" {
		t.Fatalf("message id = %q", result.MessageID)
	}
	if gotPath != "/v22.0/1029384756/messages" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer EAAtoken" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotBody.MessagingProduct != "whatsapp" || gotBody.Type != "template" {
		t.Fatalf("body envelope = %+v", gotBody)
	}
	if gotBody.Template.Name != "booking_confirmed_it" || gotBody.Template.Language.Code != "it" {
		t.Fatalf("template = %+v", gotBody.Template)
	}
}

func TestClientSendTemplateMissingMessageID(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient("")
	c.baseURL = server.URL

	result, err := c.SendTemplate(context.Background(), "1029384756", "token", testTemplateMessage())
	if err != nil {
		t.Fatalf("SendTemplate() unexpected error: %v", err)
	}
	if result.MessageID != "unknown" {
		t.Fatalf("message id = %q, want unknown fallback", result.MessageID)
	}
}

func TestClientSendTemplateAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"(#131026) Message undeliverable: invalid phone number","code":131026}}`))
	}))
	defer server.Close()

	c := NewClient("v22.0")
	c.baseURL = server.URL

	_, err := c.SendTemplate(context.Background(), "1029384756", "token", testTemplateMessage())
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "(#131026) Message undeliverable: invalid phone number" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestClientSendTemplateValidation(t *testing.T) {
	t.Parallel()

	c := NewClient("v22.0")

	if _, err := c.SendTemplate(context.Background(), "", "token", testTemplateMessage()); err == nil {
		t.Fatal("expected error for missing phone number id")
	}

	msg := testTemplateMessage()
	msg.To = ""
	if _, err := c.SendTemplate(context.Background(), "123", "token", msg); err == nil {
		t.Fatal("expected error for missing recipient")
	}

	msg = testTemplateMessage()
	msg.TemplateName = ""
	if _, err := c.SendTemplate(context.Background(), "123", "token", msg); err == nil {
		t.Fatal("expected error for missing template name")
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want domain.FailureReason
	}{
		{
			name: "invalid phone",
			err:  &APIError{StatusCode: 400, Message: "Message undeliverable: invalid Phone number"},
			want: domain.ReasonInvalidPhone,
		},
		{
			name: "template rejected",
			err:  &APIError{StatusCode: 404, Message: "Template name does not exist in the translation"},
			want: domain.ReasonTemplateRejected,
		},
		{
			name: "policy violation",
			err:  &APIError{StatusCode: 403, Message: "Message failed to send due to policy restrictions"},
			want: domain.ReasonPolicyViolation,
		},
		{
			name: "phone wins over template when both present",
			err:  &APIError{StatusCode: 400, Message: "phone mismatch for template"},
			want: domain.ReasonInvalidPhone,
		},
		{
			name: "unmatched api error",
			err:  &APIError{StatusCode: 500, Message: "An unexpected error occurred"},
			want: domain.ReasonProviderError,
		},
		{
			name: "transport failure",
			err:  fmt.Errorf("whatsapp request failed: %w", errors.New("dial tcp: i/o timeout")),
			want: domain.ReasonNetworkError,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify() = %q, want %q", got, tc.want)
			}
		})
	}
}
