package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// chatStub serves a canned chat completion whose message content is the
// given string.
func chatStub(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
			"usage": map[string]any{"total_tokens": 42},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func stubClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := New(Config{APIKey: "test", BaseURL: baseURL})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestAnalyzeBill_ParsesResult(t *testing.T) {
	server := chatStub(t, `{
		"split_details": {"alice": {"items": [], "individual_total": 100, "vat_share": 10, "other_share": 5, "discount_share": 0, "final_total": 115}},
		"total_bill": 115,
		"subtotal": 100,
		"subtotal_vat": 10,
		"subtotal_other": 5,
		"subtotal_discount": 0,
		"currency": "IDR"
	}`)
	defer server.Close()

	client := stubClient(t, server.URL)
	analysis, tokens, err := client.AnalyzeBill(context.Background(), "a bill", "alice had everything")
	if err != nil {
		t.Fatalf("AnalyzeBill() error = %v", err)
	}
	if analysis.TotalBill != 115 || analysis.Currency != "IDR" {
		t.Errorf("analysis = %+v, want total 115 IDR", analysis)
	}
	if _, ok := analysis.SplitDetails["alice"]; !ok {
		t.Error("split_details missing alice")
	}
	if tokens != 42 {
		t.Errorf("tokens = %d, want 42", tokens)
	}
}

func TestAnalyzeBill_StripsMarkdownFence(t *testing.T) {
	server := chatStub(t, "```json\n{\"split_details\": {}, \"total_bill\": 1, \"subtotal\": 1, \"subtotal_vat\": 0, \"subtotal_other\": 0, \"subtotal_discount\": 0, \"currency\": \"USD\"}\n```")
	defer server.Close()

	client := stubClient(t, server.URL)
	analysis, _, err := client.AnalyzeBill(context.Background(), "a bill", "details")
	if err != nil {
		t.Fatalf("AnalyzeBill() error = %v", err)
	}
	if analysis.Currency != "USD" {
		t.Errorf("Currency = %s, want USD", analysis.Currency)
	}
}

func TestAnalyzeBill_MissingFields(t *testing.T) {
	server := chatStub(t, `{"split_details": {}, "total_bill": 100}`)
	defer server.Close()

	client := stubClient(t, server.URL)
	_, _, err := client.AnalyzeBill(context.Background(), "a bill", "details")

	var analysisErr *AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("AnalyzeBill() error = %v, want AnalysisError", err)
	}
}

func TestAnalyzeBill_ModelError(t *testing.T) {
	server := chatStub(t, `{"error": "could not read the bill"}`)
	defer server.Close()

	client := stubClient(t, server.URL)
	_, _, err := client.AnalyzeBill(context.Background(), "a bill", "details")

	var analysisErr *AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("AnalyzeBill() error = %v, want AnalysisError", err)
	}
}

func TestDescribeBillImage_RejectsNonBill(t *testing.T) {
	server := chatStub(t, "0")
	defer server.Close()

	client := stubClient(t, server.URL)
	_, tokens, err := client.DescribeBillImage(context.Background(), "data:image/png;base64,AAAA")

	var notABill *ErrNotABill
	if !errors.As(err, &notABill) {
		t.Fatalf("DescribeBillImage() error = %v, want ErrNotABill", err)
	}
	if tokens != 42 {
		t.Errorf("tokens = %d, want 42 even on rejection", tokens)
	}
}

func TestDescribeBillImage_ReturnsDescription(t *testing.T) {
	server := chatStub(t, "Two coffees and a croissant, total 12.50 EUR")
	defer server.Close()

	client := stubClient(t, server.URL)
	description, _, err := client.DescribeBillImage(context.Background(), "data:image/png;base64,AAAA")
	if err != nil {
		t.Fatalf("DescribeBillImage() error = %v", err)
	}
	if description == "" {
		t.Error("DescribeBillImage() returned empty description")
	}
}

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{0.1, 0.2}}},
		})
	}))
	defer server.Close()

	client := stubClient(t, server.URL)
	vector, err := client.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vector) != 2 || vector[0] != 0.1 {
		t.Errorf("Embed() = %v, want [0.1 0.2]", vector)
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New() without API key error = nil, want error")
	}
}
