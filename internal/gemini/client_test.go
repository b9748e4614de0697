package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"nano-banana-prompt/internal/files"
	"nano-banana-prompt/internal/prompt"
)

type capturedRequest struct {
	Path   string
	APIKey string
	Body   requestBody
}

type requestBody struct {
	Contents []struct {
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MimeType string `json:"mimeType"`
				Data     string `json:"data"`
			} `json:"inlineData"`
		} `json:"parts"`
	} `json:"contents"`
	SystemInstruction *struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"systemInstruction"`
	GenerationConfig struct {
		Temperature *float64 `json:"temperature"`
		ImageConfig *struct {
			AspectRatio string `json:"aspectRatio"`
			ImageSize   string `json:"imageSize"`
		} `json:"imageConfig"`
	} `json:"generationConfig"`
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
	response string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body requestBody
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.requests = append(f.requests, capturedRequest{Path: r.URL.Path, APIKey: r.Header.Get("x-goog-api-key"), Body: body})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
	}
	_, _ = io.WriteString(w, f.response)
}

func (f *fakeAPI) calls() []capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]capturedRequest(nil), f.requests...)
}

func newTestClient(t *testing.T, api *fakeAPI, key KeySource) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return New(Options{
		Keys:       key,
		BaseURL:    srv.URL,
		APIVersion: "v1beta",
		HTTPClient: srv.Client(),
	})
}

func textResponse(text string) string {
	b, _ := json.Marshal(text)
	return fmt.Sprintf(`{"candidates":[{"content":{"role":"model","parts":[{"text":%s}]}}]}`, b)
}

func imageFile(name string) files.UploadedFile {
	return files.UploadedFile{ID: name, Name: name, MIMEType: "image/png", Kind: files.KindImage, Data: "data:image/png;base64,iVBORw=="}
}

func pdfFile() files.UploadedFile {
	return files.UploadedFile{ID: "pdf", Name: "brief.pdf", MIMEType: "application/pdf", Kind: files.KindDocument, Data: "data:application/pdf;base64,JVBERi0="}
}

func TestRefineSendsComposedRequest(t *testing.T) {
	api := &fakeAPI{response: textResponse("  一隻柴犬, 電影級打光  ")}
	client := newTestClient(t, api, StaticKey("test-key"))

	composed := prompt.Composed{
		SystemInstruction: "system text",
		Parts: []prompt.Part{
			{InlineData: &prompt.InlineData{MIMEType: "image/png", Data: "iVBORw=="}},
			{Text: "user text"},
		},
	}
	got, err := client.Refine(context.Background(), composed)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if got != "一隻柴犬, 電影級打光" {
		t.Fatalf("Refine = %q", got)
	}

	calls := api.calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	call := calls[0]
	if call.APIKey != "test-key" {
		t.Fatalf("x-goog-api-key = %q", call.APIKey)
	}
	if !strings.Contains(call.Path, "models/"+DefaultTextModel+":generateContent") {
		t.Fatalf("path = %q", call.Path)
	}
	if temp := call.Body.GenerationConfig.Temperature; temp == nil || math.Abs(*temp-0.7) > 1e-6 {
		t.Fatalf("temperature = %v, want 0.7", temp)
	}
	if si := call.Body.SystemInstruction; si == nil || len(si.Parts) == 0 || si.Parts[0].Text != "system text" {
		t.Fatalf("system instruction = %+v", si)
	}

	parts := call.Body.Contents[0].Parts
	if len(parts) != 2 || parts[0].InlineData == nil || parts[0].InlineData.Data != "iVBORw==" || parts[1].Text != "user text" {
		t.Fatalf("parts = %+v", parts)
	}
}

func TestRefineEmptyTextReturnsFallback(t *testing.T) {
	api := &fakeAPI{response: textResponse("   ")}
	client := newTestClient(t, api, StaticKey("k"))

	got, err := client.Refine(context.Background(), prompt.Composed{SystemInstruction: "s", Parts: []prompt.Part{{Text: "x"}}})
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if got != RefineFallback {
		t.Fatalf("Refine = %q, want %q", got, RefineFallback)
	}
}

func TestRefineRejectsBadInlineData(t *testing.T) {
	api := &fakeAPI{response: textResponse("x")}
	client := newTestClient(t, api, StaticKey("k"))

	_, err := client.Refine(context.Background(), prompt.Composed{Parts: []prompt.Part{{InlineData: &prompt.InlineData{MIMEType: "image/png", Data: "%%%"}}}})
	if err == nil {
		t.Fatal("expected decode error")
	}
	if len(api.calls()) != 0 {
		t.Fatal("request sent despite invalid inline data")
	}
}

func TestRenderImageRequestShape(t *testing.T) {
	api := &fakeAPI{response: `{"candidates":[{"content":{"parts":[{"text":"here"},{"inlineData":{"mimeType":"image/jpeg","data":"AQID"}}]}}]}`}
	client := newTestClient(t, api, StaticKey("k"))

	img, err := client.RenderImage(context.Background(), "a cat", prompt.Ratio1x1, []files.UploadedFile{imageFile("a.png"), pdfFile(), imageFile("b.png")})
	if err != nil {
		t.Fatalf("RenderImage: %v", err)
	}
	if img.MIMEType != "image/jpeg" || string(img.Data) != "\x01\x02\x03" {
		t.Fatalf("image = %+v", img)
	}

	call := api.calls()[0]
	if !strings.Contains(call.Path, "models/"+DefaultImageModel+":generateContent") {
		t.Fatalf("path = %q", call.Path)
	}
	ic := call.Body.GenerationConfig.ImageConfig
	if ic == nil || ic.AspectRatio != "1:1" || ic.ImageSize != "1K" {
		t.Fatalf("imageConfig = %+v", ic)
	}

	parts := call.Body.Contents[0].Parts
	if len(parts) != 3 {
		t.Fatalf("parts = %d, want 2 images and the prompt", len(parts))
	}
	for i := 0; i < 2; i++ {
		if parts[i].InlineData == nil || parts[i].InlineData.MimeType != "image/png" {
			t.Fatalf("part %d = %+v, want image reference", i, parts[i])
		}
	}
	if parts[2].Text != "a cat" {
		t.Fatalf("last part = %+v", parts[2])
	}
}

func TestRenderImageMissingData(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     error
	}{
		{name: "no candidates", response: `{"candidates":[]}`, want: ErrNoContent},
		{name: "no parts", response: `{"candidates":[{"content":{"parts":[]}}]}`, want: ErrNoContent},
		{name: "text only", response: textResponse("sorry"), want: ErrNoImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, &fakeAPI{response: tt.response}, StaticKey("k"))
			_, err := client.RenderImage(context.Background(), "x", prompt.Ratio16x9, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRenderImageDefaultsMimeType(t *testing.T) {
	api := &fakeAPI{response: `{"candidates":[{"content":{"parts":[{"inlineData":{"data":"AQID"}}]}}]}`}
	client := newTestClient(t, api, StaticKey("k"))

	img, err := client.RenderImage(context.Background(), "x", "", nil)
	if err != nil {
		t.Fatalf("RenderImage: %v", err)
	}
	if img.MIMEType != "image/png" {
		t.Fatalf("mime = %q", img.MIMEType)
	}
	if ic := api.calls()[0].Body.GenerationConfig.ImageConfig; ic == nil || ic.AspectRatio != "1:1" {
		t.Fatalf("invalid ratio not defaulted: %+v", ic)
	}
}

func TestDescribeImagesWithoutImages(t *testing.T) {
	api := &fakeAPI{response: textResponse("x")}
	client := newTestClient(t, api, StaticKey("k"))

	got, err := client.DescribeImages(context.Background(), []files.UploadedFile{pdfFile()})
	if !errors.Is(err, ErrNoImages) {
		t.Fatalf("err = %v, want ErrNoImages", err)
	}
	if got != NoImagesMessage {
		t.Fatalf("text = %q", got)
	}
	if len(api.calls()) != 0 {
		t.Fatal("remote call made without images")
	}
}

func TestDescribeImages(t *testing.T) {
	api := &fakeAPI{response: textResponse("水彩風格, 柔和光線")}
	client := newTestClient(t, api, StaticKey("k"))

	got, err := client.DescribeImages(context.Background(), []files.UploadedFile{pdfFile(), imageFile("a.png")})
	if err != nil {
		t.Fatalf("DescribeImages: %v", err)
	}
	if got != "水彩風格, 柔和光線" {
		t.Fatalf("text = %q", got)
	}

	call := api.calls()[0]
	if temp := call.Body.GenerationConfig.Temperature; temp == nil || math.Abs(*temp-0.5) > 1e-6 {
		t.Fatalf("temperature = %v, want 0.5", temp)
	}
	parts := call.Body.Contents[0].Parts
	if len(parts) != 2 || parts[0].InlineData == nil || parts[1].Text != describeRequest {
		t.Fatalf("parts = %+v", parts)
	}
}

func TestKeyIsResolvedPerCall(t *testing.T) {
	api := &fakeAPI{response: textResponse("ok")}
	key := &mutableKey{value: "first"}
	client := newTestClient(t, api, key)

	composed := prompt.Composed{Parts: []prompt.Part{{Text: "x"}}}
	if _, err := client.Refine(context.Background(), composed); err != nil {
		t.Fatalf("Refine: %v", err)
	}
	key.value = "second"
	if _, err := client.Refine(context.Background(), composed); err != nil {
		t.Fatalf("Refine: %v", err)
	}

	calls := api.calls()
	if calls[0].APIKey != "first" || calls[1].APIKey != "second" {
		t.Fatalf("keys = %q, %q", calls[0].APIKey, calls[1].APIKey)
	}
}

type mutableKey struct{ value string }

func (k *mutableKey) APIKey() string { return k.value }

func TestIsInvalidKey(t *testing.T) {
	api := &fakeAPI{
		status:   http.StatusNotFound,
		response: `{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`,
	}
	client := newTestClient(t, api, StaticKey("stale"))

	_, err := client.Refine(context.Background(), prompt.Composed{Parts: []prompt.Part{{Text: "x"}}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsInvalidKey(err) {
		t.Fatalf("IsInvalidKey(%v) = false", err)
	}

	if IsInvalidKey(errors.New("boom")) || IsInvalidKey(nil) {
		t.Fatal("unrelated error classified as invalid key")
	}
	if !IsInvalidKey(fmt.Errorf("wrap: %w", errors.New("Requested entity was not found."))) {
		t.Fatal("message match failed")
	}
}

func TestImageFileName(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	if got := (Image{MIMEType: "image/png"}).FileName(at); got != "nano_banana_pro_1700000000123.png" {
		t.Fatalf("FileName = %q", got)
	}
	if got := (Image{MIMEType: "image/jpeg"}).FileName(at); got != "nano_banana_pro_1700000000123.jpg" {
		t.Fatalf("FileName = %q", got)
	}
	if got := (Image{Data: []byte{1, 2, 3}}).DataURL(); got != "data:image/png;base64,AQID" {
		t.Fatalf("DataURL = %q", got)
	}
}
