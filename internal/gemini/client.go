package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"nano-banana-prompt/internal/files"
	"nano-banana-prompt/internal/prompt"
)

const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "gemini-3-pro-image-preview"
	DefaultImageSize  = "1K"
)

const (
	// RefineFallback is returned when the text model answers with nothing.
	RefineFallback = "生成失敗。"
	// DescribeFallback is returned when image analysis comes back empty.
	DescribeFallback = "無法分析圖片。"
	// NoImagesMessage accompanies ErrNoImages.
	NoImagesMessage = "未提供圖片檔案 (PDF/Text 無法用於此功能)"
)

var (
	ErrNoContent = errors.New("no content in response")
	ErrNoImage   = errors.New("no image data found in response")
	ErrNoImages  = errors.New("no image files provided")
)

const describeInstruction = `You are an expert AI art prompt engineer.
Your task is to analyze the provided image(s) and write a detailed, high-quality image generation prompt in **Traditional Chinese (繁體中文)** that could be used to recreate this style and content.

1. **Format**: Return ONLY the comma-separated prompt text. No introduction, no markdown code blocks.
2. **Content to Analyze**:
   - **Subject**: Who or what is in the images?
   - **Style**: What is the art style? (e.g., Japanese Anime, Oil Painting, 3D Render, Photorealistic)
   - **Composition**: Camera angle, framing.
   - **Lighting**: Description of light.
   - **Color Palette**: Dominant colors and mood.
3. **Language**: Use professional art direction terms in Traditional Chinese.`

const describeRequest = "請分析這些圖片，並產生能生成類似風格圖片的詳細繁體中文提示詞。"

// KeySource supplies the API key at call time, so a key entered mid-session
// applies to the next request.
type KeySource interface {
	APIKey() string
}

// StaticKey is a fixed KeySource.
type StaticKey string

func (k StaticKey) APIKey() string { return string(k) }

type Options struct {
	Keys       KeySource
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
	TextModel  string
	ImageModel string
	ImageSize  string
	Logger     *slog.Logger
}

type Client struct {
	keys       KeySource
	baseURL    string
	apiVersion string
	httpClient *http.Client
	textModel  string
	imageModel string
	imageSize  string
	logger     *slog.Logger
}

func New(opts Options) *Client {
	keys := opts.Keys
	if keys == nil {
		keys = StaticKey("")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		keys:       keys,
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		apiVersion: strings.TrimSpace(opts.APIVersion),
		httpClient: opts.HTTPClient,
		textModel:  orDefault(opts.TextModel, DefaultTextModel),
		imageModel: orDefault(opts.ImageModel, DefaultImageModel),
		imageSize:  orDefault(opts.ImageSize, DefaultImageSize),
		logger:     logger,
	}
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

// newGenAI builds a client for a single call with the key current right now.
func (c *Client) newGenAI(ctx context.Context) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:     strings.TrimSpace(c.keys.APIKey()),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" || c.apiVersion != "" {
		cfg.HTTPOptions = genai.HTTPOptions{
			BaseURL:    c.baseURL,
			APIVersion: c.apiVersion,
		}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return client, nil
}

// Refine sends the composed instruction to the text model and returns the refined prompt.
func (c *Client) Refine(ctx context.Context, composed prompt.Composed) (string, error) {
	parts, err := toGenAIParts(composed.Parts)
	if err != nil {
		return "", err
	}

	client, err := c.newGenAI(ctx)
	if err != nil {
		return "", err
	}

	c.logger.Debug("gemini refine", "model", c.textModel, "parts", len(parts))
	resp, err := client.Models.GenerateContent(ctx, c.textModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(composed.SystemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.7),
		},
	)
	if err != nil {
		return "", fmt.Errorf("refine: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return RefineFallback, nil
	}
	return text, nil
}

// RenderImage asks the image model for a picture of text. Only image-kind
// references are sent; other files are ignored.
func (c *Client) RenderImage(ctx context.Context, text string, ratio prompt.AspectRatio, refs []files.UploadedFile) (Image, error) {
	if !ratio.Valid() {
		ratio = prompt.DefaultAspectRatio
	}

	parts := c.imageParts(refs)
	parts = append(parts, genai.NewPartFromText(text))

	client, err := c.newGenAI(ctx)
	if err != nil {
		return Image{}, err
	}

	c.logger.Debug("gemini render", "model", c.imageModel, "aspect_ratio", ratio, "references", len(parts)-1)
	resp, err := client.Models.GenerateContent(ctx, c.imageModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ImageConfig: &genai.ImageConfig{
				AspectRatio: string(ratio),
				ImageSize:   c.imageSize,
			},
		},
	)
	if err != nil {
		return Image{}, fmt.Errorf("render image: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Image{}, ErrNoContent
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.InlineData == nil || len(p.InlineData.Data) == 0 {
			continue
		}
		mimeType := p.InlineData.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		return Image{MIMEType: mimeType, Data: p.InlineData.Data}, nil
	}
	return Image{}, ErrNoImage
}

// DescribeImages writes a prompt that would recreate the attached images.
// Without image files it returns NoImagesMessage and ErrNoImages without calling the API.
func (c *Client) DescribeImages(ctx context.Context, refs []files.UploadedFile) (string, error) {
	if !files.HasImages(refs) {
		return NoImagesMessage, ErrNoImages
	}

	parts := c.imageParts(refs)
	parts = append(parts, genai.NewPartFromText(describeRequest))

	client, err := c.newGenAI(ctx)
	if err != nil {
		return "", err
	}

	c.logger.Debug("gemini describe", "model", c.textModel, "images", len(parts)-1)
	resp, err := client.Models.GenerateContent(ctx, c.textModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(describeInstruction, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.5),
		},
	)
	if err != nil {
		return "", fmt.Errorf("describe images: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return DescribeFallback, nil
	}
	return text, nil
}

// imageParts inlines image references in order; undecodable ones are skipped.
func (c *Client) imageParts(refs []files.UploadedFile) []*genai.Part {
	var parts []*genai.Part
	for _, f := range files.Images(refs) {
		data, err := f.Bytes()
		if err != nil {
			c.logger.Warn("skip reference image", "file", f.Name, "err", err)
			continue
		}
		parts = append(parts, genai.NewPartFromBytes(data, f.MIMEType))
	}
	return parts
}

func toGenAIParts(in []prompt.Part) ([]*genai.Part, error) {
	out := make([]*genai.Part, 0, len(in))
	for i, p := range in {
		if p.InlineData == nil {
			out = append(out, genai.NewPartFromText(p.Text))
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
		if err != nil {
			return nil, fmt.Errorf("part %d: decode inline data: %w", i, err)
		}
		out = append(out, genai.NewPartFromBytes(data, p.InlineData.MIMEType))
	}
	return out, nil
}

// IsInvalidKey reports whether err means the API key was rejected or the
// project behind it cannot be found.
func IsInvalidKey(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && notFound(apiErr) {
		return true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && notFound(*apiErrPtr) {
		return true
	}
	return strings.Contains(err.Error(), "Requested entity was not found")
}

func notFound(e genai.APIError) bool {
	return e.Code == http.StatusNotFound || e.Status == "NOT_FOUND"
}
