package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"nano-banana-prompt/internal/files"
	"nano-banana-prompt/internal/gemini"
	"nano-banana-prompt/internal/prompt"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusRefining  Status = "refining"
	StatusRendering Status = "rendering"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// User-facing failure messages.
const (
	MsgRefineFailed   = "無法生成內容，請確認 API Key 或檔案格式是否支援。"
	MsgDescribeFailed = "分析圖片失敗，請確認 API Key。"
	MsgRenderFailed   = "圖片生成失敗，請稍後再試。"
	MsgInvalidKey     = "API Key 無效或過期，請重新選擇。"
)

var (
	ErrNothingToSend = errors.New("nothing to send")
	ErrBusy          = errors.New("another request is in progress")
	ErrKeyRequired   = errors.New("api key is not configured")
	ErrTextOnly      = errors.New("category produces text, not images")
	// ErrSuperseded means the session was reset while the request was in flight.
	ErrSuperseded = errors.New("session was reset during the request")
)

// Generator is the remote side of the session.
type Generator interface {
	Refine(ctx context.Context, composed prompt.Composed) (string, error)
	RenderImage(ctx context.Context, text string, ratio prompt.AspectRatio, refs []files.UploadedFile) (gemini.Image, error)
	DescribeImages(ctx context.Context, refs []files.UploadedFile) (string, error)
}

// KeyStatus reports whether any API key is configured.
type KeyStatus interface {
	Ready() bool
}

// Session is a point-in-time copy of the state behind a Controller.
type Session struct {
	Category       prompt.Category      `json:"category"`
	Options        prompt.OptionSet     `json:"options"`
	AspectRatio    prompt.AspectRatio   `json:"aspect_ratio"`
	Files          []files.UploadedFile `json:"files"`
	UserText       string               `json:"user_text"`
	EnhancedPrompt string               `json:"enhanced_prompt"`
	Image          gemini.Image         `json:"-"`
	Status         Status               `json:"status"`
	ErrorMessage   string               `json:"error_message,omitempty"`
	KeyReady       bool                 `json:"key_ready"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func (s Session) Busy() bool {
	return s.Status == StatusRefining || s.Status == StatusRendering
}

type Options struct {
	Generator Generator
	Keys      KeyStatus
	// Compose defaults to prompt.Compose.
	Compose func(prompt.Request) (prompt.Composed, error)
	Logger  *slog.Logger
	Now     func() time.Time
}

// Controller owns one user's session. Every mutation holds the mutex; remote
// calls run outside it and commit on completion.
type Controller struct {
	mu    sync.Mutex
	state Session
	// epoch increments on Reset so a late completion cannot overwrite fresh state.
	epoch uint64

	gen     Generator
	keys    KeyStatus
	compose func(prompt.Request) (prompt.Composed, error)
	logger  *slog.Logger
	now     func() time.Time
}

func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	compose := opts.Compose
	if compose == nil {
		compose = prompt.Compose
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	c := &Controller{
		gen:     opts.Generator,
		keys:    opts.Keys,
		compose: compose,
		logger:  logger,
		now:     now,
	}
	c.state = c.freshLocked(c.keysReady())
	return c
}

func (c *Controller) keysReady() bool {
	return c.keys == nil || c.keys.Ready()
}

func (c *Controller) freshLocked(keyReady bool) Session {
	return Session{
		Category:    prompt.Manga,
		Options:     prompt.NewOptionSet(),
		AspectRatio: prompt.DefaultAspectRatio,
		Status:      StatusIdle,
		KeyReady:    keyReady,
		UpdatedAt:   c.now(),
	}
}

func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Session {
	s := c.state
	s.Options = c.state.Options.Clone()
	s.Files = append([]files.UploadedFile(nil), c.state.Files...)
	s.KeyReady = c.state.KeyReady && c.keysReady()
	return s
}

func (c *Controller) update(fn func(s *Session) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := fn(&c.state); err != nil {
		return err
	}
	c.state.UpdatedAt = c.now()
	return nil
}

// SelectCategory switches the active category. Option values of other
// categories are kept.
func (c *Controller) SelectCategory(cat prompt.Category) error {
	if !cat.Valid() {
		return prompt.ErrUnknownCategory
	}
	return c.update(func(s *Session) error {
		s.Category = cat
		return nil
	})
}

func (c *Controller) SetOption(key prompt.OptionKey, value string) error {
	return c.update(func(s *Session) error {
		return s.Options.Set(key, value)
	})
}

func (c *Controller) SetAspectRatio(value string) error {
	ratio, err := prompt.ParseAspectRatio(value)
	if err != nil {
		return err
	}
	return c.update(func(s *Session) error {
		s.AspectRatio = ratio
		return nil
	})
}

func (c *Controller) SetUserText(text string) {
	_ = c.update(func(s *Session) error {
		s.UserText = text
		return nil
	})
}

func (c *Controller) AddFiles(added ...files.UploadedFile) {
	if len(added) == 0 {
		return
	}
	_ = c.update(func(s *Session) error {
		s.Files = append(s.Files, added...)
		return nil
	})
}

// RemoveFile reports whether a file with id was attached.
func (c *Controller) RemoveFile(id string) bool {
	removed := false
	_ = c.update(func(s *Session) error {
		kept := s.Files[:0:0]
		for _, f := range s.Files {
			if f.ID == id {
				removed = true
				continue
			}
			kept = append(kept, f)
		}
		s.Files = kept
		return nil
	})
	return removed
}

func (c *Controller) ClearFiles() {
	_ = c.update(func(s *Session) error {
		s.Files = nil
		return nil
	})
}

// SetEnhancedPrompt replaces the refined prompt with a user edit.
func (c *Controller) SetEnhancedPrompt(text string) {
	_ = c.update(func(s *Session) error {
		s.EnhancedPrompt = text
		return nil
	})
}

// SetKeyReady records that a key was entered or cleared.
func (c *Controller) SetKeyReady(ready bool) {
	_ = c.update(func(s *Session) error {
		s.KeyReady = ready
		if ready && s.ErrorMessage == MsgInvalidKey {
			s.ErrorMessage = ""
		}
		return nil
	})
}

// Reset returns the session to its initial state. An in-flight request
// finishes but its result is dropped.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.state = c.freshLocked(c.state.KeyReady)
}

// Refine composes the instruction for the current selection and stores the
// model's answer as the enhanced prompt.
func (c *Controller) Refine(ctx context.Context) (string, error) {
	c.mu.Lock()
	if err := c.checkStartLocked(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	if !prompt.HasInput(c.state.UserText, c.state.Files) {
		c.mu.Unlock()
		return "", ErrNothingToSend
	}

	composed, err := c.compose(prompt.Request{
		Category:    c.state.Category,
		Options:     c.state.Options.Clone(),
		AspectRatio: c.state.AspectRatio,
		Files:       append([]files.UploadedFile(nil), c.state.Files...),
		UserText:    c.state.UserText,
	})
	if err != nil {
		c.failLocked(MsgRefineFailed, err)
		c.mu.Unlock()
		return "", err
	}
	epoch := c.beginLocked(StatusRefining)
	c.state.Image = gemini.Image{}
	c.mu.Unlock()

	text, err := c.gen.Refine(ctx, composed)
	return c.finishText(epoch, "refine", MsgRefineFailed, text, err)
}

// Describe turns the attached images into a prompt, stored like Refine's result.
func (c *Controller) Describe(ctx context.Context) (string, error) {
	c.mu.Lock()
	if err := c.checkStartLocked(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	if !files.HasImages(c.state.Files) {
		c.mu.Unlock()
		return "", ErrNothingToSend
	}
	refs := append([]files.UploadedFile(nil), c.state.Files...)
	epoch := c.beginLocked(StatusRefining)
	c.state.Image = gemini.Image{}
	c.mu.Unlock()

	text, err := c.gen.DescribeImages(ctx, refs)
	return c.finishText(epoch, "describe", MsgDescribeFailed, text, err)
}

// Render generates an image from the enhanced prompt.
func (c *Controller) Render(ctx context.Context) (gemini.Image, error) {
	c.mu.Lock()
	if err := c.checkStartLocked(); err != nil {
		c.mu.Unlock()
		return gemini.Image{}, err
	}
	if details, ok := prompt.Lookup(c.state.Category); ok && !details.ProducesImage {
		c.mu.Unlock()
		return gemini.Image{}, ErrTextOnly
	}
	text := strings.TrimSpace(c.state.EnhancedPrompt)
	if text == "" {
		c.mu.Unlock()
		return gemini.Image{}, ErrNothingToSend
	}
	ratio := c.state.AspectRatio
	refs := append([]files.UploadedFile(nil), c.state.Files...)
	epoch := c.beginLocked(StatusRendering)
	c.mu.Unlock()

	img, err := c.gen.RenderImage(ctx, text, ratio, refs)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return gemini.Image{}, ErrSuperseded
	}
	if err != nil {
		msg := MsgRenderFailed
		if gemini.IsInvalidKey(err) {
			msg = MsgInvalidKey
		}
		c.logger.Error("render failed", "err", err)
		c.failLocked(msg, err)
		return gemini.Image{}, err
	}
	c.state.Image = img
	c.state.Status = StatusSuccess
	c.state.UpdatedAt = c.now()
	return img, nil
}

func (c *Controller) checkStartLocked() error {
	if c.state.Busy() {
		return ErrBusy
	}
	if !c.keysReady() {
		return ErrKeyRequired
	}
	return nil
}

func (c *Controller) beginLocked(status Status) uint64 {
	c.state.Status = status
	c.state.ErrorMessage = ""
	c.state.UpdatedAt = c.now()
	return c.epoch
}

func (c *Controller) finishText(epoch uint64, op, failMsg, text string, err error) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return "", ErrSuperseded
	}
	if err != nil {
		c.logger.Error(op+" failed", "err", err)
		c.failLocked(failMsg, err)
		return "", err
	}
	c.state.EnhancedPrompt = text
	c.state.Status = StatusIdle
	c.state.UpdatedAt = c.now()
	return text, nil
}

func (c *Controller) failLocked(msg string, err error) {
	if gemini.IsInvalidKey(err) {
		c.state.KeyReady = false
	}
	c.state.Status = StatusError
	c.state.ErrorMessage = msg
	c.state.UpdatedAt = c.now()
}
