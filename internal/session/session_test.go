package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"nano-banana-prompt/internal/files"
	"nano-banana-prompt/internal/gemini"
	"nano-banana-prompt/internal/prompt"
)

type fakeGenerator struct {
	mu sync.Mutex

	refineCalls   int
	renderCalls   int
	describeCalls int

	lastComposed prompt.Composed
	lastPrompt   string
	lastRatio    prompt.AspectRatio
	lastRefs     []files.UploadedFile

	text  string
	image gemini.Image
	err   error

	// block, when set, holds calls until closed.
	block chan struct{}
}

func (f *fakeGenerator) wait() {
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeGenerator) Refine(_ context.Context, composed prompt.Composed) (string, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refineCalls++
	f.lastComposed = composed
	return f.text, f.err
}

func (f *fakeGenerator) RenderImage(_ context.Context, text string, ratio prompt.AspectRatio, refs []files.UploadedFile) (gemini.Image, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renderCalls++
	f.lastPrompt = text
	f.lastRatio = ratio
	f.lastRefs = refs
	return f.image, f.err
}

func (f *fakeGenerator) DescribeImages(_ context.Context, refs []files.UploadedFile) (string, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.describeCalls++
	f.lastRefs = refs
	return f.text, f.err
}

type fakeKeys struct{ ready bool }

func (k *fakeKeys) Ready() bool { return k.ready }

func newController(gen Generator, composeCalls *int) *Controller {
	return New(Options{
		Generator: gen,
		Keys:      &fakeKeys{ready: true},
		Compose: func(req prompt.Request) (prompt.Composed, error) {
			if composeCalls != nil {
				*composeCalls++
			}
			return prompt.Compose(req)
		},
	})
}

func image() files.UploadedFile {
	return files.UploadedFile{ID: "img", Name: "a.png", MIMEType: "image/png", Kind: files.KindImage, Data: "data:image/png;base64,iVBORw=="}
}

func TestRefineGuardsEmptyInput(t *testing.T) {
	gen := &fakeGenerator{text: "x"}
	composeCalls := 0
	c := newController(gen, &composeCalls)
	c.SetUserText("   ")

	_, err := c.Refine(context.Background())
	if !errors.Is(err, ErrNothingToSend) {
		t.Fatalf("err = %v, want ErrNothingToSend", err)
	}
	if composeCalls != 0 || gen.refineCalls != 0 {
		t.Fatalf("compose calls = %d, refine calls = %d, want 0", composeCalls, gen.refineCalls)
	}
	if got := c.Snapshot().Status; got != StatusIdle {
		t.Fatalf("status = %s, want idle", got)
	}
}

func TestRefineSuccess(t *testing.T) {
	gen := &fakeGenerator{text: "精緻的提示詞"}
	c := newController(gen, nil)
	if err := c.SelectCategory(prompt.IDPhoto); err != nil {
		t.Fatal(err)
	}
	_ = c.SetOption(prompt.OptIDLayout, "SHEET_8")
	c.SetUserText("a man in a dark suit")

	got, err := c.Refine(context.Background())
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if got != "精緻的提示詞" {
		t.Fatalf("Refine = %q", got)
	}
	if !strings.Contains(gen.lastComposed.SystemInstruction, "8張完全相同") {
		t.Fatal("composed instruction missing the sheet directive")
	}

	s := c.Snapshot()
	if s.EnhancedPrompt != got || s.Status != StatusIdle || s.ErrorMessage != "" {
		t.Fatalf("state = %+v", s)
	}
}

func TestRefineFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	c := newController(gen, nil)
	c.SetUserText("x")

	if _, err := c.Refine(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	s := c.Snapshot()
	if s.Status != StatusError || s.ErrorMessage != MsgRefineFailed {
		t.Fatalf("state = %s %q", s.Status, s.ErrorMessage)
	}
	if !s.KeyReady {
		t.Fatal("generic failure cleared KeyReady")
	}

	// error state allows retry
	gen.err = nil
	gen.text = "ok"
	if _, err := c.Refine(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestRefineClearsPreviousImage(t *testing.T) {
	gen := &fakeGenerator{text: "p", image: gemini.Image{MIMEType: "image/png", Data: []byte{1}}}
	c := newController(gen, nil)
	c.SetUserText("x")

	if _, err := c.Refine(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Render(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Snapshot().Image.Empty() {
		t.Fatal("image not stored")
	}
	if _, err := c.Refine(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !c.Snapshot().Image.Empty() {
		t.Fatal("refine did not clear the previous image")
	}
}

func TestBusyGuard(t *testing.T) {
	gen := &fakeGenerator{text: "p", block: make(chan struct{})}
	c := newController(gen, nil)
	c.SetUserText("x")

	done := make(chan error, 1)
	go func() {
		_, err := c.Refine(context.Background())
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for c.Snapshot().Status != StatusRefining {
		if time.Now().After(deadline) {
			t.Fatal("refine never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := c.Refine(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Refine err = %v, want ErrBusy", err)
	}
	if _, err := c.Render(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("Render while busy err = %v, want ErrBusy", err)
	}

	close(gen.block)
	if err := <-done; err != nil {
		t.Fatalf("first Refine: %v", err)
	}
	if got := c.Snapshot().Status; got != StatusIdle {
		t.Fatalf("status = %s", got)
	}
}

func TestResetDropsInFlightResult(t *testing.T) {
	gen := &fakeGenerator{text: "late", block: make(chan struct{})}
	c := newController(gen, nil)
	c.SetUserText("x")

	done := make(chan error, 1)
	go func() {
		_, err := c.Refine(context.Background())
		done <- err
	}()
	for c.Snapshot().Status != StatusRefining {
		time.Sleep(time.Millisecond)
	}

	c.Reset()
	close(gen.block)
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("err = %v, want ErrSuperseded", err)
	}
	if s := c.Snapshot(); s.EnhancedPrompt != "" || s.UserText != "" || s.Status != StatusIdle {
		t.Fatalf("state after reset = %+v", s)
	}
}

func TestRenderRequiresPrompt(t *testing.T) {
	gen := &fakeGenerator{}
	c := newController(gen, nil)

	if _, err := c.Render(context.Background()); !errors.Is(err, ErrNothingToSend) {
		t.Fatalf("err = %v", err)
	}
	if gen.renderCalls != 0 {
		t.Fatal("render called without prompt")
	}
}

func TestRenderSendsRatioAndFiles(t *testing.T) {
	gen := &fakeGenerator{image: gemini.Image{MIMEType: "image/png", Data: []byte{1, 2}}}
	c := newController(gen, nil)
	_ = c.SelectCategory(prompt.IDPhoto)
	c.AddFiles(image())
	c.SetEnhancedPrompt("  穿深色西裝的男性, 證件照  ")

	img, err := c.Render(context.Background())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(img.Data) != 2 {
		t.Fatalf("image = %+v", img)
	}
	if gen.lastRatio != "1:1" || gen.lastPrompt != "穿深色西裝的男性, 證件照" || len(gen.lastRefs) != 1 {
		t.Fatalf("render args = %q %q %d", gen.lastRatio, gen.lastPrompt, len(gen.lastRefs))
	}
	if got := c.Snapshot().Status; got != StatusSuccess {
		t.Fatalf("status = %s", got)
	}
}

func TestIDPhotoSheetRefineThenRender(t *testing.T) {
	gen := &fakeGenerator{
		text:  "證件照, 8張排版, 深色西裝",
		image: gemini.Image{MIMEType: "image/png", Data: []byte{1}},
	}
	c := newController(gen, nil)
	if err := c.SelectCategory(prompt.IDPhoto); err != nil {
		t.Fatal(err)
	}
	if err := c.SetOption(prompt.OptIDLayout, "SHEET_8"); err != nil {
		t.Fatal(err)
	}
	if err := c.SetOption(prompt.OptIDSize, "2_INCH"); err != nil {
		t.Fatal(err)
	}
	if err := c.SetAspectRatio("1:1"); err != nil {
		t.Fatal(err)
	}
	c.SetUserText("a man in a dark suit")

	enhanced, err := c.Refine(context.Background())
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	for _, want := range []string{"8張完全相同", "2吋", "1:1"} {
		if !strings.Contains(gen.lastComposed.SystemInstruction, want) {
			t.Fatalf("composed instruction missing %q", want)
		}
	}

	if _, err := c.Render(context.Background()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if gen.lastRatio != "1:1" || gen.lastPrompt != enhanced {
		t.Fatalf("render args = %q %q", gen.lastRatio, gen.lastPrompt)
	}
	if got := c.Snapshot().Status; got != StatusSuccess {
		t.Fatalf("status = %s", got)
	}
}

func TestRenderRejectsTextOnlyCategory(t *testing.T) {
	c := newController(&fakeGenerator{}, nil)
	_ = c.SelectCategory(prompt.Copywriting)
	c.SetEnhancedPrompt("some copy")

	if _, err := c.Render(context.Background()); !errors.Is(err, ErrTextOnly) {
		t.Fatalf("err = %v, want ErrTextOnly", err)
	}
}

func TestRenderInvalidKey(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("Error 404: Requested entity was not found.")}
	c := newController(gen, nil)
	c.SetEnhancedPrompt("p")

	if _, err := c.Render(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	s := c.Snapshot()
	if s.ErrorMessage != MsgInvalidKey || s.KeyReady || s.Status != StatusError {
		t.Fatalf("state = %q ready=%v status=%s", s.ErrorMessage, s.KeyReady, s.Status)
	}

	c.SetKeyReady(true)
	if s := c.Snapshot(); !s.KeyReady || s.ErrorMessage != "" {
		t.Fatalf("after SetKeyReady: %+v", s)
	}
}

func TestRenderGenericFailure(t *testing.T) {
	c := newController(&fakeGenerator{err: errors.New("500")}, nil)
	c.SetEnhancedPrompt("p")

	_, _ = c.Render(context.Background())
	if s := c.Snapshot(); s.ErrorMessage != MsgRenderFailed || !s.KeyReady {
		t.Fatalf("state = %q ready=%v", s.ErrorMessage, s.KeyReady)
	}
}

func TestRefineInvalidKeyClearsReady(t *testing.T) {
	c := newController(&fakeGenerator{err: errors.New("Requested entity was not found")}, nil)
	c.SetUserText("x")

	_, _ = c.Refine(context.Background())
	if s := c.Snapshot(); s.KeyReady || s.ErrorMessage != MsgRefineFailed {
		t.Fatalf("state = %q ready=%v", s.ErrorMessage, s.KeyReady)
	}
}

func TestDescribe(t *testing.T) {
	gen := &fakeGenerator{text: "水彩, 柔光"}
	c := newController(gen, nil)

	if _, err := c.Describe(context.Background()); !errors.Is(err, ErrNothingToSend) {
		t.Fatalf("err = %v", err)
	}
	if gen.describeCalls != 0 {
		t.Fatal("describe called without images")
	}

	c.AddFiles(image())
	got, err := c.Describe(context.Background())
	if err != nil || got != "水彩, 柔光" {
		t.Fatalf("Describe = %q, %v", got, err)
	}
	if c.Snapshot().EnhancedPrompt != got {
		t.Fatal("description not stored as enhanced prompt")
	}

	gen.err = errors.New("boom")
	_, _ = c.Describe(context.Background())
	if s := c.Snapshot(); s.ErrorMessage != MsgDescribeFailed || s.Status != StatusError {
		t.Fatalf("state = %q %s", s.ErrorMessage, s.Status)
	}
}

func TestKeyRequired(t *testing.T) {
	gen := &fakeGenerator{text: "x"}
	c := New(Options{Generator: gen, Keys: &fakeKeys{}})
	c.SetUserText("x")

	if _, err := c.Refine(context.Background()); !errors.Is(err, ErrKeyRequired) {
		t.Fatalf("err = %v, want ErrKeyRequired", err)
	}
	if gen.refineCalls != 0 {
		t.Fatal("remote call made without a key")
	}
	if c.Snapshot().KeyReady {
		t.Fatal("KeyReady = true without a key")
	}
}

func TestSelectionMutations(t *testing.T) {
	c := newController(&fakeGenerator{}, nil)

	if err := c.SelectCategory(prompt.Category(99)); !errors.Is(err, prompt.ErrUnknownCategory) {
		t.Fatalf("err = %v", err)
	}
	_ = c.SetOption(prompt.OptMangaStyle, "wuxia")
	_ = c.SelectCategory(prompt.Poster)
	if got := c.Snapshot().Options.Get(prompt.OptMangaStyle); got != "WUXIA" {
		t.Fatalf("option lost on category switch: %q", got)
	}
	if err := c.SetAspectRatio("5:4"); err == nil {
		t.Fatal("invalid ratio accepted")
	}
	if err := c.SetAspectRatio("16:9"); err != nil {
		t.Fatal(err)
	}

	a, b := image(), image()
	b.ID = "second"
	c.AddFiles(a, b)
	if !c.RemoveFile("img") || c.RemoveFile("missing") {
		t.Fatal("RemoveFile result wrong")
	}
	if got := c.Snapshot().Files; len(got) != 1 || got[0].ID != "second" {
		t.Fatalf("files = %+v", got)
	}
	c.ClearFiles()
	if len(c.Snapshot().Files) != 0 {
		t.Fatal("ClearFiles left files")
	}

	snap := c.Snapshot()
	snap.Options[prompt.OptMangaStyle] = "KOREAN"
	if c.Snapshot().Options.Get(prompt.OptMangaStyle) != "WUXIA" {
		t.Fatal("snapshot shares option storage")
	}
}
