package webui

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"

	"nano-banana-prompt/internal/files"
	"nano-banana-prompt/internal/prompt"
	"nano-banana-prompt/internal/session"
)

//go:embed static/*
var staticFS embed.FS

// KeyManager stores the Gemini API key entered in the page.
type KeyManager interface {
	Save(key string) error
	Clear() error
	Ready() bool
	Masked() string
}

type Options struct {
	Session *session.Controller
	Keys    KeyManager
	// MaxUploadBytes bounds one multipart upload request.
	MaxUploadBytes int64
	// RequestTimeout bounds one refine, describe or render call; 0 means none.
	RequestTimeout time.Duration
	Logger         *slog.Logger
	Now            func() time.Time
}

type Server struct {
	session        *session.Controller
	keys           KeyManager
	maxUploadBytes int64
	requestTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 25 << 20
	}

	return &Server{
		session:        opts.Session,
		keys:           opts.Keys,
		maxUploadBytes: maxUpload,
		requestTimeout: opts.RequestTimeout,
		logger:         logger,
		now:            now,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		withLogging(s.logger),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/state", s.handleState)
		r.Post("/category", s.handleCategory)
		r.Post("/options", s.handleOption)
		r.Post("/aspect-ratio", s.handleAspectRatio)
		r.Post("/input", s.handleInput)
		r.Post("/files", s.handleUpload)
		r.Delete("/files", s.handleClearFiles)
		r.Delete("/files/{id}", s.handleRemoveFile)
		r.Post("/refine", s.handleRefine)
		r.Post("/describe", s.handleDescribe)
		r.Post("/render", s.handleRender)
		r.Put("/prompt", s.handlePrompt)
		r.Get("/image", s.handleImage)
		r.Get("/key", s.handleKey)
		r.Put("/key", s.handleSaveKey)
		r.Delete("/key", s.handleClearKey)
		r.Post("/reset", s.handleReset)
	})

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/*", http.FileServer(http.FS(staticSub)))

	return r
}

type apiError struct {
	Error string `json:"error"`
}

type catalogCategory struct {
	ID            prompt.Category `json:"id"`
	Label         string          `json:"label"`
	Description   string          `json:"description"`
	Icon          string          `json:"icon"`
	ProducesImage bool            `json:"produces_image"`
	Options       []prompt.Option `json:"options"`
}

type catalogResponse struct {
	Categories   []catalogCategory    `json:"categories"`
	AspectRatios []prompt.NamedOption `json:"aspect_ratios"`
}

type optionValue struct {
	Key   prompt.OptionKey `json:"key"`
	Label string           `json:"label"`
	Value string           `json:"value"`
}

type stateResponse struct {
	session.Session
	// VisibleOptions lists the options of the active category that apply,
	// with their resolved values.
	VisibleOptions  []optionValue `json:"visible_options"`
	Placeholder     string        `json:"placeholder"`
	PromptHTML      string        `json:"prompt_html,omitempty"`
	ShowAspectRatio bool          `json:"show_aspect_ratio"`
	HasImage        bool          `json:"has_image"`
	MaskedKey       string        `json:"masked_key"`
}

func (s *Server) state() stateResponse {
	snap := s.session.Snapshot()
	details, _ := prompt.Lookup(snap.Category)

	out := stateResponse{
		Session:         snap,
		Placeholder:     prompt.Placeholder(snap.Category, snap.Options),
		ShowAspectRatio: details.ProducesImage,
		HasImage:        !snap.Image.Empty(),
		MaskedKey:       s.keys.Masked(),
	}
	for _, opt := range prompt.OptionsFor(snap.Category) {
		if opt.Visible(snap.Options) {
			out.VisibleOptions = append(out.VisibleOptions, optionValue{Key: opt.Key, Label: opt.Label, Value: snap.Options.Get(opt.Key)})
		}
	}
	if !details.ProducesImage && snap.EnhancedPrompt != "" {
		out.PromptHTML = renderMarkdown(snap.EnhancedPrompt)
	}
	return out
}

// Copywriting output is markdown; the page shows it rendered.
func renderMarkdown(src string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return buf.String()
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	var out catalogResponse
	for _, c := range prompt.Categories() {
		out.Categories = append(out.Categories, catalogCategory{
			ID:            c.ID,
			Label:         c.Label,
			Description:   c.Description,
			Icon:          c.Icon,
			ProducesImage: c.ProducesImage,
			Options:       prompt.OptionsFor(c.ID),
		})
	}
	out.AspectRatios = prompt.AspectRatios()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	cat, err := prompt.ParseCategory(req.Category)
	if err == nil {
		err = s.session.SelectCategory(cat)
	}
	s.respond(w, err)
}

func (s *Server) handleOption(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.respond(w, s.session.SetOption(prompt.OptionKey(req.Key), req.Value))
}

func (s *Server) handleAspectRatio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AspectRatio string `json:"aspect_ratio"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.respond(w, s.session.SetAspectRatio(req.AspectRatio))
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.session.SetUserText(req.Text)
	s.respond(w, nil)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart form"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	var raws []files.Raw
	var rejected []string
	for _, header := range r.MultipartForm.File["files"] {
		mimeType := header.Header.Get("Content-Type")
		if !files.Accepted(header.Filename, mimeType) {
			rejected = append(rejected, header.Filename)
			continue
		}
		raws = append(raws, files.Raw{
			Name:     header.Filename,
			MIMEType: mimeType,
			Open: func() (io.ReadCloser, error) {
				return header.Open()
			},
		})
	}

	uploaded := files.NormalizeAll(r.Context(), s.logger, raws)
	s.session.AddFiles(uploaded...)

	writeJSON(w, http.StatusOK, struct {
		Added    []files.UploadedFile `json:"added"`
		Rejected []string             `json:"rejected,omitempty"`
		State    stateResponse        `json:"state"`
	}{Added: uploaded, Rejected: rejected, State: s.state()})
}

func (s *Server) handleRemoveFile(w http.ResponseWriter, r *http.Request) {
	if !s.session.RemoveFile(chi.URLParam(r, "id")) {
		writeJSON(w, http.StatusNotFound, apiError{Error: "file not found"})
		return
	}
	s.respond(w, nil)
}

func (s *Server) handleClearFiles(w http.ResponseWriter, r *http.Request) {
	s.session.ClearFiles()
	s.respond(w, nil)
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	_, err := s.session.Refine(ctx)
	s.respond(w, err)
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	_, err := s.session.Describe(ctx)
	s.respond(w, err)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	img, err := s.session.Render(ctx)
	if err != nil {
		s.respond(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Image    string        `json:"image"`
		FileName string        `json:"file_name"`
		State    stateResponse `json:"state"`
	}{Image: img.DataURL(), FileName: img.FileName(s.now()), State: s.state()})
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.session.SetEnhancedPrompt(req.Prompt)
	s.respond(w, nil)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	img := s.session.Snapshot().Image
	if img.Empty() {
		writeJSON(w, http.StatusNotFound, apiError{Error: "no image generated"})
		return
	}
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	w.Header().Set("content-type", mimeType)
	w.Header().Set("content-disposition", `attachment; filename="`+img.FileName(s.now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

type keyResponse struct {
	Ready  bool   `json:"ready"`
	Masked string `json:"masked"`
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, keyResponse{Ready: s.keys.Ready(), Masked: s.keys.Masked()})
}

func (s *Server) handleSaveKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "key is required"})
		return
	}
	if err := s.keys.Save(req.Key); err != nil {
		s.logger.Error("save api key failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to save key"})
		return
	}
	s.session.SetKeyReady(s.keys.Ready())
	writeJSON(w, http.StatusOK, keyResponse{Ready: s.keys.Ready(), Masked: s.keys.Masked()})
}

func (s *Server) handleClearKey(w http.ResponseWriter, r *http.Request) {
	if err := s.keys.Clear(); err != nil {
		s.logger.Error("clear api key failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to clear key"})
		return
	}
	s.session.SetKeyReady(s.keys.Ready())
	writeJSON(w, http.StatusOK, keyResponse{Ready: s.keys.Ready(), Masked: s.keys.Masked()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.session.Reset()
	s.respond(w, nil)
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.requestTimeout)
}

// respond writes the session state, or the error mapped to a status code.
func (s *Server) respond(w http.ResponseWriter, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, s.state())
		return
	}

	status := http.StatusBadGateway
	msg := err.Error()
	switch {
	case errors.Is(err, prompt.ErrUnknownCategory),
		errors.Is(err, prompt.ErrUnknownOption),
		errors.Is(err, prompt.ErrInvalidValue),
		errors.Is(err, session.ErrNothingToSend),
		errors.Is(err, session.ErrTextOnly):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrSuperseded):
		status = http.StatusConflict
	case errors.Is(err, session.ErrKeyRequired):
		status = http.StatusUnauthorized
	default:
		if m := s.session.Snapshot().ErrorMessage; m != "" {
			msg = m
		}
		s.logger.Warn("request failed", "err", err)
	}
	writeJSON(w, status, apiError{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func withLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", middleware.GetReqID(r.Context()),
				"dur_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
