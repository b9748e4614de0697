package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type Kind string

const (
	KindText     Kind = "text"
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

const (
	defaultTextType   = "text/plain"
	defaultBinaryType = "application/octet-stream"
)

// Raw is a file as handed over by a front-end, before normalization.
type Raw struct {
	Name     string
	MIMEType string
	Open     func() (io.ReadCloser, error)
}

type UploadedFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Kind     Kind   `json:"kind"`

	// Data is the decoded text for KindText and a base64 data URI otherwise.
	Data string `json:"-"`
}

func FromBytes(name, mimeType string, data []byte) Raw {
	return Raw{
		Name:     name,
		MIMEType: mimeType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func Classify(name, mimeType string) Kind {
	mimeType = baseMediaType(mimeType)
	ext := strings.ToLower(filepath.Ext(name))

	switch {
	case mimeType == "text/plain" || mimeType == "text/csv" || ext == ".txt" || ext == ".csv":
		return KindText
	case strings.HasPrefix(mimeType, "image/"):
		return KindImage
	default:
		return KindDocument
	}
}

var acceptedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".csv":  true,
	".doc":  true,
	".docx": true,
	".ppt":  true,
	".pptx": true,
}

// Accepted reports whether the upload boundary takes the file at all.
// Office formats pass here but are only as useful as the remote model's parser.
func Accepted(name, mimeType string) bool {
	mimeType = baseMediaType(mimeType)
	if strings.HasPrefix(mimeType, "image/") || mimeType == "application/pdf" {
		return true
	}
	if mimeType == "text/plain" || mimeType == "text/csv" {
		return true
	}
	return acceptedExtensions[strings.ToLower(filepath.Ext(name))]
}

func Normalize(raw Raw) (UploadedFile, error) {
	if raw.Open == nil {
		return UploadedFile{}, errors.New("file has no content")
	}

	rc, err := raw.Open()
	if err != nil {
		return UploadedFile{}, fmt.Errorf("open %s: %w", raw.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return UploadedFile{}, fmt.Errorf("read %s: %w", raw.Name, err)
	}

	name := strings.TrimSpace(raw.Name)
	mimeType := baseMediaType(raw.MIMEType)
	kind := Classify(name, mimeType)

	out := UploadedFile{
		ID:   uuid.NewString(),
		Name: name,
		Kind: kind,
	}

	if kind == KindText {
		text, err := decodeText(data)
		if err != nil {
			return UploadedFile{}, fmt.Errorf("decode %s: %w", name, err)
		}
		if mimeType == "" {
			mimeType = defaultTextType
		}
		out.MIMEType = mimeType
		out.Data = text
		return out, nil
	}

	if mimeType == "" {
		mimeType = defaultBinaryType
	}
	out.MIMEType = mimeType
	out.Data = EncodeDataURL(mimeType, data)
	return out, nil
}

// NormalizeAll reads every file concurrently. A file that fails is logged and
// dropped; the rest keep their input order.
func NormalizeAll(ctx context.Context, logger *slog.Logger, raws []Raw) []UploadedFile {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	results := make([]*UploadedFile, len(raws))

	var g errgroup.Group
	g.SetLimit(4)
	for i, raw := range raws {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				logger.Warn("file skipped", "name", raw.Name, "err", err)
				return nil
			}
			f, err := Normalize(raw)
			if err != nil {
				logger.Warn("file read failed", "name", raw.Name, "err", err)
				return nil
			}
			results[i] = &f
			return nil
		})
	}
	_ = g.Wait()

	out := make([]UploadedFile, 0, len(raws))
	for _, f := range results {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out
}

func Images(in []UploadedFile) []UploadedFile {
	var out []UploadedFile
	for _, f := range in {
		if f.Kind == KindImage {
			out = append(out, f)
		}
	}
	return out
}

func HasImages(in []UploadedFile) bool {
	for _, f := range in {
		if f.Kind == KindImage {
			return true
		}
	}
	return false
}

var ErrInvalidText = errors.New("text file is not valid utf-8")

// decodeText strips a BOM and converts UTF-16 input. Anything without a
// UTF-16 BOM must already be valid UTF-8.
func decodeText(data []byte) (string, error) {
	utf16 := bytes.HasPrefix(data, []byte{0xff, 0xfe}) || bytes.HasPrefix(data, []byte{0xfe, 0xff})
	if !utf16 && !utf8.Valid(data) {
		return "", ErrInvalidText
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func baseMediaType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(value); err == nil {
		return parsed
	}
	if idx := strings.IndexByte(value, ';'); idx >= 0 {
		value = value[:idx]
	}
	return strings.ToLower(strings.TrimSpace(value))
}
