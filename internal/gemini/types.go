package gemini

import (
	"fmt"
	"strings"
	"time"

	"nano-banana-prompt/internal/files"
)

// Image is a generated picture as returned by the image model.
type Image struct {
	MIMEType string
	Data     []byte
}

func (i Image) Empty() bool {
	return len(i.Data) == 0
}

func (i Image) DataURL() string {
	if i.Empty() {
		return ""
	}
	return files.EncodeDataURL(i.mimeType(), i.Data)
}

// FileName is the download name, e.g. nano_banana_pro_1700000000000.png.
func (i Image) FileName(t time.Time) string {
	return fmt.Sprintf("nano_banana_pro_%d%s", t.UnixMilli(), i.extension())
}

func (i Image) mimeType() string {
	if i.MIMEType == "" {
		return "image/png"
	}
	return i.MIMEType
}

func (i Image) extension() string {
	switch strings.ToLower(i.mimeType()) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
