package files

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var dataURLRegex = regexp.MustCompile(`^data:([^;,]+)?(;[^,]*)?,`)

func EncodeDataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// StripDataURLPrefix drops a leading "data:<type>;base64," header, leaving the payload.
func StripDataURLPrefix(value string) string {
	if idx := strings.IndexByte(value, ','); idx >= 0 {
		return value[idx+1:]
	}
	return value
}

// DecodeDataURL returns the media type and raw bytes of a base64 data URI.
// A bare base64 string is accepted and reported with fallbackMime.
func DecodeDataURL(value, fallbackMime string) (string, []byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil, errors.New("empty data url")
	}

	mimeType := fallbackMime
	if matches := dataURLRegex.FindStringSubmatch(value); len(matches) >= 2 && matches[1] != "" {
		mimeType = matches[1]
	}

	data, err := base64.StdEncoding.DecodeString(StripDataURLPrefix(value))
	if err != nil {
		return "", nil, fmt.Errorf("decode base64: %w", err)
	}
	return mimeType, data, nil
}

// Payload returns the base64 body of a binary file, or the text of a text file.
func (f UploadedFile) Payload() string {
	if f.Kind == KindText {
		return f.Data
	}
	return StripDataURLPrefix(f.Data)
}

func (f UploadedFile) Bytes() ([]byte, error) {
	if f.Kind == KindText {
		return []byte(f.Data), nil
	}
	_, data, err := DecodeDataURL(f.Data, f.MIMEType)
	return data, err
}
