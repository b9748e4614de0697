package prompt

import (
	"fmt"
	"strings"
)

type AspectRatio string

const (
	Ratio1x1  AspectRatio = "1:1"
	Ratio3x4  AspectRatio = "3:4"
	Ratio4x3  AspectRatio = "4:3"
	Ratio9x16 AspectRatio = "9:16"
	Ratio16x9 AspectRatio = "16:9"

	DefaultAspectRatio = Ratio1x1
)

type orientation int

const (
	square orientation = iota
	portrait
	landscape
)

var aspectRatios = []struct {
	ratio       AspectRatio
	description string
	orientation orientation
}{
	{Ratio3x4, "直式 (3:4)", portrait},
	{Ratio1x1, "正方形 (1:1)", square},
	{Ratio4x3, "橫式 (4:3)", landscape},
	{Ratio9x16, "手機全屏直式 (9:16)", portrait},
	{Ratio16x9, "寬螢幕 (16:9)", landscape},
}

func AspectRatios() []NamedOption {
	out := make([]NamedOption, 0, len(aspectRatios))
	for _, r := range aspectRatios {
		out = append(out, NamedOption{Key: string(r.ratio), Name: r.description})
	}
	return out
}

func ParseAspectRatio(value string) (AspectRatio, error) {
	value = strings.TrimSpace(value)
	for _, r := range aspectRatios {
		if string(r.ratio) == value {
			return r.ratio, nil
		}
	}
	return "", fmt.Errorf("%w: aspect ratio %q", ErrInvalidValue, value)
}

func (r AspectRatio) Valid() bool {
	_, err := ParseAspectRatio(string(r))
	return err == nil
}

func (r AspectRatio) Description() string {
	for _, ar := range aspectRatios {
		if ar.ratio == r {
			return ar.description
		}
	}
	return string(r)
}

func (r AspectRatio) compositionHint() string {
	o := square
	for _, ar := range aspectRatios {
		if ar.ratio == r {
			o = ar.orientation
		}
	}
	switch o {
	case portrait:
		return "此為直式畫面，強調垂直線條與高聳感。"
	case landscape:
		return "此為橫式畫面，強調廣角與全景感。"
	default:
		return "此為方形畫面，強調主體置中與平衡對稱的構圖。"
	}
}
