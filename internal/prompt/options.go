package prompt

import (
	"fmt"
	"strings"
)

type NamedOption struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type OptionKey string

const (
	OptMangaLayout    OptionKey = "manga_layout"
	OptMangaColor     OptionKey = "manga_color"
	OptMangaStyle     OptionKey = "manga_style"
	OptCinematicStyle OptionKey = "cinematic_style"
	OptStickerLayout  OptionKey = "sticker_layout"
	OptManualStyle    OptionKey = "manual_style"
	OptAdMode         OptionKey = "ad_mode"
	OptAdHand         OptionKey = "ad_hand"
	OptAdRegion       OptionKey = "ad_region"
	OptAdModel        OptionKey = "ad_model"
	OptAdPodium       OptionKey = "ad_podium"
	OptPosterType     OptionKey = "poster_type"
	OptCardType       OptionKey = "card_type"
	OptLogoStyle      OptionKey = "logo_style"
	OptIDLayout       OptionKey = "id_layout"
	OptIDSize         OptionKey = "id_size"
	OptCopyMode       OptionKey = "copy_mode"
	OptCopyTone       OptionKey = "copy_tone"
)

type Option struct {
	Key      OptionKey     `json:"key"`
	Category Category      `json:"category"`
	Label    string        `json:"label"`
	Choices  []NamedOption `json:"choices"`
	Default  string        `json:"default"`

	// adMode limits the option to one advertisement mode when set.
	adMode string
}

// Visible reports whether the option applies under the current selection.
// Hidden options keep their value; handlers simply do not read them.
func (o Option) Visible(set OptionSet) bool {
	if o.adMode == "" {
		return true
	}
	return set.Get(OptAdMode) == o.adMode
}

func (o Option) Valid(value string) bool {
	for _, c := range o.Choices {
		if c.Key == value {
			return true
		}
	}
	return false
}

func (o Option) ChoiceName(value string) string {
	for _, c := range o.Choices {
		if c.Key == value {
			return c.Name
		}
	}
	return value
}

var optionTable = []Option{
	{
		Key: OptMangaLayout, Category: Manga, Label: "分鏡佈局", Default: "SINGLE",
		Choices: []NamedOption{
			{"SINGLE", "單幅插畫"},
			{"FOUR_PANEL", "四格漫畫"},
			{"SIX_PANEL", "六格漫畫"},
			{"EIGHT_PANEL", "頁漫(8格)"},
			{"TEN_PANEL", "頁漫(10格)"},
			{"COVER", "漫畫封面"},
		},
	},
	{
		Key: OptMangaColor, Category: Manga, Label: "色彩模式", Default: "BW",
		Choices: []NamedOption{
			{"BW", "黑白"},
			{"COLOR", "全彩"},
		},
	},
	{
		Key: OptMangaStyle, Category: Manga, Label: "漫畫風格", Default: "JAPANESE",
		Choices: []NamedOption{
			{"JAPANESE", "日本漫畫"},
			{"SHOJO", "少女漫畫"},
			{"WUXIA", "武俠漫畫"},
			{"AMERICAN", "美式漫畫"},
			{"KOREAN", "韓國漫畫"},
			{"PIXEL", "像素風格"},
			{"RAW", "原生圖片"},
		},
	},
	{
		Key: OptCinematicStyle, Category: Cinematic3D, Label: "3D 風格", Default: "HYPER_REALISTIC",
		Choices: []NamedOption{
			{"HYPER_REALISTIC", "極致寫實"},
			{"DISNEY", "迪士尼風格"},
			{"PIXAR", "皮克斯風格"},
			{"CYBERPUNK", "賽博龐克"},
			{"WASTELAND", "廢土/末日"},
			{"DARK_FANTASY", "暗黑幻想"},
			{"SPIDER_VERSE", "美漫/網點"},
			{"PAINTERLY", "油畫/塗抹"},
			{"CEL_SHADED", "日式賽璐珞"},
		},
	},
	{
		Key: OptStickerLayout, Category: LineSticker, Label: "貼圖數量", Default: "SINGLE",
		Choices: []NamedOption{
			{"SINGLE", "單張 (Single)"},
			{"SHEET_8", "8張 (Sheet)"},
			{"SHEET_16", "16張 (Sheet)"},
			{"SHEET_24", "24張 (Sheet)"},
			{"SHEET_32", "32張 (Sheet)"},
			{"SHEET_40", "40張 (Sheet)"},
		},
	},
	{
		Key: OptManualStyle, Category: InstructionManual, Label: "說明書風格", Default: "CARTOON",
		Choices: []NamedOption{
			{"CARTOON", "卡通圖解"},
			{"REALISTIC", "寫實攝影"},
			{"GUIDE_MAP", "導覽圖"},
			{"INFOGRAPHIC", "資訊圖表"},
		},
	},
	{
		Key: OptAdMode, Category: Advertisement, Label: "拍攝模式", Default: "PODIUM",
		Choices: []NamedOption{
			{"HAND_MODEL", "手部展示 (Hand)"},
			{"FULL_MODEL", "模特兒 (Model)"},
			{"PODIUM", "展示台 (Podium)"},
		},
	},
	{
		Key: OptAdHand, Category: Advertisement, Label: "手模", Default: "FEMALE_HAND",
		Choices: []NamedOption{
			{"MALE_HAND", "男模特手"},
			{"FEMALE_HAND", "女模特手"},
		},
		adMode: "HAND_MODEL",
	},
	{
		Key: OptAdRegion, Category: Advertisement, Label: "臉孔", Default: "ASIAN",
		Choices: []NamedOption{
			{"ASIAN", "亞洲臉孔"},
			{"EUROPEAN", "歐美臉孔"},
		},
		adMode: "FULL_MODEL",
	},
	{
		Key: OptAdModel, Category: Advertisement, Label: "模特兒", Default: "FEMALE",
		Choices: []NamedOption{
			{"MALE", "男模特 (Male)"},
			{"FEMALE", "女模特 (Female)"},
			{"CHILD_BOY", "男童 (Boy)"},
			{"CHILD_GIRL", "女童 (Girl)"},
		},
		adMode: "FULL_MODEL",
	},
	{
		Key: OptAdPodium, Category: Advertisement, Label: "展示台", Default: "WHITE_PLATFORM",
		Choices: []NamedOption{
			{"WOODEN", "質感木紋"},
			{"SILK", "高級絲綢"},
			{"WHITE_PLATFORM", "極簡白台"},
		},
		adMode: "PODIUM",
	},
	{
		Key: OptPosterType, Category: Poster, Label: "海報類型", Default: "MOVIE",
		Choices: []NamedOption{
			{"MOVIE", "電影海報"},
			{"EVENT", "活動宣傳"},
			{"PRODUCT", "商業產品"},
		},
	},
	{
		Key: OptCardType, Category: BusinessCard, Label: "名片風格", Default: "MINIMALIST",
		Choices: []NamedOption{
			{"MINIMALIST", "極簡白"},
			{"LUXURY", "黑金奢華"},
			{"CREATIVE", "創意插畫"},
		},
	},
	{
		Key: OptLogoStyle, Category: LogoDesign, Label: "標誌風格", Default: "LINE_ART",
		Choices: []NamedOption{
			{"LINE_ART", "線條"},
			{"SKETCH", "素描"},
			{"ILLUSTRATION", "插畫"},
			{"CARTOON", "卡通"},
			{"3D", "3D立體"},
			{"ARTISTIC", "藝術"},
			{"CUTE", "可愛"},
		},
	},
	{
		Key: OptIDLayout, Category: IDPhoto, Label: "排版", Default: "SINGLE",
		Choices: []NamedOption{
			{"SINGLE", "單張 (Single)"},
			{"SHEET_8", "4x6排版 (8張)"},
		},
	},
	{
		Key: OptIDSize, Category: IDPhoto, Label: "尺寸", Default: "2_INCH",
		Choices: []NamedOption{
			{"1_INCH", "1吋 (1 Inch)"},
			{"2_INCH", "2吋 (2 Inch)"},
		},
	},
	{
		Key: OptCopyMode, Category: Copywriting, Label: "文案類型", Default: "SOCIAL_MEDIA",
		Choices: []NamedOption{
			{"SOCIAL_MEDIA", "社群貼文 (IG/FB)"},
			{"AD_COPY", "廣告文案 (Ads)"},
			{"ARTICLE", "短篇文章/SEO"},
			{"QA_HELPER", "一般問答/解惑"},
		},
	},
	{
		Key: OptCopyTone, Category: Copywriting, Label: "語氣", Default: "PROFESSIONAL",
		Choices: []NamedOption{
			{"PROFESSIONAL", "專業權威"},
			{"HUMOROUS", "幽默風趣"},
			{"EMOTIONAL", "感性溫暖"},
			{"DIRECT", "直白有力"},
		},
	},
}

func LookupOption(key OptionKey) (Option, bool) {
	for _, o := range optionTable {
		if o.Key == key {
			return o, true
		}
	}
	return Option{}, false
}

// OptionsFor lists the options a category reads, in display order.
func OptionsFor(c Category) []Option {
	var out []Option
	for _, o := range optionTable {
		if o.Category == c {
			out = append(out, o)
		}
	}
	return out
}

// OptionSet holds the selected value per option across all categories.
type OptionSet map[OptionKey]string

func NewOptionSet() OptionSet {
	return make(OptionSet)
}

// Get returns the selected value, or the option's default when unset.
func (s OptionSet) Get(key OptionKey) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	if o, ok := LookupOption(key); ok {
		return o.Default
	}
	return ""
}

func (s OptionSet) Set(key OptionKey, value string) error {
	o, ok := LookupOption(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOption, key)
	}
	value = strings.ToUpper(strings.TrimSpace(value))
	if !o.Valid(value) {
		return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, value)
	}
	s[key] = value
	return nil
}

func (s OptionSet) Clone() OptionSet {
	out := make(OptionSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
