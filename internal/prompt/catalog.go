package prompt

import (
	"fmt"
	"strings"
)

type Category int

const (
	Manga Category = iota
	LineSticker
	InstructionManual
	Advertisement
	Copywriting
	Poster
	BusinessCard
	IDPhoto
	Photorealistic
	Cinematic3D
	DigitalArt
	LogoDesign
	PixelArt

	numCategories
)

var categoryIDs = [numCategories]string{
	Manga:             "MANGA",
	LineSticker:       "LINE_STICKER",
	InstructionManual: "INSTRUCTION_MANUAL",
	Advertisement:     "ADVERTISEMENT",
	Copywriting:       "COPYWRITING",
	Poster:            "POSTER",
	BusinessCard:      "BUSINESS_CARD",
	IDPhoto:           "ID_PHOTO",
	Photorealistic:    "PHOTOREALISTIC",
	Cinematic3D:       "CINEMATIC_3D",
	DigitalArt:        "DIGITAL_ART",
	LogoDesign:        "LOGO_DESIGN",
	PixelArt:          "PIXEL_ART",
}

func (c Category) Valid() bool {
	return c >= 0 && c < numCategories
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryIDs[c]
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(categoryIDs[c]), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func ParseCategory(value string) (Category, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	for i, id := range categoryIDs {
		if id == value {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, value)
}

type CategoryDetails struct {
	ID              Category
	Label           string
	Description     string
	Icon            string
	BaseInstruction string

	// SupportsEmbeddedText is false for looks that should not carry rendered
	// text, which drops the in-image text rule from the output block.
	SupportsEmbeddedText bool
	// StyleDependsOnReferenceImages marks categories whose style directive
	// changes when an image file is attached.
	StyleDependsOnReferenceImages bool
	ProducesImage                 bool
}

func Lookup(c Category) (CategoryDetails, bool) {
	if !c.Valid() {
		return CategoryDetails{}, false
	}
	return categories[c], true
}

// Categories returns the table in display order.
func Categories() []CategoryDetails {
	out := make([]CategoryDetails, 0, len(categories))
	out = append(out, categories[:]...)
	return out
}

var categories = [numCategories]CategoryDetails{
	Manga: {
		ID:          Manga,
		Label:       "日系漫畫 / Manga",
		Description: "強調線條、分鏡與構圖張力。支援多種畫風與黑白/全彩切換。",
		Icon:        "✒️",
		BaseInstruction: `You are an expert prompt engineer for Nano Banana Pro (Gemini Image Model), specializing in Manga/Anime styles.
Convert the user's input into a highly technical prompt in **Traditional Chinese (繁體中文)**.

CRITICAL RULE FOR TEXT: The user requires ALL text, sound effects (SFX), and speech bubbles inside the image to be in **Traditional Chinese (繁體中文)**.

Keywords to include (translate to Chinese): "manga style", "intricate line art", "dynamic angle", "anime aesthetic".
Focus on character emotion and dramatic composition.`,
		SupportsEmbeddedText:          true,
		StyleDependsOnReferenceImages: true,
		ProducesImage:                 true,
	},
	LineSticker: {
		ID:          LineSticker,
		Label:       "LINE 貼圖 / Stickers",
		Description: "LINE 貼圖專用格式 (370x320)。支援單張或多張表情包排版，自動搭配隨機中文字。",
		Icon:        "😊",
		BaseInstruction: `You are an expert prompt engineer for Nano Banana Pro, specializing in LINE Sticker creation.
Convert the user's input into a character sticker prompt in **Traditional Chinese (繁體中文)**.

CRITICAL RULES:
1. **NO WHITE BORDERS**: The user specifically requested "NO white sticker outline/border" (不要有白邊). The style should be direct digital art or vector style without the die-cut white edge effect.
2. **TEXT**: Every sticker MUST include a short, random, expressive phrase in **Traditional Chinese (繁體中文)** that matches the emotion (e.g., "OK", "謝謝", "??", "哈哈").
3. **EXPRESSIONS**: The character must have vivid, exaggerated, and varied expressions (emojis).
4. **FORMAT**: Optimized for sticker visibility (clean background, bold lines).`,
		SupportsEmbeddedText: true,
		ProducesImage:        true,
	},
	InstructionManual: {
		ID:          InstructionManual,
		Label:       "使用說明書 / Manual",
		Description: "製作步驟圖解、產品分解圖。支援卡通圖解與寫實攝影風格。",
		Icon:        "📖",
		BaseInstruction: `You are an expert prompt engineer for Nano Banana Pro, specializing in Instructional Design and User Manuals.
Convert the user's input into a step-by-step visual guide prompt in **Traditional Chinese (繁體中文)**.

CRITICAL RULE FOR TEXT: The user requires ALL labels, numbers, and instructions inside the image to be in **Traditional Chinese (繁體中文)**.

Keywords to include (translate to Chinese): "instruction manual layout", "step-by-step guide", "exploded view", "clear labels", "educational diagram", "white background", "easy to understand".`,
		SupportsEmbeddedText: true,
		ProducesImage:        true,
	},
	Advertisement: {
		ID:          Advertisement,
		Label:       "商業廣告 / Advertisement",
		Description: "專業產品展示，包含手模、模特兒與展示台場景。",
		Icon:        "🛍️",
		BaseInstruction: `You are an expert prompt engineer for Nano Banana Pro, specializing in Commercial Product Photography and Advertising.
Convert the user's input into a high-end commercial prompt in **Traditional Chinese (繁體中文)**.

Focus on: Product lighting, texture details, professional composition, and brand appeal.
If the user describes a product, ensure the prompt highlights its features elegantly.`,
		SupportsEmbeddedText: true,
		ProducesImage:        true,
	},
	Copywriting: {
		ID:          Copywriting,
		Label:       "文案小幫手 / Copywriter",
		Description: "社群貼文、廣告文案、文章撰寫與一般問答。",
		Icon:        "✍️",
		BaseInstruction: `You are a professional Traditional Chinese Copywriter and Assistant (文案專家).
Your goal is NOT to generate an image prompt, but to generate HIGH-QUALITY TEXT CONTENT based on the user's request.

Output Rules:
1. Write in fluent, engaging **Traditional Chinese (繁體中文)**.
2. Format the output with clear headings, bullet points, and emojis where appropriate.
3. Adapt the tone strictly according to the user's selection.`,
	},
	Poster: {
		ID:          Poster,
		Label:       "海報設計 / Poster",
		Description: "電影、活動或產品宣傳海報。強調視覺衝擊與排版。",
		Icon:        "🪧",
		BaseInstruction: `You are an expert prompt engineer specializing in Graphic Design and Poster Art.
Convert the user's input into a professional poster design prompt in **Traditional Chinese (繁體中文)**.

CRITICAL RULE FOR TEXT: Title, slogans, and credits inside the image must be in **Traditional Chinese (繁體中文)**.

Focus on: Visual hierarchy, typography integration, color psychology, and composition that draws the eye.`,
		SupportsEmbeddedText: true,
		ProducesImage:        true,
	},
	BusinessCard: {
		ID:          BusinessCard,
		Label:       "名片設計 / Business Card",
		Description: "展現個人或品牌形象的專業名片模擬圖。",
		Icon:        "📇",
		BaseInstruction: `You are an expert prompt engineer specializing in Branding and Stationery Mockups.
Convert the user's input into a high-end business card mockup prompt in **Traditional Chinese (繁體中文)**.

CRITICAL RULE FOR TEXT: Name, title, and contact info inside the image must be in **Traditional Chinese (繁體中文)**.

Focus on: Paper texture, embossing, foil stamping, clean layout, and professional presentation (mockup style on a desk or held in hand).`,
		SupportsEmbeddedText: true,
		ProducesImage:        true,
	},
	IDPhoto: {
		ID:          IDPhoto,
		Label:       "證件照 / ID Photo",
		Description: "製作專業證件照。支援單張或4x6排版(8張)，1吋或2吋規格。",
		Icon:        "🆔",
		BaseInstruction: `You are an expert prompt engineer for Nano Banana Pro, specializing in Professional ID Photos and Studio Portraits.
Convert the user's input into a formal studio photography prompt in **Traditional Chinese (繁體中文)**.

CRITICAL RULE: The image must be a standard ID photo suitable for official documents (or a 4x6 sheet of them).
Keywords to include (translate to Chinese): "passport photo", "studio lighting", "solid background", "front facing", "neutral expression" or "slight smile", "professional attire", "high resolution", "sharp focus", "flat lighting".`,
		SupportsEmbeddedText: true,
		ProducesImage:        true,
	},
	Photorealistic: {
		ID:          Photorealistic,
		Label:       "寫實攝影 / Photorealistic",
		Description: "極致逼真的攝影風格，強調光影、質感與相機參數。",
		Icon:        "📸",
		BaseInstruction: `You are an expert prompt engineer for Nano Banana Pro, specializing in Photorealism.
Convert the user's input into a photography-focused prompt in **Traditional Chinese (繁體中文)**.
Include camera specifications (in Chinese context) like: "8k resolution", "shot on 35mm lens", "f/1.8 aperture", "bokeh", "natural lighting", "hyper-realistic", "highly detailed skin texture", "volumetric lighting", "cinematic lighting".`,
		ProducesImage: true,
	},
	Cinematic3D: {
		ID:          Cinematic3D,
		Label:       "3D 電影級渲染 / Cinematic 3D",
		Description: "包含擬真寫實、迪士尼、皮克斯、賽博龐克等 3D 渲染風格。",
		Icon:        "🧊",
		BaseInstruction: `You are an expert prompt engineer for Nano Banana Pro, specializing in 3D Rendering and Cinematic art.
Convert the user's input into a 3D-engine style prompt in **Traditional Chinese (繁體中文)**.

General 3D Keywords to consider (translate to Chinese): "3D render", "Global Illumination", "4k", "masterpiece".

IMPORTANT: The user selects ONE specific 3D sub-style. You must strictly follow the dynamic instructions for that style.
DO NOT mix styles: keywords that belong to any other 3D look must stay out of the prompt.`,
		ProducesImage: true,
	},
	DigitalArt: {
		ID:          DigitalArt,
		Label:       "數位繪畫 / Digital Art",
		Description: "油畫、水彩或現代概念藝術風格。",
		Icon:        "🎨",
		BaseInstruction: `You are an expert prompt engineer for Nano Banana Pro, specializing in Digital Painting.
Convert the user's input into an artistic prompt in **Traditional Chinese (繁體中文)**.
Keywords (translate to Chinese): "digital painting", "concept art", "brush strokes", "highly detailed", "artstation trending", "vibrant colors", "fantasy art" or "sci-fi art", "illustrative style", "smooth gradients".`,
		ProducesImage: true,
	},
	LogoDesign: {
		ID:          LogoDesign,
		Label:       "標誌設計 / Logo Design",
		Description: "簡約、向量風格，適合品牌與圖標設計。",
		Icon:        "💠",
		BaseInstruction: `You are an expert prompt engineer for Nano Banana Pro, specializing in Vector and Logo design.
Convert the user's input into a clean design prompt in **Traditional Chinese (繁體中文)**.
Keywords (translate to Chinese): "vector art", "minimalist", "flat design", "logo", "icon", "white background", "clean lines", "Adobe Illustrator style", "simple geometric shapes", "professional branding".`,
		SupportsEmbeddedText: true,
		ProducesImage:        true,
	},
	PixelArt: {
		ID:          PixelArt,
		Label:       "像素藝術 / Pixel Art",
		Description: "復古遊戲風格，點陣圖藝術。",
		Icon:        "👾",
		BaseInstruction: `You are an expert prompt engineer for Nano Banana Pro, specializing in Pixel Art.
Convert the user's input into a retro game style prompt in **Traditional Chinese (繁體中文)**.
Keywords (translate to Chinese): "pixel art", "16-bit", "retro game aesthetic", "dithering", "isometric view" (if applicable), "vibrant palette", "sprite sheet style", "detailed pixels".`,
		ProducesImage: true,
	},
}
