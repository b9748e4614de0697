package prompt

var posterTypes = map[string]string{
	"MOVIE":   "類型指令: 「電影海報」。強調戲劇性光影、主角特寫、電影標題排版、下方的演職員名單 (Credits)。氣氛要像好萊塢大片。",
	"EVENT":   "類型指令: 「活動宣傳海報」。強調活力、日期與地點的排版設計、吸引目光的圖形元素、鮮明的配色。",
	"PRODUCT": "類型指令: 「商業產品海報」。強調產品質感、商業攝影打光、奢華感或簡約感、誘人的視覺呈現。",
}

func composePoster(req Request) sections {
	style, ok := posterTypes[req.Options.Get(OptPosterType)]
	if !ok {
		style = posterTypes["PRODUCT"]
	}
	return sections{Style: style}
}

var cardTypes = map[string]string{
	"MINIMALIST": "風格指令: 「極簡白風格」。大量的留白、無襯線字體、乾淨、現代感、優雅。",
	"LUXURY":     "風格指令: 「黑金奢華風格」。黑色底、金色字體 (Gold text)、高級質感。",
	"CREATIVE":   "風格指令: 「創意插畫風格」。多彩的圖形設計、藝術感。",
}

const cardLayout = "呈現方式: 必須是「平面設計圖 (Flat Design)」。正視圖 (Top-down view)，純白背景 (或符合設計的單色背景)，無透視變形，適合直接印刷的設計稿。禁止出現桌子、手指或任何樣機 (Mockup) 元素。"

func composeBusinessCard(req Request) sections {
	style, ok := cardTypes[req.Options.Get(OptCardType)]
	if !ok {
		style = cardTypes["CREATIVE"]
	}
	return sections{Layout: cardLayout, Style: style}
}

var logoStyles = map[string]string{
	"LINE_ART":     "風格指令: 「線條藝術」。單色線條、向量風格、乾淨俐落、極簡圖標 (Line Art/Monoline)。",
	"SKETCH":       "風格指令: 「素描風格」。鉛筆筆觸、手繪感、草圖質感、藝術氣息 (Pencil Sketch/Hand drawn)。",
	"ILLUSTRATION": "風格指令: 「插畫風格」。豐富的細節、數位繪畫質感、鮮明的色彩、商業插畫。",
	"CARTOON":      "風格指令: 「卡通風格」。粗輪廓、誇張比例、美式卡通或動漫感、活潑有趣。",
	"3D":           "風格指令: 「3D立體風格」。Blender 渲染、光澤感、立體陰影、現代科技感、蓬鬆材質。",
	"ARTISTIC":     "風格指令: 「藝術風格」。抽象圖形、水彩或油畫質感、獨特的視覺衝擊、創意構圖。",
	"CUTE":         "風格指令: 「可愛風格 (Kawaii)」。圓潤線條、Q版吉祥物、粉嫩色彩、親和力強。",
}

const (
	logoFallback = "風格指令: 「簡約向量」。"
	logoLayout   = "佈局指令: 主體標誌位於正中央，背景乾淨(通常為白色或單色)，確保Logo清晰可辨。"
)

func composeLogo(req Request) sections {
	style, ok := logoStyles[req.Options.Get(OptLogoStyle)]
	if !ok {
		style = logoFallback
	}
	return sections{Layout: logoLayout, Style: style}
}
