package prompt

import "nano-banana-prompt/internal/files"

var mangaLayouts = map[string]string{
	"FOUR_PANEL": bulletList("特殊指令: 用戶需要四格漫畫 (Yon-koma)。",
		"生成的提示詞必須包含：「垂直排列的四格漫畫」、「漫畫條」、「四個分鏡」。",
		"簡要描述四個格子的連續劇情。",
	),
	"SIX_PANEL": bulletList("特殊指令: 用戶需要六格漫畫 (Six-panel manga page)。",
		"生成的提示詞必須包含：「標準漫畫頁面佈局」、「六個分鏡」、「故事敘述流暢」。",
		"簡要描述六個格子的連續劇情或動作。",
	),
	"EIGHT_PANEL": bulletList("特殊指令: 用戶需要完整的漫畫頁面 (約8格)。",
		"生成的提示詞必須包含：「漫畫頁面佈局」、「動態分鏡」、「對話框」、「敘事性構圖」。",
	),
	"TEN_PANEL": bulletList("特殊指令: 用戶需要高密度的漫畫頁面 (十格漫畫)。",
		"生成的提示詞必須包含：「複雜的漫畫頁面佈局」、「十個分鏡」、「詳細的故事細節」、「緊湊的節奏」。",
		"確保分鏡清晰，適合展現豐富的劇情資訊。",
	),
	"COVER": bulletList("特殊指令: 用戶需要漫畫單行本封面 (Manga Volume Cover)。",
		"生成的提示詞必須包含：「漫畫封面設計」、「標題Logo設計」、「極具視覺衝擊的主角構圖」、「鮮明的色彩」、「第1卷 (Volume 1) 字樣」。",
		"強調封面的吸引力與商業質感。",
	),
}

const mangaSingleLayout = "特殊指令: 單幅精緻插畫，強調構圖與細節。"

var mangaStyles = map[string]string{
	"JAPANESE": "「日系漫畫風格 (Japanese Manga)」、「細膩的線條」、「豐富的網點 (Screentones)」、「動漫美學」、「Shonen Jump 風格」。",
	"WUXIA":    "「武俠漫畫風格 (Wuxia Manhua)」、「水墨風格 (Ink wash style)」、「飄逸的古裝」、「武術動作」、「東方古典美學」、「蒼勁有力的線條」、「江湖氣息」。",
	"AMERICAN": "「美式漫畫風格 (American Comic Book)」、「粗獷的輪廓線 (Bold outlines)」、「強烈的陰影 (Heavy shadows)」、「超級英雄美學」、「動態透視」、「DC/Marvel 風格」。",
	"KOREAN":   "「韓漫風格 (Korean Webtoon)」、「精緻的數位繪圖 (Digital Art)」、「現代時尚感」、「唯美畫風 (Manhwa aesthetic)」、「鮮明的網漫質感」。",
	"SHOJO":    "「少女漫畫風格 (Shojo Manga)」、「唯美畫風」、「大眼睛」、「細膩的情感表達」、「花朵與夢幻背景」、「柔和的線條」、「浪漫氛圍」。",
	"PIXEL":    "「像素藝術漫畫 (Pixel Art Manga)」、「復古 8-bit/16-bit 風格」、「點陣圖質感」、「懷舊遊戲美學」、「清晰的像素邊緣」。",
	"RAW":      "「原生圖片風格 (Raw Image Style)」、「高保真畫質」、「無濾鏡質感」、「清晰細節」、「原始素材感 (Raw aesthetics)」。",
}

const (
	mangaRawReplica = "「1:1 完全還原參考圖風格 (Exact Replication)」、「與參考圖長得一模一樣」、「保留原始配色與光影」、「高保真畫質」、「無額外風格濾鏡」。"

	mangaColorExact = "色彩指令: 必須與參考圖片的顏色完全一致 (Exact Color Match)。請詳細描述參考圖的色彩配置、色調與飽和度，確保生成的圖片色彩與原圖一模一樣，不要改變原本的顏色。"
	mangaColorFull  = "色彩指令: 使用關鍵字「全彩」、「鮮豔色彩」、「賽璐璐上色」或配合上述風格的色彩（如水墨彩、美漫上色）。不可出現黑白相關詞彙。"
	mangaColorBW    = "色彩指令: 使用關鍵字「黑白漫畫」、「網點紙效果」、「沾水筆觸」、「漫畫原稿風格」。"
)

func composeManga(req Request) sections {
	layout, ok := mangaLayouts[req.Options.Get(OptMangaLayout)]
	if !ok {
		layout = mangaSingleLayout
	}

	style := req.Options.Get(OptMangaStyle)
	// RAW copies the reference when one is attached: style and palette both follow it.
	replicate := style == "RAW" && files.HasImages(req.Files)

	keywords, ok := mangaStyles[style]
	switch {
	case replicate:
		keywords = mangaRawReplica
	case !ok:
		keywords = mangaStyles["JAPANESE"]
	}

	color := mangaColorBW
	switch {
	case replicate:
		color = mangaColorExact
	case req.Options.Get(OptMangaColor) == "COLOR":
		color = mangaColorFull
	}

	return sections{
		Layout: layout,
		Style:  "風格設定: " + keywords + "\n" + color,
	}
}
