package prompt

import "fmt"

var stickerCounts = map[string]int{
	"SHEET_8":  8,
	"SHEET_16": 16,
	"SHEET_24": 24,
	"SHEET_32": 32,
	"SHEET_40": 40,
}

var stickerStyle = bulletList("風格指令: LINE 貼圖風格 (LINE Sticker Style)。",
	"圖像比例暗示: 每個貼圖單體的視覺比例約為 370x320 像素 (接近正方形但略寬)。",
	"**NO WHITE BORDER**: 絕對不要白邊 (Negative Prompt: white outline, sticker border, die-cut border)。請生成直接繪製在背景上的角色 (Direct digital art on plain background)。",
	"線條清晰粗獷 (Bold vector lines)，色彩鮮豔。",
	"適合縮小觀看的構圖 (High readability at small size)。",
)

func composeSticker(req Request) sections {
	count := 1
	desc := "單張貼圖 (Single Sticker)"
	if n, ok := stickerCounts[req.Options.Get(OptStickerLayout)]; ok {
		count = n
		desc = fmt.Sprintf("%d張貼圖排列 (Sheet of %d Stickers)", n, n)
	}

	layout := bulletList(fmt.Sprintf("佈局指令: %s。", desc),
		fmt.Sprintf("用戶需要「%d 個不同的角色表情/動作」。", count),
		"排列方式: 若為多張，請生成「角色表情包圖表 (Character Sheet / Sprite Sheet)」，將圖像平均排列在純色背景上。",
		"每個小圖都必須包含一個「繁體中文 (Traditional Chinese)」的對話框或文字特效。",
		"確保每個表情都不一樣 (隨機: 開心、生氣、難過、驚訝、疑惑、大笑等)。",
	)

	return sections{Layout: layout, Style: stickerStyle}
}
