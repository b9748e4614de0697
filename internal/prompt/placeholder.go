package prompt

const defaultPlaceholder = "例如：一個未來的賽博龐克城市夜景..."

// Placeholder returns the example input hint shown for the current selection.
func Placeholder(c Category, opts OptionSet) string {
	if opts == nil {
		opts = NewOptionSet()
	}

	switch c {
	case Manga:
		if opts.Get(OptMangaLayout) != "SINGLE" {
			return "例如：起承轉合的故事描述。主角在早上遲到，叼著吐司奔跑，轉角撞到人，結果發現是轉學生..."
		}
		return "例如：一隻在雨中穿著黃色雨衣的柴犬，旁邊有 '下雨了' 的中文對話框..."
	case LineSticker:
		switch opts.Get(OptStickerLayout) {
		case "SINGLE":
			return "例如：一隻可愛的橘貓，表情驚訝，文字是『真的假的？！』..."
		case "SHEET_8":
			return "例如：生成一組 8 張的柴犬表情包，包含開心、生氣、難過等表情..."
		default:
			return "例如：生成一組 多 張的柴犬表情包，包含開心、生氣、難過等表情..."
		}
	case InstructionManual:
		switch opts.Get(OptManualStyle) {
		case "GUIDE_MAP":
			return "例如：台北市動物園的導覽地圖，標示出企鵝館、熊貓館..."
		case "INFOGRAPHIC":
			return "例如：2024年全球咖啡消費量的統計圖表..."
		}
		return "例如：如何組裝一張木製椅子的步驟圖，要有標籤 1, 2, 3..."
	case Advertisement:
		switch opts.Get(OptAdMode) {
		case "HAND_MODEL":
			return "例如：一瓶高級精華液，手部優雅地拿著..."
		case "FULL_MODEL":
			return "例如：一位穿著運動裝的模特兒正在使用智慧手錶..."
		}
		return "例如：一雙限量球鞋展示在台子上..."
	case Poster:
		return "例如：一部關於時空旅行的科幻電影，標題是『未來歸來』，要有神秘的時鐘背景..."
	case BusinessCard:
		return "例如：一位花藝師的名片，上面有『花語工作室』字樣，要有淡雅的花朵插圖..."
	case LogoDesign:
		return "例如：一家咖啡廳的Logo，包含咖啡豆與貓咪的元素..."
	case IDPhoto:
		return "例如：一位穿著深色西裝的亞洲男性，白色背景，表情自信..."
	case Copywriting:
		switch opts.Get(OptCopyMode) {
		case "SOCIAL_MEDIA":
			return "例如：幫我寫一篇關於新開幕的貓咪咖啡廳的IG貼文，要很可愛..."
		case "AD_COPY":
			return "例如：推銷一款降噪耳機的廣告文案，強調專注與寧靜..."
		case "QA_HELPER":
			return "例如：請問如何煮出完美的水波蛋？"
		}
		return "例如：寫一篇關於人工智慧未來發展的短文..."
	case Cinematic3D:
		switch opts.Get(OptCinematicStyle) {
		case "HYPER_REALISTIC":
			return "例如：一個長滿青苔的古老石像特寫，極致真實的紋理..."
		case "DISNEY":
			return "例如：一位穿著藍色禮服的公主在冰雪城堡前唱歌..."
		case "CYBERPUNK":
			return "例如：一位黑客在雨中的霓虹城市奔跑..."
		case "SPIDER_VERSE":
			return "例如：一位穿著帽T的少年在摩天大樓間擺盪，網點風格強烈..."
		}
	}
	return defaultPlaceholder
}
