package prompt

import "fmt"

var idPhotoStyle = bulletList("風格指令: 「專業證件照風格」。",
	"正面視角 (Front view)，雙耳可見，表情自然或微笑(不露齒)。",
	"攝影棚平面光 (Flat studio lighting)，避免臉部陰影。",
	"服裝得體專業。",
	"高解析度，膚質自然真實。",
)

func idPhotoSizeText(size string) string {
	if size == "1_INCH" {
		return "1吋 (1 Inch)"
	}
	return "2吋 (2 Inch Passport Size)"
}

func composeIDPhoto(req Request) sections {
	size := idPhotoSizeText(req.Options.Get(OptIDSize))

	var layout string
	if req.Options.Get(OptIDLayout) == "SHEET_8" {
		layout = bulletList("佈局指令: 用戶需要一張「4x6英吋相紙排版 (4x6 photo sheet layout)」。",
			"畫面必須顯示「8張完全相同」的證件照，排列成整齊的網格 (例如 2x4 或 4x2)。",
			fmt.Sprintf("每一張小照片都必須符合 %s 的頭身比例。", size),
			"背景必須是純色 (白色、淺藍或紅色)。",
			"確保所有照片一致，適合裁切使用。",
		)
	} else {
		layout = bulletList("佈局指令: 用戶需要一張「單張標準證件照 (Single Standard ID Photo)」。",
			"畫面僅包含一個人的頭像，構圖居中。",
			fmt.Sprintf("符合 %s 的頭身比例 (頭部約佔畫面 70-80%%)。", size),
			"背景純淨無雜物。",
		)
	}

	return sections{Layout: layout, Style: idPhotoStyle}
}
