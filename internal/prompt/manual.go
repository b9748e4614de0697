package prompt

const stepLayout = "佈局指令: 確保圖像顯示清晰的步驟流程或爆炸圖 (exploded view)。包含「編號標籤 (1, 2, 3...)」與「指示箭頭」。"

var manualStyles = map[string]sections{
	"CARTOON": {
		Style:  "風格指令: 「IKEA 風格說明書」、「向量線條」、「黑白輪廓」、「簡潔線條」、「卡通圖解」、「極簡主義」。",
		Layout: stepLayout,
	},
	"REALISTIC": {
		Style:  "風格指令: 「寫實產品說明書」、「攝影棚攝影」、「純白背景」、「專業產品拆解圖」、「真實材質」。",
		Layout: stepLayout,
	},
	"GUIDE_MAP": {
		Style:  "風格指令: 「觀光導覽地圖 (Tourist Guide Map)」、「等距視角 (Isometric view)」、「可愛插畫風格」、「地標建築特寫」、「色彩繽紛」。",
		Layout: "佈局指令: 俯視地圖佈局，標示出主要路徑、景點與設施。包含「地標圖示」、「路線指引」。",
	},
	"INFOGRAPHIC": {
		Style:  "風格指令: 「專業資訊圖表 (Infographic)」、「扁平化設計 (Flat Design)」、「數據視覺化」、「向量圖標」、「現代商務風格」。",
		Layout: "佈局指令: 結構化的資訊版面。包含「統計圖表 (Pie chart/Bar chart)」、「流程圖」、「圖標與文字區塊的平衡排列」。",
	},
}

func composeManual(req Request) sections {
	if sec, ok := manualStyles[req.Options.Get(OptManualStyle)]; ok {
		return sec
	}
	return manualStyles["CARTOON"]
}
