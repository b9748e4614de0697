package prompt

import "fmt"

var adPodiums = map[string]string{
	"WOODEN":         "質感木紋展示台 (Wooden Podium)",
	"SILK":           "絲綢布料 (Silk Fabric surface)",
	"WHITE_PLATFORM": "極簡白色平台 (Minimalist White Platform)",
}

var adModels = map[string]string{
	"MALE":       "男性模特兒",
	"FEMALE":     "女性模特兒",
	"CHILD_BOY":  "男童模特兒",
	"CHILD_GIRL": "女童模特兒",
}

// composeAdvertisement resolves the shoot mode first; each mode reads only its own sub-options.
func composeAdvertisement(req Request) sections {
	var mode string
	switch req.Options.Get(OptAdMode) {
	case "HAND_MODEL":
		mode = adHandMode(req.Options)
	case "FULL_MODEL":
		mode = adModelMode(req.Options)
	default:
		mode = adPodiumMode(req.Options)
	}

	style := "風格指令: 「4K 商業廣告攝影 (Commercial Photography)」。\n" +
		mode + "\n" +
		`關鍵字: "Product photography", "High resolution", "Masterpiece", "Ad campaign", "Professional lighting".`
	return sections{Style: style}
}

func adHandMode(opts OptionSet) string {
	hand := "女性手部 (Female Hand)"
	if opts.Get(OptAdHand) == "MALE_HAND" {
		hand = "男性手部 (Male Hand)"
	}
	return bulletList("拍攝模式: 「手部特寫展示 (Hand Model Closeup)」。",
		fmt.Sprintf("畫面重點是%s優雅地拿著或展示產品。", hand),
		"膚質必須極度真實細膩 (High-end skincare texture)。",
		"手勢自然、專業 (Professional hand posing)。",
		"淺景深 (Depth of field)，背景模糊以突出產品。",
	)
}

func adModelMode(opts OptionSet) string {
	region := "亞洲 (Asian)"
	if opts.Get(OptAdRegion) == "EUROPEAN" {
		region = "歐洲 (European/Caucasian)"
	}
	model, ok := adModels[opts.Get(OptAdModel)]
	if !ok {
		model = adModels["FEMALE"]
	}
	return bulletList("拍攝模式: 「模特兒情境展示 (Fashion/Lifestyle Model)」。",
		fmt.Sprintf("主角是一位%s %s。", region, model),
		"模特兒與產品進行互動 (使用中、展示中)。",
		"服裝與造型必須符合產品調性 (例如高科技產品配現代服飾，保養品配居家或清新服飾)。",
		"眼神與表情要有商業攝影的質感 (Commercial look)。",
	)
}

func adPodiumMode(opts OptionSet) string {
	podium, ok := adPodiums[opts.Get(OptAdPodium)]
	if !ok {
		podium = adPodiums["WHITE_PLATFORM"]
	}
	return bulletList("拍攝模式: 「靜物展示台 (Product Podium Shot)」。",
		fmt.Sprintf("產品置於%s之上。", podium),
		"使用專業打光 (Rim lighting, Softbox)。",
		"構圖講究幾何平衡與空間感。",
		"背景乾淨高雅，襯托產品價值。",
	)
}
