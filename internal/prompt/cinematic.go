package prompt

import (
	"fmt"
	"strings"
)

type cinematicStyle struct {
	Title    string
	Guide    string
	Keywords []string
	Avoid    []string
}

// Keyword bundles are disjoint: no style names another style's keywords,
// including in its Avoid list.
var cinematicStyles = map[string]cinematicStyle{
	"HYPER_REALISTIC": {
		Title:    "極致寫實風格 (Hyper-realistic / Photorealistic CGI)",
		Guide:    "追求照片級真實感，毛孔、紋理、光影瑕疵。",
		Keywords: []string{"Hyper-realistic", "Unreal Engine 5", "8k textures", "Ray tracing", "Subsurface scattering (SSS)", "Physically based lighting", "Shot on 35mm", "Imperfections", "Highly detailed skin pores"},
		Avoid:    []string{"cartoon", "stylized", "anime", "painting", "drawing"},
	},
	"DISNEY": {
		Title:    "迪士尼動畫風格 (Disney Animation Style)",
		Guide:    "現代迪士尼動畫電影質感，大眼角色，柔美光影。",
		Keywords: []string{"Disney animation style", "Soft storybook shading", "Character appeal", "Volumetric lighting", "Magical atmosphere", "Frozen style", "Tangled style", "Expressive faces"},
		Avoid:    []string{"photographic", "gritty", "dark", "horror"},
	},
	"PIXAR": {
		Title:    "皮克斯風格 (Pixar Style)",
		Guide:    "獨特的形狀語言，風格化的寫實材質。",
		Keywords: []string{"Pixar style", "RenderMan", "Stylized realism", "Soft shadows", "Vibrant textures", "Cinema 4D", "Octane render", "Toy Story aesthetic", "Soul aesthetic"},
		Avoid:    []string{"photographic realism", "anime", "2D", "sketch"},
	},
	"CYBERPUNK": {
		Title:    "賽博龐克 (Cyberpunk)",
		Guide:    "科幻、霓虹、高科技低生活。",
		Keywords: []string{"Cyberpunk 2077 style", "Neon lights (Cyan and Magenta)", "Rainy night", "Futuristic city", "Chrome reflections", "Holographic", "High tech low life"},
		Avoid:    []string{"cute", "pastel colors", "rustic", "daylight"},
	},
	"WASTELAND": {
		Title:    "廢土/末日風格 (Wasteland / Dystopian)",
		Guide:    "破敗、荒涼、生鏽金屬、塵土飛揚。",
		Keywords: []string{"Post-apocalyptic", "Mad Max style", "Wasteland", "Rusty metal", "Dust and sand", "Ruined buildings", "Desaturated earthy tones", "Harsh sunlight", "Gritty texture", "Survival gear"},
		Avoid:    []string{"clean", "shiny", "cute", "vibrant", "neon"},
	},
	"DARK_FANTASY": {
		Title:    "暗黑幻想 (Dark Fantasy)",
		Guide:    "哥德式、詭異、壓抑、神秘。",
		Keywords: []string{"Dark Fantasy", "Elden Ring style", "Diablo style", "Gothic architecture", "Eldritch horror", "Moody atmosphere", "Low key lighting", "Fog and mist", "Intricate armor", "Mystical glow"},
		Avoid:    []string{"happy", "bright", "cartoon", "cute", "modern"},
	},
	"SPIDER_VERSE": {
		Title:    `美漫/網點風格 (The "Spider-Verse" Style)`,
		Guide:    "故意降低幀數（抽幀）模仿真實動畫感，使用漫畫網點（Halftone），對話框，色彩錯位（Chromatic Aberration）。",
		Keywords: []string{"Spider-Verse style", "Into the Spider-Verse", "Halftone dots", "Ben-Day dots", "Chromatic aberration", "Comic book aesthetic in 3D", "Low frame rate feel", "Graffiti texture", "Vibrant neon colors", "Action lines", "Speech bubbles"},
		Avoid:    []string{"smooth", "photographic", "clean", "minimalist"},
	},
	"PAINTERLY": {
		Title:    "油畫/塗抹風格 (Painterly Style)",
		Guide:    "保留筆觸感，材質上有手繪的紋理，光影邊緣更加銳利或帶有繪畫的隨意感。",
		Keywords: []string{"Painterly 3D", "Arcane style", "Hand-painted textures", "Visible brushstrokes", "Oil painting aesthetic", "Sharp lighting edges", "Matte painting look", "Artistic shading", "Concept art style"},
		Avoid:    []string{"photographic", "smooth plastic", "noise", "granite"},
	},
	"CEL_SHADED": {
		Title:    "日式賽璐珞風格 (Cel-Shading)",
		Guide:    "模仿日本 2D 動畫，有明顯的色塊邊緣線（Outline）和硬陰影。",
		Keywords: []string{"Cel-shading", "Toon shading", "Anime style 3D", "Genshin Impact style", "Guilty Gear style", "Hard outlines", "Flat colors", "2.5D aesthetic", "Japanese animation look", "Clean lines", "Vibrant anime colors"},
		Avoid:    []string{"photographic", "soft shading", "oil paint", "western cartoon"},
	},
}

const cinematicFallback = `風格: 「3D 電影級渲染」。關鍵字: "3D render", "Global Illumination", "4k".`

const cinematicExclusion = `CRITICAL INSTRUCTION:
Strictly adhere to the **SELECTED STYLE** defined above.
Do NOT mix keywords from other 3D styles.
Use only the required keywords listed for the selected style; leave out every keyword that belongs to a different 3D aesthetic unless the user explicitly requests it.
Ensure the prompt reflects ONLY the chosen aesthetic description.`

func composeCinematic(req Request) sections {
	style, ok := cinematicStyles[req.Options.Get(OptCinematicStyle)]
	if !ok {
		return sections{Style: cinematicFallback + "\n\n" + cinematicExclusion}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**SELECTED STYLE**: %s.\n", style.Title)
	fmt.Fprintf(&b, "指引: %s\n", style.Guide)
	fmt.Fprintf(&b, "必填關鍵字: %s.\n", quoteList(style.Keywords))
	fmt.Fprintf(&b, "禁語 (Negative Constraint): Do NOT use %s.\n\n", quoteList(style.Avoid))
	b.WriteString(cinematicExclusion)

	return sections{Style: b.String()}
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = `"` + item + `"`
	}
	return strings.Join(quoted, ", ")
}
