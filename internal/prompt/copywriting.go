package prompt

var copyTones = map[string]string{
	"PROFESSIONAL": "專業、權威、值得信賴 (Professional & Trustworthy)",
	"HUMOROUS":     "幽默、風趣、輕鬆 (Humorous & Witty)",
	"EMOTIONAL":    "感性、溫暖、打動人心 (Emotional & Touching)",
	"DIRECT":       "直接、有力、急迫感 (Direct & Urgent)",
}

var copyModes = map[string]string{
	"SOCIAL_MEDIA": "Task: Write a Social Media Post (FB/IG/Threads).\nRequirements: Use emojis, hashtags, and a conversational structure. Aim for high engagement.",
	"AD_COPY":      "Task: Write Advertising Copy (Google Ads/FB Ads).\nRequirements: Focus on Hook, Pain Points, Solution, and Call to Action (CTA). Short and punchy.",
	"ARTICLE":      "Task: Write a Short SEO Article or Blog Post.\nRequirements: Structured with H1/H2, clear paragraphs, and informative content.",
	"QA_HELPER":    "Task: General Q&A / Brainstorming.\nRequirements: Answer the user's question clearly, solve their problem, or provide ideas.",
}

const copyClosing = "Generate the content directly in Traditional Chinese. Do NOT generate an image prompt."

// composeCopywriting produces text, not an image prompt, so it only sets Style.
func composeCopywriting(req Request) sections {
	mode, ok := copyModes[req.Options.Get(OptCopyMode)]
	if !ok {
		mode = copyModes["QA_HELPER"]
	}
	tone, ok := copyTones[req.Options.Get(OptCopyTone)]
	if !ok {
		tone = copyTones["PROFESSIONAL"]
	}

	return sections{
		Style: "**MODE**: " + mode + "\n**TONE**: " + tone + "\n\n" + copyClosing,
	}
}
