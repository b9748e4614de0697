package prompt

import (
	"errors"
	"fmt"
	"strings"

	"nano-banana-prompt/internal/files"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownOption   = errors.New("unknown option")
	ErrInvalidValue    = errors.New("invalid option value")
	ErrEmptyInput      = errors.New("no user text and no files")
)

const (
	// OutputLanguageDirective is the language every category asks the model to write in.
	OutputLanguageDirective = "Traditional Chinese (繁體中文)"
	// EmbeddedTextDirective asks the image model to render text in the target script.
	EmbeddedTextDirective = "文字內容為繁體中文"
	// AttachmentPlaceholder stands in for empty user text when files are attached.
	AttachmentPlaceholder = "請參考附檔內容"

	contextPreamble = "Reference Context: Please analyze the attached files above and use them to guide the generation based on the user's request below."
)

type Request struct {
	Category    Category
	Options     OptionSet
	AspectRatio AspectRatio
	Files       []files.UploadedFile
	UserText    string
}

// HasInput is the guard callers check before composing.
func HasInput(userText string, attached []files.UploadedFile) bool {
	return strings.TrimSpace(userText) != "" || len(attached) > 0
}

type InlineData struct {
	MIMEType string
	// Data is base64 without a data URI header.
	Data string
}

// Part is one content unit: text, or an inlined file.
type Part struct {
	Text       string
	InlineData *InlineData
}

type Composed struct {
	SystemInstruction string
	Parts             []Part
}

// sections is what a category handler contributes on top of the base template.
type sections struct {
	Layout string
	Style  string
}

type handler func(Request) sections

var registry = [numCategories]handler{
	Manga:             composeManga,
	LineSticker:       composeSticker,
	InstructionManual: composeManual,
	Advertisement:     composeAdvertisement,
	Copywriting:       composeCopywriting,
	Poster:            composePoster,
	BusinessCard:      composeBusinessCard,
	IDPhoto:           composeIDPhoto,
	Photorealistic:    composeBaseOnly,
	Cinematic3D:       composeCinematic,
	DigitalArt:        composeBaseOnly,
	LogoDesign:        composeLogo,
	PixelArt:          composeBaseOnly,
}

func init() {
	for c, h := range registry {
		if h == nil {
			panic(fmt.Sprintf("prompt: no handler registered for %s", Category(c)))
		}
	}
}

// Compose builds the system instruction and ordered content parts for the text model.
// It performs no input validation beyond the category; see HasInput.
func Compose(req Request) (Composed, error) {
	details, ok := Lookup(req.Category)
	if !ok {
		return Composed{}, fmt.Errorf("%w: %d", ErrUnknownCategory, int(req.Category))
	}
	if req.Options == nil {
		req.Options = NewOptionSet()
	}
	if !req.AspectRatio.Valid() {
		req.AspectRatio = DefaultAspectRatio
	}

	sec := registry[req.Category](req)

	var b strings.Builder
	b.Grow(4096)
	b.WriteString(details.BaseInstruction)

	if !details.ProducesImage {
		writeBlock(&b, sec.Style)
		return Composed{
			SystemInstruction: strings.TrimSpace(b.String()),
			Parts:             buildParts(req.Files, req.UserText),
		}, nil
	}

	writeBlock(&b, sec.Layout)
	writeBlock(&b, sec.Style)
	writeBlock(&b, aspectRatioDirective(req.AspectRatio))
	writeBlock(&b, outputRules(details, len(req.Files) > 0))

	return Composed{
		SystemInstruction: strings.TrimSpace(b.String()),
		Parts:             buildParts(req.Files, req.UserText),
	}, nil
}

func aspectRatioDirective(r AspectRatio) string {
	return fmt.Sprintf("構圖比例指令: 此圖像的畫布比例為 %s (%s)。請確保生成的提示詞描述符合此比例的構圖特徵。%s",
		r, r.Description(), r.compositionHint())
}

func outputRules(details CategoryDetails, hasFiles bool) string {
	rules := []string{
		"Return ONLY the optimized **" + OutputLanguageDirective + "** prompt text.",
		"Do not add explanations or conversational filler.",
		"The prompt should be comma-separated descriptive phrases in Chinese.",
	}
	if details.SupportsEmbeddedText {
		rules = append(rules, `**CRITICAL**: Include the phrase "`+EmbeddedTextDirective+`" or "Chinese characters" in the prompt to ensure the image model generates Chinese text where applicable.`)
	}
	rules = append(rules, "Translate all technical terms (like 'cinematic lighting', '8k', 'unreal engine') into professional Traditional Chinese terms (e.g., '電影級打光', '8k 解析度', '虛幻引擎渲染').")
	if hasFiles {
		rules = append(rules, "**CONTEXT ANALYSIS**: Context files are provided. Analyze their content (images, text, or documents) and use them to guide the generation based on the user's request below.")
	}

	var b strings.Builder
	b.WriteString("IMPORTANT OUTPUT RULES:\n")
	for i, r := range rules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r)
	}
	return b.String()
}

// buildParts keeps files first, in upload order, then the user text.
func buildParts(attached []files.UploadedFile, userText string) []Part {
	parts := make([]Part, 0, len(attached)+1)
	for _, f := range attached {
		if f.Kind == files.KindText {
			parts = append(parts, Part{Text: fmt.Sprintf("[Attached File: %s]\n%s\n[End of File]", f.Name, f.Data)})
			continue
		}
		parts = append(parts, Part{InlineData: &InlineData{
			MIMEType: f.MIMEType,
			Data:     f.Payload(),
		}})
	}

	input := userText
	if len(attached) == 0 {
		return append(parts, Part{Text: input})
	}
	if strings.TrimSpace(input) == "" {
		input = AttachmentPlaceholder
	}
	return append(parts, Part{Text: contextPreamble + "\n\nUser Input: " + input})
}

func writeBlock(b *strings.Builder, block string) {
	block = strings.TrimSpace(block)
	if block == "" {
		return
	}
	b.WriteString("\n\n")
	b.WriteString(block)
}

// bulletList numbers lines the way the category directives are written.
func bulletList(header string, lines ...string) string {
	var b strings.Builder
	b.WriteString(header)
	for i, line := range lines {
		fmt.Fprintf(&b, "\n%d. %s", i+1, line)
	}
	return b.String()
}

func composeBaseOnly(Request) sections { return sections{} }
