package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nano-banana-prompt/internal/credentials"
	"nano-banana-prompt/internal/files"
	"nano-banana-prompt/internal/prompt"
	"nano-banana-prompt/internal/session"
)

const callbackPrefix = "nb"

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.From == nil {
		return nil
	}
	ownerID, action, args, ok := parseCallback(q.Data)
	if !ok {
		return nil
	}
	if ownerID != q.From.ID || !h.allowed(q.From.ID) {
		_ = h.tg.AnswerCallback(ctx, q.ID, "此選單不屬於您。", true)
		return nil
	}

	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID
	ctrl := h.sessions.Get(ownerID)

	answer := ""
	alert := false
	h.menus.Update(chatID, ownerID, func(st *menuState) { st.MessageID = msgID })

	switch action {
	case "menu":
		if len(args) >= 1 {
			h.menus.Update(chatID, ownerID, func(st *menuState) { st.Menu = menuName(args[0]) })
		}
	case "cat":
		if len(args) >= 1 {
			cat, err := prompt.ParseCategory(args[0])
			if err == nil {
				err = ctrl.SelectCategory(cat)
			}
			if err != nil {
				answer, alert = "未知的類別。", true
				break
			}
			h.menus.Update(chatID, ownerID, func(st *menuState) { st.Menu = menuMain })
		}
	case "pick":
		if len(args) >= 1 {
			h.menus.Update(chatID, ownerID, func(st *menuState) {
				st.Menu = menuChoices
				st.Option = args[0]
			})
		}
	case "opt":
		if len(args) >= 2 {
			if err := setOptionByIndex(ctrl, args[0], args[1]); err != nil {
				answer, alert = "無效的選項。", true
				break
			}
			h.menus.Update(chatID, ownerID, func(st *menuState) { st.Menu = menuOptions })
		}
	case "ratio":
		if len(args) >= 1 {
			// "16:9" arrives split on the separator.
			if err := ctrl.SetAspectRatio(strings.Join(args, ":")); err != nil {
				answer, alert = "無效的比例。", true
				break
			}
			h.menus.Update(chatID, ownerID, func(st *menuState) { st.Menu = menuMain })
		}
	case "rm":
		if len(args) >= 1 && !ctrl.RemoveFile(args[0]) {
			answer = "檔案已不存在。"
		}
	case "clearfiles":
		ctrl.ClearFiles()
		h.menus.Update(chatID, ownerID, func(st *menuState) { st.Menu = menuMain })
	case "edit":
		h.menus.Update(chatID, ownerID, func(st *menuState) { st.Awaiting = awaitPrompt })
		_ = h.tg.AnswerCallback(ctx, q.ID, "請傳送新的提示詞。", false)
		current := strings.TrimSpace(ctrl.Snapshot().EnhancedPrompt)
		if current == "" {
			current = "(目前沒有提示詞)"
		}
		return h.tg.SendText(ctx, chatID, "✏️ 請傳送修改後的提示詞 (取消: /cancel)。目前內容:\n\n"+current)
	case "key":
		h.menus.Update(chatID, ownerID, func(st *menuState) { st.Awaiting = awaitKey })
		_ = h.tg.AnswerCallback(ctx, q.ID, "請傳送 API Key。", false)
		return h.tg.SendText(ctx, chatID, "🔑 請傳送您的 Gemini API Key (取消: /cancel)。")
	case "prompt":
		_ = h.tg.AnswerCallback(ctx, q.ID, "", false)
		text := strings.TrimSpace(ctrl.Snapshot().EnhancedPrompt)
		if text == "" {
			return h.tg.SendText(ctx, chatID, "✨ 請先生成提示詞。")
		}
		return h.tg.SendText(ctx, chatID, text)
	case "refine":
		_ = h.tg.AnswerCallback(ctx, q.ID, "生成中…", false)
		return h.refine(ctx, chatID, ownerID)
	case "describe":
		_ = h.tg.AnswerCallback(ctx, q.ID, "分析中…", false)
		return h.describe(ctx, chatID, ownerID)
	case "render":
		_ = h.tg.AnswerCallback(ctx, q.ID, "繪製中…", false)
		return h.render(ctx, chatID, ownerID)
	case "reset":
		ctrl.Reset()
		h.menus.Update(chatID, ownerID, func(st *menuState) {
			st.Menu = menuMain
			st.Awaiting = awaitNone
		})
	case "close":
		h.menus.Update(chatID, ownerID, func(st *menuState) {
			st.Menu = menuMain
			st.Awaiting = awaitNone
		})
		_ = h.tg.AnswerCallback(ctx, q.ID, "", false)
		return h.tg.DeleteMessage(ctx, chatID, msgID)
	}

	_ = h.tg.AnswerCallback(ctx, q.ID, answer, alert)
	return h.renderMenu(ctx, chatID, ownerID, msgID, true)
}

func parseCallback(data string) (ownerID int64, action string, args []string, ok bool) {
	parts := strings.Split(strings.TrimSpace(data), ":")
	if len(parts) < 3 || parts[0] != callbackPrefix {
		return 0, "", nil, false
	}
	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", nil, false
	}
	return ownerID, parts[2], parts[3:], true
}

// Choice values travel as indexes to stay under Telegram's 64-byte callback limit.
func setOptionByIndex(ctrl *session.Controller, key, index string) error {
	opt, ok := prompt.LookupOption(prompt.OptionKey(key))
	if !ok {
		return prompt.ErrUnknownOption
	}
	i, err := strconv.Atoi(index)
	if err != nil || i < 0 || i >= len(opt.Choices) {
		return prompt.ErrInvalidValue
	}
	return ctrl.SetOption(opt.Key, opt.Choices[i].Key)
}

func (h *Handler) renderMenu(ctx context.Context, chatID, userID int64, messageID int, edit bool) error {
	st := h.menus.Get(chatID, userID)
	if messageID == 0 {
		messageID = st.MessageID
	}

	snap := h.sessions.Get(userID).Snapshot()
	text := menuText(snap, h.keys.Masked())
	kb := menuKeyboard(userID, st, snap)

	if edit && messageID != 0 {
		if err := h.tg.EditTextWithKeyboard(ctx, chatID, messageID, text, kb); err == nil {
			return nil
		}
	}

	msgID, err := h.tg.SendTextWithKeyboard(ctx, chatID, text, kb)
	if err != nil {
		return err
	}
	h.menus.Update(chatID, userID, func(st *menuState) { st.MessageID = msgID })
	return nil
}

func menuText(s session.Session, maskedKey string) string {
	details, _ := prompt.Lookup(s.Category)

	var b strings.Builder
	b.WriteString("🍌 Nano Banana Pro 提示詞工作室\n\n")
	b.WriteString(fmt.Sprintf("類別: %s %s\n", details.Icon, details.Label))
	for _, opt := range prompt.OptionsFor(s.Category) {
		if !opt.Visible(s.Options) {
			continue
		}
		b.WriteString(fmt.Sprintf("%s: %s\n", opt.Label, opt.ChoiceName(s.Options.Get(opt.Key))))
	}
	if details.ProducesImage {
		b.WriteString("比例: " + s.AspectRatio.Description() + "\n")
	}
	b.WriteString(fmt.Sprintf("檔案: %d\n", len(s.Files)))
	for _, f := range s.Files {
		b.WriteString("  • " + truncateLine(f.Name, 40) + "\n")
	}

	if strings.TrimSpace(s.UserText) == "" {
		b.WriteString("描述: (未輸入)\n")
		b.WriteString("💡 " + prompt.Placeholder(s.Category, s.Options) + "\n")
	} else {
		b.WriteString("描述: " + truncateLine(s.UserText, 120) + "\n")
	}

	keyLine := "未設定 ❌"
	if s.KeyReady {
		keyLine = maskedKey + " ✅"
	}
	b.WriteString("API Key: " + keyLine + "\n")

	switch s.Status {
	case session.StatusRefining:
		b.WriteString("\n⏳ 正在生成提示詞…\n")
	case session.StatusRendering:
		b.WriteString("\n⏳ 正在繪製圖片…\n")
	case session.StatusSuccess:
		b.WriteString("\n✅ 圖片已生成。\n")
	case session.StatusError:
		b.WriteString("\n❌ " + s.ErrorMessage + "\n")
	}

	if strings.TrimSpace(s.EnhancedPrompt) != "" {
		b.WriteString("\n✨ 提示詞:\n" + truncateLine(s.EnhancedPrompt, 400) + "\n")
	}

	return strings.TrimSpace(b.String())
}

func menuKeyboard(ownerID int64, st menuState, s session.Session) tgbotapi.InlineKeyboardMarkup {
	switch st.Menu {
	case menuCategory:
		return categoryKeyboard(ownerID, s)
	case menuOptions:
		return optionsKeyboard(ownerID, s)
	case menuChoices:
		return choicesKeyboard(ownerID, st.Option, s)
	case menuRatio:
		return ratioKeyboard(ownerID, s)
	case menuFiles:
		return filesKeyboard(ownerID, s)
	default:
		return mainKeyboard(ownerID, s)
	}
}

func mainKeyboard(ownerID int64, s session.Session) tgbotapi.InlineKeyboardMarkup {
	details, _ := prompt.Lookup(s.Category)

	first := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("🎨 類別", cb(ownerID, "menu", string(menuCategory))),
	}
	if len(prompt.OptionsFor(s.Category)) > 0 {
		first = append(first, tgbotapi.NewInlineKeyboardButtonData("⚙️ 選項", cb(ownerID, "menu", string(menuOptions))))
	}

	second := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("📎 檔案 (%d)", len(s.Files)), cb(ownerID, "menu", string(menuFiles))),
	}
	if details.ProducesImage {
		second = append([]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("📐 "+string(s.AspectRatio), cb(ownerID, "menu", string(menuRatio))),
		}, second...)
	}

	refineLabel := "✨ 生成提示詞"
	if !details.ProducesImage {
		refineLabel = "✨ 生成文案"
	}
	actions := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(refineLabel, cb(ownerID, "refine")),
	}
	if files.HasImages(s.Files) {
		actions = append(actions, tgbotapi.NewInlineKeyboardButtonData("🔍 圖片轉提示詞", cb(ownerID, "describe")))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{first, second, actions}

	if strings.TrimSpace(s.EnhancedPrompt) != "" {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("📄 提示詞", cb(ownerID, "prompt")),
			tgbotapi.NewInlineKeyboardButtonData("✏️ 編輯", cb(ownerID, "edit")),
		}
		if details.ProducesImage {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("🖼 生成圖片", cb(ownerID, "render")))
		}
		rows = append(rows, row)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("🔑 API Key", cb(ownerID, "key")),
		tgbotapi.NewInlineKeyboardButtonData("重設", cb(ownerID, "reset")),
		tgbotapi.NewInlineKeyboardButtonData("關閉", cb(ownerID, "close")),
	})

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func categoryKeyboard(ownerID int64, s session.Session) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, c := range prompt.Categories() {
		label := c.Icon + " " + c.Label
		if c.ID == s.Category {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "cat", c.ID.String())))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, backRow(ownerID, menuMain))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func optionsKeyboard(ownerID int64, s session.Session) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, opt := range prompt.OptionsFor(s.Category) {
		if !opt.Visible(s.Options) {
			continue
		}
		label := fmt.Sprintf("%s: %s", opt.Label, opt.ChoiceName(s.Options.Get(opt.Key)))
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "pick", string(opt.Key))),
		})
	}
	rows = append(rows, backRow(ownerID, menuMain))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func choicesKeyboard(ownerID int64, key string, s session.Session) tgbotapi.InlineKeyboardMarkup {
	opt, ok := prompt.LookupOption(prompt.OptionKey(key))
	if !ok {
		return optionsKeyboard(ownerID, s)
	}

	current := s.Options.Get(opt.Key)
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, c := range opt.Choices {
		label := c.Name
		if c.Key == current {
			label = "✅ " + label
		}
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "opt", string(opt.Key), strconv.Itoa(i))),
		})
	}
	rows = append(rows, backRow(ownerID, menuOptions))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func ratioKeyboard(ownerID int64, s session.Session) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, r := range prompt.AspectRatios() {
		label := r.Name
		if r.Key == string(s.AspectRatio) {
			label = "✅ " + label
		}
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "ratio", r.Key)),
		})
	}
	rows = append(rows, backRow(ownerID, menuMain))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func filesKeyboard(ownerID int64, s session.Session) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, f := range s.Files {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+truncateLine(f.Name, 30), cb(ownerID, "rm", f.ID)),
		})
	}
	last := backRow(ownerID, menuMain)
	if len(s.Files) > 0 {
		last = append([]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("全部移除", cb(ownerID, "clearfiles")),
		}, last...)
	}
	rows = append(rows, last)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func backRow(ownerID int64, to menuName) []tgbotapi.InlineKeyboardButton {
	return []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅ 返回", cb(ownerID, "menu", string(to))),
	}
}

func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", callbackPrefix, ownerID, strings.Join(parts, ":"))
}

func truncateLine(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}

var _ KeyManager = (*credentials.Store)(nil)
