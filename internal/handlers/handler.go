package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"nano-banana-prompt/internal/files"
	"nano-banana-prompt/internal/mediagroup"
	"nano-banana-prompt/internal/prompt"
	"nano-banana-prompt/internal/session"
	"nano-banana-prompt/internal/telegram"
)

// Messenger is the part of the Telegram client the handlers use.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendTextWithKeyboard(ctx context.Context, chatID int64, text string, kb telegram.InlineKeyboard) (int, error)
	EditTextWithKeyboard(ctx context.Context, chatID int64, messageID int, text string, kb telegram.InlineKeyboard) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
	SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error
	SendTyping(ctx context.Context, chatID int64)
	SendUploading(ctx context.Context, chatID int64)
	DownloadFile(ctx context.Context, fileID, declaredMime string) ([]byte, string, error)
}

// KeyManager stores the Gemini API key entered through the bot.
type KeyManager interface {
	Save(key string) error
	Clear() error
	Ready() bool
	Masked() string
}

type Options struct {
	Telegram Messenger
	Sessions *session.Store
	Keys     KeyManager
	// OwnerID restricts the bot to one Telegram user; 0 allows everyone.
	OwnerID int64
	Logger  *slog.Logger
	Now     func() time.Time
}

type Handler struct {
	tg         Messenger
	sessions   *session.Store
	keys       KeyManager
	ownerID    int64
	logger     *slog.Logger
	now        func() time.Time
	menus      *menuStore
	aggregator *mediagroup.Aggregator
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Handler{
		tg:       opts.Telegram,
		sessions: opts.Sessions,
		keys:     opts.Keys,
		ownerID:  opts.OwnerID,
		logger:   logger,
		now:      now,
		menus:    newMenuStore(),
	}
}

func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if !h.allowed(userID) {
		return h.tg.SendText(ctx, chatID, "⛔ 此機器人僅限擁有者使用。")
	}

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, msg)
	}

	if refs := fileRefs(msg); len(refs) > 0 {
		return h.handleFiles(ctx, chatID, userID, msg, refs)
	}

	if strings.TrimSpace(msg.Text) != "" {
		return h.handleText(ctx, chatID, userID, msg)
	}

	return nil
}

func (h *Handler) HandleMediaGroup(ctx context.Context, group mediagroup.Group) {
	if !h.allowed(group.UserID) {
		return
	}
	if err := h.attachFiles(ctx, group.ChatID, group.UserID, group.Caption, group.Files); err != nil {
		h.logger.Error("media group processing failed", "err", err)
	}
}

// PruneMenus forgets inline menus idle for longer than maxAge.
func (h *Handler) PruneMenus(maxAge time.Duration) int {
	return h.menus.Prune(h.now().Add(-maxAge))
}

func (h *Handler) allowed(userID int64) bool {
	return h.ownerID == 0 || userID == h.ownerID
}

func (h *Handler) handleCommand(ctx context.Context, chatID, userID int64, msg *tgbotapi.Message) error {
	ctrl := h.sessions.Get(userID)

	switch msg.Command() {
	case "start", "menu":
		h.menus.Update(chatID, userID, func(st *menuState) {
			st.Menu = menuMain
			st.Awaiting = awaitNone
		})
		return h.renderMenu(ctx, chatID, userID, 0, false)
	case "help":
		return h.tg.SendText(ctx, chatID, helpText)
	case "key":
		key := strings.TrimSpace(msg.CommandArguments())
		_ = h.tg.DeleteMessage(ctx, chatID, msg.MessageID)
		if key == "" {
			h.menus.Update(chatID, userID, func(st *menuState) { st.Awaiting = awaitKey })
			return h.tg.SendText(ctx, chatID, "🔑 請傳送您的 Gemini API Key (取消: /cancel)。")
		}
		return h.saveKey(ctx, chatID, userID, key)
	case "clearkey":
		if err := h.keys.Clear(); err != nil {
			h.logger.Error("clear api key failed", "err", err)
			return h.tg.SendText(ctx, chatID, "❌ 無法清除 API Key。")
		}
		h.broadcastKeyReady()
		return h.tg.SendText(ctx, chatID, "🗑 已清除儲存的 API Key。")
	case "cancel":
		h.menus.Update(chatID, userID, func(st *menuState) { st.Awaiting = awaitNone })
		return h.tg.SendText(ctx, chatID, "已取消。")
	case "reset":
		ctrl.Reset()
		h.menus.Update(chatID, userID, func(st *menuState) {
			st.Menu = menuMain
			st.Awaiting = awaitNone
		})
		_ = h.tg.SendText(ctx, chatID, "♻️ 已重設所有設定與檔案。")
		return h.renderMenu(ctx, chatID, userID, 0, false)
	case "prompt", "refine":
		if text := strings.TrimSpace(msg.CommandArguments()); text != "" {
			ctrl.SetUserText(text)
		}
		return h.refine(ctx, chatID, userID)
	case "describe":
		return h.describe(ctx, chatID, userID)
	case "render":
		return h.render(ctx, chatID, userID)
	default:
		return h.tg.SendText(ctx, chatID, "❓ 未知的指令，請使用 /help。")
	}
}

const helpText = "🍌 Nano Banana Pro 提示詞工作室\n\n" +
	"1. 在選單中選擇類別與選項。\n" +
	"2. 傳送文字描述，或上傳圖片 / 文字檔 / PDF。\n" +
	"3. 按「✨ 生成提示詞」取得優化後的提示詞。\n" +
	"4. 按「🖼 生成圖片」產生圖片。\n\n" +
	"指令:\n" +
	"/menu - 顯示選單\n" +
	"/prompt [文字] - 生成提示詞\n" +
	"/describe - 圖片轉提示詞\n" +
	"/render - 生成圖片\n" +
	"/key <API Key> - 設定 API Key\n" +
	"/clearkey - 清除 API Key\n" +
	"/reset - 重設\n" +
	"/cancel - 取消輸入"

func (h *Handler) handleText(ctx context.Context, chatID, userID int64, msg *tgbotapi.Message) error {
	text := strings.TrimSpace(msg.Text)
	st := h.menus.Get(chatID, userID)
	ctrl := h.sessions.Get(userID)

	switch st.Awaiting {
	case awaitKey:
		_ = h.tg.DeleteMessage(ctx, chatID, msg.MessageID)
		return h.saveKey(ctx, chatID, userID, text)
	case awaitPrompt:
		ctrl.SetEnhancedPrompt(text)
		h.menus.Update(chatID, userID, func(st *menuState) { st.Awaiting = awaitNone })
		_ = h.tg.SendText(ctx, chatID, "✏️ 已更新提示詞。")
	default:
		ctrl.SetUserText(text)
	}

	return h.renderMenu(ctx, chatID, userID, 0, false)
}

func (h *Handler) saveKey(ctx context.Context, chatID, userID int64, key string) error {
	h.menus.Update(chatID, userID, func(st *menuState) { st.Awaiting = awaitNone })
	if err := h.keys.Save(key); err != nil {
		h.logger.Error("save api key failed", "err", err)
		return h.tg.SendText(ctx, chatID, "❌ 無法儲存 API Key。")
	}
	h.broadcastKeyReady()
	return h.tg.SendText(ctx, chatID, "✅ 已儲存 API Key: "+h.keys.Masked())
}

// broadcastKeyReady pushes the key state into every live session.
func (h *Handler) broadcastKeyReady() {
	ready := h.keys.Ready()
	h.sessions.Each(func(_ int64, c *session.Controller) { c.SetKeyReady(ready) })
}

func fileRefs(msg *tgbotapi.Message) []mediagroup.FileRef {
	switch {
	case len(msg.Photo) > 0:
		photo := msg.Photo[len(msg.Photo)-1]
		return []mediagroup.FileRef{{
			ID:       photo.FileID,
			Name:     photo.FileUniqueID + ".jpg",
			MIMEType: "image/jpeg",
		}}
	case msg.Document != nil:
		return []mediagroup.FileRef{{
			ID:       msg.Document.FileID,
			Name:     msg.Document.FileName,
			MIMEType: msg.Document.MimeType,
		}}
	}
	return nil
}

func (h *Handler) handleFiles(ctx context.Context, chatID, userID int64, msg *tgbotapi.Message, refs []mediagroup.FileRef) error {
	if msg.MediaGroupID != "" && h.aggregator != nil {
		for _, ref := range refs {
			h.aggregator.Add(mediagroup.Item{
				ChatID:       chatID,
				UserID:       userID,
				Username:     msg.From.UserName,
				MediaGroupID: msg.MediaGroupID,
				Caption:      msg.Caption,
				File:         ref,
			})
		}
		return nil
	}
	return h.attachFiles(ctx, chatID, userID, msg.Caption, refs)
}

func (h *Handler) attachFiles(ctx context.Context, chatID, userID int64, caption string, refs []mediagroup.FileRef) error {
	var wanted []mediagroup.FileRef
	var rejected []string
	for _, ref := range refs {
		if !files.Accepted(ref.Name, ref.MIMEType) {
			rejected = append(rejected, ref.Name)
			continue
		}
		wanted = append(wanted, ref)
	}
	if len(rejected) > 0 {
		_ = h.tg.SendText(ctx, chatID, "⚠️ 不支援的檔案格式: "+strings.Join(rejected, ", "))
	}
	if len(wanted) == 0 {
		return nil
	}

	h.tg.SendTyping(ctx, chatID)

	raws := make([]files.Raw, len(wanted))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, ref := range wanted {
		eg.Go(func() error {
			data, mimeType, err := h.tg.DownloadFile(egCtx, ref.ID, ref.MIMEType)
			if err != nil {
				return fmt.Errorf("download %s: %w", ref.Name, err)
			}
			raws[i] = files.FromBytes(ref.Name, mimeType, data)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		h.logger.Error("file download failed", "err", err)
		return h.tg.SendText(ctx, chatID, "❌ 檔案下載失敗，請重新上傳。")
	}

	uploaded := files.NormalizeAll(ctx, h.logger, raws)
	ctrl := h.sessions.Get(userID)
	ctrl.AddFiles(uploaded...)
	if text := strings.TrimSpace(caption); text != "" {
		ctrl.SetUserText(text)
	}

	if dropped := len(raws) - len(uploaded); dropped > 0 {
		_ = h.tg.SendText(ctx, chatID, fmt.Sprintf("⚠️ 有 %d 個檔案無法讀取。", dropped))
	}
	return h.renderMenu(ctx, chatID, userID, 0, false)
}

func (h *Handler) refine(ctx context.Context, chatID, userID int64) error {
	h.tg.SendTyping(ctx, chatID)
	ctrl := h.sessions.Get(userID)
	text, err := ctrl.Refine(ctx)
	if err != nil {
		snap := ctrl.Snapshot()
		return h.reportError(ctx, chatID, userID, "✍️ "+prompt.Placeholder(snap.Category, snap.Options), err)
	}
	if err := h.tg.SendText(ctx, chatID, text); err != nil {
		return err
	}
	return h.renderMenu(ctx, chatID, userID, 0, false)
}

func (h *Handler) describe(ctx context.Context, chatID, userID int64) error {
	h.tg.SendTyping(ctx, chatID)
	text, err := h.sessions.Get(userID).Describe(ctx)
	if err != nil {
		return h.reportError(ctx, chatID, userID, "🖼 請先上傳圖片檔案 (PDF/文字檔無法用於此功能)。", err)
	}
	if err := h.tg.SendText(ctx, chatID, text); err != nil {
		return err
	}
	return h.renderMenu(ctx, chatID, userID, 0, false)
}

func (h *Handler) render(ctx context.Context, chatID, userID int64) error {
	h.tg.SendUploading(ctx, chatID)
	ctrl := h.sessions.Get(userID)
	img, err := ctrl.Render(ctx)
	if err != nil {
		return h.reportError(ctx, chatID, userID, "✨ 請先生成提示詞。", err)
	}

	snap := ctrl.Snapshot()
	if err := h.tg.SendDocument(ctx, chatID, img.FileName(h.now()), img.Data, "🖼 "+string(snap.AspectRatio)); err != nil {
		return err
	}
	return h.tg.SendText(ctx, chatID, snap.EnhancedPrompt)
}

// reportError turns a session error into a chat reply; empty is the hint for
// ErrNothingToSend.
func (h *Handler) reportError(ctx context.Context, chatID, userID int64, empty string, err error) error {
	switch {
	case errors.Is(err, session.ErrSuperseded), errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, session.ErrNothingToSend):
		return h.tg.SendText(ctx, chatID, empty)
	case errors.Is(err, session.ErrBusy):
		return h.tg.SendText(ctx, chatID, "⏳ 上一個請求仍在處理中，請稍候。")
	case errors.Is(err, session.ErrKeyRequired):
		return h.tg.SendText(ctx, chatID, "🔑 尚未設定 API Key，請使用 /key <API Key>。")
	case errors.Is(err, session.ErrTextOnly):
		return h.tg.SendText(ctx, chatID, "📝 文案類別只產生文字，不支援生成圖片。")
	}

	h.logger.Warn("request failed", "user_id", userID, "err", err)
	msg := h.sessions.Get(userID).Snapshot().ErrorMessage
	if msg == "" {
		msg = session.MsgRefineFailed
	}
	return h.tg.SendText(ctx, chatID, "❌ "+msg)
}
