package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"quantum_clicker/internal/domain"
	"quantum_clicker/internal/logger"
	"quantum_clicker/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AdminBot handles moderation commands via Telegram. Only the configured
// admin ids are answered; everyone else is ignored silently.
type AdminBot struct {
	bot      *tgbotapi.BotAPI
	admin    *service.AdminService
	adminIDs []int64
	stopCh   chan struct{}
	wg       sync.WaitGroup
	log      *slog.Logger
}

func NewAdminBot(token string, admin *service.AdminService, adminIDs []int64) (*AdminBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "admin_bot")
	log.Info("admin bot authorized", "username", bot.Self.UserName)

	return &AdminBot{
		bot:      bot,
		admin:    admin,
		adminIDs: adminIDs,
		stopCh:   make(chan struct{}),
		log:      log,
	}, nil
}

// Start starts listening for commands. Blocks; run in a goroutine.
func (b *AdminBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if !b.isAdmin(update.Message.From.ID) {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop gracefully stops the bot.
func (b *AdminBot) Stop() {
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("admin bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("admin bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *AdminBot) isAdmin(userID int64) bool {
	for _, id := range b.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// NotifyAdmins pushes a text message to every configured admin. Used for
// abuse guard alerts.
func (b *AdminBot) NotifyAdmins(text string) {
	for _, id := range b.adminIDs {
		msg := tgbotapi.NewMessage(id, text)
		if _, err := b.bot.Send(msg); err != nil {
			b.log.Warn("admin notify failed", "admin", id, "error", err)
		}
	}
}

func (b *AdminBot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var response string
	switch msg.Command() {
	case "start", "help":
		response = b.helpMessage()
	case "stats":
		response = b.handleStats(ctx)
	case "ban":
		response = b.handleBan(ctx, msg.From.ID, msg.CommandArguments())
	case "unban":
		response = b.handleUnban(ctx, msg.From.ID, msg.CommandArguments())
	case "freeze":
		response = b.handleFreeze(ctx, msg.From.ID, msg.CommandArguments())
	case "adjust":
		response = b.handleAdjust(ctx, msg.From.ID, msg.CommandArguments())
	case "event":
		response = b.handleEvent(ctx, msg.From.ID, msg.CommandArguments())
	case "grant":
		response = b.handleGrant(ctx, msg.From.ID, msg.CommandArguments())
	case "boost":
		response = b.handleBoost(ctx, msg.From.ID, msg.CommandArguments())
	case "suspicious":
		response = b.handleSuspicious()
	default:
		response = "Unknown command. /help"
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, response)
	if _, err := b.bot.Send(reply); err != nil {
		b.log.Warn("reply failed", "error", err)
	}
}

func (b *AdminBot) helpMessage() string {
	return strings.Join([]string{
		"Admin commands:",
		"/stats — totals",
		"/ban <player_id> [reason]",
		"/unban <player_id>",
		"/freeze <player_id> <duration, e.g. 2h>",
		"/adjust <player_id> <coins> <hash> [reason]",
		"/event <multiplier> — mining event, 1 = off",
		"/grant <coins> <hash> [reason] — credit everyone",
		"/boost <player_id> <multiplier> <duration> [category] — temporary boost",
		"/suspicious — players flagged by the abuse guard",
	}, "\n")
}

func (b *AdminBot) handleStats(ctx context.Context) string {
	s, err := b.admin.Stats(ctx)
	if err != nil {
		return "stats failed: " + err.Error()
	}
	return fmt.Sprintf("Players: %d (%d banned)\nCoins: %d\nHash: %d\nTaps: %d",
		s.TotalPlayers, s.Banned, s.TotalCoins, s.TotalHash, s.TotalTaps)
}

func (b *AdminBot) handleBan(ctx context.Context, actor int64, args string) string {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "usage: /ban <player_id> [reason]"
	}
	reason := "banned by admin"
	if len(parts) == 2 {
		reason = parts[1]
	}
	if err := b.admin.Execute(ctx, service.AdminCommand{
		Kind: service.AdminBan, PlayerID: id, Reason: reason, ActorTgID: actor,
	}); err != nil {
		return "ban failed: " + err.Error()
	}
	return fmt.Sprintf("player %d banned", id)
}

func (b *AdminBot) handleUnban(ctx context.Context, actor int64, args string) string {
	id, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		return "usage: /unban <player_id>"
	}
	if err := b.admin.Execute(ctx, service.AdminCommand{
		Kind: service.AdminUnban, PlayerID: id, ActorTgID: actor,
	}); err != nil {
		return "unban failed: " + err.Error()
	}
	return fmt.Sprintf("player %d unbanned", id)
}

func (b *AdminBot) handleFreeze(ctx context.Context, actor int64, args string) string {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "usage: /freeze <player_id> <duration>"
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "bad player id"
	}
	d, err := time.ParseDuration(parts[1])
	if err != nil {
		return "bad duration, e.g. 30m or 2h"
	}
	if err := b.admin.Execute(ctx, service.AdminCommand{
		Kind: service.AdminFreeze, PlayerID: id, Duration: d, ActorTgID: actor,
	}); err != nil {
		return "freeze failed: " + err.Error()
	}
	return fmt.Sprintf("player %d frozen for %s", id, d)
}

func (b *AdminBot) handleAdjust(ctx context.Context, actor int64, args string) string {
	parts := strings.Fields(args)
	if len(parts) < 3 {
		return "usage: /adjust <player_id> <coins> <hash> [reason]"
	}
	id, err1 := strconv.ParseInt(parts[0], 10, 64)
	coins, err2 := strconv.ParseInt(parts[1], 10, 64)
	hash, err3 := strconv.ParseInt(parts[2], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return "bad arguments"
	}
	reason := "manual adjustment"
	if len(parts) > 3 {
		reason = strings.Join(parts[3:], " ")
	}
	if err := b.admin.Execute(ctx, service.AdminCommand{
		Kind: service.AdminAdjust, PlayerID: id,
		CoinsDelta: coins, HashDelta: hash, Reason: reason, ActorTgID: actor,
	}); err != nil {
		return "adjust failed: " + err.Error()
	}
	return fmt.Sprintf("player %d adjusted: %+d coins, %+d hash", id, coins, hash)
}

func (b *AdminBot) handleEvent(ctx context.Context, actor int64, args string) string {
	mult, err := strconv.ParseFloat(strings.TrimSpace(args), 64)
	if err != nil {
		return "usage: /event <multiplier>"
	}
	if err := b.admin.Execute(ctx, service.AdminCommand{
		Kind: service.AdminSetEvent, Multiplier: mult, ActorTgID: actor,
	}); err != nil {
		return "event failed: " + err.Error()
	}
	return fmt.Sprintf("mining event multiplier set to %.2f", mult)
}

func (b *AdminBot) handleGrant(ctx context.Context, actor int64, args string) string {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return "usage: /grant <coins> <hash> [reason]"
	}
	coins, err1 := strconv.ParseInt(parts[0], 10, 64)
	hash, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		return "bad arguments"
	}
	reason := "event grant"
	if len(parts) > 2 {
		reason = strings.Join(parts[2:], " ")
	}
	if err := b.admin.Execute(ctx, service.AdminCommand{
		Kind: service.AdminBulkGrant,
		CoinsDelta: coins, HashDelta: hash, Reason: reason, ActorTgID: actor,
	}); err != nil {
		return "grant failed: " + err.Error()
	}
	return "bulk grant done"
}

func (b *AdminBot) handleBoost(ctx context.Context, actor int64, args string) string {
	parts := strings.Fields(args)
	if len(parts) < 3 || len(parts) > 4 {
		return "usage: /boost <player_id> <multiplier> <duration> [tap|mine|offline]"
	}
	id, err1 := strconv.ParseInt(parts[0], 10, 64)
	mult, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return "bad arguments"
	}
	d, err := time.ParseDuration(parts[2])
	if err != nil {
		return "bad duration, e.g. 30m or 2h"
	}
	var cat domain.BoostCategory
	if len(parts) == 4 {
		cat = domain.BoostCategory(parts[3])
	}
	if err := b.admin.Execute(ctx, service.AdminCommand{
		Kind: service.AdminBoost, PlayerID: id,
		Multiplier: mult, Duration: d, Category: cat, ActorTgID: actor,
	}); err != nil {
		return "boost failed: " + err.Error()
	}
	return fmt.Sprintf("player %d boosted x%.2f for %s", id, mult, d)
}

func (b *AdminBot) handleSuspicious() string {
	ids := b.admin.SuspiciousPlayers()
	if len(ids) == 0 {
		return "no flagged players"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "flagged players: " + strings.Join(parts, ", ")
}
