package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/app"
	"github.com/Spok95/telegram-attendance-bot/internal/config"
	"github.com/Spok95/telegram-attendance-bot/internal/db"
	"github.com/Spok95/telegram-attendance-bot/internal/jobs"
	"github.com/Spok95/telegram-attendance-bot/internal/logging"
	"github.com/Spok95/telegram-attendance-bot/internal/metrics"
	"github.com/Spok95/telegram-attendance-bot/internal/nlu"
	"github.com/Spok95/telegram-attendance-bot/internal/observability"
	"github.com/Spok95/telegram-attendance-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer lg.Closer()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		lg.Sugar.Warnw("sentry не инициализирован", "err", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Sugar.Fatalw("ошибка подключения к БД", "err", err)
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database); err != nil {
		lg.Sugar.Fatalw("миграция не удалась", "err", err)
	}
	if cfg.SeedDemo {
		if err := db.SeedDemoStudents(ctx, database); err != nil {
			lg.Sugar.Fatalw("демо-наполнение не удалось", "err", err)
		}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		lg.Sugar.Fatalw("ошибка запуска бота", "err", err)
	}
	lg.Sugar.Infow("бот запущен", "username", bot.Self.UserName, "version", version)

	extractor, err := nlu.NewClaude(cfg.AnthropicKey, cfg.NLUModel, cfg.NLUTimeout, cfg.MinConfidence, cfg.Location)
	if err != nil {
		lg.Sugar.Fatalw("ошибка инициализации NLU-шлюза", "err", err)
	}

	proc := app.NewProcessor(database, extractor, lg.Sugar)

	app.StartHTTP(ctx, cfg.HTTPAddr, database)

	runner := jobs.New(ctx)
	runner.Every(time.Hour, "document_reminders", jobs.DocumentReminders(bot, database))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			lg.Sugar.Info("остановка по сигналу")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			metrics.BotUpdates.Inc()
			msg := update.Message
			if msg == nil || msg.From == nil {
				continue
			}
			// каждое сообщение — независимая задача: вызов NLU-шлюза не должен
			// блокировать сообщения других отправителей
			go handleMessage(ctx, bot, proc, cfg, msg)
		}
	}
}

func handleMessage(ctx context.Context, bot *tgbotapi.BotAPI, proc *app.Processor, cfg *config.Config, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if len(msg.Photo) > 0 {
		proc.HandlePhoto(ctx, bot, msg, cfg.UploadDir)
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch text {
	case "":
		return
	case "/start":
		proc.HandleStart(bot, chatID)
		return
	case "/help":
		proc.HandleHelp(bot, chatID)
		return
	case "/report":
		proc.HandleMonthlyReport(ctx, bot, chatID, cfg.AdminIDs, cfg.Location)
		return
	}

	reply := proc.HandleText(ctx, msg.From.ID, text)
	if _, err := tg.Send(bot, tgbotapi.NewMessage(chatID, reply)); err != nil {
		metrics.HandlerErrors.Inc()
	}
}
