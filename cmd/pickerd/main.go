// Package main запускает фонового клиента приложения сборщика заказов.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/picker-system/internal/api"
	"github.com/mmeshcher/picker-system/internal/bridge"
	"github.com/mmeshcher/picker-system/internal/config"
	"github.com/mmeshcher/picker-system/internal/localdb"
	"github.com/mmeshcher/picker-system/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	local, err := localdb.Open(cfg.StatePath)
	if err != nil {
		sugar.Fatalw("local state initialization error", "error", err.Error())
	}
	defer local.Close()

	client := api.NewClient(cfg.APIBaseURL, time.Duration(cfg.HTTPTimeoutSeconds)*time.Second)

	notices := store.NewNotices(32)
	auth := store.NewAuth(client, local, notices)
	orders := store.NewOrders(client, notices)
	inventory := store.NewInventory(client, notices)
	bins := store.NewBins(client, local, notices)
	notifications := store.NewNotifications(client)
	ui := store.NewUI(local)

	client.OnUnauthorized(auth.ForceLogout)
	auth.OnLogout(func() {
		orders.Reset()
		inventory.Reset()
		bins.Reset()
		notifications.Reset()
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ui.Load(ctx); err != nil {
		sugar.Warnw("ui preferences not restored", "error", err.Error())
	}

	// Сессия восстанавливается свежим запросом профиля; при отсутствии
	// сохранённого токена выполняется вход по учётным данным из конфигурации.
	if err := auth.Restore(ctx); err != nil {
		if !errors.Is(err, store.ErrNoSession) {
			sugar.Warnw("session restore failed", "error", err.Error())
		}
		if cfg.EmployeeID == "" {
			sugar.Fatalw("no stored session and no credentials configured")
		}
		if err := auth.Login(ctx, cfg.EmployeeID, cfg.Password); err != nil {
			sugar.Fatalw("login failed", "error", err.Error())
		}
	}

	user := auth.User()
	sugar.Infow("session established", "user", user.Name, "role", user.Role)

	if err := orders.FetchAvailable(ctx); err != nil {
		sugar.Warnw("available orders not fetched", "error", err.Error())
	}
	if err := orders.FetchMine(ctx); err != nil {
		sugar.Warnw("my orders not fetched", "error", err.Error())
	}
	if err := notifications.Fetch(ctx); err != nil {
		sugar.Warnw("notifications not fetched", "error", err.Error())
	}

	g, ctx := errgroup.WithContext(ctx)

	// Вывод всплывающих сообщений хранилищ в журнал
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case n := <-notices.C():
				if n.Level == store.NoticeError {
					sugar.Warnw("notice", "message", n.Message)
				} else {
					sugar.Infow("notice", "message", n.Message)
				}
			}
		}
	})

	if cfg.SocketURL != "" {
		br := bridge.New(bridge.Config{
			URL:     cfg.SocketURL,
			Token:   auth.Token,
			UserID:  user.ID,
			StoreID: user.StoreID,
		}, orders, notifications, logger)

		// Цикл разбора событий
		g.Go(func() error {
			return br.Run(ctx)
		})

		// Поддержание соединения с переподключением
		g.Go(func() error {
			return br.RunWithReconnect(ctx)
		})

		// Закрытие соединения при остановке
		g.Go(func() error {
			<-ctx.Done()
			sugar.Info("shutting down...")
			if err := br.Close(); err != nil {
				sugar.Warnw("socket close error", "error", err.Error())
			}
			return nil
		})
	} else {
		sugar.Info("socket URL not configured, realtime updates disabled")
	}

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
	sugar.Info("stopped gracefully")
}
