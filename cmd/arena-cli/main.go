package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rias-glitch/rps-arena-go/internal/api"
	appcfg "github.com/rias-glitch/rps-arena-go/internal/config"
	"github.com/rias-glitch/rps-arena-go/internal/economy"
	"github.com/rias-glitch/rps-arena-go/internal/match"
	"github.com/rias-glitch/rps-arena-go/internal/msgcat"
	"github.com/rias-glitch/rps-arena-go/internal/obslog"
	"github.com/rias-glitch/rps-arena-go/internal/purchase"
	"github.com/rias-glitch/rps-arena-go/internal/session"
	"github.com/rias-glitch/rps-arena-go/internal/withdraw"
	"github.com/rias-glitch/rps-arena-go/pkg/gamedto"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger error: %v", err)
	}
	cat, err := msgcat.New(cfg.MsgOverrideDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	store := session.NewStore()
	client := api.NewClient(cfg.APIBaseURL,
		api.WithTimeout(time.Duration(cfg.RequestTimeoutSec)*time.Second),
		api.WithTokenProvider(store.Token),
	)

	var cache *session.TokenCache
	if cfg.RedisURL != "" {
		cache, err = session.NewTokenCache(cfg.RedisURL)
		if err != nil {
			log.Fatalf("token cache error: %v", err)
		}
		defer cache.Close()
	}

	h := &termHost{in: bufio.NewReader(os.Stdin)}
	if err := h.Ready(); err != nil {
		log.Fatalf("host platform error: %v", err)
	}

	if err := login(client, store, cache); err != nil {
		log.Fatalf("login error: %v", err)
	}

	recon := economy.New(store)
	cmd := "play"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "play":
		stake := cfg.StakeOptions[0]
		if len(os.Args) > 2 {
			if n, err := strconv.ParseInt(os.Args[2], 10, 64); err == nil {
				stake = n
			}
		}
		runRound(client, store, recon, cat, cfg, stake)
	case "balance":
		coins, err := client.Balance(context.Background())
		if err != nil {
			log.Fatalf("balance: %v", err)
		}
		fmt.Printf("balance: %d coins\n", coins)
	case "transactions":
		txs, err := client.Transactions(context.Background())
		if err != nil {
			log.Fatalf("transactions: %v", err)
		}
		for _, tx := range txs {
			fmt.Printf("%-12s %+6d  %s\n", tx.TypeLabel(), tx.Amount, tx.Date.Format("Jan 2 2006"))
		}
	case "buy":
		amount := int64(100)
		if len(os.Args) > 2 {
			if n, err := strconv.ParseInt(os.Args[2], 10, 64); err == nil {
				amount = n
			}
		}
		flow := purchase.NewFlow(client, h, recon, cat)
		if err := flow.Buy(context.Background(), amount); err != nil {
			log.Fatalf("buy: %v", err)
		}
		fmt.Printf("balance after purchase: %d coins\n", store.Coins())
	case "withdraw":
		if len(os.Args) < 4 {
			log.Fatal("usage: arena-cli withdraw <amount> <wallet>")
		}
		amount, _ := strconv.ParseInt(os.Args[2], 10, 64)
		lc := withdraw.NewLifecycle(client, store, cat, cfg.MinWithdraw)
		if err := lc.Submit(context.Background(), amount, os.Args[3]); err != nil {
			log.Fatalf("withdraw: %s", lc.Message())
		}
		fmt.Println(lc.Message())
	case "withdrawals":
		lc := withdraw.NewLifecycle(client, store, cat, cfg.MinWithdraw)
		if err := lc.Refresh(context.Background()); err != nil {
			log.Fatalf("withdrawals: %v", err)
		}
		for _, w := range lc.Requests() {
			fmt.Printf("%6d  %-9s %s\n", w.Amount, w.Status, w.Date.Format("Jan 2 2006"))
		}
	default:
		log.Fatalf("unknown command %q (play|balance|transactions|buy|withdraw|withdrawals)", cmd)
	}
}

// login reuses a cached bearer token when one is live, otherwise runs
// the auth handshake with INIT_DATA.
func login(client *api.Client, store *session.Store, cache *session.TokenCache) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	telegramID, _ := strconv.ParseInt(strings.TrimSpace(os.Getenv("TELEGRAM_ID")), 10, 64)
	if cache != nil && telegramID != 0 {
		if tok, err := cache.Load(ctx, telegramID); err == nil && tok != "" {
			store.SetToken(tok)
			coins, err := client.Balance(ctx)
			if err == nil {
				store.Apply(session.Update{Coins: session.Int64Ptr(coins)})
				return nil
			}
			// cached token rejected or server trouble: fall through to
			// a fresh login
			store.SetToken("")
		}
	}

	initData := strings.TrimSpace(os.Getenv("INIT_DATA"))
	if initData == "" {
		return fmt.Errorf("INIT_DATA is required (no cached token)")
	}
	resp, err := client.Login(ctx, initData)
	if err != nil {
		return err
	}
	store.Bootstrap(resp)
	if cache != nil && resp.User.TelegramID != 0 {
		if err := cache.Save(ctx, resp.User.TelegramID, resp.Token); err != nil {
			log.Printf("token cache save failed: %v", err)
		}
	}
	return nil
}

func runRound(client *api.Client, store *session.Store, recon *economy.Reconciler, cat *msgcat.Catalog, cfg *appcfg.AppConfig, stake int64) {
	ctrl := match.NewController(client, store, recon, cat, match.Config{
		CountdownSec:  cfg.MatchCountdownSec,
		SubmitTimeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
	}, match.Hooks{
		OnTick:  func(left int) { fmt.Printf("\r%2d ", left) },
		OnError: func(msg string) { fmt.Printf("\n%s\n", msg) },
	})
	defer ctrl.Close()

	if err := ctrl.Start(stake); err != nil {
		log.Fatalf("start round: %v", err)
	}
	fmt.Printf("stake %d — choose your move (rock/paper/scissors):\n", stake)

	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			move, ok := gamedto.ParseMove(sc.Text())
			if !ok {
				fmt.Println("rock, paper or scissors")
				continue
			}
			if ctrl.SelectMove(move) {
				fmt.Println("waiting for opponent...")
				return
			}
		}
	}()

	select {
	case res := <-ctrl.Result():
		fmt.Printf("\nyou: %s  opponent: %s  → %s\n", res.PlayerMove, res.OpponentMove, strings.ToUpper(string(res.Outcome)))
		fmt.Printf("coins %+d (now %d)  rating %+d (now %d)\n", res.CoinsDelta, res.NewBalance, res.RatingDelta, res.NewRating)
	case <-time.After(2 * time.Minute):
		fmt.Println("\n" + cat.RenderOr("match.no_result", nil, "No match data."))
	}
}
