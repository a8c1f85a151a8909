// Command quackbot fills a running Quackers server with automated players.
//
// Each bot joins with its own name, color and quack pitch, chases the
// cracker, quacks now and then and leaves with a normal close handshake
// when the run ends, so every other bot sees a disconnect notice.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/quackers-game/game/service"
)

var colors = []string{"red", "yellow", "green", "blue", "purple", "orange", "white"}

func main() {
	cmd := &cli.Command{
		Name:  "quackbot",
		Usage: "Run automated players against a Quackers server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "ws://localhost:8080/ws",
				Usage:   "Game WebSocket URL",
				Sources: cli.EnvVars("QUACKBOT_URL"),
			},
			&cli.IntFlag{
				Name:  "bots",
				Value: 5,
				Usage: "Number of bots",
			},
			&cli.DurationFlag{
				Name:  "duration",
				Value: 30 * time.Second,
				Usage: "How long the bots play",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Value: 100 * time.Millisecond,
				Usage: "Time between moves",
			},
			&cli.FloatFlag{
				Name:  "speed",
				Value: 15,
				Usage: "Distance covered per move",
			},
			&cli.IntFlag{
				Name:  "quack-every",
				Value: 20,
				Usage: "Quack once every N moves (0 disables)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("duration"))
			defer cancel()

			return runSwarm(ctx, swarmConfig{
				url:        cmd.String("url"),
				bots:       int(cmd.Int("bots")),
				interval:   cmd.Duration("interval"),
				speed:      cmd.Float("speed"),
				quackEvery: int(cmd.Int("quack-every")),
			})
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

type swarmConfig struct {
	url        string
	bots       int
	interval   time.Duration
	speed      float64
	quackEvery int
}

// runSwarm connects every bot, plays until ctx is done and prints the
// final standings.
func runSwarm(ctx context.Context, cfg swarmConfig) error {
	bots := make([]*Bot, 0, cfg.bots)
	for i := 0; i < cfg.bots; i++ {
		profile := service.JoinGameData{
			FriendlyName: fmt.Sprintf("bot-%02d", i+1),
			Color:        colors[i%len(colors)],
			QuackPitch:   0.5 + rand.Float64()*1.5,
		}

		bot, err := Dial(ctx, cfg.url, profile, cfg.speed)
		if err != nil {
			for _, b := range bots {
				b.Close()
			}
			return fmt.Errorf("%s: %w", profile.FriendlyName, err)
		}
		log.Printf("%s joined as %s", bot.Name(), bot.ClientID())
		bots = append(bots, bot)
	}

	var wg sync.WaitGroup
	for _, bot := range bots {
		wg.Add(1)
		go func(bot *Bot) {
			defer wg.Done()
			play(ctx, bot, cfg)
		}(bot)
	}
	wg.Wait()

	for _, bot := range bots {
		if err := bot.Close(); err != nil {
			log.Printf("%s: close failed: %v", bot.Name(), err)
		}
	}

	printStandings(bots)
	return nil
}

func play(ctx context.Context, bot *Bot, cfg swarmConfig) {
	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()

	for moves := 1; ; moves++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := bot.Step(); err != nil {
			log.Printf("%s: move failed: %v", bot.Name(), err)
			return
		}
		if cfg.quackEvery > 0 && moves%cfg.quackEvery == 0 {
			if err := bot.Quack(); err != nil {
				log.Printf("%s: quack failed: %v", bot.Name(), err)
				return
			}
		}
	}
}

func printStandings(bots []*Bot) {
	sort.SliceStable(bots, func(i, j int) bool { return bots[i].Collected() > bots[j].Collected() })

	fmt.Println("\nStandings:")
	for i, bot := range bots {
		fmt.Printf("%2d. %-8s %3d crackers\n", i+1, bot.Name(), bot.Collected())
	}
}
