package commands

import (
	"context"
	"time"

	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/rules"
	"github.com/lightcycles/engine/worker"
	termbox "github.com/nsf/termbox-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "plays a two player match in the terminal",
	Long: `Plays a two player match in the terminal.

Player 1 steers with W, A, S and D, player 2 with the arrow keys. Either
player can be handed to the bot. Esc stops the match.`,
	RunE: func(*cobra.Command, []string) error {
		return playMatch()
	},
}

var (
	playBot1  bool
	playBot2  bool
	playName1 = "Player 1"
	playName2 = "Player 2"
	playReq   = &rules.CreateRequest{}
)

func init() {
	playCmd.Flags().BoolVar(&playBot1, "bot1", playBot1, "let the bot drive player 1")
	playCmd.Flags().BoolVar(&playBot2, "bot2", playBot2, "let the bot drive player 2")
	playCmd.Flags().StringVar(&playName1, "name1", playName1, "name of player 1")
	playCmd.Flags().StringVar(&playName2, "name2", playName2, "name of player 2")
	playCmd.Flags().StringVar((*string)(&playReq.Arena), "arena", string(rules.ArenaWalled), "arena, as one of: [walled, wrapped]")
	playCmd.Flags().IntVar(&playReq.Width, "width", 0, "board width in pixels, 0 for the configured default")
	playCmd.Flags().IntVar(&playReq.Height, "height", 0, "board height in pixels, 0 for the configured default")
	playCmd.Flags().IntVar(&playReq.CellSize, "cell-size", 0, "cell size in pixels, 0 for the configured default")
	playCmd.Flags().IntVar(&playReq.CycleLength, "length", 0, "starting cycle length, 0 for the configured default")
	playCmd.Flags().IntVar(&playReq.TrailGrowth, "growth", 0, "trail segments added per tick, 0 for the configured default")
	playCmd.Flags().Int64Var(&playReq.TickInterval, "tick", 0, "milliseconds between ticks, 0 for the configured default")
}

func playRequest() *rules.CreateRequest {
	req := *playReq
	req.Players = []rules.PlayerOptions{
		{Name: playName1, Driver: playDriver(playBot1)},
		{Name: playName2, Driver: playDriver(playBot2)},
	}
	return &req
}

func playDriver(bot bool) string {
	if bot {
		return rules.DriverBot
	}
	return rules.DriverHuman
}

// playDrivers hands every human player to the keyboard.
func playDrivers(keys *keyboard) func(*rules.Match) map[int]rules.Driver {
	return func(match *rules.Match) map[int]rules.Driver {
		drivers := rules.DefaultDrivers(match)
		for _, p := range match.Players {
			if p.Driver == rules.DriverHuman {
				drivers[p.Number] = keys
			}
		}
		return drivers
	}
}

func playMatch() error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := controller.New(store)
	match, err := ctrl.Create(ctx, playRequest())
	if err != nil {
		return err
	}
	if err := ctrl.Start(ctx, match.ID); err != nil {
		return err
	}

	keys := newKeyboard()
	w := &worker.Worker{
		Store:   store,
		Drivers: playDrivers(keys),
	}
	done := make(chan error, 1)
	go func() {
		done <- w.Process(ctx, 0, match.ID)
	}()

	restoreLogs := redirectLogs()
	defer restoreLogs()

	if err := termbox.Init(); err != nil {
		cancel()
		<-done
		return err
	}
	defer termbox.Close()

	eventQueue := setupEventQueue()
	refresh := time.NewTicker(match.Tick())
	defer refresh.Stop()

	for {
		select {
		case ev := <-eventQueue:
			if ev.Type == termbox.EventKey && ev.Key == termbox.KeyEsc {
				cancel()
				<-done
				return stopMatch(store, match.ID)
			}
			keys.press(ev)
		case <-refresh.C:
			if err := renderLatest(store, match, ""); err != nil {
				log.WithError(err).Warn("unable to render frame")
			}
		case err := <-done:
			if err != nil {
				return err
			}
			final, err := store.GetMatch(context.Background(), match.ID)
			if err != nil {
				return err
			}
			if err := renderLatest(store, final, winnerText(final)+" Press any key to exit..."); err != nil {
				return err
			}
			<-eventQueue
			return nil
		}
	}
}

// stopMatch puts an interrupted match back to stopped, so it can be
// replayed or started again.
func stopMatch(store controller.Store, id string) error {
	m, err := store.GetMatch(context.Background(), id)
	if err != nil {
		return err
	}
	if m.Status != rules.MatchStatusRunning {
		return nil
	}
	return store.SetMatchStatus(context.Background(), id, rules.MatchStatusStopped)
}

func renderLatest(store controller.Store, match *rules.Match, footer string) error {
	frames, err := store.ListFrames(context.Background(), match.ID, 1, -1)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return nil
	}
	return render(match, frames[0], footer)
}
