package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lightcycles/engine/api"
	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/rules"
	termbox "github.com/nsf/termbox-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var replaySpeed = 200 * time.Millisecond

func init() {
	replayCmd.Flags().StringVarP(&matchID, "match-id", "m", "", "the id of the match to replay")
	replayCmd.Flags().DurationVar(&replaySpeed, "speed", replaySpeed, "time between two frames")
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "replays an existing match",
	Long: `Replays an existing match from the store, or from a running server when
--api-addr is set. Space pauses, the arrow keys step, Esc quits.`,
	Args: func(c *cobra.Command, args []string) error {
		if len(matchID) == 0 {
			return errors.New("match id is required")
		}
		return nil
	},
	RunE: func(*cobra.Command, []string) error {
		return replayMatch()
	},
}

func moveFrameForwards(frameIndex int, frames *frameHolder) (int, *rules.Frame, bool) {
	frameIndex++
	if frameIndex >= frames.count() {
		return frameIndex, nil, true
	}
	return frameIndex, frames.get(frameIndex), false
}

func moveFrameBackwards(frameIndex int, frames *frameHolder) (int, *rules.Frame) {
	frameIndex--
	if frameIndex <= 0 {
		frameIndex = 0
	}
	return frameIndex, frames.get(frameIndex)
}

func loadMatch() (*rules.Match, *frameHolder, error) {
	if apiAddr != "" {
		return loadRemoteMatch()
	}

	store, closeStore, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	defer closeStore()

	ctrl := controller.New(store)
	ctx := context.Background()
	match, err := store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}

	frames := newFrameHolder()
	for {
		page, err := ctrl.Frames(ctx, matchID, frames.count(), controller.MaxFrames)
		if err != nil {
			return nil, nil, err
		}
		for _, f := range page {
			frames.append(f)
		}
		if len(page) < controller.MaxFrames {
			break
		}
	}
	return match, frames, nil
}

func loadRemoteMatch() (*rules.Match, *frameHolder, error) {
	s := &api.StatusResponse{}
	if err := getJSON(fmt.Sprintf("/matches/%s", matchID), s); err != nil {
		return nil, nil, err
	}

	u, err := url.Parse(apiAddr)
	if err != nil {
		return nil, nil, err
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = fmt.Sprintf("/socket/%s", matchID)
	log.WithField("url", u.String()).Info("connecting to match socket")

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, nil, err
	}

	frames := newFrameHolder()
	go func() {
		defer func() {
			if err := c.Close(); err != nil {
				log.WithError(err).Warn("failure to close websocket connection")
			}
		}()

		for {
			mt, message, err := c.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.WithError(err).Warn("websocket read failed")
				}
				return
			}

			switch mt {
			case websocket.TextMessage:
				frame := &rules.Frame{}
				if err := json.Unmarshal(message, frame); err != nil {
					log.WithError(err).Warn("unable to unmarshal frame")
					return
				}
				frames.append(frame)
			default:
				log.WithField("type", mt).Warn("unhandled message type")
			}
		}
	}()

	return s.Match, frames, nil
}

func replayMatch() error {
	match, frames, err := loadMatch()
	if err != nil {
		return err
	}

	restoreLogs := redirectLogs()
	defer restoreLogs()

	currentFrame, err := getInitialFrame(frames)
	if err != nil {
		return err
	}

	if err = termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()

	eventQueue := setupEventQueue()

	cycle := time.NewTicker(replaySpeed)
	defer func() { cycle.Stop() }()
	frameIndex := 0
	paused := false
	done := false

	for !done {
		select {
		case ev := <-eventQueue:
			if ev.Type != termbox.EventKey {
				continue
			}
			switch ev.Key {
			case termbox.KeyEsc:
				return nil
			case termbox.KeySpace:
				paused = !paused
				if paused {
					cycle.Stop()
				} else {
					cycle = time.NewTicker(replaySpeed)
				}
			case termbox.KeyArrowLeft:
				paused = true
				frameIndex, currentFrame = moveFrameBackwards(frameIndex, frames)
				if err = render(match, currentFrame, ""); err != nil {
					return err
				}
			case termbox.KeyArrowRight:
				paused = true
				var next *rules.Frame
				frameIndex, next, done = moveFrameForwards(frameIndex, frames)
				if done {
					break
				}
				currentFrame = next
				if err = render(match, currentFrame, ""); err != nil {
					return err
				}
			}
		case <-cycle.C:
			if paused {
				continue
			}
			if err = render(match, currentFrame, ""); err != nil {
				return err
			}
			var next *rules.Frame
			frameIndex, next, done = moveFrameForwards(frameIndex, frames)
			if !done {
				currentFrame = next
			}
		}
	}

	if err = render(match, currentFrame, winnerText(match)+" Press any key to exit..."); err != nil {
		return err
	}
	<-eventQueue
	return nil
}

func getInitialFrame(frames *frameHolder) (*rules.Frame, error) {
	select {
	case <-frames.initialFrame():
		return frames.get(0), nil
	case <-time.After(5 * time.Second):
		return nil, errors.New("unable to find initial frame for match")
	}
}
