package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	duelerrors "github.com/vango-dev/duel/internal/errors"
	"github.com/vango-dev/duel/pkg/client"
	"github.com/vango-dev/duel/pkg/game"
	"github.com/vango-dev/duel/pkg/protocol"
)

// pattern returns the buttons a bot holds at time t (seconds).
type pattern func(t float64) []protocol.ButtonID

var patterns = map[string]pattern{
	"idle": func(float64) []protocol.ButtonID { return nil },
	"strafe": func(t float64) []protocol.ButtonID {
		if int(t)%2 == 0 {
			return []protocol.ButtonID{protocol.ButtonRight}
		}
		return []protocol.ButtonID{protocol.ButtonLeft}
	},
	"circle": func(t float64) []protocol.ButtonID {
		dirs := []protocol.ButtonID{protocol.ButtonRight, protocol.ButtonDown, protocol.ButtonLeft, protocol.ButtonUp}
		return []protocol.ButtonID{dirs[int(t*2)%len(dirs)]}
	},
	"fire": func(t float64) []protocol.ButtonID {
		held := []protocol.ButtonID{protocol.ButtonLeft}
		if int(t)%2 == 0 {
			held[0] = protocol.ButtonRight
		}
		// Pulse fire so every half second is a new press.
		if math.Mod(t, 0.5) < 0.25 {
			held = append(held, protocol.ButtonFire)
		}
		return held
	},
}

func patternNames() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// apply presses the buttons in held and releases the others.
func apply(c *client.Client, held []protocol.ButtonID) {
	for id := protocol.ButtonID(0); id < protocol.ButtonCount; id++ {
		down := false
		for _, h := range held {
			if h == id {
				down = true
				break
			}
		}
		if down {
			c.Press(id)
		} else {
			c.Release(id)
		}
	}
}

func botCmd(a *app) *cobra.Command {
	var (
		url      string
		fps      int
		duration time.Duration
		name     string
		slot     int
	)

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Connect a scripted player",
		Long: `Connect a headless player that follows an input pattern.

Patterns: ` + strings.Join(patternNames(), ", ") + `

Examples:
  duel bot
  duel bot --pattern=fire --duration=30s
  duel bot --url=ws://game.example.com/ws --fps=30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := patterns[name]
			if !ok {
				return duelerrors.New("E140").
					WithDetail(fmt.Sprintf("unknown pattern %q (have %s)", name, strings.Join(patternNames(), ", ")))
			}
			if cmd.Flags().Changed("url") {
				a.cfg.Client.URL = url
			}
			if cmd.Flags().Changed("fps") {
				a.cfg.Client.FPS = fps
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return runBot(a, p, duration, slot)
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "", "Server WebSocket URL (default from duel.json)")
	cmd.Flags().IntVar(&fps, "fps", 0, "Updates per second (default from duel.json)")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Stop after this long (0 = until interrupted)")
	cmd.Flags().StringVarP(&name, "pattern", "p", "strafe", "Input pattern")
	cmd.Flags().IntVar(&slot, "slot", -1, "Own slot when the server uses perspective ordering (0 gun, 1 chicken)")

	return cmd
}

func runBot(a *app, p pattern, duration time.Duration, slot int) error {
	logger := a.logger.With("component", "bot")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	c, err := client.Dial(dialCtx, a.cfg.Client.URL, &client.Options{Logger: logger})
	cancel()
	if err != nil {
		return duelerrors.New("E111").WithDetail(a.cfg.Client.URL).Wrap(err)
	}
	defer c.Close()

	if slot >= 0 {
		c.SetPerspective(game.Slot(slot))
	}

	interval := time.Second / time.Duration(a.cfg.Client.FPS)
	err = c.Run(ctx, interval, func(c *client.Client, elapsed float32) {
		apply(c, p(c.Clock()))
		for _, shot := range c.TakeShots() {
			logger.Info("shot", "slot", shot.Slot.String(), "hit", shot.Hit,
				"x", shot.Origin.X(), "z", shot.Origin.Z())
		}
	})

	score := c.Score()
	info("frames %d, shots %d, hits %d", c.Frames(), score.Shots, score.Hits)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrConnectionLost):
		return duelerrors.New("E112").Wrap(err)
	case protocol.IsFatal(err):
		return duelerrors.New("E120").Wrap(err)
	default:
		return err
	}
}
