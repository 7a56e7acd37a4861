package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	duelerrors "github.com/vango-dev/duel/internal/errors"
	"github.com/vango-dev/duel/pkg/game"
	"github.com/vango-dev/duel/pkg/replay"
)

func replayCmd(a *app) *cobra.Command {
	var (
		list   bool
		frames bool
		dir    string
		bucket string
	)

	cmd := &cobra.Command{
		Use:   "replay [name]",
		Short: "Inspect recorded matches",
		Long: `List stored replays or summarize one.

Without --bucket replays are read from the replay directory.

Examples:
  duel replay --list
  duel replay duel-20240309-140507.replay
  duel replay --frames --bucket=matches duel-20240309-140507.replay`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("dir") {
				a.cfg.Replay.Dir = dir
			}
			if cmd.Flags().Changed("bucket") {
				a.cfg.Replay.Bucket = bucket
			}
			store, where, err := openStore(a.cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if list || len(args) == 0 {
				return listReplays(ctx, store, where)
			}
			return showReplay(ctx, store, args[0], frames)
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List stored replays")
	cmd.Flags().BoolVarP(&frames, "frames", "f", false, "Print every frame")
	cmd.Flags().StringVar(&dir, "dir", "", "Replay directory (default from duel.json)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket to read from")

	return cmd
}

func listReplays(ctx context.Context, store replay.Store, where string) error {
	names, err := store.List(ctx)
	if err != nil {
		return duelerrors.New("E130").WithDetail(where).Wrap(err)
	}
	if len(names) == 0 {
		info("no replays in %s", where)
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func showReplay(ctx context.Context, store replay.Store, name string, frames bool) error {
	data, err := store.Load(ctx, name)
	if errors.Is(err, replay.ErrNotFound) {
		return duelerrors.New("E131").WithDetail(name)
	}
	if err != nil {
		return duelerrors.New("E130").Wrap(err)
	}

	sum, err := replay.Summarize(data)
	if err != nil {
		return duelerrors.New("E132").WithDetail(name).Wrap(err)
	}

	fmt.Printf("  Replay:   %s\n", name)
	fmt.Printf("  Frames:   %d\n", sum.Frames)
	fmt.Printf("  Duration: %s\n", sum.Duration.Round(time.Millisecond))
	fmt.Printf("  Shots:    %d (%d hits)\n", sum.Score.Shots, sum.Score.Hits)
	for s := game.Slot(0); s < game.SlotCount; s++ {
		pos := sum.Final[s].Position
		fmt.Printf("  %-8s  x=%.2f z=%.2f\n", s.String()+":", pos.X(), pos.Z())
	}

	if !frames {
		return nil
	}
	fmt.Println()
	p := replay.NewPlayer(data)
	for {
		f, ok, err := p.Next()
		if err != nil {
			return duelerrors.New("E132").WithDetail(name).Wrap(err)
		}
		if !ok {
			return nil
		}
		gun, chicken := f.Entities[game.SlotGun].Position, f.Entities[game.SlotChicken].Position
		line := fmt.Sprintf("%6d  gun (%.2f, %.2f)  chicken (%.2f, %.2f)", f.Index, gun.X(), gun.Z(), chicken.X(), chicken.Z())
		for _, shot := range f.Shots {
			if shot.Hit {
				line += "  HIT"
			} else {
				line += "  shot"
			}
		}
		fmt.Println(line)
	}
}
