package client

import (
	"context"
	"time"
)

// StepFunc sets inputs before each Update. elapsed is the frame time in
// seconds.
type StepFunc func(c *Client, elapsed float32)

// Run calls step and Update once per interval until ctx is cancelled or
// the connection fails. It returns nil on cancellation.
func (c *Client) Run(ctx context.Context, interval time.Duration, step StepFunc) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			elapsed := float32(now.Sub(last).Seconds())
			last = now
			if step != nil {
				step(c, elapsed)
			}
			if err := c.Update(elapsed); err != nil {
				return err
			}
		}
	}
}
