// Package server runs the authoritative duel simulation.
//
// A Server owns one game.Game. Each WebSocket connection becomes a Session
// bound to a player slot: the first connection controls the gun, the second
// the chicken, and further connections are refused. Run drives a fixed-rate
// loop that waits for client input between ticks, advances the game by one
// tick and sends every session a State frame.
//
// All game and session state is touched from the goroutine calling Run (or
// Poll and Tick directly). The HTTP side only upgrades connections and hands
// them to the transport listener.
//
// Routes:
//
//	/ws       WebSocket endpoint
//	/healthz  liveness and player count (JSON)
//	/metrics  Prometheus metrics
//
// Example:
//
//	srv := server.New(&server.ServerConfig{Address: ":8080"})
//	if err := srv.ListenAndServe(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
