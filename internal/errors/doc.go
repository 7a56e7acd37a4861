// Package errors provides structured, actionable errors for the duel CLI.
//
// Every user-facing failure carries a code (e.g. "E110") that maps to a
// short message, a longer explanation and, where possible, a hint. The
// underlying Go error is kept for errors.Is/As.
//
// # Error Categories
//
//   - config: duel.json, .env and flag problems
//   - network: listening, dialing and lost connections
//   - protocol: malformed frames from the peer
//   - storage: replay stores
//   - cli: command usage
//
// # Usage
//
//	err := errors.New("E110").
//	    WithDetail("listen tcp :8080: address already in use").
//	    WithSuggestion("Pick another port with --addr").
//	    Wrap(cause)
//
//	fmt.Fprintln(os.Stderr, err.Format())
//	// Output:
//	// ERROR E110: Cannot listen on address
//	//
//	//   listen tcp :8080: address already in use
//	//
//	//   Hint: Pick another port with --addr
package errors
