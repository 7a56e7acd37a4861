// Package game holds the authoritative duel state and its fixed-tick update.
//
// A session has exactly two slots, filled in order as players connect:
// the gun, which moves slowly and can fire, and the chicken, which is fast
// and unarmed. Each tick the server folds the most recent Controls of every
// player into movement and fire events; clients keep a Mirror that is only
// ever overwritten from State frames.
package game
