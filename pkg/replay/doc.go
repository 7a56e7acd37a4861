// Package replay records matches and plays them back.
//
// A replay is the server's State frames for consecutive ticks, concatenated
// exactly as they appear on the wire. Any State decoder can read it: feed the
// bytes to a protocol.RecvBuffer and decode frame by frame.
//
// Replays are kept in a Store. FileStore writes them to a directory and
// S3Store to a bucket.
package replay
