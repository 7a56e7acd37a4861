// Package config loads duel.json, the optional .env file and DUEL_*
// environment overrides.
//
// Precedence, lowest first: built-in defaults, duel.json, environment
// (including variables set by .env), command-line flags. Flags are applied
// by the CLI.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "addr": ":8080",
//	    "tickRate": 30,
//	    "perspective": false,
//	    "shutdownTimeout": "30s"
//	  },
//	  "client": {
//	    "url": "ws://localhost:8080/ws",
//	    "fps": 60
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "replay": {
//	    "enabled": true,
//	    "dir": "replays",
//	    "bucket": "",
//	    "prefix": "replays/"
//	  },
//	  "s3": {
//	    "region": "us-east-1",
//	    "endpoint": "",
//	    "usePathStyle": false
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "duel"
//	  }
//	}
//
// # Environment
//
//	DUEL_ADDR, DUEL_TICK_RATE, DUEL_LOG_LEVEL, DUEL_LOG_FORMAT,
//	DUEL_SERVER_URL, DUEL_REPLAY_DIR, DUEL_REPLAY_BUCKET,
//	DUEL_S3_REGION, DUEL_S3_ENDPOINT
//
// S3 credentials come from AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.
package config
