// Package config provides local state management for embedctl.
//
// Two kinds of configuration exist:
//
//  1. The credential record (Config), a single JSON file at
//     ~/.embeddable/config.json holding the API key, the region and an
//     optional default environment. It is created by "embed init" or
//     "embed auth login", changed when the default environment moves and
//     removed by "embed auth logout".
//
//  2. Process settings (Settings), read from EMBED_* environment
//     variables: config directory override, debug logging, API timeout,
//     update-check opt-out and an API base URL override.
//
// # File format
//
//	{
//	  "apiKey": "emb_xxxxxxxxxxxx",
//	  "region": "EU",
//	  "defaultEnvironment": "env-123"
//	}
//
// The file is not versioned. A malformed file is treated as absent (and
// logged), so a broken config never crashes a command; re-authenticating
// overwrites it.
//
// # Usage Example
//
//	settings, err := config.LoadSettings()
//	if err != nil {
//	    return err
//	}
//	store := config.NewStore(settings.StorePath())
//	cfg, ok := store.Get()
//	if !ok {
//	    return config.ErrNotAuthenticated
//	}
//	fmt.Println(cfg.Region.BaseURL())
//
// Concurrent invocations of the CLI read and write the file without
// locking; the last writer wins.
package config
