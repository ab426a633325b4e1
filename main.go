package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ArtistGrid/player/internal/catalog"
	"github.com/ArtistGrid/player/internal/config"
	"github.com/ArtistGrid/player/internal/mpris"
	"github.com/ArtistGrid/player/internal/output"
	"github.com/ArtistGrid/player/internal/playback"
	"github.com/ArtistGrid/player/internal/resolver"
	"github.com/ArtistGrid/player/internal/scrobble"
	"github.com/ArtistGrid/player/internal/store"
)

func main() {
	lastfmAuth := flag.Bool("lastfm-auth", false, "connect a Last.fm account and exit")
	lastfmDisconnect := flag.Bool("lastfm-disconnect", false, "forget the stored Last.fm session and exit")
	flag.Parse()

	if err := run(*lastfmAuth, *lastfmDisconnect, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(lastfmAuth, lastfmDisconnect bool, urls []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logrus.SetLevel(lvl)
	}

	st, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening state store: %w", err)
	}
	defer st.Close()

	var client *scrobble.Client
	if cfg.HasLastfmConfig() {
		client = scrobble.NewClient(scrobble.Config{
			APIKey:    cfg.Lastfm.APIKey,
			APISecret: cfg.Lastfm.APISecret,
		}, st)
	}

	switch {
	case lastfmAuth:
		return runLastfmAuth(client)
	case lastfmDisconnect:
		return runLastfmDisconnect(client)
	}

	if len(urls) == 0 {
		return fmt.Errorf("no track links given (usage: %s <url>...)", os.Args[0])
	}

	return runPlayer(cfg, st, client, urls)
}

func runLastfmAuth(client *scrobble.Client) error {
	if client == nil {
		return fmt.Errorf("last.fm api_key and api_secret must be configured")
	}

	ctx := context.Background()
	token, authURL, err := client.GetAuthURL(ctx)
	if err != nil {
		return fmt.Errorf("requesting auth token: %w", err)
	}

	fmt.Printf("Authorize this player in your browser:\n\n  %s\n\n", authURL)
	fmt.Print("Press Enter once you have approved access... ")
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')

	username, err := client.CompleteAuth(ctx, token)
	if err != nil {
		return fmt.Errorf("completing auth: %w", err)
	}

	fmt.Printf("Connected as %s.\n", username)
	return nil
}

func runLastfmDisconnect(client *scrobble.Client) error {
	if client == nil {
		return fmt.Errorf("last.fm api_key and api_secret must be configured")
	}
	if err := client.Disconnect(); err != nil {
		return fmt.Errorf("disconnecting: %w", err)
	}
	fmt.Println("Last.fm session removed.")
	return nil
}

func runPlayer(cfg *config.Config, st *store.Manager, client *scrobble.Client, urls []string) error {
	log := logrus.WithField("component", "main")

	res := resolver.New(resolver.Config{
		KrakenfilesProxy: cfg.Resolver.KrakenfilesProxy,
		OnlyfilesProxy:   cfg.Resolver.OnlyfilesProxy,
		SoundcloudProxy:  cfg.Resolver.SoundcloudProxy,
	})

	resolved := res.ResolveMany(context.Background(), urls)

	var tracks []catalog.Track
	for _, u := range urls {
		playable := resolved[u]
		if playable == "" {
			// Fall back to the source link so the failure is visible.
			fmt.Fprintf(os.Stderr, "could not resolve %s\n", u)
			continue
		}
		t := catalog.Track{
			ID:          catalog.TrackID(u),
			Name:        u,
			SourceURL:   u,
			PlayableURL: playable,
			Source:      resolver.Classify(u),
		}
		tracks = append(tracks, t)
	}
	if len(tracks) == 0 {
		return fmt.Errorf("none of the given links resolved to a playable url")
	}

	playerCfg := cfg.GetPlayerConfig()

	out := output.NewPlayer()
	if err := out.Init(playerCfg.CacheMB); err != nil {
		return fmt.Errorf("initializing audio output: %w", err)
	}
	defer out.Close()

	var scrob *scrobble.Scrobbler
	if client != nil {
		scrob = scrobble.NewScrobbler(client)
		if client.IsAuthenticated() {
			log.WithField("user", client.Session().Username).Info("scrobbling enabled")
		}
	}

	var engineScrob playback.Scrobbler
	if scrob != nil {
		engineScrob = scrob
	}
	engine := playback.New(out, engineScrob)
	defer engine.Close()

	engine.SetVolume(st.Volume(playerCfg.Volume))
	defer func() {
		if err := st.SaveVolume(engine.Volume()); err != nil {
			log.WithError(err).Warn("saving volume failed")
		}
	}()

	bridge, err := mpris.New(engine)
	if err != nil {
		log.WithError(err).Warn("media controls unavailable")
	} else {
		defer bridge.Close()
	}

	sub := engine.Subscribe()

	engine.PlayTrack(tracks[0])
	for _, t := range tracks[1:] {
		engine.AddToQueue(t)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			engine.ClosePlayer()
			return nil
		case ev := <-sub.TrackChanged:
			if ev.Current == nil {
				// Queue drained.
				return nil
			}
			fmt.Printf("Playing: %s\n", ev.Current.Name)
		case <-sub.Done:
			return nil
		}
	}
}
