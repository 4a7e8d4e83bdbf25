// Command mascotdemo runs the mascot engine against a no-op rasterizer,
// driving it at a fixed frame rate and optionally exposing the debug
// telemetry server, so the engine and its HostAPI can be exercised end to
// end without a real rendering surface.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fernglow/mascotcore/internal/config"
	"github.com/fernglow/mascotcore/internal/log"
	"github.com/fernglow/mascotcore/pkg/affect"
	"github.com/fernglow/mascotcore/pkg/audiotap"
	"github.com/fernglow/mascotcore/pkg/body"
	"github.com/fernglow/mascotcore/pkg/engine"
	"github.com/fernglow/mascotcore/pkg/gesture"
	"github.com/fernglow/mascotcore/pkg/telemetry"
)

const frameRate = 60.0

func main() {
	log.Init("info")

	var tap audiotap.Tap
	if wsURL := config.AudioWebsocketURL(); wsURL != "" {
		wsTap := audiotap.NewWebSocketTap(wsURL)
		if err := wsTap.Start(); err != nil {
			log.Warn("mascotdemo: audio tap unavailable, continuing without it", "err", err)
		} else {
			tap = wsTap
			defer wsTap.Close()
		}
	}

	eng, err := engine.New(engine.Config{
		InitialEmotion: affect.Neutral,
		InitialShape:   body.Circle,
		InitialBPM:     config.InitialBPM(config.DefaultBPM),
		FrameRate:      frameRate,
		Width:          config.DefaultWidth,
		Height:         config.DefaultHeight,
		Families: map[gesture.Family]gesture.FamilyConfig{
			"bounce": {Priority: 10, QueueDepth: 4},
			"shake":  {Priority: 20, QueueDepth: 2},
			"glow":   {Priority: 5, QueueDepth: 4},
		},
		AudioTap: tap,
	})
	if err != nil {
		log.Error("mascotdemo: failed to construct engine", "err", err)
		os.Exit(1)
	}

	srv := telemetry.NewServer(eng, config.TelemetryPort(config.DefaultTelemetryPort))
	srv.StartAsync()
	defer srv.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()

	log.Info("mascotdemo: running")
	for {
		select {
		case <-ctx.Done():
			log.Info("mascotdemo: shutting down")
			return
		case <-ticker.C:
			eng.AdvanceFrame()
			srv.PublishFrame(eng.BodySnapshot(), eng.AffectSnapshot())
		}
	}
}
