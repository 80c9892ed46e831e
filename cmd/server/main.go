package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/Bubba898/luchadores-web/internal/config"
	"github.com/Bubba898/luchadores-web/internal/game"
	"github.com/Bubba898/luchadores-web/internal/ws"
)

var version = "dev" // Set at build time via -ldflags

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Luchadores - Build-a-face party game backend

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 3001 or PORT env var)

Environment Variables:
  PORT             Port to listen on (default: 3001)
  ALLOWED_ORIGINS  Comma-separated CORS origins (default: http://localhost:3000,http://127.0.0.1:3000)
  ROOM_TTL         Lifetime of a room before expiry (default: 30m)
  SWEEP_INTERVAL   How often expired rooms are swept (default: 5m)
`, os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("luchadores %s\n", version)
		return
	}

	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	cfg, err := config.FromEnv()
	if err != nil {
		zerologlog.Fatal().Err(err).Msg("invalid configuration")
	}
	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if path == "/host" || path == "/player" {
			return
		}
		zerologlog.Info().
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("dur", time.Since(start)).
			Msg("http")
	})
	r.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	registry := game.NewRegistry(cfg.RoomTTL, cfg.SweepInterval, zerologlog.Logger)
	go registry.Run(context.Background())

	sock := ws.New(registry, zerologlog.Logger)
	sock.Mount(r)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "luchadores backend")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})
	r.POST("/rooms", createRoomHandler(registry))

	zerologlog.Info().Str("port", port).Msg("listening")
	if err := r.Run(":" + port); err != nil {
		zerologlog.Fatal().Err(err).Msg("server stopped")
	}
}

// createRoomRequest carries optional overrides; unset fields keep their
// defaults. Validation beyond clamping is the caller's responsibility.
type createRoomRequest struct {
	PreviewTimeSec *int  `json:"previewTimeSec"`
	BuildTimeSec   *int  `json:"buildTimeSec"`
	VoteTimeSec    *int  `json:"voteTimeSec"`
	PartsPerPlayer *int  `json:"partsPerPlayer"`
	ShowMaskOnVote *bool `json:"showMaskOnVote"`
}

func createRoomHandler(registry *game.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRoomRequest
		// An empty body means "all defaults".
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_settings"})
			return
		}

		settings := game.DefaultSettings()
		if req.PreviewTimeSec != nil {
			settings.PreviewTimeSec = *req.PreviewTimeSec
		}
		if req.BuildTimeSec != nil {
			settings.BuildTimeSec = *req.BuildTimeSec
		}
		if req.VoteTimeSec != nil {
			settings.VoteTimeSec = *req.VoteTimeSec
		}
		if req.PartsPerPlayer != nil {
			settings.PartsPerPlayer = *req.PartsPerPlayer
		}
		if req.ShowMaskOnVote != nil {
			settings.ShowMaskOnVote = *req.ShowMaskOnVote
		}

		room := registry.CreateRoom(settings)
		c.JSON(http.StatusOK, gin.H{
			"code":     room.Code(),
			"settings": room.Settings(),
			"phase":    room.Phase(),
		})
	}
}
