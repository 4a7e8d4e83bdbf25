package telemetry

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/fernglow/mascotcore/internal/log"
	"github.com/fernglow/mascotcore/pkg/affect"
	"github.com/fernglow/mascotcore/pkg/body"
	"github.com/fernglow/mascotcore/pkg/engine"
)

// Frame is one tick's externally visible state, broadcast to every
// connected viewer over /ws/frames.
type Frame struct {
	Affect        affect.AffectSnapshot `json:"affect"`
	Body          body.Directive        `json:"body"`
	LiveParticles int                   `json:"live_particles"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server is the optional debug dashboard: a tiny gin engine serving the
// latest diagnostics snapshot over REST and a live frame feed over
// websocket. Disabled by default; a host must explicitly construct and
// start one.
type Server struct {
	router *gin.Engine
	http   *http.Server
	port   string

	frameHub *hub
	eng      *engine.Engine
}

// NewServer constructs a debug server bound to eng. It does not listen
// until Start is called.
func NewServer(eng *engine.Engine, port string) *Server {
	s := &Server{
		port:     port,
		frameHub: newHub("frames"),
		eng:      eng,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	r.GET("/api/diagnostics", s.handleDiagnostics)
	r.GET("/ws/frames", s.handleFrames)

	s.router = r
	s.http = &http.Server{Addr: ":" + port, Handler: r}
	return s
}

// Start runs the frame broadcast hub and begins listening; blocks until
// the server stops.
func (s *Server) Start() error {
	go s.frameHub.run()
	log.Info("telemetry: listening", "port", s.port)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// StartAsync starts the server in a goroutine, logging (not panicking) on
// failure — a debug dashboard going down must never take the mascot down
// with it.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("telemetry: server stopped", "err", err)
		}
	}()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.http.Shutdown(context.Background())
}

// PublishFrame broadcasts the engine's current externally visible state
// to every connected viewer. A host's tick loop calls this once per
// frame; a host with no telemetry server never imports this package.
func (s *Server) PublishFrame(body body.Directive, affectSnap affect.AffectSnapshot) {
	s.frameHub.BroadcastJSON(Frame{
		Affect:        affectSnap,
		Body:          body,
		LiveParticles: s.eng.LiveParticleCount(),
	})
}

func (s *Server) handleDiagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, s.eng.Diagnostics())
}

func (s *Server) handleFrames(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("telemetry: websocket upgrade failed", "err", err)
		return
	}
	newClient(s.frameHub, conn).run()
}
