// Package httpapi exposes the chat service over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mviktors/minichat/internal/logging"
	"github.com/mviktors/minichat/internal/server/models"
)

// Chat is the part of the chat service the HTTP layer depends on.
type Chat interface {
	Ping(ctx context.Context) error
	Login(ctx context.Context, username string) (*models.User, error)
	IsLoggedIn(ctx context.Context, username string) (*models.User, error)
	AddMessage(ctx context.Context, msg string, author *models.User) (*models.Message, error)
	FindMessage(ctx context.Context, id int64) (*models.Message, error)
	FindUser(ctx context.Context, id int64) (*models.User, error)
	FindAllMessages(ctx context.Context) ([]*models.Message, error)
	DeleteMessage(ctx context.Context, id int64) error
}

type Server struct {
	address         string
	chat            Chat
	logger          logging.Logger
	jwtSecret       []byte
	sessionValidity time.Duration
}

func NewServer(addr string, l logging.Logger, chat Chat, secretKey string, sessionValidity time.Duration) *Server {
	return &Server{
		address:         addr,
		chat:            chat,
		logger:          l.With("module", "http_server"),
		jwtSecret:       []byte(secretKey),
		sessionValidity: sessionValidity,
	}
}

// Router assembles the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.health)

	api := r.Group("/api")
	api.POST("/login", s.login)
	api.POST("/logout", s.logout)

	authed := api.Group("")
	authed.Use(s.authMiddleware())
	authed.GET("/session", s.session)
	authed.GET("/msgs", s.listMessages)
	authed.POST("/msgs", s.createMessage)
	authed.GET("/msgs/:id", s.getMessage)
	authed.DELETE("/msgs/:id", s.deleteMessage)
	authed.GET("/users/:id", s.getUser)

	return r
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{Addr: s.address, Handler: s.Router()}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
