package diagnostics

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/simplyprint/ws-client/client"
	"github.com/simplyprint/ws-client/connmanager"
)

// Server exposes this process's protocol state and stored connectivity
// reports over a local-only HTTP API.
type Server struct {
	addr   string
	store  *Store
	mgr    *connmanager.Manager
	clients func() []*client.Client
	logger *zap.SugaredLogger

	engine     *gin.Engine
	httpServer *http.Server
}

// NewServer builds a diagnostics server bound to addr (e.g.
// "127.0.0.1:7125").
func NewServer(addr string, store *Store, mgr *connmanager.Manager, clients func() []*client.Client, logger *zap.SugaredLogger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{addr: addr, store: store, mgr: mgr, clients: clients, logger: logger, engine: gin.New()}
	s.engine.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/status", s.handleStatus)
	s.engine.GET("/reports", s.handleListReports)
	s.engine.GET("/reports/:name", s.handleGetReport)
	s.engine.POST("/reports/run", s.handleRunReport)
}

type clientStatus struct {
	UniqueID string `json:"unique_id"`
	ID       int    `json:"id"`
	InSetup  bool   `json:"in_setup"`
	State    string `json:"state"`
}

func (s *Server) handleStatus(c *gin.Context) {
	var out []clientStatus
	for _, cl := range s.clients() {
		out = append(out, clientStatus{
			UniqueID: cl.Config.UniqueID,
			ID:       cl.Config.ID,
			InSetup:  cl.Config.InSetup,
			State:    cl.State().String(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"clients": out})
}

func (s *Server) handleListReports(c *gin.Context) {
	names, err := s.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": names})
}

func (s *Server) handleGetReport(c *gin.Context) {
	data, err := s.store.Read(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) handleRunReport(c *gin.Context) {
	report := Run()
	path, err := s.store.Save(report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

// ListenAndServe starts the server and blocks until ctx is cancelled,
// then shuts down gracefully (moonraker/server.go's Start/Stop idiom).
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{Addr: s.addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
