package webview

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard/internal/contract"
	"github.com/pulseboard/pulseboard/internal/outwriter"
	"github.com/pulseboard/pulseboard/schema"
	"go.uber.org/zap"
)

//go:embed templates/index.html
var templateFS embed.FS

// Server serves the interactive dashboard.
type Server struct {
	snapshot  *Snapshot
	dashboard *contract.DashboardConfig
	addr      string
	log       *zap.Logger
}

// NewServer wires the snapshot and dashboard configuration into an HTTP server.
func NewServer(snapshot *Snapshot, dashboard *contract.DashboardConfig, addr string, log *zap.Logger) *Server {
	return &Server{snapshot: snapshot, dashboard: dashboard, addr: addr, log: log}
}

// Run starts the artifact watcher and the HTTP server, and shuts both down
// when ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		if err := s.snapshot.Watch(ctx); err != nil {
			s.log.Warn("artifact watcher stopped", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("dashboard listening", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// router assembles the gin engine with all dashboard routes.
func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/index.html")))

	r.GET("/", s.handleIndex)
	r.GET("/api/rows", s.handleRows)
	r.GET("/api/squads", s.handleSquads)
	r.GET("/healthz", s.handleHealth)
	return r
}

// view builds the display slice of the current snapshot for the requested
// squad filter.
func (s *Server) view(squadParam string) (outwriter.View, time.Time, error) {
	table, loadedAt := s.snapshot.Table()
	cfg := &contract.Config{
		Squads:    contract.ParseSquadFilter(squadParam),
		Dashboard: s.dashboard,
	}
	view, err := outwriter.BuildView(table, cfg)
	return view, loadedAt, err
}

type indexCell struct {
	Text   string
	IsBool bool
	Bool   bool
	IsNull bool
}

type indexRow struct {
	Repo    string
	Updated string
	Squads  []string
	Cells   []indexCell
}

func (s *Server) handleIndex(c *gin.Context) {
	squadParam := c.Query("squad")
	view, loadedAt, err := s.view(squadParam)
	if err != nil {
		var ferr *schema.FilterError
		if errors.As(err, &ferr) {
			c.HTML(http.StatusBadRequest, "index.html", gin.H{
				"Error":  ferr.Error(),
				"Squads": s.dashboard.SquadNames(),
			})
			return
		}
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	rows := make([]indexRow, len(view.Rows))
	for i, r := range view.Rows {
		cells := make([]indexCell, len(view.Columns))
		for j, col := range view.Columns {
			v := r.Metrics[col]
			cells[j] = indexCell{
				Text:   v.Display(),
				IsBool: v.Kind == schema.BoolKind,
				Bool:   v.Bool,
				IsNull: v.IsNull(),
			}
		}
		rows[i] = indexRow{
			Repo:    r.Repo,
			Updated: r.Timestamp.UTC().Format("2006-01-02"),
			Squads:  s.dashboard.SquadsOf(r.Repo),
			Cells:   cells,
		}
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Headers":     view.Headers,
		"Rows":        rows,
		"TotalRows":   view.TotalRows,
		"Squads":      s.dashboard.SquadNames(),
		"ActiveSquad": squadParam,
		"GeneratedAt": view.GeneratedAt.UTC().Format(time.RFC3339),
		"LoadedAt":    loadedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRows(c *gin.Context) {
	view, loadedAt, err := s.view(c.Query("squad"))
	if err != nil {
		var ferr *schema.FilterError
		if errors.As(err, &ferr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ferr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	rows := make([]gin.H, len(view.Rows))
	for i, r := range view.Rows {
		metrics := make(map[string]any, len(view.Columns))
		for _, col := range view.Columns {
			metrics[col] = r.Metrics[col].JSON()
		}
		rows[i] = gin.H{
			"repo_name":     r.Repo,
			"snapshot_time": r.Timestamp.UTC().Format(time.RFC3339),
			"squads":        s.dashboard.SquadsOf(r.Repo),
			"metrics":       metrics,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"generated_at": view.GeneratedAt.UTC().Format(time.RFC3339),
		"loaded_at":    loadedAt.UTC().Format(time.RFC3339),
		"columns":      view.Columns,
		"rows":         rows,
	})
}

func (s *Server) handleSquads(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"squads": s.dashboard.SquadNames()})
}

func (s *Server) handleHealth(c *gin.Context) {
	table, loadedAt := s.snapshot.Table()
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"rows":      len(table.Rows),
		"loaded_at": loadedAt.UTC().Format(time.RFC3339),
	})
}
