// Package api serves transactions and savings progress over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/homerun-app/homerun/internal/config"
	"github.com/homerun-app/homerun/internal/model"
	"github.com/homerun-app/homerun/internal/pipeline"
)

// History lists recorded evaluation snapshots, newest first.
type History interface {
	RecentSnapshots(ctx context.Context, limit int) ([]model.Snapshot, error)
}

// GoalSaver persists an accepted goal change.
type GoalSaver func(config.GoalConfig) error

// Config wraps the knobs that impact runtime behavior.
type Config struct {
	Addr string
}

// Server exposes the Fiber application.
type Server struct {
	app      *fiber.App
	tracker  *pipeline.Tracker
	history  History
	saveGoal GoalSaver
	cfg      Config
}

// NewServer wires handlers and middleware. history and saveGoal may be nil.
func NewServer(cfg Config, tracker *pipeline.Tracker, history History, saveGoal GoalSaver) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Format: "${time} | ${status} | ${latency} | ${method} ${path}\n"}))
	app.Use(cors.New())

	srv := &Server{app: app, tracker: tracker, history: history, saveGoal: saveGoal, cfg: cfg}
	srv.registerRoutes()
	return srv
}

// App returns the underlying Fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts listening for HTTP traffic until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.app.Shutdown()
	}()

	log.Printf("[INFO] homerun API listening on %s", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) registerRoutes() {
	s.app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "homerun API is running!"})
	})
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/transactions", s.handleTransactions)

	api := s.app.Group("/api/v1")
	api.Get("/progress", s.handleProgress)
	api.Post("/refresh", s.handleRefresh)
	api.Put("/goal", s.handleSetGoal)
	api.Get("/weeks", s.handleWeeks)
	api.Get("/categories", s.handleCategories)
	api.Get("/history", s.handleHistory)
}

// current returns the last result, refreshing first when there is none or
// the caller asked for fresh data.
func (s *Server) current(c *fiber.Ctx) pipeline.Result {
	if res, ok := s.tracker.Current(); ok && !c.QueryBool("refresh", false) {
		return res
	}
	return s.tracker.Refresh(c.UserContext())
}

func (s *Server) handleTransactions(c *fiber.Ctx) error {
	res := s.current(c)
	txs := pipeline.SortByDate(res.Transactions)
	return c.JSON(fiber.Map{
		"data": fiber.Map{"transactions": toTransactionDTOs(txs)},
		"meta": fiber.Map{"count": len(txs), "source": s.tracker.SourceName()},
	})
}

func (s *Server) handleProgress(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": toProgressDTO(s.tracker.SourceName(), s.current(c))})
}

func (s *Server) handleRefresh(c *fiber.Ctx) error {
	res := s.tracker.Refresh(c.UserContext())
	return c.JSON(fiber.Map{
		"data": toProgressDTO(s.tracker.SourceName(), res),
		"meta": fiber.Map{"evaluated": res.Evaluated, "home_run": res.Cycle.HomeRun},
	})
}

func (s *Server) handleSetGoal(c *fiber.Ctx) error {
	var payload config.GoalConfig
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if err := payload.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	// Persist first so a failed save leaves the live goal untouched.
	if s.saveGoal != nil {
		if err := s.saveGoal(payload); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("save goal: %v", err))
		}
	}
	res := s.tracker.SetGoal(payload.Params())
	return c.JSON(fiber.Map{"data": toProgressDTO(s.tracker.SourceName(), res)})
}

func (s *Server) handleWeeks(c *fiber.Ctx) error {
	weeks := pipeline.WeeklyTotals(s.current(c).Transactions)
	if limit := c.QueryInt("limit", 0); limit > 0 && limit < len(weeks) {
		weeks = weeks[:limit]
	}
	return c.JSON(fiber.Map{"data": toWeekDTOs(weeks), "meta": fiber.Map{"count": len(weeks)}})
}

func (s *Server) handleCategories(c *fiber.Ctx) error {
	cats := pipeline.AggregateCategories(s.current(c).Transactions)
	out := make([]categoryDTO, 0, len(cats))
	for _, ct := range cats {
		out = append(out, categoryDTO{Category: ct.Category, Total: money(ct.Total), Count: ct.Count})
	}
	return c.JSON(fiber.Map{"data": out, "meta": fiber.Map{"count": len(out)}})
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	if s.history == nil {
		return fiber.NewError(fiber.StatusNotFound, "history is not recorded")
	}
	snaps, err := s.history.RecentSnapshots(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("list history: %v", err))
	}
	return c.JSON(fiber.Map{"data": toSnapshotDTOs(snaps), "meta": fiber.Map{"count": len(snaps)}})
}
