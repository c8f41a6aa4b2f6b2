package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"outreach-backend/internal/coverletter"
	"outreach-backend/internal/jobs"
	"outreach-backend/internal/mail"
	"outreach-backend/internal/optimize"
	"outreach-backend/internal/outreach"
	"outreach-backend/internal/queue"
	"outreach-backend/internal/quota"
	"outreach-backend/internal/resumes"
	"outreach-backend/internal/shared/config"
	"outreach-backend/internal/shared/metrics"
	"outreach-backend/internal/shared/server"
	"outreach-backend/internal/shared/storage/db"
)

// App holds shared dependencies for the API and the embedded send worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Queue  *queue.MemoryClient

	JobsRepo     jobs.Repo
	ResumesRepo  resumes.Repo
	ResultsRepo  optimize.Repo
	OutreachRepo outreach.Repo

	QuotaService       *quota.Service
	OptimizeService    *optimize.Service
	CoverLetterService *coverletter.Service
	OutreachService    *outreach.Service
	Manager            *outreach.Manager
	Transport          mail.Transport
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Queue:  queue.NewMemoryClient(256),
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             cfg,
		JobsHandler:        jobs.NewHandler(app.JobsRepo),
		ResumesHandler:     resumes.NewHandler(app.ResumesRepo),
		OptimizeHandler:    optimize.NewHandler(app.OptimizeService),
		CoverLetterHandler: coverletter.NewHandler(app.CoverLetterService),
		OutreachHandler:    outreach.NewHandler(app.OutreachService),
		QuotaHandler:       quota.NewHandler(app.QuotaService),
	})

	return app, nil
}

// Close releases the app's long-lived resources.
func (a *App) Close() {
	if a.Queue != nil {
		a.Queue.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildServices(app *App) {
	cfg := app.Config

	if app.DB != nil {
		app.JobsRepo = &jobs.PGRepo{DB: app.DB}
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.ResultsRepo = &optimize.PGRepo{DB: app.DB}
		app.OutreachRepo = &outreach.PGRepo{DB: app.DB}
		app.QuotaService = quota.NewPostgresService(quota.NewPGStore(app.DB))
	} else {
		app.JobsRepo = jobs.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.ResultsRepo = optimize.NewMemoryRepo()
		app.OutreachRepo = outreach.NewMemoryRepo()
		app.QuotaService = quota.NewService()
	}

	app.Transport = &mail.SimTransport{}

	app.Manager = outreach.NewManager(app.OutreachRepo, app.Transport, outreach.TimerScheduler{}, outreach.ManagerConfig{
		SendTimeout:      cfg.SendTimeout,
		SimulateProvider: cfg.SimulateProvider,
		DeliveredDelay:   cfg.DeliveredDelay,
		OpenedDelay:      cfg.OpenedDelay,
		RepliedDelay:     cfg.RepliedDelay,
	})

	// The email_send quota is consumed when a message reaches Sent, not at
	// dispatch. The same listener feeds the outreach counters.
	app.Manager.Subscribe(func(msg outreach.Message, ev outreach.DeliveryEvent) {
		switch ev.Kind {
		case outreach.EventSent:
			if _, err := app.QuotaService.Consume(context.Background(), msg.UserID, quota.ActionSendEmail); err != nil {
				log.Printf("bootstrap: consume email_send quota: %v", err)
			}
			metrics.IncOutreachSent()
		case outreach.EventDeliveryFailed:
			metrics.IncOutreachFailed()
		case outreach.EventReplied:
			metrics.IncOutreachReplied()
		}
	})

	app.OptimizeService = &optimize.Service{
		Engine:  optimize.NewEngine(),
		Repo:    app.ResultsRepo,
		Jobs:    app.JobsRepo,
		Resumes: app.ResumesRepo,
		Quota:   app.QuotaService,
	}
	app.CoverLetterService = &coverletter.Service{
		Results: app.ResultsRepo,
		Jobs:    app.JobsRepo,
		Quota:   app.QuotaService,
	}
	app.OutreachService = outreach.NewService(
		app.OutreachRepo,
		app.Manager,
		app.JobsRepo,
		app.ResultsRepo,
		app.QuotaService,
		app.Queue,
		cfg.SenderEmail,
	)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
