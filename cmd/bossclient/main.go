package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	httpadapter "bossbounty/internal/adapter/http"
	metricsinmem "bossbounty/internal/adapter/metrics/inmemory"
	gormrepo "bossbounty/internal/adapter/repo/gorm"
	"bossbounty/internal/adapter/repo/memory"
	"bossbounty/internal/adapter/signer/keypair"
	solprogram "bossbounty/internal/adapter/solana/program"
	"bossbounty/internal/adapter/solana/rpc"
	"bossbounty/internal/adapter/solana/ws"
	"bossbounty/internal/app/action"
	"bossbounty/internal/app/auth"
	"bossbounty/internal/app/ports"
	"bossbounty/internal/app/reconcile"
	"bossbounty/internal/app/replay"
	"bossbounty/internal/app/status"
	"bossbounty/migrations"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		hlog.Fatalf("config: %v", err)
	}
	hlog.SetLevel(cfg.LogLevel)

	events, closeJournal := mustBuildJournal(cfg)
	defer closeJournal()
	kpiRecorder := metricsinmem.NewRecorder()

	chain, err := rpc.NewClient(rpc.Config{
		Endpoint:        cfg.RPCURL,
		Commitment:      cfg.Commitment,
		StillActiveCode: cfg.StillActiveCode,
	})
	if err != nil {
		hlog.Fatalf("rpc client: %v", err)
	}
	signer := keypair.New(cfg.KeypairPath)

	session := reconcile.NewSession(reconcile.Config{
		Game:         cfg.GameAccount,
		Reader:       chain,
		Watcher:      &ws.Watcher{URL: cfg.WSURL, Commitment: cfg.Commitment},
		Events:       events,
		Metrics:      kpiRecorder,
		PollInterval: cfg.PollInterval,
	})

	notices := action.NewNoticeBoard(0)
	actions := &action.UseCase{
		Program: &solprogram.Client{
			Chain:       chain,
			Signer:      signer,
			ProgramID:   cfg.ProgramID,
			GameAccount: cfg.GameAccount,
		},
		Signer:           signer,
		Store:            session.Store,
		Reconciler:       session.Fetcher,
		Scheduler:        session.Scheduler,
		Events:           events,
		Metrics:          kpiRecorder,
		Notices:          notices,
		Now:              session.Now,
		ReconcileDelay:   cfg.ReconcileDelay,
		ClaimSettleDelay: cfg.ClaimSettle,
		ClaimRetryDelay:  cfg.ClaimRetry,
	}

	verify, err := auth.NewVerifyUseCase(cfg.OperatorKey)
	if err != nil {
		hlog.Fatalf("operator key: %v", err)
	}

	h := httpadapter.Handler{
		AuthUC: verify,
		StatusUC: status.UseCase{
			State:   session.Store,
			Signer:  signer,
			Actions: actions,
			Notices: notices,
			Now:     session.Now,
		},
		ActionUC:    actions,
		ReplayUC:    replay.UseCase{Events: events},
		KPI:         kpiRecorder,
		AllowOrigin: cfg.CORSOrigin,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if id, err := signer.Connect(ctx); err != nil {
		hlog.Warnf("wallet not connected, actions will retry: %v", err)
	} else {
		hlog.Infof("wallet connected identity=%s", id)
	}

	sessionDone := make(chan struct{})
	go func() {
		defer close(sessionDone)
		if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			hlog.Errorf("session stopped: %v", err)
		}
	}()

	s := server.Default(server.WithHostPorts(cfg.HTTPAddr))
	s.OnShutdown = append(s.OnShutdown, func(context.Context) {
		cancel()
		<-sessionDone
	})
	h.RegisterRoutes(s)

	hlog.Infof("boss client listening on %s game=%s program=%s rpc=%s", cfg.HTTPAddr, cfg.GameAccount, cfg.ProgramID, cfg.RPCURL)
	s.Spin()
}

func mustBuildJournal(cfg config) (ports.EventRepository, func()) {
	if cfg.DBDSN == "" {
		hlog.Infof("BOSS_DB_DSN not set, journal kept in memory")
		return memory.NewEventRepo(memory.NewStore(0)), func() {}
	}
	db, err := gormrepo.OpenPostgres(cfg.DBDSN)
	if err != nil {
		hlog.Fatalf("open postgres: %v", err)
	}
	if err := gormrepo.ApplyMigrations(context.Background(), db, migrationSource(cfg.MigrationsDir)); err != nil {
		hlog.Fatalf("migrate: %v", err)
	}
	return gormrepo.NewEventRepo(db), func() {
		if err := gormrepo.Close(db); err != nil {
			hlog.Warnf("close postgres: %v", err)
		}
	}
}

func migrationSource(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}
