package httpapi

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"sync"
	"time"

	"utility-kpi/internal/application/auth"
	"utility-kpi/internal/application/dataingestion"
	"utility-kpi/internal/application/reports"
	"utility-kpi/internal/infra/cache"
	"utility-kpi/internal/infra/memory"
	authinfra "utility-kpi/internal/infrastructure/auth"
	"utility-kpi/internal/infrastructure/config"
	"utility-kpi/internal/infrastructure/format"
	"utility-kpi/internal/infrastructure/metrics"
	"utility-kpi/internal/infrastructure/notify"
	"utility-kpi/internal/infrastructure/persistence/postgres"
	"utility-kpi/internal/infrastructure/source"

	"github.com/gin-gonic/gin"
)

const (
	errCodeBadRequest         = "BAD_REQUEST"
	errCodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	errCodeUnauthorized       = "AUTH_UNAUTHORIZED"
	errCodeForbidden          = "AUTH_FORBIDDEN"
	errCodeSnapshotNotReady   = "SNAPSHOT_NOT_READY"
	errCodeNotFound           = "NOT_FOUND"
	errCodeInternal           = "INTERNAL_ERROR"
	accessCookieName          = "access_token"
)

const (
	seedTimeout   = 5 * time.Second
	reloadTimeout = 2 * time.Minute
)

// Server 封裝 HTTP 路由與依賴。
type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	db        *sql.DB
	store     *memory.Store
	authRepo  auth.UserRepository
	tokenSvc  *authinfra.JWTIssuer
	loginUC   *auth.LoginUseCase
	ingestUC  *dataingestion.IngestUseCase
	reportsUC *reports.UseCase
	memo      *cache.Memo
	metrics   *metrics.Metrics
	money     *format.CurrencyFormatter
	tgClient  *notify.TelegramClient

	reloadMu   sync.Mutex
	lastMu     sync.RWMutex
	lastIngest *ingestStatus
}

type ingestStatus struct {
	Result   dataingestion.IngestResult `json:"result"`
	Error    string                     `json:"error,omitempty"`
	Started  time.Time                  `json:"started"`
	Finished time.Time                  `json:"finished"`
}

// NewServer 建立 API 伺服器並完成第一次資料載入；db 為 nil 時帳號與快照都只存在記憶體。
func NewServer(cfg config.Config, db *sql.DB) *Server {
	cfg = config.WithDefaults(cfg)
	store := memory.NewStore()
	store.SeedUsers()

	var authRepo auth.UserRepository = store
	if db != nil {
		pgAuth := postgres.NewAuthRepo(db)
		ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
		if err := pgAuth.SeedDefaults(ctx); err != nil {
			log.Printf("[Auth] seed defaults failed: %v", err)
		}
		cancel()
		authRepo = pgAuth
	}

	m := metrics.New()
	memo, err := cache.New(cache.Config{
		Enabled:     cfg.Cache.Enabled,
		NumCounters: cfg.Cache.NumCounters,
		MaxCost:     cfg.Cache.MaxCost,
	}, m)
	if err != nil {
		log.Printf("[Cache] %v; falling back to direct computation", err)
		memo, _ = cache.New(cache.Config{}, m)
	}

	tokenSvc := authinfra.NewJWTIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	s := &Server{
		cfg:       cfg,
		db:        db,
		store:     store,
		authRepo:  authRepo,
		tokenSvc:  tokenSvc,
		loginUC:   auth.NewLoginUseCase(authRepo, authinfra.BcryptHasher{}, tokenSvc),
		ingestUC:  dataingestion.NewIngestUseCase(recordSource(cfg.Ingestion, db), store).WithInactiveBalance(cfg.Ingestion.EnforceInactiveBalance).WithRecorder(m),
		reportsUC: reports.NewUseCase(store, memo).WithRecorder(m),
		memo:      memo,
		metrics:   m,
		money:     format.NewCurrencyFormatter(cfg.Currency.EURRate),
	}
	tg := cfg.Notifier.Telegram
	if tg.Enabled && tg.Token != "" && tg.ChatID != 0 {
		s.tgClient = notify.NewTelegramClient(tg.Token, tg.ChatID, tg.Prefix)
	}

	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()
	if _, err := s.Reload(ctx); err != nil {
		log.Printf("[Ingestion] initial load failed: %v", err)
	}

	s.registerRoutes()
	return s
}

// recordSource 依設定選擇資料來源；postgres 沒有連線時退回合成資料。
func recordSource(cfg config.IngestionConfig, db *sql.DB) dataingestion.RecordSource {
	switch cfg.Source {
	case config.SourceCSV:
		return source.NewCSVFile(cfg.CSVPath)
	case config.SourcePostgres:
		if db != nil {
			return postgres.NewRecordRepo(db)
		}
		log.Printf("[Ingestion] postgres source without db connection, using synthetic data")
	}
	return source.NewSynthetic(cfg.Seed, cfg.StartYear, cfg.Months)
}

// Handler 回傳路由處理器，供 HTTP server 掛載。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Store 主要用於測試注入資料。
func (s *Server) Store() *memory.Store {
	return s.store
}

// Reports 回傳報表用例，供其他介面（CLI、通知）共用。
func (s *Server) Reports() *reports.UseCase {
	return s.reportsUC
}

// Close 釋放快取資源。
func (s *Server) Close() {
	s.memo.Close()
}

// Reload 重新載入資料並發布新快照；同一時間只會有一次載入。
func (s *Server) Reload(ctx context.Context) (dataingestion.IngestResult, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	status := &ingestStatus{Started: time.Now()}
	res, err := s.ingestUC.Execute(ctx)
	status.Result = res
	status.Finished = time.Now()
	if err != nil {
		status.Error = err.Error()
	} else {
		// 舊快照的結果不會再被命中
		s.memo.Clear()
		log.Printf("[Ingestion] snapshot=%s source=%s loaded=%d failed=%d", res.SnapshotID, res.Source, res.SuccessCount, res.FailedCount)
	}

	s.lastMu.Lock()
	s.lastIngest = status
	s.lastMu.Unlock()
	return res, err
}

// Start 啟動背景工作：定期重新載入與 Telegram 摘要推播，ctx 結束時停止。
func (s *Server) Start(ctx context.Context) {
	if interval := s.cfg.Ingestion.ReloadInterval; interval > 0 {
		go s.reloadLoop(ctx, interval)
	}
	if s.tgClient != nil {
		code, err := format.ParseCode(s.cfg.Currency.Default)
		if err != nil {
			code = format.CodeFCFA
		}
		job := notify.NewDigestJob(s.tgClient, notify.DigestSourceFunc(func(ctx context.Context) (string, error) {
			return s.reportsUC.Digest(ctx, func(v float64) string {
				return s.money.Format(v, code, format.ModeCompact)
			})
		}), s.cfg.Notifier.Telegram.Interval)
		go job.Run(ctx)
	}
}

func (s *Server) reloadLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rctx, cancel := context.WithTimeout(ctx, reloadTimeout)
			if _, err := s.Reload(rctx); err != nil {
				log.Printf("[Ingestion] scheduled reload failed, keeping previous snapshot: %v", err)
			}
			cancel()
		}
	}
}

func (s *Server) registerRoutes() {
	r := gin.New()
	r.Use(gin.Recovery(), s.ginLogger(), corsMiddleware())

	api := r.Group("/api")
	api.GET("/ping", s.handlePing)
	api.GET("/health", s.handleHealth)
	api.POST("/auth/login", s.handleLogin)

	read := api.Group("", s.requireAuth(auth.PermReportsRead))
	read.GET("/filters", s.handleFilters)
	read.GET("/kpi/summary", s.handleSummary)
	read.GET("/kpi/comparison", s.handleComparison)
	read.GET("/kpi/trend", s.handleTrend)
	read.GET("/kpi/groups", s.handleGroups)
	read.GET("/reports/:name", s.handleReport)

	api.GET("/export/csv", s.requireAuth(auth.PermExportCSV), s.handleExportCSV)
	api.POST("/admin/ingestion/reload", s.requireAuth(auth.PermIngestionReload), s.handleIngestionReload)
	api.GET("/admin/ingestion/status", s.requireAuth(auth.PermSystemHealth), s.handleIngestionStatus)

	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	s.engine = r
}
