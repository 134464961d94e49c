package main

import (
	"database/sql"
	"os"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.uber.org/zap"

	"github.com/biblio-hq/biblio"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	_ = godotenv.Load()

	zl, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer zl.Sync()

	logger := &zapLogger{sugar: zl.Sugar()}

	cfg := biblio.ConfigFromEnv()
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		logger.Error("SECRET_KEY and REFRESH_SECRET_KEY must be set")
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL must be set")
		os.Exit(1)
	}

	sqldb, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer sqldb.Close()

	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	repos := biblio.NewRepositoryManager(db)
	server := biblio.NewServer(cfg, repos, logger)

	if err := server.Listen(); err != nil {
		logger.Error("server stopped: %v", err)
		os.Exit(1)
	}
}

// zapLogger adapts a zap sugared logger to the printf-style Logger surface.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

func (l *zapLogger) Debug(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *zapLogger) Info(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *zapLogger) Warn(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *zapLogger) Error(format string, args ...any) { l.sugar.Errorf(format, args...) }
