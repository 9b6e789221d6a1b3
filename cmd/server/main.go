package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-blog-server/auth"
	"github.com/jrsteele09/go-blog-server/auth/sessions/redisstore"
	"github.com/jrsteele09/go-blog-server/blog"
	blogpg "github.com/jrsteele09/go-blog-server/blog/pgrepo"
	"github.com/jrsteele09/go-blog-server/internal/config"
	"github.com/jrsteele09/go-blog-server/internal/db"
	"github.com/jrsteele09/go-blog-server/search/esindex"
	"github.com/jrsteele09/go-blog-server/server"
	"github.com/jrsteele09/go-blog-server/token"
	userpg "github.com/jrsteele09/go-blog-server/users/pgrepo"
)

func main() {
	_ = godotenv.Load()
	log := newLogger(config.New())

	for {
		if err := run(log); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run(log zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, c.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("db.RunMigrations: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     c.GetRedisAddr(),
		Password: c.GetRedisPassword(),
		DB:       c.GetRedisDB(),
	})
	defer rdb.Close()

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{c.GetElasticsearchAddr()},
	})
	if err != nil {
		return fmt.Errorf("elasticsearch.NewClient: %w", err)
	}

	handler, err := newHandler(c, pool, rdb, esClient, log)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer, log)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// newHandler builds the service graph: signers, hasher and stores into the
// auth and blog services, and those into the HTTP server.
func newHandler(
	c config.Config,
	pool *pgxpool.Pool,
	rdb *redis.Client,
	esClient *elasticsearch.Client,
	log zerolog.Logger,
) (http.Handler, error) {
	accessSigner, err := token.NewSigner(c.GetAccessTokenSecret(), c.GetAccessTokenTTL())
	if err != nil {
		return nil, fmt.Errorf("access token.NewSigner: %w", err)
	}
	refreshSigner, err := token.NewSigner(c.GetRefreshTokenSecret(), c.GetRefreshTokenTTL())
	if err != nil {
		return nil, fmt.Errorf("refresh token.NewSigner: %w", err)
	}

	authService, err := auth.NewService(
		auth.Repos{
			Users:    userpg.NewUserRepo(pool),
			Sessions: redisstore.NewStore(rdb),
		},
		auth.NewArgon2idHasher(),
		accessSigner,
		refreshSigner,
		auth.WithThrottlePolicy(auth.ThrottlePolicy{
			MaxAttempts:   c.GetMaxLoginAttempts(),
			BlockDuration: c.GetLoginBlockDuration(),
		}),
		auth.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("auth.NewService: %w", err)
	}

	blogService, err := blog.NewService(
		blogpg.NewPostRepo(pool),
		esindex.NewIndexer(esClient, c.GetSearchIndexName()),
		blog.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("blog.NewService: %w", err)
	}

	return server.New(c, authService, blogService, log)
}

func newLogger(c config.Config) zerolog.Logger {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if c.GetEnv() == "DEV" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return log
}

func listenAndServe(httpServer *http.Server, log zerolog.Logger) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
