package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"combatStore/config"
	"combatStore/handlers"
	"combatStore/models"
	"combatStore/repository"
	"combatStore/services"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var cfg config.Config
var db *sqlx.DB
var rdb *redis.Client

func main() {
	app := &cli.App{
		Name:  "combatstore",
		Usage: "combat gear storefront backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "optional dotenv file read before the environment"},
		},
		Before: func(c *cli.Context) (err error) {
			cfg, err = config.Load(c.String("env-file"))
			if err != nil {
				return
			}
			return cfg.SetupLogging()
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "skip-migrate", Usage: "do not apply migrations on start"},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations",
				Action: migrate,
			},
			{
				Name:  "create-user",
				Usage: "create an account, e.g. the first admin",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"CREATE_USER_PASSWORD"}},
					&cli.StringFlag{Name: "role", Value: string(models.RoleUser)},
				},
				Action: createUser,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("combatstore")
	}
}

func serve(c *cli.Context) error {
	if err := initDB(c.Context); err != nil {
		return err
	}
	defer db.Close()
	defer rdb.Close()

	if !c.Bool("skip-migrate") {
		if err := repository.MigrateUp(db.DB); err != nil {
			return err
		}
	}

	pR, err := repository.NewProductRepository(db)
	if err != nil {
		return err
	}
	uR, err := repository.NewUserRepository(db)
	if err != nil {
		return err
	}
	oR, err := repository.NewOrderRepository(db)
	if err != nil {
		return err
	}
	sR, err := repository.NewSessionRepository(rdb, cfg.SessionTTL)
	if err != nil {
		return err
	}
	cartR, err := repository.NewCartRepository(rdb, cfg.CartTTL)
	if err != nil {
		return err
	}
	events, err := newDispatcher()
	if err != nil {
		return err
	}
	defer events.Close()

	authz := services.RoleAuthorizer{}
	catalog := services.NewCatalogService(pR)
	hp := handlers.HandlerParams{
		IdService:      services.NewIdentityService(uR, sR, cartR),
		CatalogService: catalog,
		CrtService:     services.NewCartService(catalog, cartR),
		OrdService:     services.NewOrderService(oR, cartR, events, authz),
		AdminService:   services.NewAdminCatalogService(pR, catalog, authz),
		Authorizer:     authz,
		SessionTTL:     cfg.SessionTTL,
	}
	router := handlers.NewRouter(handlers.NewHandler(hp))

	killSignalChan := getKillSignalChan()
	srv := startServer(router)
	waitForKillSignalChan(killSignalChan)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func migrate(c *cli.Context) error {
	if err := initDB(c.Context); err != nil {
		return err
	}
	defer db.Close()
	defer rdb.Close()
	return repository.MigrateUp(db.DB)
}

func createUser(c *cli.Context) error {
	if err := initDB(c.Context); err != nil {
		return err
	}
	defer db.Close()
	defer rdb.Close()

	uR, err := repository.NewUserRepository(db)
	if err != nil {
		return err
	}
	sR, err := repository.NewSessionRepository(rdb, cfg.SessionTTL)
	if err != nil {
		return err
	}
	cartR, err := repository.NewCartRepository(rdb, cfg.CartTTL)
	if err != nil {
		return err
	}
	ids := services.NewIdentityService(uR, sR, cartR)
	profile, err := ids.CreateUser(c.Context, models.SignupData{
		Username: c.String("username"),
		Email:    c.String("email"),
		Password: c.String("password"),
	}, models.Role(c.String("role")))
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"id": profile.Id, "username": profile.Username, "role": profile.Role}).Info("user created")
	return nil
}

func newDispatcher() (repository.EventDispatcher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("no kafka brokers configured, order events are logged only")
		return repository.LogDispatcher{}, nil
	}
	return repository.NewKafkaDispatcher(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic)
}

func initDB(ctx context.Context) (err error) {
	db, err = sqlx.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return errors.Wrap(err, "open postgres")
	}
	pingCtx, cncl := context.WithTimeout(ctx, 5*time.Second)
	defer cncl()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return errors.Wrap(err, "postgres is not working")
	}
	log.WithField("host", cfg.Database.Host).Info("db connected")

	rdb = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err = rdb.Ping(pingCtx).Err(); err != nil {
		db.Close()
		rdb.Close()
		return errors.Wrap(err, "redis is not working")
	}
	log.WithField("addr", cfg.Redis.Addr()).Info("redis connected")
	return nil
}

func startServer(router http.Handler) *http.Server {
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("starting server...")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()
	return srv
}

func getKillSignalChan() chan os.Signal {
	osKillSignalChan := make(chan os.Signal, 1)
	signal.Notify(osKillSignalChan, os.Interrupt, syscall.SIGTERM)
	return osKillSignalChan
}

func waitForKillSignalChan(killSignalChan <-chan os.Signal) {
	killSignal := <-killSignalChan
	switch killSignal {
	case os.Interrupt:
		log.Info("Got SIGINT...")
	case syscall.SIGTERM:
		log.Info("Got SIGTERM...")
	}
}
