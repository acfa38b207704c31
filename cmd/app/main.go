package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"rental/cmd"
	"rental/internal/adapters/out/postgres/orderrepo"
	"rental/internal/adapters/out/postgres/statuschangerepo"
	"rental/internal/adapters/out/rabbitmq"
	"rental/internal/core/ports"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: configs.SlogLevel()}))

	policy, err := cmd.LoadPolicy(configs.PolicyFile)
	if err != nil {
		log.Fatalf("Error loading policy: %v", err)
	}
	if policy, err = policy.WithTaxRate(configs.TaxRatePct); err != nil {
		log.Fatalf("Error applying TAX_RATE_PCT: %v", err)
	}

	gormDB := openDatabase(configs)

	var publisher ports.StatusChangePublisher
	if configs.EventsEnabled() {
		conn, dialErr := rabbitmq.Dial(configs.RabbitMQURL)
		if dialErr != nil {
			log.Fatalf("Error connecting to RabbitMQ: %v", dialErr)
		}
		defer func() { _ = conn.Close() }()

		p, pubErr := rabbitmq.NewStatusChangePublisher(conn.Channel, configs.RabbitMQExchange)
		if pubErr != nil {
			log.Fatalf("Error declaring exchange: %v", pubErr)
		}
		publisher = p
	}

	app, err := cmd.NewCompositionRoot(configs, policy, gormDB, publisher, logger)
	if err != nil {
		log.Fatalf("Error building application: %v", err)
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:         goDotEnvVariable("HTTP_PORT"),
		DBHost:           goDotEnvVariable("DB_HOST"),
		DBPort:           goDotEnvVariable("DB_PORT"),
		DBUser:           goDotEnvVariable("DB_USER"),
		DBPassword:       goDotEnvVariable("DB_PASSWORD"),
		DBName:           goDotEnvVariable("DB_NAME"),
		DBSslMode:        goDotEnvVariable("DB_SSLMODE"),
		LogLevel:         goDotEnvVariable("LOG_LEVEL"),
		RabbitMQURL:      goDotEnvVariable("RABBITMQ_URL"),
		RabbitMQExchange: goDotEnvVariable("RABBITMQ_EXCHANGE"),
		PolicyFile:       goDotEnvVariable("POLICY_FILE"),
		TaxRatePct:       goDotEnvVariable("TAX_RATE_PCT"),
		OverdueSchedule:  goDotEnvVariable("OVERDUE_CRON"),
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func openDatabase(configs cmd.Config) *gorm.DB {
	gormDB, err := gorm.Open(postgres.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	err = gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.OrderItemDTO{},
		&statuschangerepo.StatusChangeDTO{},
	)
	if err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}
	return gormDB
}

func startWebServer(app cmd.CompositionRoot, port string) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := echo.New()
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	app.CreateHTTPServer(reg).RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
