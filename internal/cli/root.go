package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/product_catalog/internal/config"
	"github.com/Skotchmaster/product_catalog/internal/db"
	"github.com/Skotchmaster/product_catalog/internal/logging"
	"github.com/Skotchmaster/product_catalog/internal/mykafka"
	"github.com/Skotchmaster/product_catalog/internal/repo"
	"github.com/Skotchmaster/product_catalog/internal/service"
)

// app holds what the commands share. cfg and db are loaded lazily unless
// already set.
type app struct {
	envFile  string
	cfg      *config.Config
	db       *gorm.DB
	logger   *slog.Logger
	producer *mykafka.Producer
	ownsDB   bool
}

func (a *app) setup(ctx context.Context) error {
	if a.cfg == nil {
		cfg, err := config.Load(a.envFile)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.logger == nil {
		a.logger = logging.New(a.cfg.LogLevel).With("service", a.cfg.ServiceName, "cmd", "catalogctl")
	}
	if a.db == nil {
		gdb, err := db.Open(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return err
		}
		a.db = gdb
		a.ownsDB = true
	}
	return nil
}

func (a *app) close() {
	if a.producer != nil {
		_ = a.producer.Close()
		a.producer = nil
	}
	if a.ownsDB && a.db != nil {
		_ = db.Close(a.db)
		a.db = nil
	}
}

func (a *app) repo() *repo.GormRepo {
	return repo.New(a.db)
}

func (a *app) users() (*service.UserService, error) {
	var publisher mykafka.Publisher = mykafka.Noop{}
	if a.cfg.KafkaEnabled() {
		p, err := mykafka.NewProducer(a.cfg.KafkaBrokers)
		if err != nil {
			return nil, err
		}
		a.producer = p
		publisher = p
	}
	return &service.UserService{Repo: a.repo(), Publisher: publisher}, nil
}

// commandContext carries the app logger and a timeout.
func (a *app) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	if a.logger != nil {
		ctx = logging.IntoContext(ctx, a.logger)
	}
	return ctx, cancel
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Management commands for the product catalog",
		Long:          "catalogctl runs migrations, manages users and permissions, and rebuilds the search index.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return a.setup(ctx)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(
		newMigrateCmd(a),
		newCreateSuperuserCmd(a),
		newCreateUserCmd(a),
		newGrantCmd(a),
		newDeleteUserCmd(a),
		newReindexCmd(a),
	)
	return root
}

// Execute runs the CLI
func Execute() error {
	a := &app{}
	defer a.close()

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
