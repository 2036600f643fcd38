package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/taskmaster/dayboard/internal/adapters/platform"
	"github.com/taskmaster/dayboard/internal/adapters/repository"
	"github.com/taskmaster/dayboard/internal/application/notelist"
	"github.com/taskmaster/dayboard/internal/application/services"
	"github.com/taskmaster/dayboard/internal/domain/entities"
	"github.com/taskmaster/dayboard/internal/infrastructure/config"
	"github.com/taskmaster/dayboard/internal/infrastructure/database"
	"github.com/taskmaster/dayboard/internal/infrastructure/logger"
	"github.com/taskmaster/dayboard/internal/infrastructure/server"
	"github.com/taskmaster/dayboard/internal/ports"
)

// Version information, set at build time
var (
	Version   = "dev"
	GitCommit = "development"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Dayboard API server",
		Long:  "Start the Dayboard API server with all configured routes and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage the self-hosted postgres schema (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration("up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration("down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			return withBackend(func(ctx context.Context, env *environment) error {
				session, err := env.sessions.SignUp(ctx, entities.SignUpCredentials{
					Name:            name,
					Email:           email,
					Password:        password,
					ConfirmPassword: password,
				})
				if err != nil {
					return err
				}

				fmt.Printf("User created successfully:\n")
				fmt.Printf("  ID: %s\n", session.UserID)
				fmt.Printf("  Email: %s\n", session.Email)
				return nil
			})
		},
	}

	createUserCmd.Flags().String("name", "", "Display name (required)")
	createUserCmd.Flags().String("email", "", "User email (required)")
	createUserCmd.Flags().String("password", "", "User password, at least 8 characters (required)")
	_ = createUserCmd.MarkFlagRequired("name")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")

	userCmd.AddCommand(createUserCmd)
	return userCmd
}

// NewNotesCommand lists the signed-in user's notes
func NewNotesCommand() *cobra.Command {
	notesCmd := &cobra.Command{
		Use:   "notes",
		Short: "List your notes, optionally filtered by a search query",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, _ := cmd.Flags().GetString("query")
			recent, _ := cmd.Flags().GetBool("recent")

			return withSession(cmd, func(ctx context.Context, env *environment, userID string) error {
				notes := env.notes.FetchUserNotes(ctx, userID)
				if recent {
					notes = entities.RecentNotes(notes)
				}

				search := notelist.New(notes)
				search.SetQuery(query)
				if search.TagMode() {
					fmt.Println("Tag search")
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tTAGS\tUPDATED")
				for _, note := range search.Filtered() {
					star := ""
					if note.Starred {
						star = "* "
					}
					fmt.Fprintf(w, "%s\t%s%s\t%v\t%s\n", note.ID, star, note.Title, note.Tags, note.UpdatedAt)
				}
				return w.Flush()
			})
		},
	}

	addSessionFlags(notesCmd)
	notesCmd.Flags().StringP("query", "q", "", "Case-insensitive search in note content")
	notesCmd.Flags().Bool("recent", false, "Only the most recently updated notes")
	return notesCmd
}

// NewTasksCommand lists and cycles the signed-in user's tasks
func NewTasksCommand() *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, env *environment, userID string) error {
				return printTasks(env.tasks.FetchUserTasks(ctx, userID))
			})
		},
	}
	addSessionFlags(listCmd)

	cycleCmd := &cobra.Command{
		Use:   "cycle <task-id>",
		Short: "Advance a task to its next status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, env *environment, userID string) error {
				tasks, err := env.tasks.CycleTask(ctx, userID, args[0])
				if err != nil {
					return err
				}
				return printTasks(tasks)
			})
		},
	}
	addSessionFlags(cycleCmd)

	tasksCmd.AddCommand(listCmd, cycleCmd)
	return tasksCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Dayboard version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Dayboard %s\n", Version)
			fmt.Printf("Git Commit: %s\n", GitCommit)
		},
	}
}

func printTasks(tasks []entities.Task) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tIMPORTANCE\tDUE")
	for _, task := range tasks {
		due := "-"
		if task.DueDate != nil {
			due = task.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", task.ID, task.Title, task.Status, task.Importance, due)
	}
	return w.Flush()
}

// environment is the wiring shared by the CLI commands
type environment struct {
	cfg      *config.Config
	logger   *logger.Logger
	backend  ports.Backend
	db       *database.DB
	notes    *services.NoteService
	tasks    *services.TaskService
	sessions *services.SessionService
}

func newEnvironment() (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	backend, db, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	return &environment{
		cfg:      cfg,
		logger:   appLogger,
		backend:  backend,
		db:       db,
		notes:    services.NewNoteService(backend, appLogger, nil),
		tasks:    services.NewTaskService(backend, appLogger, nil),
		sessions: services.NewSessionService(backend, appLogger),
	}, nil
}

func (env *environment) close() {
	if env.db != nil {
		env.db.Close()
	}
	_ = env.logger.Close()
}

// newBackend builds the configured store backend. The database handle is
// only returned for the postgres backend.
func newBackend(cfg *config.Config) (ports.Backend, *database.DB, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := database.New(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return repository.NewBackend(db.DB, cfg.JWT), db, nil
	default:
		return platform.NewClient(cfg.Store.URL, cfg.Store.AnonKey, cfg.Store.Timeout), nil, nil
	}
}

func withBackend(fn func(ctx context.Context, env *environment) error) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	return fn(ctx, env)
}

func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().String("token", os.Getenv("DAYBOARD_TOKEN"), "Session access token (defaults to $DAYBOARD_TOKEN)")
	cmd.Flags().String("email", "", "Sign in with this email instead of a token")
	cmd.Flags().String("password", "", "Password for --email")
}

// withSession resolves the caller from --token or --email/--password and
// runs fn as that user.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, env *environment, userID string) error) error {
	token, _ := cmd.Flags().GetString("token")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	return withBackend(func(ctx context.Context, env *environment) error {
		if email != "" {
			session, err := env.sessions.SignIn(ctx, entities.SignInCredentials{Email: email, Password: password})
			if err != nil {
				return err
			}
			token = session.AccessToken
		}
		if token == "" {
			return errors.New("no session: pass --token or --email and --password")
		}

		ctx = ports.WithAccessToken(ctx, token)
		userID, ok := env.sessions.CurrentUserID(ctx, token)
		if !ok {
			return entities.ErrNoSession
		}
		return fn(ctx, env, userID)
	})
}

func runServer() error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.close()

	srv, err := server.New(env.cfg, env.backend, env.db, env.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	env.logger.Infow("Starting Dayboard API server",
		"port", env.cfg.Server.Port,
		"environment", env.cfg.App.Environment,
		"backend", env.cfg.Store.Backend,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(fmt.Sprintf("%s:%d", env.cfg.Server.Host, env.cfg.Server.Port))
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newMigrator() (*migrate.Migrate, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Store.Backend != config.BackendPostgres {
		return nil, nil, fmt.Errorf("migrations only apply to the %s backend", config.BackendPostgres)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.Database.MigrationsPath, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return m, db, nil
}

func runMigration(direction string) error {
	m, db, err := newMigrator()
	if err != nil {
		return err
	}
	defer db.Close()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No migrations to run")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Printf("Migration %s completed successfully\n", direction)
	return nil
}

func showMigrationVersion() error {
	m, db, err := newMigrator()
	if err != nil {
		return err
	}
	defer db.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
	return nil
}
