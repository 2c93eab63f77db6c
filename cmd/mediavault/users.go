package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mediavault/adapters/clock"
	"mediavault/adapters/hasher"
	"mediavault/adapters/idgen"
	"mediavault/adapters/sqlite"
	"mediavault/app"
	"mediavault/config"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
	Long: `Manage MediaVault user accounts.

Examples:
  mediavault users create --email=alice@example.com --password=secret123
  mediavault users get alice@example.com`,
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	RunE:  runUsersCreate,
}

var usersGetCmd = &cobra.Command{
	Use:   "get <email>",
	Short: "Get user details",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersGet,
}

var (
	userEmail    string
	userName     string
	userPassword string
)

func init() {
	rootCmd.AddCommand(usersCmd)

	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersGetCmd)

	usersCreateCmd.Flags().StringVar(&userEmail, "email", "", "user email (required)")
	usersCreateCmd.Flags().StringVar(&userName, "name", "", "user name")
	usersCreateCmd.Flags().StringVar(&userPassword, "password", "", "user password (required)")
	usersCreateCmd.MarkFlagRequired("email")
	usersCreateCmd.MarkFlagRequired("password")
}

func openUserService() (*app.UserService, *sqlite.DB, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	svc := app.NewUserService(sqlite.NewUserStore(db), hasher.NewBcrypt(0), clock.Real{}, idgen.UUID{}, zerolog.Nop())
	return svc, db, nil
}

func runUsersCreate(cmd *cobra.Command, args []string) error {
	svc, db, err := openUserService()
	if err != nil {
		return err
	}
	defer db.Close()

	u, err := svc.Register(context.Background(), userEmail, userPassword, userName)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Printf("%s Created user: %s (%s)\n", checkMark, u.Email, u.ID)
	return nil
}

func runUsersGet(cmd *cobra.Command, args []string) error {
	svc, db, err := openUserService()
	if err != nil {
		return err
	}
	defer db.Close()

	u, err := svc.GetByEmail(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", u.ID)
	fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	fmt.Fprintf(w, "Name:\t%s\n", u.Name)
	fmt.Fprintf(w, "Created:\t%s\n", u.CreatedAt.Format("2006-01-02 15:04:05"))
	return w.Flush()
}
