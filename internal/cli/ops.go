package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/application/usecase"
	"github.com/bibbank/credit-service/internal/infrastructure/adapter"
	"github.com/bibbank/credit-service/internal/infrastructure/config"
	"github.com/bibbank/credit-service/internal/infrastructure/metrics"
	pgRepo "github.com/bibbank/credit-service/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/credit-service/pkg/auth"
	pkgpostgres "github.com/bibbank/credit-service/pkg/postgres"
)

// operatorID is the actor recorded for changes made through creditctl.
const operatorID = "creditctl"

// ─── schema ─────────────────────────────────────────────────────────────────

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the Postgres schema (DB_* environment variables)",
	}
	up := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version, err := pkgpostgres.Migrate(pgRepo.Migrations, pgRepo.MigrationsDir, config.Load().DB.Postgres().MigrateURL())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration, dropping all credit data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return errors.New("refusing to drop the schema without --yes")
			}
			if err := pkgpostgres.MigrateDown(pgRepo.Migrations, pgRepo.MigrationsDir, config.Load().DB.Postgres().MigrateURL()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema rolled back")
			return nil
		},
	}
	down.Flags().Bool("yes", false, "Confirm dropping all data")
	cmd.AddCommand(up, down)
	return cmd
}

// ─── statuses ───────────────────────────────────────────────────────────────

func newStatusesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statuses",
		Short: "Inspect and rewrite stored application statuses",
	}
	normalize := &cobra.Command{
		Use:   "normalize",
		Short: "Rewrite legacy flat statuses to their lifecycle equivalents",
		Long: `Legacy records stored as pending, approved, disbursed or rejected are read
as SUBMITTED, ANALYST3_APPROVED, DISBURSED and REJECTED. This command persists
that mapping. Use --dry-run to list the affected applications first.`,
		Args: cobra.NoArgs,
		RunE: runNormalize,
	}
	normalize.Flags().Bool("dry-run", false, "List candidates without writing")
	cmd.AddCommand(normalize)
	return cmd
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	logger := newLogger(cmd)
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	pool, err := openPool(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := pgRepo.NewCreditApplicationRepo(pool)
	recorder := metrics.NewPrometheus(prometheus.NewRegistry())
	store := usecase.NewStore(repo, recorder, nil)
	effects := usecase.NewSideEffects(adapter.NewLogNotificationSink(logger), adapter.NewLogAuditSink(logger), recorder, logger)

	resp, err := usecase.NewMigrateLegacyStatusesUseCase(store, effects).Execute(cmd.Context(), dto.MigrateLegacyStatusesRequest{
		Actor:  dto.Actor{ID: operatorID, Roles: []string{auth.RoleAdmin}},
		DryRun: dryRun,
	})
	if err != nil {
		return err
	}
	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	verb := "migrated"
	if resp.DryRun {
		verb = "would migrate"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "scanned %d, %s %d\n", resp.Scanned, verb, resp.Migrated)
	for _, id := range resp.IDs {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}

func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg := config.Load()
	if cfg.DB.Password == "" {
		return nil, errors.New("DB_PASSWORD is required")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return pkgpostgres.NewPool(ctx, cfg.DB.Postgres())
}

// ─── token ──────────────────────────────────────────────────────────────────

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a test actor (JWT_* environment variables)",
		Example: `  creditctl token --actor analyst-7 --role analyst1
  creditctl token --actor ops --role admin --ttl 15m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actor, _ := cmd.Flags().GetString("actor")
			roles, _ := cmd.Flags().GetStringSlice("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			jwtCfg := config.Load().JWT
			if ttl > 0 {
				jwtCfg.Expiration = ttl
			}
			svc, err := auth.NewJWTService(jwtCfg)
			if err != nil {
				return fmt.Errorf("initialize JWT service: %w", err)
			}
			token, err := svc.GenerateToken(actor, roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("actor", "", "Actor id placed in the token subject")
	cmd.Flags().StringSlice("role", nil, "Role tag (repeatable)")
	cmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to JWT_EXPIRATION)")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

func newKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA key pair for RS256 tokens (JWT_PRIVATE_KEY / JWT_PUBLIC_KEY)",
		Example: `  creditctl keygen
  creditctl keygen --out ./keys`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			privPEM, pubPEM, err := auth.GenerateKeyPair()
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("out")
			if dir == "" {
				out := cmd.OutOrStdout()
				_, _ = out.Write(privPEM)
				_, _ = out.Write(pubPEM)
				return nil
			}
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return fmt.Errorf("create key directory: %w", err)
			}
			if err := os.WriteFile(filepath.Join(dir, "jwt-private.pem"), privPEM, 0o600); err != nil {
				return fmt.Errorf("write private key: %w", err)
			}
			if err := os.WriteFile(filepath.Join(dir, "jwt-public.pem"), pubPEM, 0o644); err != nil {
				return fmt.Errorf("write public key: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n",
				filepath.Join(dir, "jwt-private.pem"), filepath.Join(dir, "jwt-public.pem"))
			return nil
		},
	}
	cmd.Flags().String("out", "", "Directory to write jwt-private.pem and jwt-public.pem into (stdout when empty)")
	return cmd
}
