package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/internal/repository"
	"github.com/noah-isme/newsroom-console/internal/service"
	"github.com/noah-isme/newsroom-console/pkg/config"
	"github.com/noah-isme/newsroom-console/pkg/transport"
)

type importFlags struct {
	email    string
	password string
	report   string
	dryRun   bool
}

func importCmd(global *globalFlags) *cobra.Command {
	flags := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Bulk import articles from a CSV file",
		Long: `Signs in with a staff account, previews the file and submits every row in
one bulk upload. The per-row outcome is printed and optionally written as a
CSV or PDF report next to the input file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := models.ReportFormat(strings.ToLower(flags.report))
			if flags.report != "" && !format.Valid() {
				return fmt.Errorf("unsupported report format %q", flags.report)
			}
			cfg, logr, err := setup(global)
			if err != nil {
				return err
			}
			defer logr.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runImport(ctx, cmd.OutOrStdout(), cfg, logr, args[0], format, flags)
		},
	}
	cmd.Flags().StringVar(&flags.email, "email", "", "Staff account email")
	cmd.Flags().StringVar(&flags.password, "password", os.Getenv("NEWSROOM_PASSWORD"), "Staff account password (defaults to NEWSROOM_PASSWORD)")
	cmd.Flags().StringVar(&flags.report, "report", "", "Write the outcome report (csv or pdf)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Preview the file without submitting it")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func runImport(ctx context.Context, out io.Writer, cfg *config.Config, logr *zap.Logger, path string, format models.ReportFormat, flags *importFlags) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	client := transport.NewClient(transport.Options{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
		Logger:  logr,
	})
	sessions := service.NewSessionManager(repository.NewMemoryStorage(), service.TransportClients(client), validator.New(), nil, logr, service.SessionManagerConfig{
		KeyPrefix: cfg.Storage.KeyPrefix,
	})
	browser := sessions.Assemble(uuid.NewString())

	login, err := browser.Session.Login(ctx, models.LoginRequest{Email: flags.email, Password: flags.password}, "")
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer browser.Session.Logout(context.WithoutCancel(ctx))
	if !login.User.Role.IsStaff() {
		return fmt.Errorf("account %s (%s) may not import articles", login.User.Username, login.User.Role)
	}

	imports := service.NewImportService(service.ImportConfig{
		MaxFileSizeBytes: cfg.Import.MaxFileSizeBytes,
		PreviewRows:      cfg.Import.PreviewRows,
	}, nil, logr)

	view, err := imports.Accept(ctx, browser, models.ImportFile{
		Name:        filepath.Base(path),
		ContentType: "text/csv",
		Size:        int64(len(content)),
		Content:     content,
	})
	if err != nil {
		return err
	}
	printPreview(out, view)
	if flags.dryRun {
		fmt.Fprintln(out, "dry run: nothing submitted")
		return nil
	}

	view, err = imports.Submit(ctx, browser)
	if err != nil {
		return err
	}
	if view.Outcome == nil {
		return fmt.Errorf("upload finished without an outcome")
	}
	printOutcome(out, *view.Outcome)

	if format == "" {
		return nil
	}
	reports := service.NewReportService(imports, nil, nil, logr, service.ReportConfig{})
	payload, err := reports.Render(*view.Outcome, format)
	if err != nil {
		return err
	}
	target := reportPath(path, format)
	if err := os.WriteFile(target, payload, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(out, "report written to %s\n", target)
	return nil
}

func printPreview(out io.Writer, view models.ImportView) {
	fmt.Fprintf(out, "%s: %d articles\n", view.FileName, view.RowCount)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tCATEGORY\tSTATUS\tTAGS\t")
	for _, row := range view.Preview {
		title := row.Title
		if row.MissingRequired {
			title = "! " + title
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", title, row.Category, row.Status, row.Tags)
	}
	_ = tw.Flush()
	if hidden := view.RowCount - len(view.Preview); hidden > 0 {
		fmt.Fprintf(out, "... and %d more\n", hidden)
	}
}

func printOutcome(out io.Writer, outcome models.ImportOutcome) {
	fmt.Fprintf(out, "successful: %d\nfailed: %d\n", outcome.Successful, outcome.Failed)
	for _, failure := range outcome.Errors {
		fmt.Fprintf(out, "  %s: %s\n", failure.Title, failure.Error)
	}
}

// reportPath places the report beside the input, e.g. news.csv becomes
// news_outcome.pdf.
func reportPath(input string, format models.ReportFormat) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "_outcome." + string(format)
}
