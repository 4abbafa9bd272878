package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/spf13/cobra"

	"github.com/Lllllllleong/examsolver/internal/gcp"
	"github.com/Lllllllleong/examsolver/internal/models"
	"github.com/Lllllllleong/examsolver/internal/services"
)

type options struct {
	apiKey string
	out    string
	quiet  bool
	debug  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "solve <exam.pdf | gs://bucket/exam.pdf>",
		Short: "Generate exam-ready solutions for a PDF of questions",
		Long: `solve sends a question paper to Gemini once, prints the answers and
writes them to a paginated PDF.

The API key is read from --api-key or GEMINI_API_KEY. Backend and model
follow GENAI_BACKEND and GENAI_MODEL, as for the HTTP service.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if opts.debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return gcp.LoadDotEnv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.apiKey == "" {
				opts.apiKey = os.Getenv("GEMINI_API_KEY")
			}
			return run(cmd.Context(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "generation service API key (default $GEMINI_API_KEY)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", models.OutputFileName, "where to write the solutions PDF")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the answers")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "verbose logging to stderr")
	return cmd
}

func run(ctx context.Context, input string, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	doc, cleanup, err := openDocument(ctx, input)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := services.ValidateMediaType(doc.MediaType); err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	solver, err := services.NewSolverFromEnv()
	if err != nil {
		return err
	}
	res, err := solver.Solve(ctx, doc, opts.apiKey)
	if err != nil {
		if errors.Is(err, services.ErrGeneration) {
			return errors.New("error generating solution; rerun with --debug for details")
		}
		return err
	}
	if !opts.quiet {
		fmt.Println(res.Text)
	}

	out, err := services.NewPaginator(services.DefaultGeometry()).Render(res.Text)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.out, out.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.out, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d pages)\n", opts.out, out.PageCount)
	return nil
}

// openDocument resolves a local path or gs:// URI to an UploadedDocument.
func openDocument(ctx context.Context, input string) (*models.UploadedDocument, func(), error) {
	if strings.HasPrefix(input, "gs://") {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		src, err := gcp.NewObjectSource(client, input)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		attrs, err := src.Attrs(ctx)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		doc := &models.UploadedDocument{
			Name:      attrs.Name,
			MediaType: attrs.ContentType,
			Size:      attrs.Size,
			Source:    src,
		}
		return doc, func() { client.Close() }, nil
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, nil, err
	}
	doc := &models.UploadedDocument{
		Name:      filepath.Base(input),
		MediaType: mime.TypeByExtension(strings.ToLower(filepath.Ext(input))),
		Size:      info.Size(),
		Source:    models.FileSource(input),
	}
	if data, err := os.ReadFile(input); err == nil {
		if pages, err := services.InspectPDF(data); err == nil {
			doc.PageCount = pages
			slog.Debug("Inspected input PDF.", "pages", pages)
		}
	}
	return doc, func() {}, nil
}
