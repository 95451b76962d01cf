package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/caseclockapp/caseclock-mvp/internal/command"
	"github.com/caseclockapp/caseclock-mvp/internal/config"
	"github.com/caseclockapp/caseclock-mvp/internal/observe"
	"github.com/caseclockapp/caseclock-mvp/pkg/provider/stt"
)

func newListenCmd() *cobra.Command {
	var (
		audioPath string
		once      bool
	)

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Run the voice loop: capture, transcribe, and apply commands",
		Long: `Listen captures bounded windows of audio from the configured source,
transcribes them through the configured STT provider, and feeds each
transcript through the command pipeline. Stop with Ctrl+C.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListen(cmd.Context(), audioPath, once)
		},
	}
	cmd.Flags().StringVar(&audioPath, "audio", "-", "raw 16-bit PCM audio source: a file/FIFO path, or - for stdin")
	cmd.Flags().BoolVar(&once, "once", false, "process a single listening window and exit")
	return cmd
}

func runListen(ctx context.Context, audioPath string, once bool) error {
	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	source, interactive, closeSource, err := openAudioSource(audioPath)
	if err != nil {
		return err
	}
	defer closeSource()

	sttEntry := app.Config.Providers.STT
	if sttEntry.Name == "" {
		return errors.New("providers.stt.name must be configured for listen")
	}

	reg := config.NewRegistry()
	registerBuiltinProviders(reg, source)
	provider, err := reg.CreateSTT(sttEntry)
	if err != nil {
		return err
	}

	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "caseclock",
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Warn("metrics shutdown error", "err", err)
		}
	}()

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()
	g, gctx := errgroup.WithContext(loopCtx)

	if addr := app.Config.Server.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observe.Handler())
		srv := &http.Server{Addr: addr, Handler: mux}

		g.Go(func() error {
			slog.Info("metrics endpoint up", "addr", addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		// Ending the loop (once mode or cancellation) also brings the
		// metrics server down.
		defer cancelLoop()
		return listenLoop(gctx, app, provider, interactive, once)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// listenLoop runs listening windows until ctx is cancelled (or after one
// window when once is set).
func listenLoop(ctx context.Context, app *App, provider stt.Provider, interactive bool, once bool) error {
	metrics := observe.DefaultMetrics()
	listenCfg := stt.ListenConfig{
		Window:      time.Duration(app.Config.Listen.WindowSeconds) * time.Second,
		PhraseLimit: time.Duration(app.Config.Listen.PhraseLimitSeconds) * time.Second,
		Language:    app.Config.Listen.Language,
	}

	fmt.Println("listening... (Ctrl+C to quit)")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := provider.Listen(ctx, listenCfg)
		metrics.RecordListenWindow(ctx, res.Outcome.String())

		switch res.Outcome {
		case stt.OutcomeTranscript:
			if err := applyTranscript(ctx, app, res.Text, interactive); err != nil {
				return err
			}
		case stt.OutcomeNoSpeech:
			if err != nil {
				// Cancellation surfaces here.
				return err
			}
			fmt.Println("(no speech heard)")
		case stt.OutcomeUnintelligible:
			fmt.Println("(could not make out any words)")
		case stt.OutcomeServiceError:
			slog.Error("transcription unavailable", "err", err)
			fmt.Println("(transcription service unavailable, try again)")
		}

		if once {
			return nil
		}
	}
}

// applyTranscript runs one transcript through the pipeline and prints the
// result. Expense commands prompt for the amount and notes when running
// interactively.
func applyTranscript(ctx context.Context, app *App, transcript string, interactive bool) error {
	fmt.Printf("heard: %q\n", transcript)

	out, err := app.Pipe.ProcessTranscript(ctx, transcript)
	if err != nil {
		return err
	}
	if out.Message != "" {
		fmt.Println(out.Message)
	}
	if out.PersistErr != nil {
		fmt.Printf("warning: entry kept in memory but not saved: %v\n", out.PersistErr)
	}

	if out.Intent == command.IntentExpense && !out.NoOp {
		amount, notes := "", ""
		if interactive {
			amount, notes = promptExpenseDetails()
		}
		entry, err := app.Pipe.RecordExpense(ctx, out.Case, out.Category, amount, notes)
		if err != nil {
			fmt.Printf("warning: expense not saved: %v\n", err)
			return nil
		}
		fmt.Printf("expense recorded: %s / %s / %s\n", entry.Case, entry.Category, entry.Amount)
	}
	return nil
}

// promptExpenseDetails reads the expense amount and notes from the terminal.
func promptExpenseDetails() (amount, notes string) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("amount: ")
	amount, _ = reader.ReadString('\n')
	fmt.Print("notes: ")
	notes, _ = reader.ReadString('\n')

	return strings.TrimSpace(amount), strings.TrimSpace(notes)
}

// openAudioSource opens the PCM source named by path. interactive reports
// whether stdin remains free for prompts (true when audio comes from a
// file or FIFO).
func openAudioSource(path string) (src io.Reader, interactive bool, closeFn func(), err error) {
	if path == "" || path == "-" {
		return os.Stdin, false, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false, nil, fmt.Errorf("open audio source %q: %w", path, err)
	}
	return f, true, func() { f.Close() }, nil
}
