package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caseclockapp/caseclock-mvp/internal/config"
	"github.com/caseclockapp/caseclock-mvp/internal/summary"
)

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize",
		Short: "Produce a short AI-generated synopsis of the time log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			llmEntry := app.Config.Providers.LLM
			if llmEntry.Name == "" {
				return errors.New("providers.llm.name must be configured for summarize")
			}

			reg := config.NewRegistry()
			registerBuiltinProviders(reg, nil)
			provider, err := reg.CreateLLM(llmEntry)
			if err != nil {
				return err
			}

			entries, err := app.Store.List(cmd.Context())
			if err != nil {
				return err
			}

			text, err := summary.New(provider).Summarize(cmd.Context(), entries)
			if errors.Is(err, summary.ErrEmptyLog) {
				fmt.Println("log is empty, nothing to summarize")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
}
