package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/trustgate/internal/app"
	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/infrastructure/config"
	"github.com/doeshing/trustgate/internal/infrastructure/protocol"
	"github.com/doeshing/trustgate/internal/version"
)

func newAskCommand(container *app.Container) *cobra.Command {
	var (
		question    string
		contextNote string
		tried       []string
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "ask <intent>",
		Short: "Ask for the trusted command behind an intent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := container.Learning.Ask(cmd.Context(), domain.AskRequest{
				Intent:   args[0],
				Question: question,
				Context:  contextNote,
				Tried:    tried,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			renderAsk(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVar(&question, "question", "", "Question to record with the request")
	cmd.Flags().StringVar(&contextNote, "context", "", "Free-form context for the request")
	cmd.Flags().StringSliceVar(&tried, "tried", nil, "Commands already attempted by the caller")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw JSON result")
	return cmd
}

func newTeachCommand(container *app.Container) *cobra.Command {
	var (
		source string
		noSave bool
		file   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "teach <intent> <command>",
		Short: "Teach a command for an intent, verifying it first",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				return runTeachBatch(cmd, container, file, source, !noSave, asJSON)
			}
			if len(args) < 2 {
				return errors.New("either <intent> <command> or --file is required")
			}
			result, err := container.Learning.Teach(cmd.Context(), domain.TeachRequest{
				Intent:  args[0],
				Command: args[1],
				Source:  source,
				Save:    !noSave,
			})
			if err != nil {
				return err
			}
			if asJSON {
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				renderTeach(cmd.OutOrStdout(), result)
			}
			if result.Status != domain.StatusLearned {
				return errors.New("command not learned")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Where the command came from (default agent)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Verify only, do not persist the command")
	cmd.Flags().StringVar(&file, "file", "", "Teach a batch of intent: command pairs from a YAML file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw JSON results")
	return cmd
}

func runTeachBatch(cmd *cobra.Command, container *app.Container, path, source string, save, asJSON bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var commands map[string]string
	if err := yaml.Unmarshal(data, &commands); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(commands) == 0 {
		return fmt.Errorf("%s contains no commands", path)
	}

	intents := make([]string, 0, len(commands))
	for intent := range commands {
		intents = append(intents, intent)
	}
	sort.Strings(intents)

	reqs := make([]domain.TeachRequest, 0, len(intents))
	for _, intent := range intents {
		reqs = append(reqs, domain.TeachRequest{
			Intent:  intent,
			Command: commands[intent],
			Source:  source,
			Save:    save,
		})
	}

	results, err := container.Learning.TeachBatch(cmd.Context(), reqs)
	if err != nil {
		return err
	}

	failed := 0
	for _, result := range results {
		if result.Status != domain.StatusLearned {
			failed++
		}
	}
	if asJSON {
		if err := printJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	} else {
		renderTeachBatch(cmd.OutOrStdout(), results)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d commands not learned", failed, len(results))
	}
	return nil
}

func newRunCommand(container *app.Container) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "run <intent>",
		Short: "Run the trusted command for an intent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := container.Learning.Run(cmd.Context(), domain.RunRequest{Intent: args[0]})
			if err != nil {
				return err
			}
			if asJSON {
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				renderRun(cmd.OutOrStdout(), result)
			}
			return runStatusError(result)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw JSON result")
	return cmd
}

func runStatusError(result domain.RunResult) error {
	switch result.Status {
	case domain.StatusUnknownCommand:
		return fmt.Errorf("no trusted command for %s", result.Intent)
	case domain.StatusFailure:
		return fmt.Errorf("command exited with code %d", result.ExitCode)
	case domain.StatusTimeout:
		return errors.New("command timed out")
	case domain.StatusError:
		return errors.New(result.Message)
	}
	return nil
}

func newLearnCommand(container *app.Container) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Detect the project and list intents that still need teaching",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := container.Learning.LearnProject(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			renderLearnProject(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw JSON result")
	return cmd
}

func newStatusCommand(container *app.Container) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show everything the trust ledger knows",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := container.Learning.MemoryStatus()
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), status)
			}
			renderStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw JSON result")
	return cmd
}

func newClearCommand(container *app.Container) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "clear [intent]",
		Short: "Forget a learned command",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				doc := container.Ledger.Snapshot()
				keys := make([]string, 0, len(doc.Commands))
				for key := range doc.Commands {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				for _, key := range keys {
					if err := container.Ledger.Clear(domain.ParseIntent(key)); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d learned commands\n", len(keys))
				return nil
			}
			if len(args) == 0 {
				return errors.New("an intent or --all is required")
			}
			intent := domain.ParseIntent(args[0])
			if err := container.Ledger.Clear(intent); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", intent.Key())
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Forget every learned command")
	return cmd
}

func newHistoryCommand(container *app.Container) *cobra.Command {
	var (
		limit    int
		failures bool
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent trusted runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.History == nil {
				return errors.New("history store unavailable")
			}
			records, err := container.History.Records(limit, failures)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), records)
			}
			renderHistory(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", container.Config.HistoryLimit(), "Max records to show")
	cmd.Flags().BoolVar(&failures, "failures", false, "Show only failed runs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw JSON records")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the recorded run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.History == nil {
				return errors.New("history store unavailable")
			}
			if err := container.History.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return nil
		},
	}
	cmd.AddCommand(clearCmd)
	return cmd
}

func newConfigCommand(container *app.Container) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect trustgate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, container)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show full configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, container)
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := configLoader(container)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), loader.Path())
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := configLoader(container)
			if err != nil {
				return err
			}
			if _, statErr := os.Stat(loader.Path()); statErr == nil && !force {
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration already exists at %s (use --force to overwrite)\n", loader.Path())
				return nil
			}
			cfg, err := loader.Reset()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", loader.Path())
			data, _ := yaml.Marshal(cfg)
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	diffCmd := &cobra.Command{
		Use:   "diff",
		Short: "Show differences from the default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := container.ConfigProvider.Load(cmd.Context())
			if err != nil {
				return err
			}
			diff := cmp.Diff(config.DefaultConfig(), current)
			if diff == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No differences from default configuration.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), diff)
			return nil
		},
	}

	configCmd.AddCommand(showCmd, pathCmd, initCmd, diffCmd)
	return configCmd
}

func runConfigShow(cmd *cobra.Command, container *app.Container) error {
	cfg, err := container.ConfigProvider.Load(cmd.Context())
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func configLoader(container *app.Container) (*config.FileLoader, error) {
	if container.ConfigLoader == nil {
		return nil, errors.New("config loader unavailable")
	}
	return container.ConfigLoader, nil
}

func newDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Doctor == nil {
				return errors.New("doctor service unavailable")
			}
			report, err := container.Doctor.Run(cmd.Context())
			renderDoctorReport(cmd.OutOrStdout(), report)
			return err
		},
	}
}

func newServeCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the learning protocol over stdio",
		Long: "Reads one JSON request per line on stdin and writes one JSON\n" +
			"response per line on stdout. Intended for agent integrations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := protocol.NewServer(container.Learning, cmd.InOrStdin(), cmd.OutOrStdout(), container.Logger)
			return server.Serve(cmd.Context())
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show trustgate version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "trustgate version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.BuildDate != "" {
				fmt.Fprintf(out, "Built: %s\n", version.BuildDate)
			}
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			return nil
		},
	}
}
