package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"focusdo/internal/bootstrap"
	notifydto "focusdo/internal/modules/notify/dto"
	"focusdo/internal/modules/session/domain"
	sessiondto "focusdo/internal/modules/session/dto"
	"focusdo/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, dataDir string

	root := &cobra.Command{
		Use:           "focusdo",
		Short:         "Action session tracker for getting unstuck",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path (defaults to <data-dir>/config.yaml)")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "data directory")

	root.AddCommand(newTUICmd(&configPath, &dataDir))
	root.AddCommand(newSessionCmd(&configPath, &dataDir))
	root.AddCommand(newSyncCmd(&configPath, &dataDir))
	root.AddCommand(newReviewCmd(&configPath, &dataDir))
	root.AddCommand(newNotifyCmd(&configPath, &dataDir))
	return root
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".focusdo"
	}
	return filepath.Join(home, ".focusdo")
}

func loadApp(configPath, dataDir string) (*bootstrap.App, error) {
	if configPath == "" {
		configPath = filepath.Join(dataDir, "config.yaml")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	cfg, err := config.Load(configPath, dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

func newTUICmd(configPath, dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the focus timer UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*configPath, *dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			return bootstrap.RunTUI(ctx, app)
		},
	}
}

func newSessionCmd(configPath, dataDir *string) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Action session lifecycle"}

	var goal string
	var actions []string
	start := &cobra.Command{
		Use:   "start --goal <text> --action <text[:minutes]> ...",
		Short: "Start a session from a goal and its action steps",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(goal) == "" {
				return fmt.Errorf("--goal is required")
			}
			inputs, err := parseActionFlags(actions)
			if err != nil {
				return err
			}
			app, err := loadApp(*configPath, *dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := app.SessionCLI.Start(context.Background(), goal, inputs)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session started: %s offline=%t at=%s\n", out.SessionID, out.IsOffline, out.CreatedAt.Format(time.RFC3339))
			return nil
		},
	}
	start.Flags().StringVar(&goal, "goal", "", "what this session is for")
	start.Flags().StringSliceVar(&actions, "action", nil, "action step, optionally with an estimate suffix like \"draft intro:25\"")
	session.AddCommand(start)

	var sessionID string
	status := &cobra.Command{
		Use:   "status --id <session-id>",
		Short: "Show session state and completion stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(sessionID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, err := loadApp(*configPath, *dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx := context.Background()
			if err := app.SessionCLI.Load(ctx, sessionID); err != nil {
				return err
			}
			snap := app.SessionCLI.Snapshot(ctx)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session: %s (%s)\ngoal: %s\n", snap.SessionID, snap.Status, snap.Goal)
			for _, a := range snap.Actions {
				marker := " "
				switch {
				case snap.CompletedIDs[a.ID]:
					marker = "x"
				case a.Status == domain.StatusSkipped:
					marker = "-"
				case a.ID == snap.CurrentActionID:
					marker = ">"
				}
				estimate := ""
				if a.HasEstimate {
					estimate = fmt.Sprintf(" (%dm)", a.EstimateMin)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\t%s%s\n", marker, a.ID, a.Text, estimate)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "progress: %d/%d (%.0f%%) estimate=%dm actual=%dm pending_sync=%d\n",
				snap.Stats.CompletedActions, snap.Stats.TotalActions, snap.Stats.CompletionRate,
				snap.Stats.TotalEstimateMin, snap.ActualSpent, snap.PendingSync)
			return nil
		},
	}
	status.Flags().StringVar(&sessionID, "id", "", "session id")
	session.AddCommand(status)

	session.AddCommand(newActionCmd(configPath, dataDir))
	return session
}

// newActionCmd groups the mid-session mutations. Every one of them loads the
// session first: CLI invocations are one-shot, unlike the TUI which keeps the
// controller alive.
func newActionCmd(configPath, dataDir *string) *cobra.Command {
	action := &cobra.Command{Use: "action", Short: "Act on a session's actions"}

	withSession := func(sessionID string, fn func(ctx context.Context, app *bootstrap.App) error) error {
		if strings.TrimSpace(sessionID) == "" {
			return fmt.Errorf("--session-id is required")
		}
		app, err := loadApp(*configPath, *dataDir)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()
		ctx := context.Background()
		if err := app.SessionCLI.Load(ctx, sessionID); err != nil {
			return err
		}
		return fn(ctx, app)
	}

	var completeSessionID, completeActionID string
	var actualMin int
	complete := &cobra.Command{
		Use:   "complete --session-id <id> --id <action-id>",
		Short: "Mark an action completed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(completeSessionID, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.SessionCLI.Complete(ctx, completeActionID, actualMin); err != nil {
					return err
				}
				snap := app.SessionCLI.Snapshot(ctx)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "completed %s (%d/%d done)\n", completeActionID, snap.Stats.CompletedActions, snap.Stats.TotalActions)
				if snap.SessionComplete {
					summary := app.SessionCLI.Summary(ctx)
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", summary.Title, summary.Message)
				}
				return nil
			})
		},
	}
	complete.Flags().StringVar(&completeSessionID, "session-id", "", "session id")
	complete.Flags().StringVar(&completeActionID, "id", "", "action id")
	complete.Flags().IntVar(&actualMin, "actual", 0, "actual minutes spent")
	action.AddCommand(complete)

	simple := func(use, short string, invoke func(ctx context.Context, app *bootstrap.App, actionID string) error) *cobra.Command {
		var sid, aid string
		cmd := &cobra.Command{
			Use:   use + " --session-id <id> --id <action-id>",
			Short: short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withSession(sid, func(ctx context.Context, app *bootstrap.App) error {
					if err := invoke(ctx, app, aid); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", use, aid)
					return nil
				})
			},
		}
		cmd.Flags().StringVar(&sid, "session-id", "", "session id")
		cmd.Flags().StringVar(&aid, "id", "", "action id")
		return cmd
	}

	action.AddCommand(simple("uncomplete", "Undo a completion", func(ctx context.Context, app *bootstrap.App, id string) error {
		return app.SessionCLI.Uncomplete(ctx, id)
	}))
	action.AddCommand(simple("skip", "Skip an action", func(ctx context.Context, app *bootstrap.App, id string) error {
		return app.SessionCLI.Skip(ctx, id)
	}))
	action.AddCommand(simple("reactivate", "Bring a skipped action back", func(ctx context.Context, app *bootstrap.App, id string) error {
		return app.SessionCLI.Reactivate(ctx, id)
	}))
	action.AddCommand(simple("remove", "Remove a custom action", func(ctx context.Context, app *bootstrap.App, id string) error {
		return app.SessionCLI.Remove(ctx, id)
	}))

	var addSessionID, addText string
	var addEstimate int
	add := &cobra.Command{
		Use:   "add --session-id <id> --text <text>",
		Short: "Add a custom action to the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(addText) == "" {
				return fmt.Errorf("--text is required")
			}
			return withSession(addSessionID, func(ctx context.Context, app *bootstrap.App) error {
				input := sessiondto.ActionInput{Text: addText, IsCustom: true}
				if addEstimate > 0 {
					input.EstimateMin = addEstimate
					input.HasEstimate = true
				}
				id, err := app.SessionCLI.Add(ctx, input)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", id)
				return nil
			})
		},
	}
	add.Flags().StringVar(&addSessionID, "session-id", "", "session id")
	add.Flags().StringVar(&addText, "text", "", "action text")
	add.Flags().IntVar(&addEstimate, "estimate", 0, "estimated minutes")
	action.AddCommand(add)

	var extendSessionID, extendActionID string
	var extendMinutes int
	extend := &cobra.Command{
		Use:   "extend --session-id <id> --id <action-id> --minutes <n>",
		Short: "Extend an action's time estimate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(extendSessionID, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.SessionCLI.Extend(ctx, extendActionID, extendMinutes); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "extended %s by %d minutes\n", extendActionID, extendMinutes)
				return nil
			})
		},
	}
	extend.Flags().StringVar(&extendSessionID, "session-id", "", "session id")
	extend.Flags().StringVar(&extendActionID, "id", "", "action id")
	extend.Flags().IntVar(&extendMinutes, "minutes", 5, "minutes to add")
	action.AddCommand(extend)

	var logSessionID string
	var logMinutes int
	logCmd := &cobra.Command{
		Use:   "log --session-id <id> --minutes <n>",
		Short: "Record total time spent so far",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(logSessionID, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.SessionCLI.LogTime(ctx, logMinutes); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged %d minutes\n", logMinutes)
				return nil
			})
		},
	}
	logCmd.Flags().StringVar(&logSessionID, "session-id", "", "session id")
	logCmd.Flags().IntVar(&logMinutes, "minutes", 0, "total minutes spent")
	action.AddCommand(logCmd)

	var finishSessionID string
	finish := &cobra.Command{
		Use:   "finish --session-id <id>",
		Short: "Close the session and show its summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(finishSessionID, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.SessionCLI.Finish(ctx); err != nil {
					return err
				}
				summary := app.SessionCLI.Summary(ctx)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", summary.Title, summary.Message)
				return nil
			})
		},
	}
	finish.Flags().StringVar(&finishSessionID, "session-id", "", "session id")
	action.AddCommand(finish)

	return action
}

func newSyncCmd(configPath, dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay queued offline operations against the server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*configPath, *dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := app.SessionCLI.Sync(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "synced=%d failed=%d\n", out.Synced, out.Failed)
			for _, msg := range out.Errors {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}
			return nil
		},
	}
}

func newReviewCmd(configPath, dataDir *string) *cobra.Command {
	review := &cobra.Command{Use: "review", Short: "Session history and day rollups"}

	var recentLimit int
	recent := &cobra.Command{
		Use:   "recent",
		Short: "List recent sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*configPath, *dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			sessions, err := app.ReviewCLI.Recent(context.Background(), recentLimit)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions yet")
				return nil
			}
			for _, s := range sessions {
				unsynced := ""
				if s.Unsynced {
					unsynced = " (unsynced)"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d/%d done\t%dm%s\n",
					s.StartedAt.Format("2006-01-02 15:04"), s.ID, s.Goal, s.ActionsCompleted, s.ActionsTotal, s.ActualMin, unsynced)
			}
			return nil
		},
	}
	recent.Flags().IntVar(&recentLimit, "limit", 10, "sessions to list")
	review.AddCommand(recent)

	var historyLimit int
	history := &cobra.Command{
		Use:   "history",
		Short: "Show per-day rollups and the current streak",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*configPath, *dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := app.ReviewCLI.History(context.Background(), historyLimit)
			if err != nil {
				return err
			}
			if len(out.Days) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no history yet")
				return nil
			}
			for _, d := range out.Days {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tsessions=%d actions=%d estimate=%dm actual=%dm variance=%+.0f%%\n",
					d.Day, d.Sessions, d.ActionsCompleted, d.EstimateMin, d.ActualMin, d.TimeVariance)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "streak: %d day(s)\n", out.Streak)
			return nil
		},
	}
	history.Flags().IntVar(&historyLimit, "limit", 50, "sessions to aggregate")
	review.AddCommand(history)

	return review
}

func newNotifyCmd(configPath, dataDir *string) *cobra.Command {
	notify := &cobra.Command{Use: "notify", Short: "Notification plugin operations"}

	notify.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notification plugin manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*configPath, *dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			plugins, err := app.NotifyCLI.List(context.Background())
			if err != nil {
				return err
			}
			if len(plugins) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			for _, p := range plugins {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t capabilities=%s binary=%s\n",
					p.Name, p.Version, p.Enabled, strings.Join(p.Capabilities, ","), p.Binary)
			}
			return nil
		},
	})

	notify.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate plugin checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*configPath, *dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			results, err := app.NotifyCLI.Doctor(context.Background())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})

	var kind, eventGoal, actionText string
	var minutes int
	test := &cobra.Command{
		Use:   "test --kind <event-kind>",
		Short: "Dispatch a test event to every enabled notifier",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*configPath, *dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			results, err := app.NotifyCLI.Dispatch(context.Background(), notifydto.EventInput{
				Kind:       kind,
				Goal:       eventGoal,
				ActionText: actionText,
				Minutes:    minutes,
				At:         time.Now(),
			})
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no notifiers enabled")
				return nil
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s delivered=%t", r.Plugin, r.Delivered)
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
	test.Flags().StringVar(&kind, "kind", "session_started", "event kind")
	test.Flags().StringVar(&eventGoal, "goal", "test goal", "session goal for the event")
	test.Flags().StringVar(&actionText, "action", "", "action text for the event")
	test.Flags().IntVar(&minutes, "minutes", 0, "minutes for the event")
	notify.AddCommand(test)

	return notify
}

// parseActionFlags turns repeated --action values into inputs. A trailing
// ":<n>" is the minute estimate; everything before the last colon is the text.
func parseActionFlags(raw []string) ([]sessiondto.ActionInput, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one --action is required")
	}
	inputs := make([]sessiondto.ActionInput, 0, len(raw))
	for _, item := range raw {
		input := sessiondto.ActionInput{Text: item}
		if idx := strings.LastIndex(item, ":"); idx > 0 {
			if minutes, err := strconv.Atoi(strings.TrimSpace(item[idx+1:])); err == nil {
				if minutes <= 0 {
					return nil, fmt.Errorf("action estimate must be positive: %q", item)
				}
				input.Text = strings.TrimSpace(item[:idx])
				input.EstimateMin = minutes
				input.HasEstimate = true
			}
		}
		if strings.TrimSpace(input.Text) == "" {
			return nil, fmt.Errorf("action text must not be empty")
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}
