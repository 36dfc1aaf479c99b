package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ycwei/mandarin_tweet_bot/internal/database"
)

// Process exit codes. Each terminal condition of a posting run maps to its
// own code so that schedulers can decide whether a rerun is worthwhile.
const (
	exitGenericError          = 1
	exitDailyLimitReached     = 2
	exitNoWordsLeft           = 3
	exitDictionaryUnavailable = 4
	exitNoDictionaryEntry     = 5
	exitEntryTooLong          = 6
	exitTweetFailed           = 7
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := newRootCmd(logger).Execute(); err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, ErrDailyLimitReached):
		return exitDailyLimitReached
	case errors.Is(err, ErrNoWordsLeft):
		return exitNoWordsLeft
	case errors.Is(err, ErrDictionaryUnavailable):
		return exitDictionaryUnavailable
	case errors.Is(err, ErrNoDictionaryEntry):
		return exitNoDictionaryEntry
	case errors.Is(err, ErrEntryTooLong):
		return exitEntryTooLong
	case errors.Is(err, ErrTweetFailed):
		return exitTweetFailed
	default:
		return exitGenericError
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "mandarin-tweet-bot",
		Short:         "Posts a daily Mandarin vocabulary tweet with links to earlier entries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newPostCmd(logger),
		newServeCmd(logger),
		newImportWordsCmd(logger),
		newPruneCmd(logger),
	)

	return root
}

// setup loads configuration, initializes the database, and wires the bot.
// The returned cleanup closes the connection pool.
func setup(logger *slog.Logger) (*Bot, func(), error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	pool, err := initDatabase(config.DatabaseURL, logger)
	if err != nil {
		return nil, nil, err
	}

	bot := NewBot(
		database.New(pool),
		NewMDBGClient(config.MDBGBaseURL, logger),
		NewTwitterClient(config, logger),
		config,
		logger,
	)

	return bot, pool.Close, nil
}

func newPostCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "post",
		Short: "Post the next vocabulary tweet and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bot, cleanup, err := setup(logger)
			if err != nil {
				return err
			}
			defer cleanup()

			return bot.PostWithRetry(cmd.Context())
		},
	}
}

func newServeCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as a daemon, posting daily at the configured time",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			bot, cleanup, err := setup(logger)
			if err != nil {
				return err
			}
			defer cleanup()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			bot.Start()
			<-sigChan
			bot.Stop()
			return nil
		},
	}
}

func newImportWordsCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "import-words <file>",
		Short: "Queue unprocessed words from a 'word, pinyin' list file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bot, cleanup, err := setup(logger)
			if err != nil {
				return err
			}
			defer cleanup()

			return bot.ImportWords(cmd.Context(), args[0])
		},
	}
}

func newPruneCmd(logger *slog.Logger) *cobra.Command {
	var limit int32

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete records of tweets that no longer exist on the platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bot, cleanup, err := setup(logger)
			if err != nil {
				return err
			}
			defer cleanup()

			_, err = bot.PruneDeletedTweets(cmd.Context(), limit)
			return err
		},
	}

	cmd.Flags().Int32Var(&limit, "limit", pruneBatchSize, "maximum number of recent records to inspect")
	return cmd
}
