package main

import (
	"bufio"
	"chat-sync/attachment"
	"chat-sync/contract"
	"chat-sync/controller"
	"chat-sync/internal"
	"chat-sync/observability"
	"chat-sync/remotelog"
	"chat-sync/repositories"
	"chat-sync/session"
	"chat-sync/storage"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	runLocal   bool
	runName    string
	runColours bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Join the chat room",
	Long: `Join the chat room and type messages. Lines are sent as text,
"/image <path>" sends a picture, "/logout" signs out and "/quit" leaves.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	runCmd.Flags().BoolVar(&runLocal, "local", false, "use an in-process log instead of REMOTE_URL")
	runCmd.Flags().StringVar(&runName, "name", "", "display name, overrides CHAT_NAME")
	runCmd.Flags().BoolVar(&runColours, "colours", true, "colour own and others' messages")
	rootCmd.AddCommand(runCmd)
}

func runChat(parent context.Context, in io.Reader, out io.Writer) error {
	// 1. Configuration, logger & database
	config, log, db, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 2. Context & signals
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lines := readLines(in)

	// 3. Identity
	accounts := repositories.NewAccountRepository(db)
	var account *session.Account
	var provider contract.SessionProvider
	switch config.IdentityMode {
	case session.ModeAccount:
		account = session.NewAccount(log, accounts)
		provider = account
	default:
		name, _ := lo.Coalesce(runName, config.ChatName)
		if name == "" {
			_, _ = fmt.Fprint(out, "Name: ")
			name = <-lines
		}
		if provider, err = session.NewStatic(name); err != nil {
			return err
		}
	}
	identity, err := provider.ResolveIdentity(ctx)
	if err != nil {
		return fmt.Errorf("could not resolve identity: %w", err)
	}

	// 4. Remote log
	remote, closeRemote, err := openRemote(ctx, log, config)
	if err != nil {
		return err
	}
	defer closeRemote()

	// 5. Sync controller
	metrics := observability.NewMetrics()
	history := repositories.NewHistoryRepository(db, log, config.HistoryKey)
	c := controller.New(log, remote, storage.NewHistoryStore(history, log, metrics),
		controller.WithMetrics(metrics),
		controller.WithBinarySource(attachment.NewFileSource(config.MaxAttachmentMb)),
		controller.WithEventBuffer(config.EventBufferSize),
		controller.WithSinkTimeout(config.SinkTimeout),
	)
	c.Listen(newTerminal(out, identity, runColours))
	defer c.Teardown()

	if _, err = c.Subscribe(ctx); err != nil {
		return err
	}
	log.Info("Joined the chat room", "as", identity)

	// 6. Input loop & debug server
	g, gctx := errgroup.WithContext(ctx)
	if config.DebugPort > 0 {
		router := internal.NewDebugRouter(db, history, metrics, c.Messages)
		g.Go(func() error {
			return internal.StartDebugServer(gctx, log, config.DebugPort, router)
		})
	}
	g.Go(func() error {
		defer stop()
		return inputLoop(gctx, log, c, identity, account, config, lines)
	})
	return g.Wait()
}

// inputLoop returns nil when the user leaves or the input ends.
func inputLoop(ctx context.Context, log *slog.Logger, c *controller.Controller, identity string,
	account *session.Account, config internal.Config, lines <-chan string) error {
	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}

		cmd := parseLine(line)
		sendCtx, cancel := context.WithTimeout(ctx, config.SendTimeout)
		var err error
		switch cmd.kind {
		case cmdEmpty:
		case cmdQuit:
			cancel()
			return nil
		case cmdLogout:
			cancel()
			if account != nil {
				return account.SignOut()
			}
			return nil
		case cmdImage:
			err = c.SendAttachment(sendCtx, identity, cmd.arg)
		case cmdText:
			err = c.SendText(sendCtx, identity, cmd.arg)
		}
		cancel()
		if err != nil {
			log.Warn("Message not sent", "error", err)
		}
	}
}

func openRemote(ctx context.Context, log *slog.Logger, config internal.Config) (contract.RemoteLog, func(), error) {
	if runLocal || config.Local() {
		log.Info("Using in-process message log")
		return remotelog.NewMemoryLog(log), func() {}, nil
	}
	stream, err := remotelog.Dial(ctx, log, config.RemoteURL, config.Collection)
	if err != nil {
		return nil, nil, err
	}
	client := remotelog.NewClient(stream, remotelog.NewUploader(config.UploadURL, config.SendTimeout))
	return client, func() { _ = stream.Close() }, nil
}

// readLines never blocks the caller: stdin is read by its own goroutine.
func readLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
