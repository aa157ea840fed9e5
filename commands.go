package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Xunop/e-editor/internal/api/v1"
	"github.com/Xunop/e-editor/internal/config"
	"github.com/Xunop/e-editor/internal/http/response"
	"github.com/Xunop/e-editor/internal/log"
	"github.com/Xunop/e-editor/internal/model"
	"github.com/Xunop/e-editor/internal/scheduler"
	"github.com/Xunop/e-editor/internal/server"
	"github.com/Xunop/e-editor/internal/store"
	"github.com/Xunop/e-editor/internal/store/db"
	"github.com/Xunop/e-editor/internal/version"
	"github.com/Xunop/e-editor/internal/worker"
)

type flags struct {
	configFile string
	data       string
	dsn        string
	host       string
	port       int
	logLevel   string
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:           "e-editor",
		Short:         "E-Editor keeps a personal library of books and chapters",
		Version:       version.GetCurrentVersion(),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, f)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Sync()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&f.configFile, "config", "c", "", "config file")
	pf.StringVar(&f.data, "data", "", "data directory")
	pf.StringVar(&f.dsn, "dsn", "", "database file, defaults to <data>/books.db")
	pf.StringVar(&f.host, "host", "", "host to listen on")
	pf.IntVar(&f.port, "port", 0, "port to listen on")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newServeCmd(),
		newBookCmd(),
		newChapterCmd(),
		newImportCmd(),
		newExportCmd(),
	)
	return rootCmd
}

// loadConfig applies defaults, the config file and then flags, in that order.
func loadConfig(cmd *cobra.Command, f *flags) error {
	opts := config.GetDefaultOptions()
	if f.configFile != "" {
		if _, err := config.ParseFile(f.configFile); err != nil {
			return err
		}
	}

	changed := cmd.Flags().Changed
	if changed("data") {
		opts.Data = f.data
	}
	if changed("dsn") {
		opts.DSN = f.dsn
	}
	if changed("host") {
		opts.Host = f.host
	}
	if changed("port") {
		opts.Port = f.port
	}
	if changed("log-level") {
		opts.LogLevel = f.logLevel
	}

	if err := config.Resolve(opts); err != nil {
		return err
	}
	log.Logger = log.NewLogger()
	log.Debug("Configuration loaded", zap.String("data", opts.Data), zap.String("dsn", opts.DSN))
	return nil
}

func openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, config.Opts.DSN, db.WithBusyTimeout(config.Opts.BusyTimeout))
}

// withCommands opens the library for the duration of fn.
func withCommands(cmd *cobra.Command, fn func(ctx context.Context, cmds *v1.Commands) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, v1.NewCommands(s, nil))
}

func printEnvelope[T any](cmd *cobra.Command, env response.Envelope[T], err error) error {
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, errors.Errorf("invalid id %q", s)
	}
	return id, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the library over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.ErrOrStderr(), greetingBanner)
			opts := config.Opts

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := openStore(ctx)
			if err != nil {
				log.Error("Error opening database", zap.Error(err))
				return err
			}
			defer s.Close()

			poolCtx, cancelPool := context.WithCancel(context.Background())
			pool := worker.NewImportPool(poolCtx, s, opts.WorkerPoolSize)
			defer func() {
				cancelPool()
				pool.Wait()
			}()

			checkpoints := scheduler.NewCheckpointScheduler(s)
			if err := checkpoints.Start(ctx, opts.CheckpointSchedule); err != nil {
				return err
			}
			defer checkpoints.Stop()

			srv, errc := server.StartServer(opts, s, pool)
			select {
			case <-ctx.Done():
				log.Info("Shutting down")
			case err := <-errc:
				if err != nil {
					return err
				}
			}
			if err := server.Shutdown(srv); err != nil {
				log.Error("Error shutting down HTTP server", zap.Error(err))
			}
			return nil
		},
	}
}

func newBookCmd() *cobra.Command {
	bookCmd := &cobra.Command{
		Use:   "book",
		Short: "Manage books",
	}

	var book bookFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommands(cmd, func(ctx context.Context, cmds *v1.Commands) error {
				env, err := cmds.AddBook(ctx, book.title, book.author, book.description, book.toc)
				return printEnvelope(cmd, env, err)
			})
		},
	}
	book.register(addCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List books that are not deleted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommands(cmd, func(ctx context.Context, cmds *v1.Commands) error {
				env, err := cmds.GetBooks(ctx)
				return printEnvelope(cmd, env, err)
			})
		},
	}

	tocCmd := &cobra.Command{
		Use:   "toc <bookID> <toc>",
		Short: "Replace the outline of a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withCommands(cmd, func(ctx context.Context, cmds *v1.Commands) error {
				env, err := cmds.UpdateBookToc(ctx, id, args[1])
				return printEnvelope(cmd, env, err)
			})
		},
	}

	var update bookFlags
	updateCmd := &cobra.Command{
		Use:   "update <bookID>",
		Short: "Change the given fields of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch := update.patch(cmd, id)
			if patch.IsEmpty() {
				return errors.New("nothing to update, pass --title, --author, --description or --toc")
			}
			return withCommands(cmd, func(ctx context.Context, cmds *v1.Commands) error {
				env, err := cmds.UpdateBook(ctx, patch)
				return printEnvelope(cmd, env, err)
			})
		},
	}
	update.register(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <bookID>",
		Short: "Mark a book as deleted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withCommands(cmd, func(ctx context.Context, cmds *v1.Commands) error {
				env, err := cmds.DeleteBook(ctx, id)
				return printEnvelope(cmd, env, err)
			})
		},
	}

	bookCmd.AddCommand(addCmd, listCmd, tocCmd, updateCmd, deleteCmd)
	return bookCmd
}

type bookFlags struct {
	title       string
	author      string
	description string
	toc         string
}

func (b *bookFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&b.title, "title", "", "title")
	cmd.Flags().StringVar(&b.author, "author", "", "author")
	cmd.Flags().StringVar(&b.description, "description", "", "description")
	cmd.Flags().StringVar(&b.toc, "toc", "", "serialized outline")
}

// patch keeps only the flags that were given on the command line.
func (b *bookFlags) patch(cmd *cobra.Command, id int64) *model.UpdateBook {
	update := &model.UpdateBook{ID: id}
	changed := cmd.Flags().Changed
	if changed("title") {
		update.Title = &b.title
	}
	if changed("author") {
		update.Author = &b.author
	}
	if changed("description") {
		update.Description = &b.description
	}
	if changed("toc") {
		update.Toc = &b.toc
	}
	return update
}

func newChapterCmd() *cobra.Command {
	chapterCmd := &cobra.Command{
		Use:   "chapter",
		Short: "Manage chapters",
	}

	var label, href, content, contentFile string
	readContent := func() (string, error) {
		if contentFile == "" {
			return content, nil
		}
		b, err := os.ReadFile(contentFile)
		if err != nil {
			return "", errors.Wrap(err, "unable to read content file")
		}
		return string(b), nil
	}

	addCmd := &cobra.Command{
		Use:   "add <bookID>",
		Short: "Add a chapter to a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			body, err := readContent()
			if err != nil {
				return err
			}
			return withCommands(cmd, func(ctx context.Context, cmds *v1.Commands) error {
				env, err := cmds.AddChapter(ctx, label, href, body, bookID)
				return printEnvelope(cmd, env, err)
			})
		},
	}
	addCmd.Flags().StringVar(&label, "label", "", "label")
	addCmd.Flags().StringVar(&href, "href", "", "href")
	addCmd.Flags().StringVar(&content, "content", "", "content")
	addCmd.Flags().StringVar(&contentFile, "content-file", "", "read the content from a file")

	getCmd := &cobra.Command{
		Use:   "get <bookID> <chapterID>",
		Short: "Get a chapter of a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withCommands(cmd, func(ctx context.Context, cmds *v1.Commands) error {
				env, err := cmds.GetChapter(ctx, bookID, id)
				return printEnvelope(cmd, env, err)
			})
		},
	}

	firstCmd := &cobra.Command{
		Use:   "first <bookID>",
		Short: "Get the first chapter of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withCommands(cmd, func(ctx context.Context, cmds *v1.Commands) error {
				env, err := cmds.GetFirstChapter(ctx, bookID)
				return printEnvelope(cmd, env, err)
			})
		},
	}

	var newLabel, newContent, newContentFile string
	updateCmd := &cobra.Command{
		Use:   "update <chapterID>",
		Short: "Replace the label and content of a chapter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			body := newContent
			if newContentFile != "" {
				b, err := os.ReadFile(newContentFile)
				if err != nil {
					return errors.Wrap(err, "unable to read content file")
				}
				body = string(b)
			}
			return withCommands(cmd, func(ctx context.Context, cmds *v1.Commands) error {
				env, err := cmds.UpdateChapter(ctx, id, newLabel, body)
				return printEnvelope(cmd, env, err)
			})
		},
	}
	updateCmd.Flags().StringVar(&newLabel, "label", "", "label")
	updateCmd.Flags().StringVar(&newContent, "content", "", "content")
	updateCmd.Flags().StringVar(&newContentFile, "content-file", "", "read the content from a file")

	chapterCmd.AddCommand(addCmd, getCmd, firstCmd, updateCmd)
	return chapterCmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.epub>",
		Short: "Import an epub and print its first chapter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCommands(cmd, func(ctx context.Context, cmds *v1.Commands) error {
				env, err := cmds.ImportBook(ctx, args[0])
				return printEnvelope(cmd, env, err)
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <bookID> <out.epub>",
		Short: "Export a book as an epub",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withCommands(cmd, func(ctx context.Context, cmds *v1.Commands) error {
				out, err := os.Create(args[1])
				if err != nil {
					return errors.Wrap(err, "unable to create output file")
				}
				env, err := cmds.ExportBook(ctx, bookID, out)
				if cerr := out.Close(); cerr != nil && err == nil && env.Success {
					env = response.Failure[int](cerr.Error())
				}
				if err != nil || !env.Success {
					os.Remove(args[1])
				}
				return printEnvelope(cmd, env, err)
			})
		},
	}
}
