package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Shiki0138/leadfive-sub000/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger, posts and image pipeline over HTTP",
	RunE:  runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	images, err := newImageService(ctx, cfg, store, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := web.NewServer(web.Deps{
		Ledger:   store,
		Images:   images,
		PostsDir: cfg.Site.PostsDir,
		Window:   cfg.Ledger.Window,
		Now:      now,
		Log:      logger,
	})
	return srv.Run(ctx, addr)
}
