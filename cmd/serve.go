package cmd

import (
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-i2p/kdbxgo/vaultserver"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Open a vault and serve read-only stats about it over HTTP",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		viper.Unmarshal(c)
		c.File = args[0]

		db, err := openDatabaseFile(c.File, c.Password, c.KeyFile)
		if err != nil {
			log.Fatalf("serve: %v", err)
		}
		srv := vaultserver.New(db, c.StatsFile)

		sigCh := make(chan os.Signal, 1)
		// Register both SIGINT (Ctrl-C) and SIGTERM (systemctl stop, docker
		// stop, Kubernetes pod termination) so stats are persisted on any
		// graceful stop.
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			for sig := range sigCh {
				log.Println("captured:", sig)
				if err := srv.Stats.Save(); err != nil {
					log.Printf("Stats.Save: %v", err)
				}
				os.Exit(0)
			}
		}()

		addr := net.JoinHostPort(c.Host, c.Port)
		log.Printf("serve: listening on %s", addr)
		if err := http.ListenAndServe(addr, srv); err != nil {
			log.Fatalf("serve: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("password", "", "database password (omit to be prompted)")
	serveCmd.Flags().String("keyfile", "", "path to a key file")
	serveCmd.Flags().String("host", "127.0.0.1", "host to serve stats on")
	serveCmd.Flags().String("port", "9696", "port to serve stats on")
	serveCmd.Flags().String("statsfile", "stats.json", "file to persist open/view counters in")

	viper.BindPFlags(serveCmd.Flags())
}
