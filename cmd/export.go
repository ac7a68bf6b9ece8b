package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/go-i2p/kdbxgo/vaultsign"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Open a vault and write a plaintext XML snapshot suitable for signing",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		viper.Unmarshal(c)
		c.File = args[0]

		db, err := openDatabaseFile(c.File, c.Password, c.KeyFile)
		if err != nil {
			log.Fatalf("export: %v", err)
		}

		data, err := vaultsign.ExportPlaintext(db)
		if err != nil {
			log.Fatalf("export: %v", err)
		}

		out := c.Out
		if out == "" {
			out = c.File + ".xml"
		}
		if err := os.WriteFile(out, data, 0o600); err != nil {
			log.Fatalf("export: write %s: %v", out, err)
		}
		fmt.Printf("wrote %s\n", out)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("password", "", "database password (omit to be prompted)")
	exportCmd.Flags().String("keyfile", "", "path to a key file")
	exportCmd.Flags().String("out", "", "output path for the plaintext XML snapshot (default <file>.xml)")

	viper.BindPFlags(exportCmd.Flags())
}
