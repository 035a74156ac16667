package cli

import (
	"github.com/spf13/cobra"

	"github.com/stemsi/cyberassess-backend/internal/app"
)

func newEnsureIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create MongoDB indexes, including the unique submission fingerprint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			return e.withStores(cmd.Context(), func(st *app.Stores) error {
				if err := st.EnsureIndexes(cmd.Context()); err != nil {
					return err
				}
				cmd.Printf("Indexes ensured (%s)\n", st.Driver)
				return nil
			})
		},
	}
}
