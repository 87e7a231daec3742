package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/gallery"
)

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "Manage registered identities",
}

var identitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered identity names",
	RunE:  runIdentitiesList,
}

var identitiesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete every record registered under a name",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentitiesDelete,
}

func init() {
	rootCmd.AddCommand(identitiesCmd)
	identitiesCmd.AddCommand(identitiesListCmd)
	identitiesCmd.AddCommand(identitiesDeleteCmd)
}

func runIdentitiesList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	store, closeStore, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	names := store.Names(cmd.Context())
	if len(names) == 0 {
		fmt.Println("No identities registered.")
		return nil
	}

	for _, name := range names {
		fmt.Println(name)
	}
	fmt.Printf("\n%d identit(y/ies) registered\n", len(names))
	return nil
}

func runIdentitiesDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg := config.Load()

	store, closeStore, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	removed, err := store.DeleteByName(cmd.Context(), name)
	if err != nil {
		if errors.Is(err, gallery.ErrNameNotFound) {
			return fmt.Errorf("no identity registered under %q", name)
		}
		return fmt.Errorf("deleting identity: %w", err)
	}

	fmt.Printf("Deleted %d record(s) for %q\n", removed, name)
	return nil
}
