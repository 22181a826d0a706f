package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	filtersapp "github.com/Apurer/go-adoption-filters/internal/domains/filters/application"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
)

func newShowCmd() *cobra.Command {
	var screenName string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the filters saved for a screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			screen, err := filtersapp.ScreenByName(screenName)
			if err != nil {
				return err
			}
			saved, err := rt.prefs.Store.LoadQuery(cmd.Context(), screen.Key)
			if errors.Is(err, ports.ErrQueryNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "no filters saved for %s\n", screen.Name)
				return nil
			}
			if err != nil {
				return err
			}
			raw, err := json.Marshal(saved.Entity)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", raw)
			return nil
		},
	}
	cmd.Flags().StringVar(&screenName, "screen", filtersapp.PetListingScreen.Name, "filter screen (pet-listing, my-pets)")
	return cmd
}

func newClearCmd() *cobra.Command {
	var screenName string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the filters saved for a screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			screen, err := filtersapp.ScreenByName(screenName)
			if err != nil {
				return err
			}
			err = rt.prefs.Store.DeleteQuery(cmd.Context(), screen.Key)
			if errors.Is(err, ports.ErrQueryNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "nothing to clear for %s\n", screen.Name)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared filters for %s\n", screen.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&screenName, "screen", filtersapp.PetListingScreen.Name, "filter screen (pet-listing, my-pets)")
	return cmd
}
