package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var localesCmd = &cobra.Command{
	Use:   "locales [locale]",
	Short: "Show locale resolution for the template directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := loadSet(cmd)
		if err != nil {
			return err
		}
		manager := set.Locales()
		if manager == nil {
			fmt.Println("No locales directory configured.")
			return nil
		}

		requested := activeLocale(cmd)
		if len(args) == 1 {
			requested = args[0]
		}

		resolved, err := manager.Resolve(requested)
		if err != nil {
			return err
		}
		data, err := manager.Get(requested)
		if err != nil {
			return err
		}

		fmt.Printf("Requested: %s\n", requested)
		fmt.Printf("Resolved:  %s\n", resolved)
		fmt.Printf("Direction: %s\n", data.Direction())
		fmt.Printf("Default:   %s\n", manager.DefaultLocale())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(localesCmd)
}
