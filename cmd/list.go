package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates and conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := loadSet(cmd)
		if err != nil {
			return err
		}

		fmt.Println("Templates:")
		for _, name := range set.ListTemplates() {
			fmt.Println("  " + name)
		}
		if conversations := set.ListConversations(); len(conversations) > 0 {
			fmt.Println("Conversations:")
			for _, name := range conversations {
				fmt.Println("  " + name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
