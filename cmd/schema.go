package cmd

import (
	"encoding/json"
	"os"

	"github.com/anisan-cli/playerview/inline"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().BoolP("compact", "c", false, "Print the schema on a single line")
	schemaCmd.SetOut(os.Stdout)
}

// schemaCmd prints the JSON schema of the lines written by play --json.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of play --json events",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := jsonschema.Reflector{ExpandedStruct: true}
		schema := reflector.Reflect(&inline.Event{})
		schema.Title = "playerview event"

		encoder := json.NewEncoder(cmd.OutOrStdout())
		if !lo.Must(cmd.Flags().GetBool("compact")) {
			encoder.SetIndent("", "  ")
		}
		handleErr(encoder.Encode(schema))
	},
}
