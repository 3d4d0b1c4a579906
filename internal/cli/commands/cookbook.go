package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/lookgen/internal/cookbook"
	"github.com/leapstack-labs/lookgen/internal/warn"
	"github.com/spf13/cobra"
)

// NewCookbookCommand creates the cookbook command group.
func NewCookbookCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookbook",
		Short: "Inspect and validate recipe files",
	}

	cmd.AddCommand(newCookbookValidateCommand())
	cmd.AddCommand(newCookbookListCommand())

	return cmd
}

func newCookbookValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a recipe file",
		Long: `Validate parses a recipe file and reports hard errors (invalid YAML,
invalid regular expressions, empty recipe list) and soft warnings
(unknown action keys).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			warnings := &warn.Collector{}
			cb, err := cookbook.LoadFile(args[0], warnings)
			if err != nil {
				return fmt.Errorf("invalid cookbook: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d recipes OK\n", args[0], len(cb.Recipes))
			for _, msg := range warnings.Sorted() {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", msg)
			}
			return nil
		},
	}
}

func newCookbookListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: "List the recipes in a recipe file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			warnings := &warn.Collector{}
			cb, err := cookbook.LoadFile(args[0], warnings)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"#", "Name", "Filter", "Actions"})
			for i, recipe := range cb.Recipes {
				t.AppendRow(table.Row{i + 1, recipe.Name, describeFilter(recipe.Filters), actionKeys(recipe.Action)})
			}
			t.Render()

			for _, msg := range warnings.Sorted() {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", msg)
			}
			return nil
		},
	}
}

// describeFilter summarizes a filter's set constraints for display.
func describeFilter(f *cookbook.Filter) string {
	if f == nil {
		return "all fields"
	}
	var parts []string
	if f.DataType != "" {
		parts = append(parts, "data_type="+f.DataType)
	}
	if f.RegexInclude != "" {
		parts = append(parts, "regex_include="+f.RegexInclude)
	}
	if f.RegexExclude != "" {
		parts = append(parts, "regex_exclude="+f.RegexExclude)
	}
	if len(f.Tags) > 0 {
		parts = append(parts, "tags="+strings.Join(f.Tags, ","))
	}
	if len(f.FieldsInclude) > 0 {
		parts = append(parts, "fields_include="+strings.Join(f.FieldsInclude, ","))
	}
	if len(f.FieldsExclude) > 0 {
		parts = append(parts, "fields_exclude="+strings.Join(f.FieldsExclude, ","))
	}
	if len(parts) == 0 {
		return "all fields"
	}
	return strings.Join(parts, " ")
}

func actionKeys(action map[string]any) string {
	keys := make([]string, 0, len(action))
	for k := range action {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
