package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"katydid-storefront/pkg/validator"
	"katydid-storefront/pkg/validator/forms"
)

var (
	formScene string
	formSets  []string
	formFiles []string
	formJSON  string
)

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "List forms and their fields",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		for _, name := range forms.Names() {
			o, err := forms.Lookup(name, forms.WithScene(validator.SceneAll))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", name)
			for _, field := range o.Fields() {
				kinds := make([]string, 0, 2)
				for _, r := range o.Rules(field) {
					kinds = append(kinds, r.Kind.String())
				}
				fmt.Fprintf(out, "  %-22s %s\n", field, strings.Join(kinds, ", "))
			}
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <form>",
	Short: "Validate form values locally",
	Example: `  storefront validate category --set categoryName="Summer" --file categoryImage=cover.png:204800:image/png
  storefront validate promotion --json promo.json --scene update`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scene, values, err := formInput(cmd, args[0])
		if err != nil {
			return err
		}
		o, err := forms.Lookup(args[0], forms.WithScene(scene))
		if err != nil {
			return err
		}
		report := o.ValidateForm(values)
		printReport(cmd.OutOrStdout(), report)
		return report.Err()
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <form>",
	Short: "Validate and submit a form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		scene, values, err := formInput(cmd, args[0])
		if err != nil {
			return err
		}
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		result, report, err := a.FormController().Submit(ctx, args[0], values, scene)
		if report != nil && !report.IsValid {
			printReport(cmd.OutOrStdout(), report)
		}
		if err != nil {
			return err
		}
		if result.ID != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "id: %s\n", result.ID)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{validateCmd, submitCmd} {
		c.Flags().StringVar(&formScene, "scene", "create", "scene: create, update, query")
		c.Flags().StringArrayVar(&formSets, "set", nil, "field=value, repeatable")
		c.Flags().StringArrayVar(&formFiles, "file", nil, "field=name:size:content-type, repeatable")
		c.Flags().StringVar(&formJSON, "json", "", "read values from a JSON object file ('-' for stdin)")
	}
	rootCmd.AddCommand(formsCmd, validateCmd, submitCmd)
}

// formInput 合并 --json、--set、--file 的值，后者覆盖前者
func formInput(cmd *cobra.Command, form string) (validator.ValidateScene, validator.Values, error) {
	scene, ok := validator.ParseScene(formScene)
	if !ok {
		return 0, nil, fmt.Errorf("unknown scene %q", formScene)
	}
	o, err := forms.Lookup(form, forms.WithScene(scene))
	if err != nil {
		return 0, nil, err
	}

	values := validator.Values{}
	if formJSON != "" {
		data, err := readInput(cmd.InOrStdin(), formJSON)
		if err != nil {
			return 0, nil, err
		}
		if values, err = o.DecodeJSON(data); err != nil {
			return 0, nil, err
		}
	}

	for _, kv := range formSets {
		field, value, ok := strings.Cut(kv, "=")
		if !ok || field == "" {
			return 0, nil, fmt.Errorf("invalid --set %q, want field=value", kv)
		}
		values[field] = value
	}

	for _, kv := range formFiles {
		field, file, err := parseFile(kv)
		if err != nil {
			return 0, nil, err
		}
		files, _ := values[field].([]validator.FileInfo)
		values[field] = append(files, file)
	}
	return scene, values, nil
}

// parseFile field=name:size:content-type
func parseFile(kv string) (string, validator.FileInfo, error) {
	field, desc, ok := strings.Cut(kv, "=")
	parts := strings.Split(desc, ":")
	if !ok || field == "" || len(parts) != 3 {
		return "", validator.FileInfo{}, fmt.Errorf("invalid --file %q, want field=name:size:content-type", kv)
	}
	size, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || size < 0 {
		return "", validator.FileInfo{}, fmt.Errorf("invalid --file size %q", parts[1])
	}
	return field, validator.FileInfo{Name: parts[0], Size: size, ContentType: parts[2]}, nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("values file %s not found", path)
	}
	return data, err
}

func printReport(out io.Writer, report *validator.FormValidationReport) {
	for _, field := range report.Fields {
		res := report.FieldResults[field]
		switch {
		case res.IsValid && res.Message != "":
			fmt.Fprintf(out, "  ok    %-22s %s\n", field, res.Message)
		case res.IsValid:
			fmt.Fprintf(out, "  ok    %s\n", field)
		default:
			fmt.Fprintf(out, "  %-5s %-22s %s\n", res.Severity, field, res.Message)
		}
	}
	fmt.Fprintln(out, report.Summary())
}
