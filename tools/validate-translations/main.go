// Command validate-translations checks locale bundles against the base
// language and exits 1 when errors are found.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/tools/validate-translations/internal/validate"
)

var errValidationFailed = errors.New("translation validation failed")

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errValidationFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("VALIDATE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "validate-translations",
		Short:         "Validate locale JSON bundles against the base language",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), v)
		},
	}

	flags := cmd.Flags()
	flags.String("locales", "website/locales", "directory holding <lang>/<namespace>.json")
	flags.String("base", "en", "base language")
	flags.StringSlice("languages", nil, "languages to check (default all)")
	flags.String("format", "text", "output format: text or json")
	flags.Bool("strict", false, "treat warnings as errors")
	_ = v.BindPFlags(flags)
	return cmd
}

func run(w io.Writer, v *viper.Viper) error {
	format := v.GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q", format)
	}
	log := infralogger.Must(infralogger.Config{Level: "warn", Format: "console", OutputPaths: []string{"stderr"}})
	defer func() { _ = log.Sync() }()

	dir := v.GetString("locales")
	report, err := validate.Run(os.DirFS(dir), validate.Options{
		Base:      v.GetString("base"),
		Languages: v.GetStringSlice("languages"),
	})
	if err != nil {
		return fmt.Errorf("validate %s: %w", dir, err)
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err = enc.Encode(report); err != nil {
			return err
		}
	} else {
		render(w, report)
	}

	strict := v.GetBool("strict")
	if report.Failed(strict) {
		log.Warn("Translation issues found",
			infralogger.Int("errors", report.Count(validate.SeverityError)),
			infralogger.Int("warnings", report.Count(validate.SeverityWarning)),
			infralogger.Bool("strict", strict),
		)
		return errValidationFailed
	}
	return nil
}

func render(w io.Writer, r *validate.Report) {
	if len(r.Issues) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Severity", "Language", "Namespace", "Key", "Issue", "Detail"})
		for _, i := range r.Issues {
			t.AppendRow(table.Row{i.Severity, i.Language, i.Namespace, i.Key, i.Kind, i.Message})
		}
		t.Render()
	}
	fmt.Fprintf(w, "Checked %d languages against %q across %d namespaces: %d errors, %d warnings\n",
		len(r.Languages), r.Base, len(r.Namespaces),
		r.Count(validate.SeverityError), r.Count(validate.SeverityWarning))
}
