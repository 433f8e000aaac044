package cli

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/compiler"
	"github.com/roach88/dpvalidate/internal/errs"
	"github.com/roach88/dpvalidate/internal/infer"
)

// InferredValue holds the properties inferred from one named value.
type InferredValue struct {
	Name       string          `json:"name"`
	Properties json.RawMessage `json:"properties,omitempty"`
	Hash       string          `json:"hash,omitempty"`
	ErrorKind  string          `json:"error_kind,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// NewInferCommand creates the infer command.
func NewInferCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "infer <values.cue>",
		Short: "Infer properties of public values",
		Long: `Infer the properties of literal values, one per top-level field:

  ages: { type: "int", array: [31, 45, 27] }
  edges: { type: "float", jagged: [[0, 5, 10]] }

Values that cannot be inferred (for example numeric bounds of a hashmap
entry) are reported individually.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfer(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInfer(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	values, err := compiler.LoadValues(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	results := make([]InferredValue, 0, len(names))
	failed := 0
	for _, name := range names {
		res := inferValue(name, values[name])
		if res.Error != "" {
			failed++
		}
		results = append(results, res)
	}

	if opts.Format == "json" {
		resp := CLIResponse{Data: results}
		if failed > 0 {
			resp.Error = &CLIError{Code: "E_INFER", Message: fmt.Sprintf("%d value(s) could not be inferred", failed)}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		for _, res := range results {
			if res.Error != "" {
				fmt.Fprintf(w, "✗ %s: %s: %s\n", res.Name, res.ErrorKind, res.Error)
				continue
			}
			fmt.Fprintf(w, "✓ %s: %s\n", res.Name, res.Properties)
			formatter.VerboseLog("  hash %s", res.Hash)
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d value(s) could not be inferred", failed))
	}
	return nil
}

func inferValue(name string, v base.Value) InferredValue {
	res := InferredValue{Name: name}
	props, err := infer.Properties(v)
	if err != nil {
		res.ErrorKind = string(errs.KindOf(err))
		res.Error = err.Error()
		return res
	}
	data, err := base.CanonicalProperties(props)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Properties = data
	res.Hash = base.MustPropertiesHash(props)
	return res
}
