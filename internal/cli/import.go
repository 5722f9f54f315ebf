package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lattice/internal/definitions"
)

type importOutput struct {
	Components    int      `json:"components"`
	EntityTypes   int      `json:"entity_types"`
	RelationTypes int      `json:"relation_types"`
	FlowTypes     int      `json:"flow_types"`
	Merged        int      `json:"merged"`
	Stored        int      `json:"stored"`
	Errors        []string `json:"errors,omitempty"`
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import type definitions from a YAML file",
		Long: "Register the definitions of a YAML file on top of the stored types, merge\n" +
			"component properties into the types that reference them, and store the result.\n" +
			"Definitions that fail are reported; the others are still stored.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, flags, args[0])
		},
	}
}

func runImport(cmd *cobra.Command, flags *rootFlags, path string) (err error) {
	doc, err := definitions.LoadFile(path)
	if err != nil {
		return userError(err)
	}

	s, err := openSession(flags)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil {
			err = sysError(cerr)
		}
	}()

	ts, err := s.loadTypeSystem()
	if err != nil {
		return err
	}
	res, applyErr := definitions.Apply(ts, doc)
	// Imported types may reference components that were already stored.
	res.Merged += ts.MergeAllComponentProperties()

	counts, err := s.store.Store(ts)
	if err != nil {
		return sysError(err)
	}
	s.logger.Info("imported definitions", "file", path, "stored", counts.Total())

	out := importOutput{
		Components:    res.Components,
		EntityTypes:   res.EntityTypes,
		RelationTypes: res.RelationTypes,
		FlowTypes:     res.FlowTypes,
		Merged:        res.Merged,
		Stored:        counts.Total(),
	}
	if applyErr != nil {
		out.Errors = []string{applyErr.Error()}
	}
	if flags.jsonMode {
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return sysError(err)
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(),
			"imported %d components, %d entity types, %d relation types, %d flow types (%d merged, %d stored)\n",
			out.Components, out.EntityTypes, out.RelationTypes, out.FlowTypes, out.Merged, out.Stored)
	}
	if applyErr != nil {
		return userError(applyErr)
	}
	return nil
}
