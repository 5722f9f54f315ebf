package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lattice/internal/sqlite"
	"github.com/mesh-intelligence/lattice/pkg/types"
)

type showOutput struct {
	TypeID    string          `json:"type_id"`
	Kind      string          `json:"kind"`
	Record    json.RawMessage `json:"record"`
	Outbound  []string        `json:"outbound_relation_types,omitempty"`
	Inbound   []string        `json:"inbound_relation_types,omitempty"`
	Referents []string        `json:"referenced_by,omitempty"`
}

func newShowCmd(flags *rootFlags) *cobra.Command {
	var relations bool
	cmd := &cobra.Command{
		Use:   "show <type-id>",
		Short: "Display a stored type",
		Long: "Print the stored record of a type. With --relations, entity types also list\n" +
			"the relation types that accept them, and components list the types that use them.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			def, err := types.ParseTypeDefinition(args[0])
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

			rec, err := s.store.Get(def)
			if errors.Is(err, sqlite.ErrNotFound) {
				return userError(err)
			} else if err != nil {
				return sysError(err)
			}
			out := showOutput{TypeID: def.String(), Kind: def.Kind.String(), Record: rec.Data}
			if relations {
				if err := fillRelations(s, def, &out); err != nil {
					return err
				}
			}

			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			return printShow(cmd, out)
		},
	}
	cmd.Flags().BoolVar(&relations, "relations", false, "include relation types and referencing types")
	return cmd
}

func fillRelations(s *session, def types.TypeDefinition, out *showOutput) error {
	switch def.Kind {
	case types.KindEntityType:
		ts, err := s.loadTypeSystem()
		if err != nil {
			return err
		}
		id, err := types.TypeIDFromDefinition[types.EntityTypeTag](def)
		if err != nil {
			return userError(err)
		}
		outbound, err := ts.OutboundRelationTypes(id)
		if err != nil {
			return sysError(err)
		}
		inbound, err := ts.InboundRelationTypes(id)
		if err != nil {
			return sysError(err)
		}
		for _, rt := range outbound {
			out.Outbound = append(out.Outbound, rt.Type.String())
		}
		for _, rt := range inbound {
			out.Inbound = append(out.Inbound, rt.Type.String())
		}
	case types.KindComponent:
		id, err := types.TypeIDFromDefinition[types.ComponentTag](def)
		if err != nil {
			return userError(err)
		}
		refs, err := s.store.Referencing(id)
		if err != nil {
			return sysError(err)
		}
		for _, r := range refs {
			out.Referents = append(out.Referents, r.String())
		}
	}
	return nil
}

func printShow(cmd *cobra.Command, out showOutput) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%s)\n", out.TypeID, out.Kind)
	var buf bytes.Buffer
	if err := json.Indent(&buf, out.Record, "", "  "); err != nil {
		return sysError(err)
	}
	fmt.Fprintln(w, buf.String())
	for _, label := range []struct {
		name string
		ids  []string
	}{
		{"outbound relation types", out.Outbound},
		{"inbound relation types", out.Inbound},
		{"referenced by", out.Referents},
	} {
		if len(label.ids) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", label.name)
		for _, id := range label.ids {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}
	return nil
}
