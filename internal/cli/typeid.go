package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lattice/pkg/types"
)

type typeIDOutput struct {
	TypeID        string `json:"type_id"`
	Kind          string `json:"kind"`
	Namespace     string `json:"namespace"`
	Name          string `json:"name"`
	NamespacedKey string `json:"namespaced_type"`
}

func newTypeIDCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "typeid <type-id>",
		Short: "Parse and describe a canonical type id",
		Long:  "Parse a canonical type id such as e__demo__Widget and print its parts.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := types.ParseTypeDefinition(args[0])
			if err != nil {
				return userError(err)
			}
			out := typeIDOutput{
				TypeID:        def.String(),
				Kind:          def.Kind.String(),
				Namespace:     def.Namespace().String(),
				Name:          def.TypeName(),
				NamespacedKey: def.NamespacedType.String(),
			}
			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "type id:   %s\n", out.TypeID)
			fmt.Fprintf(w, "kind:      %s\n", out.Kind)
			fmt.Fprintf(w, "namespace: %s\n", out.Namespace)
			fmt.Fprintf(w, "name:      %s\n", out.Name)
			return nil
		},
	}
}
