package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lattice/internal/sqlite"
	"github.com/mesh-intelligence/lattice/pkg/types"
)

// storedKinds are the kinds the type store keeps, in listing order.
var storedKinds = []types.Kind{
	types.KindComponent,
	types.KindEntityType,
	types.KindRelationType,
	types.KindFlowType,
}

type listEntry struct {
	TypeID    string    `json:"type_id"`
	Kind      string    `json:"kind"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newListCmd(flags *rootFlags) *cobra.Command {
	var namespace string
	cmd := &cobra.Command{
		Use:   "list [kind]",
		Short: "List stored types",
		Long:  "List stored types, optionally restricted to one kind (component, entity_type,\nrelation_type, flow_type or their tags c, e, r, f) and one namespace.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			kinds := storedKinds
			if len(args) == 1 {
				k, err := types.ParseKind(args[0])
				if err != nil {
					return userError(err)
				}
				kinds = []types.Kind{k}
			}
			var ns types.Namespace
			if namespace != "" {
				if ns, err = types.ParseNamespace(namespace); err != nil {
					return userError(err)
				}
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

			var entries []listEntry
			for _, k := range kinds {
				records, err := s.store.List(k, ns)
				if err != nil {
					return listError(err)
				}
				for _, rec := range records {
					entries = append(entries, listEntry{TypeID: rec.Type.String(), Kind: k.String(), UpdatedAt: rec.UpdatedAt})
				}
			}

			if flags.jsonMode {
				if entries == nil {
					entries = []listEntry{}
				}
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			for _, e := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), e.TypeID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&namespace, "namespace", "", "only list types in this namespace")
	return cmd
}

func listError(err error) error {
	if errors.Is(err, sqlite.ErrKindNotStored) {
		return userError(err)
	}
	return sysError(err)
}
