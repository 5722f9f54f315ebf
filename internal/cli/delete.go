package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lattice/internal/sqlite"
	"github.com/mesh-intelligence/lattice/pkg/types"
)

// errComponentInUse is returned when deleting a component that stored types
// still reference.
var errComponentInUse = errors.New("component is referenced by stored types")

func newDeleteCmd(flags *rootFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <type-id>",
		Short: "Delete a stored type",
		Long:  "Delete a stored type. Components still referenced by other types are kept\nunless --force is given.",
		Args:  cobra.ExactArgs(1),
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

			if def.Kind == types.KindComponent && !force {
				id, err := types.TypeIDFromDefinition[types.ComponentTag](def)
				if err != nil {
					return userError(err)
				}
				refs, err := s.store.Referencing(id)
				if err != nil {
					return sysError(err)
				}
				if len(refs) > 0 {
					names := make([]string, len(refs))
					for i, r := range refs {
						names[i] = r.String()
					}
					return userError(fmt.Errorf("%w: %s", errComponentInUse, strings.Join(names, ", ")))
				}
			}

			if err := s.store.Delete(def); err != nil {
				if errors.Is(err, sqlite.ErrNotFound) || errors.Is(err, sqlite.ErrKindNotStored) {
					return userError(err)
				}
				return sysError(err)
			}
			s.logger.Info("deleted type", "type", def.String())

			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"deleted": def.String()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", def)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "delete components even when referenced")
	return cmd
}
