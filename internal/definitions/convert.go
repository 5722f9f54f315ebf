package definitions

import (
	"fmt"

	"github.com/mesh-intelligence/lattice/pkg/types"
)

func (d PropertyDef) convert() types.PropertyType {
	dt := types.DataType(d.DataType)
	if dt == "" {
		dt = types.DataTypeAny
	}
	p := types.NewPropertyType(d.Name, dt).WithDescription(d.Description)
	if d.SocketType != "" {
		p = p.WithSocketType(types.SocketType(d.SocketType))
	}
	if d.Mutability != "" {
		p = p.WithMutability(types.Mutability(d.Mutability))
	}
	if d.Default != nil {
		p = p.WithDefault(d.Default)
	}
	return p
}

func convertProperties(defs []PropertyDef) []types.PropertyType {
	out := make([]types.PropertyType, len(defs))
	for i, d := range defs {
		out[i] = d.convert()
	}
	return out
}

func convertExtensions(defs []ExtensionDef) ([]types.Extension, error) {
	out := make([]types.Extension, 0, len(defs))
	for _, d := range defs {
		ty, err := types.ParseTypeID[types.ExtensionTag](d.Type)
		if err != nil {
			return nil, fmt.Errorf("extension %q: %w", d.Type, err)
		}
		ext := types.NewExtension(ty, d.Description, d.Value)
		if d.EntityType != "" {
			et, err := types.ParseTypeID[types.EntityTypeTag](d.EntityType)
			if err != nil {
				return nil, fmt.Errorf("extension %q: entity type: %w", d.Type, err)
			}
			ext = ext.ForEntityType(et)
		}
		out = append(out, ext)
	}
	return out, nil
}

func convertComponentIDs(ids []string) ([]types.ComponentTypeID, error) {
	out := make([]types.ComponentTypeID, 0, len(ids))
	for _, s := range ids {
		id, err := types.ParseTypeID[types.ComponentTag](s)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", s, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func (d ComponentDef) convert() (*types.Component, error) {
	ty, err := types.NewComponentTypeID(d.Namespace, d.Name)
	if err != nil {
		return nil, err
	}
	exts, err := convertExtensions(d.Extensions)
	if err != nil {
		return nil, err
	}
	return types.NewComponent(ty, d.Description, convertProperties(d.Properties)...).WithExtensions(exts...), nil
}

func (d EntityTypeDef) convert() (*types.EntityType, error) {
	ty, err := types.NewEntityTypeID(d.Namespace, d.Name)
	if err != nil {
		return nil, err
	}
	components, err := convertComponentIDs(d.Components)
	if err != nil {
		return nil, err
	}
	exts, err := convertExtensions(d.Extensions)
	if err != nil {
		return nil, err
	}
	return types.NewEntityType(ty, d.Description).
		WithComponents(components...).
		WithProperties(convertProperties(d.Properties)...).
		WithExtensions(exts...), nil
}

func (d RelationTypeDef) convert() (*types.RelationType, error) {
	ty, err := types.NewRelationTypeID(d.Namespace, d.Name)
	if err != nil {
		return nil, err
	}
	outbound, err := types.ParseInboundOutboundType(d.Outbound)
	if err != nil {
		return nil, fmt.Errorf("outbound: %w", err)
	}
	inbound, err := types.ParseInboundOutboundType(d.Inbound)
	if err != nil {
		return nil, fmt.Errorf("inbound: %w", err)
	}
	components, err := convertComponentIDs(d.Components)
	if err != nil {
		return nil, err
	}
	exts, err := convertExtensions(d.Extensions)
	if err != nil {
		return nil, err
	}
	return types.NewRelationType(outbound, ty, inbound, d.Description).
		WithComponents(components...).
		WithProperties(convertProperties(d.Properties)...).
		WithExtensions(exts...), nil
}

func (d FlowTypeDef) convert() (*types.FlowType, error) {
	ty, err := types.NewFlowTypeID(d.Namespace, d.Name)
	if err != nil {
		return nil, err
	}
	wrapperTy, err := types.ParseTypeID[types.EntityTypeTag](d.Wrapper)
	if err != nil {
		return nil, fmt.Errorf("wrapper: %w", err)
	}
	exts, err := convertExtensions(d.Extensions)
	if err != nil {
		return nil, err
	}
	ft := types.NewFlowType(ty, d.Description, types.NewEntityInstance(wrapperTy))
	ft.Variables.ReplaceAll(convertProperties(d.Variables)...)
	ft.Extensions.ReplaceAll(exts...)
	return ft, nil
}
