package catalog

// ParamInfo is the serializable form of a ParamDef.
type ParamInfo struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
	Required    bool      `json:"required"`
	Enum        []string  `json:"enum,omitempty"`
	Default     any       `json:"default,omitempty"`
}

// OperationInfo is the serializable form of an Operation, as listed by the
// shells.
type OperationInfo struct {
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	ReadOnly    bool        `json:"readOnly"`
	Params      []ParamInfo `json:"parameters"`
}

// Info describes the operation.
func (o Operation) Info() OperationInfo {
	info := OperationInfo{
		Name:        o.Name,
		Title:       o.Title,
		Description: o.Description,
		ReadOnly:    o.ReadOnly,
		Params:      make([]ParamInfo, 0, len(o.Params)),
	}
	for _, p := range o.Params {
		info.Params = append(info.Params, ParamInfo{
			Name:        p.Name,
			Type:        p.Type,
			Description: p.Description,
			Required:    p.Required,
			Enum:        p.Enum,
			Default:     p.Default,
		})
	}
	return info
}

// Describe returns the info of every operation in catalog order.
func (c *Catalog) Describe() []OperationInfo {
	out := make([]OperationInfo, 0, len(c.ops))
	for _, op := range c.ops {
		out = append(out, op.Info())
	}
	return out
}
