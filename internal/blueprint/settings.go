package blueprint

// Archetype-specific views over a node's parameters. Each view reads only
// the keys it knows and ignores everything else, so an unfamiliar shape
// produces an empty view rather than an error.

// ContentItem is one entry of an info board's content settings.
type ContentItem struct {
	NumberKey string // numberLineNumberParams.columnKey
	ImageKey  string // numberLineImageParams.columnKey
}

// TableColumn is one column of a table's settings.
type TableColumn struct {
	ContentType string         // content.name, empty if absent
	Params      map[string]any // content.parameters
}

// SourceDecl is one declared data source.
type SourceDecl struct {
	Name    string
	Params  map[string]any // sourceParameters
	Columns []string       // sourceParameters.columns
}

// Contents returns the items of the node's contentSetting block.
func (n *Node) Contents() []ContentItem {
	setting := AsObject(n.Param("contentSetting"))
	if setting == nil {
		return nil
	}

	var items []ContentItem
	for _, c := range AsList(setting["contents"]) {
		content := AsObject(c)
		if content == nil {
			continue
		}
		var item ContentItem
		if p := AsObject(content["numberLineNumberParams"]); p != nil {
			item.NumberKey, _ = p["columnKey"].(string)
		}
		if p := AsObject(content["numberLineImageParams"]); p != nil {
			item.ImageKey, _ = p["columnKey"].(string)
		}
		items = append(items, item)
	}
	return items
}

// TableColumns returns the columns of the node's tableSetting block.
func (n *Node) TableColumns() []TableColumn {
	setting := AsObject(n.Param("tableSetting"))
	if setting == nil {
		return nil
	}

	var cols []TableColumn
	for _, c := range AsList(setting["columns"]) {
		col := AsObject(c)
		if col == nil {
			continue
		}
		content := AsObject(col["content"])
		var tc TableColumn
		tc.ContentType, _ = content["name"].(string)
		tc.Params = AsObject(content["parameters"])
		cols = append(cols, tc)
	}
	return cols
}

// Sources returns every source declared on the node, in the order: node
// source, parameters source, node readSources, parameters readSources.
func (n *Node) Sources() []SourceDecl {
	lists := [][]any{
		AsList(n.Field(KeySource)),
		AsList(n.Param(KeySource)),
		AsList(n.Field(KeyReadSources)),
		AsList(n.Param(KeyReadSources)),
	}

	var decls []SourceDecl
	for _, list := range lists {
		for _, s := range list {
			src := AsObject(s)
			if src == nil {
				continue
			}
			decl := SourceDecl{Params: AsObject(src["sourceParameters"])}
			decl.Name, _ = AsString(src["name"])
			for _, col := range AsList(decl.Params["columns"]) {
				if name, ok := AsString(col); ok {
					decl.Columns = append(decl.Columns, name)
				}
			}
			decls = append(decls, decl)
		}
	}
	return decls
}
