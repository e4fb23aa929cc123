package viz

import (
	"fmt"
	"html"
	"strings"

	"github.com/matsen/blueprint/internal/structure"
)

// TreeHeader opens the collapsible tree page.
const TreeHeader = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>App Structure Tree</title>
<style>
  .help { position: fixed; bottom: 1rem; right: 1rem; font-size: 0.85em; color: #666; }
  .help summary { cursor: pointer; list-style: none; }
  .help summary::-webkit-details-marker { display: none; }
  .help-content { background: white; padding: 0.5rem 1rem; border-radius: 4px; }
  .help-content { box-shadow: 0 2px 8px rgba(0,0,0,0.15); margin-top: 0.5rem; }
  .help kbd { background: #eee; padding: 0.1rem 0.4rem; border-radius: 3px; font-family: monospace; }
  body { font-family: -apple-system, system-ui, sans-serif; margin: 2rem; background: #fafafa; }
  details { margin-left: 1.5rem; }
  summary { cursor: pointer; padding: 0.3rem 0.5rem; border-radius: 4px; list-style: none; }
  summary:hover { background: #e8e8e8; }
  summary::-webkit-details-marker { display: none; }
  summary::before { content: "▶ "; font-size: 0.7em; color: #666; }
  details[open] > summary::before { content: "▼ "; }
  .leaf { margin-left: 1.5rem; padding: 0.3rem 0.5rem; }
  .leaf::before { content: "• "; font-size: 0.7em; color: #666; }
  .root { margin-left: 0; }
  .label { font-weight: 500; }
  .untitled .label { color: #777; font-style: italic; font-weight: normal; }
  .type { color: #666; font-size: 0.85em; margin-left: 0.5rem; }
  .event { color: #27ae60; font-size: 0.85em; margin-left: 0.5rem; font-family: monospace; }
</style>
</head>
<body>
`

// TreeFooter closes the collapsible tree page.
const TreeFooter = `
<details class="help">
  <summary>?</summary>
  <div class="help-content">
    <div><kbd>c</kbd> collapse all</div>
    <div><kbd>e</kbd> expand all</div>
  </div>
</details>
<script>
const sel = 'details:not(.help)';
function collapseAll() { document.querySelectorAll(sel).forEach(d => d.open = false); }
function expandAll() { document.querySelectorAll(sel).forEach(d => d.open = true); }
document.addEventListener('keydown', e => {
  if (e.target.tagName === 'INPUT' || e.target.tagName === 'TEXTAREA') return;
  if (e.key === 'c') collapseAll();
  if (e.key === 'e') expandAll();
});
</script>
</body>
</html>
`

// RenderNode renders a tree node and its descendants as nested details
// elements. Expanded nodes render open.
func RenderNode(node *structure.TreeNode, isRoot bool) string {
	var classes []string
	if isRoot {
		classes = append(classes, "root")
	}
	if !node.HasTitle {
		classes = append(classes, "untitled")
	}

	content := fmt.Sprintf(`<span class="label">%s</span>`, html.EscapeString(node.Label))
	if node.HasTitle {
		content += fmt.Sprintf(`<span class="type">%s</span>`, html.EscapeString(node.Type))
	}
	if node.EventID != "" {
		content += fmt.Sprintf(`<span class="event">%s</span>`, html.EscapeString(node.EventID))
	}
	titleAttr := fmt.Sprintf(` title="%s"`, html.EscapeString(node.ID))

	if len(node.Children) == 0 {
		classes = append([]string{"leaf"}, classes...)
		return fmt.Sprintf(`<div class="%s"%s>%s</div>`, strings.Join(classes, " "), titleAttr, content)
	}

	var sb strings.Builder
	sb.WriteString("<details")
	if len(classes) > 0 {
		sb.WriteString(fmt.Sprintf(` class="%s"`, strings.Join(classes, " ")))
	}
	if node.Expanded {
		sb.WriteString(" open")
	}
	sb.WriteString(fmt.Sprintf("><summary%s>%s</summary>", titleAttr, content))
	for _, child := range node.Children {
		sb.WriteString(RenderNode(child, false))
	}
	sb.WriteString("</details>")
	return sb.String()
}

// GenerateTreeHTML generates the full collapsible tree document.
func GenerateTreeHTML(root *structure.TreeNode) string {
	if root == nil {
		return "<html><body><p>No components found.</p></body></html>"
	}
	return TreeHeader + RenderNode(root, true) + TreeFooter
}
